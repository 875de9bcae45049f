package sfu

import (
	"github.com/google/uuid"
)

// WebRtcTransport carries ICE and DTLS negotiation state on top of the
// shared Transport base. It either binds to a shared WebRtcServer or owns
// its own listening sockets via its own TransportDriver.
type WebRtcTransport struct {
	*Transport

	server *WebRtcServer

	iceParameters    IceParameters
	iceCandidates    []IceCandidate
	iceState         IceState
	iceSelectedTuple *TransportTuple

	dtlsParameters DtlsParameters
	dtlsState      DtlsState

	sctpParameters *SctpParameters
	sctpState      SctpState
}

func newWebRtcTransport(id, routerID string, server *WebRtcServer, driver TransportDriver, listener transportListener, opts *WebRtcTransportOptions) *WebRtcTransport {
	wt := &WebRtcTransport{
		Transport: newTransport(id, TransportWebRTC, routerID, driver, listener, opts.AppData),
		server:    server,
		iceParameters: IceParameters{
			UsernameFragment: uuid.NewString()[:8],
			Password:         uuid.NewString(),
		},
		iceState:  IceStateNew,
		dtlsState: DtlsStateNew,
	}
	if opts.EnableSctp {
		wt.sctpState = SctpStateNew
	}
	wt.Transport.SetDumper(wt)
	wt.Transport.SetConnector(wt)
	wt.Transport.SetCloser(wt)
	return wt
}

func (t *WebRtcTransport) IceParameters() IceParameters {
	return t.iceParameters
}

func (t *WebRtcTransport) IceState() IceState {
	return t.iceState
}

// Connect applies the remote DTLS parameters. ICE negotiation itself is
// driven by the TransportDriver; this only records the outcome for Dump().
func (t *WebRtcTransport) Connect(opts TransportConnectOptions) error {
	if opts.DtlsParameters == nil {
		return NewTypeError("missing dtlsParameters")
	}
	t.dtlsParameters = *opts.DtlsParameters
	t.dtlsState = DtlsStateConnecting
	return nil
}

func (t *WebRtcTransport) SetIceState(state IceState, tuple *TransportTuple) {
	t.iceState = state
	t.iceSelectedTuple = tuple
}

func (t *WebRtcTransport) SetDtlsState(state DtlsState) {
	t.dtlsState = state
}

// onTransportClose unregisters this transport from its shared WebRtcServer,
// if any, as part of the embedded Transport's own Close(). Without this a
// transport closed independently of its server (transport.close, or a
// cascade from Router.Close()) would leave a stale entry in the server's
// transport map and ICE username fragment index for the server's whole
// lifetime.
func (t *WebRtcTransport) onTransportClose() {
	if t.server != nil {
		t.server.UnregisterTransport(t)
	}
}

func (t *WebRtcTransport) Dump() *TransportDump {
	producerIds, consumerIds, dataProducerIds, dataConsumerIds := t.dumpIds()
	ssrcConsumerId, rtxSsrcConsumerId := t.dumpSsrcMaps()

	return &TransportDump{
		Id:                   t.Id(),
		Type:                 TransportWebRTC,
		ProducerIds:          producerIds,
		ConsumerIds:          consumerIds,
		MapSsrcConsumerId:    ssrcConsumerId,
		MapRtxSsrcConsumerId: rtxSsrcConsumerId,
		DataProducerIds:      dataProducerIds,
		DataConsumerIds:      dataConsumerIds,
		SctpParameters:       t.sctpParameters,
		SctpState:            t.sctpState,
		WebRtcTransportDump: &WebRtcTransportDump{
			IceRole:          "controlled",
			IceParameters:    t.iceParameters,
			IceCandidates:    t.iceCandidates,
			IceState:         t.iceState,
			IceSelectedTuple: t.iceSelectedTuple,
			DtlsParameters:   t.dtlsParameters,
			DtlsState:        t.dtlsState,
		},
	}
}
