package sfu

// PipeTransport carries media between two Routers. This module's supplement
// uses it exclusively in its within-worker, loopback form: Router.PipeToRouter
// creates a pair of PipeTransports connected directly to one another rather
// than over a real socket, since cross-worker (and so cross-host) piping is
// out of scope here.
type PipeTransport struct {
	*Transport

	tuple TransportTuple
	rtx   bool

	srtpParameters *SrtpParameters
	sctpParameters *SctpParameters
	sctpState      SctpState

	peer *PipeTransport
}

func newPipeTransport(id, routerID string, driver TransportDriver, listener transportListener, opts *PipeTransportOptions) *PipeTransport {
	pt := &PipeTransport{
		Transport: newTransport(id, TransportPipe, routerID, driver, listener, opts.AppData),
		rtx:       opts.EnableRtx,
	}
	if opts.EnableSctp {
		pt.sctpState = SctpStateNew
	}
	pt.Transport.SetDumper(pt)
	pt.Transport.SetConnector(pt)
	return pt
}

// Pair records two loopback PipeTransports as each other's peer. It moves no
// packets itself; the Router's loopback sink hands a Consumer's packets to
// the other side's HandleRtpPacket.
func (t *PipeTransport) Pair(other *PipeTransport) {
	t.peer = other
	other.peer = t
}

func (t *PipeTransport) Connect(opts TransportConnectOptions) error {
	t.tuple.RemoteIp = opts.Ip
	if opts.Port != nil {
		t.tuple.RemotePort = *opts.Port
	}
	if opts.SrtpParameters != nil {
		t.srtpParameters = opts.SrtpParameters
	}
	return nil
}

func (t *PipeTransport) Dump() *TransportDump {
	producerIds, consumerIds, dataProducerIds, dataConsumerIds := t.dumpIds()
	ssrcConsumerId, rtxSsrcConsumerId := t.dumpSsrcMaps()

	return &TransportDump{
		Id:                   t.Id(),
		Type:                 TransportPipe,
		ProducerIds:          producerIds,
		ConsumerIds:          consumerIds,
		MapSsrcConsumerId:    ssrcConsumerId,
		MapRtxSsrcConsumerId: rtxSsrcConsumerId,
		DataProducerIds:      dataProducerIds,
		DataConsumerIds:      dataConsumerIds,
		SctpParameters:       t.sctpParameters,
		SctpState:            t.sctpState,
		PipeTransportDump: &PipeTransportDump{
			Tuple:          t.tuple,
			Rtx:            t.rtx,
			SrtpParameters: t.srtpParameters,
		},
	}
}
