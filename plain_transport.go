package sfu

// PlainTransport exchanges plain RTP/RTCP (optionally SRTP-protected) with a
// single remote endpoint, with no ICE or DTLS involved.
type PlainTransport struct {
	*Transport

	rtcpMux bool
	comedia bool

	tuple     TransportTuple
	rtcpTuple *TransportTuple

	srtpParameters *SrtpParameters
	sctpParameters *SctpParameters
	sctpState      SctpState
}

func newPlainTransport(id, routerID string, driver TransportDriver, listener transportListener, opts *PlainTransportOptions) *PlainTransport {
	rtcpMux := true
	if opts.RtcpMux != nil {
		rtcpMux = *opts.RtcpMux
	}
	pt := &PlainTransport{
		Transport: newTransport(id, TransportPlain, routerID, driver, listener, opts.AppData),
		rtcpMux:   rtcpMux,
		comedia:   opts.Comedia,
	}
	if opts.EnableSctp {
		pt.sctpState = SctpStateNew
	}
	pt.Transport.SetDumper(pt)
	pt.Transport.SetConnector(pt)
	return pt
}

// Connect sets the remote tuple for a non-comedia PlainTransport, optionally
// enabling SRTP.
func (t *PlainTransport) Connect(opts TransportConnectOptions) error {
	if t.comedia {
		return NewInvalidStateError("cannot call connect() on a comedia PlainTransport")
	}

	t.tuple.RemoteIp = opts.Ip
	if opts.Port != nil {
		t.tuple.RemotePort = *opts.Port
	}
	if opts.SrtpParameters != nil {
		t.srtpParameters = opts.SrtpParameters
	}
	return nil
}

// SetRemoteTuple records the remote tuple auto-detected from the first
// packet received, for comedia mode.
func (t *PlainTransport) SetRemoteTuple(tuple TransportTuple) {
	t.tuple = tuple
}

func (t *PlainTransport) Dump() *TransportDump {
	producerIds, consumerIds, dataProducerIds, dataConsumerIds := t.dumpIds()
	ssrcConsumerId, rtxSsrcConsumerId := t.dumpSsrcMaps()

	return &TransportDump{
		Id:                   t.Id(),
		Type:                 TransportPlain,
		ProducerIds:          producerIds,
		ConsumerIds:          consumerIds,
		MapSsrcConsumerId:    ssrcConsumerId,
		MapRtxSsrcConsumerId: rtxSsrcConsumerId,
		DataProducerIds:      dataProducerIds,
		DataConsumerIds:      dataConsumerIds,
		SctpParameters:       t.sctpParameters,
		SctpState:            t.sctpState,
		PlainTransportDump: &PlainTransportDump{
			RtcpMux:        t.rtcpMux,
			Comedia:        t.comedia,
			Tuple:          t.tuple,
			RtcpTuple:      t.rtcpTuple,
			SrtpParameters: t.srtpParameters,
		},
	}
}
