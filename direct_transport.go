package sfu

// DirectTransport has no socket and no connect step; it exists so the
// embedding process can create DataProducers/DataConsumers that exchange
// messages in-process without an SCTP association, and so it can inject raw
// RTP packets directly through the embedded Transport's HandleRtpPacket for
// testing or bot/recording sources.
type DirectTransport struct {
	*Transport

	maxMessageSize uint32
}

func newDirectTransport(id, routerID string, driver TransportDriver, listener transportListener, opts *DirectTransportOptions) *DirectTransport {
	maxSize := opts.MaxMessageSize
	if maxSize == 0 {
		maxSize = 262144
	}
	dt := &DirectTransport{
		Transport:      newTransport(id, TransportDirect, routerID, driver, listener, opts.AppData),
		maxMessageSize: maxSize,
	}
	dt.Transport.SetDumper(dt)
	return dt
}

func (t *DirectTransport) Dump() *TransportDump {
	producerIds, consumerIds, dataProducerIds, dataConsumerIds := t.dumpIds()
	ssrcConsumerId, rtxSsrcConsumerId := t.dumpSsrcMaps()

	return &TransportDump{
		Id:                   t.Id(),
		Type:                 TransportDirect,
		Direct:               true,
		ProducerIds:          producerIds,
		ConsumerIds:          consumerIds,
		MapSsrcConsumerId:    ssrcConsumerId,
		MapRtxSsrcConsumerId: rtxSsrcConsumerId,
		DataProducerIds:      dataProducerIds,
		DataConsumerIds:      dataConsumerIds,
		MaxMessageSize:       t.maxMessageSize,
	}
}
