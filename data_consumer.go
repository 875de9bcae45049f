package sfu

// DataConsumerSink is implemented by the owning Transport. DataConsumer
// hands it outbound message payloads plus the PPID to frame them with.
type DataConsumerSink interface {
	SendDataMessage(dataConsumerID string, payload []byte, ppid SctpPayloadType)
}

// DataConsumerListener receives the notifications a DataConsumer emits
// toward its owning Router.
type DataConsumerListener interface {
	OnDataConsumerClose(dc *DataConsumer)
	OnDataConsumerProducerClose(dc *DataConsumer)
}

// DataConsumer forwards one DataProducer's messages to a single destination
// transport. Message order is preserved per DataConsumer but there is no
// cross-DataConsumer ordering guarantee: two DataConsumers of the same
// DataProducer may deliver the same message at different times.
type DataConsumer struct {
	id             string
	transportID    string
	dataProducerID string
	kind           DataConsumerType
	sctpParams     *SctpStreamParameters
	label          string
	protocol       string
	subchannels    []uint16

	paused         bool
	dataProducerPaused bool
	closed         bool
	appData        H

	messagesSent uint64
	bytesSent    uint64

	sink      DataConsumerSink
	listeners []DataConsumerListener
}

func NewDataConsumer(id, transportID, dataProducerID string, kind DataConsumerType, sctpParams *SctpStreamParameters, label, protocol string, paused, dataProducerPaused bool, subchannels []uint16, sink DataConsumerSink, appData H) *DataConsumer {
	return &DataConsumer{
		id:                 id,
		transportID:        transportID,
		dataProducerID:     dataProducerID,
		kind:               kind,
		sctpParams:         sctpParams,
		label:              label,
		protocol:           protocol,
		subchannels:        subchannels,
		paused:             paused,
		dataProducerPaused: dataProducerPaused,
		sink:               sink,
		appData:            appData,
	}
}

func (d *DataConsumer) Id() string             { return d.id }
func (d *DataConsumer) DataProducerId() string  { return d.dataProducerID }
func (d *DataConsumer) TransportId() string     { return d.transportID }
func (d *DataConsumer) Type() DataConsumerType  { return d.kind }

func (d *DataConsumer) Closed() bool {
	return d.closed
}

func (d *DataConsumer) AddListener(l DataConsumerListener) {
	d.listeners = append(d.listeners, l)
}

// ForwardMessage is called by the owning Router for every message received
// on the source DataProducer, unless the subscribed subchannel set excludes
// it.
func (d *DataConsumer) ForwardMessage(payload []byte, ppid SctpPayloadType, subchannel uint16) {
	if d.closed || d.paused || d.dataProducerPaused {
		return
	}
	if len(d.subchannels) > 0 {
		var allowed bool
		for _, s := range d.subchannels {
			if s == subchannel {
				allowed = true
				break
			}
		}
		if !allowed {
			return
		}
	}
	d.messagesSent++
	d.bytesSent += uint64(len(payload))
	d.sink.SendDataMessage(d.id, payload, ppid)
}

func (d *DataConsumer) SetSubchannels(subchannels []uint16) {
	d.subchannels = subchannels
}

// acceptsSubchannel reports whether this DataConsumer's subscription set
// includes subchannel. An empty subscription set accepts everything.
func (d *DataConsumer) acceptsSubchannel(subchannel uint16) bool {
	if len(d.subchannels) == 0 {
		return true
	}
	for _, s := range d.subchannels {
		if s == subchannel {
			return true
		}
	}
	return false
}

func (d *DataConsumer) Pause() error {
	if d.closed {
		return NewInvalidStateError("DataConsumer closed")
	}
	d.paused = true
	return nil
}

func (d *DataConsumer) Resume() error {
	if d.closed {
		return NewInvalidStateError("DataConsumer closed")
	}
	d.paused = false
	return nil
}

func (d *DataConsumer) SetDataProducerPaused() {
	d.dataProducerPaused = true
}

func (d *DataConsumer) SetDataProducerResumed() {
	d.dataProducerPaused = false
}

func (d *DataConsumer) Close() {
	if d.closed {
		return
	}
	d.closed = true
	listeners := append([]DataConsumerListener(nil), d.listeners...)

	for _, l := range listeners {
		l.OnDataConsumerClose(d)
	}
}

func (d *DataConsumer) NotifyDataProducerClosed() {
	if d.closed {
		return
	}
	d.closed = true
	listeners := append([]DataConsumerListener(nil), d.listeners...)

	for _, l := range listeners {
		l.OnDataConsumerProducerClose(d)
	}
}

func (d *DataConsumer) Dump() *DataConsumerDump {
	return &DataConsumerDump{
		Id:                   d.id,
		Paused:               d.paused,
		Subchannels:          d.subchannels,
		DataProducerId:       d.dataProducerID,
		Type:                 d.kind,
		SctpStreamParameters: d.sctpParams,
		Label:                d.label,
		Protocol:             d.protocol,
	}
}

func (d *DataConsumer) GetStats() *DataConsumerStat {
	return &DataConsumerStat{
		Type:         string(d.kind),
		Label:        d.label,
		Protocol:     d.protocol,
		MessagesSent: d.messagesSent,
		BytesSent:    d.bytesSent,
	}
}
