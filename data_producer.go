package sfu

// DataProducerListener receives the notifications a DataProducer emits
// toward its owning Router.
type DataProducerListener interface {
	OnDataProducerClose(dp *DataProducer)
	OnDataProducerPause(dp *DataProducer)
	OnDataProducerResume(dp *DataProducer)
}

// DataProducer represents an inbound SCTP or direct data channel source.
type DataProducer struct {
	id           string
	transportID  string
	kind         DataProducerType
	sctpParams   *SctpStreamParameters
	label        string
	protocol     string
	paused       bool
	closed       bool
	appData      H

	messagesReceived uint64
	bytesReceived    uint64

	listeners []DataProducerListener
}

func NewDataProducer(id, transportID string, kind DataProducerType, sctpParams *SctpStreamParameters, label, protocol string, paused bool, appData H) *DataProducer {
	return &DataProducer{
		id:          id,
		transportID: transportID,
		kind:        kind,
		sctpParams:  sctpParams,
		label:       label,
		protocol:    protocol,
		paused:      paused,
		appData:     appData,
	}
}

func (d *DataProducer) Id() string             { return d.id }
func (d *DataProducer) TransportId() string     { return d.transportID }
func (d *DataProducer) Type() DataProducerType  { return d.kind }
func (d *DataProducer) Label() string           { return d.label }
func (d *DataProducer) Protocol() string        { return d.protocol }

func (d *DataProducer) Paused() bool {
	return d.paused
}

func (d *DataProducer) Closed() bool {
	return d.closed
}

func (d *DataProducer) AddListener(l DataProducerListener) {
	d.listeners = append(d.listeners, l)
}

// ReceiveMessage is invoked by the owning Transport for every inbound SCTP
// or direct message. It reports whether the message was accepted: false
// while the producer is paused (counters are then not updated), true
// otherwise, after updating the counters.
func (d *DataProducer) ReceiveMessage(payload []byte) bool {
	if d.paused {
		return false
	}
	d.messagesReceived++
	d.bytesReceived += uint64(len(payload))
	return true
}

func (d *DataProducer) Pause() error {
	if d.closed {
		return NewInvalidStateError("DataProducer closed")
	}
	already := d.paused
	d.paused = true
	listeners := append([]DataProducerListener(nil), d.listeners...)

	if !already {
		for _, l := range listeners {
			l.OnDataProducerPause(d)
		}
	}
	return nil
}

func (d *DataProducer) Resume() error {
	if d.closed {
		return NewInvalidStateError("DataProducer closed")
	}
	wasPaused := d.paused
	d.paused = false
	listeners := append([]DataProducerListener(nil), d.listeners...)

	if wasPaused {
		for _, l := range listeners {
			l.OnDataProducerResume(d)
		}
	}
	return nil
}

func (d *DataProducer) Close() {
	if d.closed {
		return
	}
	d.closed = true
	listeners := append([]DataProducerListener(nil), d.listeners...)

	for _, l := range listeners {
		l.OnDataProducerClose(d)
	}
}

func (d *DataProducer) Dump() *DataProducerDump {
	return &DataProducerDump{
		Id:                   d.id,
		Paused:               d.paused,
		Type:                 d.kind,
		SctpStreamParameters: d.sctpParams,
		Label:                d.label,
		Protocol:             d.protocol,
	}
}

func (d *DataProducer) GetStats() *DataProducerStat {
	return &DataProducerStat{
		Type:             string(d.kind),
		Label:            d.label,
		Protocol:         d.protocol,
		MessagesReceived: d.messagesReceived,
		BytesReceived:    d.bytesReceived,
	}
}
