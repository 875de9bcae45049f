package sfu

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// transportListener receives notifications a Transport emits toward its
// owning Router: close, and new producer/consumer registration needed for
// Router-level index maintenance.
type transportListener interface {
	// OnTransportNew* register the entity in the Router's index, which is
	// the true scope ids must be unique in (§3: unique per Router, not per
	// Transport). Returning an error here (DUPLICATE_ID) must leave neither
	// the Router's nor the Transport's state mutated, so the Transport can
	// reject the creation request outright.
	OnTransportNewProducer(t *Transport, p *Producer) error
	OnTransportNewConsumer(t *Transport, c *Consumer) error
	OnTransportNewDataProducer(t *Transport, dp *DataProducer) error
	OnTransportNewDataConsumer(t *Transport, dc *DataConsumer) error
	// OnTransportProducerNewRtpStream fires the first time a packet arrives
	// for a given SSRC of p, so subscribed Consumers can initialize their
	// per-layer state before the first OnTransportProducerRtpPacketReceived
	// for that layer.
	OnTransportProducerNewRtpStream(t *Transport, p *Producer, stream *RtpStream, ssrc uint32)
	OnTransportProducerRtpPacketReceived(t *Transport, p *Producer, pkt *rtp.Packet, stream *RtpStream, isKeyFrame bool)
	// OnTransportProducerRtcpSenderReport propagates an inbound sender report
	// so Consumers can align playout timing against it.
	OnTransportProducerRtcpSenderReport(t *Transport, p *Producer, stream *RtpStream, first bool)
	OnTransportDataMessage(t *Transport, dp *DataProducer, payload []byte)
	OnTransportNeedWorstRemoteFractionLost(t *Transport, p *Producer, ssrc uint32) uint8
	OnTransportClose(t *Transport)
}

// transportDumper and transportConnector let dispatch code call Dump/Connect
// generically on a base *Transport: each concrete kind (WebRtcTransport,
// PlainTransport, ...) overrides Dump with its own wire shape, and Go has no
// virtual dispatch through an embedded pointer, so the concrete value
// registers itself here at construction time instead.
type transportDumper interface {
	Dump() *TransportDump
}

type transportConnector interface {
	Connect(opts TransportConnectOptions) error
}

// transportCloser lets a concrete transport kind run its own teardown when
// the shared Transport closes, for the same reason transportDumper exists:
// no virtual dispatch through an embedded pointer.
type transportCloser interface {
	onTransportClose()
}

// Transport is the shared base embedded by every concrete transport kind.
// It owns the entities created on it and the RTP/SCTP demux tables used to
// route inbound traffic to the right Producer or DataProducer.
type Transport struct {
	id       string
	kind     TransportType
	routerID string
	closed   bool
	appData  H

	driver TransportDriver
	decoder RtpPacketDecoder

	producers     map[string]*Producer
	consumers     map[string]*Consumer
	dataProducers map[string]*DataProducer
	dataConsumers map[string]*DataConsumer

	ssrcToConsumer    map[uint32]string
	rtxSsrcToConsumer map[uint32]string
	streamIdToDataConsumer map[uint16]string

	sctpAssociation *SctpAssociation
	nextStreamId    uint16

	dumper    transportDumper
	connector transportConnector
	closer    transportCloser

	listener transportListener

	traceEventTypes []TransportTraceEventType
}

func newTransport(id string, kind TransportType, routerID string, driver TransportDriver, listener transportListener, appData H) *Transport {
	return &Transport{
		id:                     id,
		kind:                   kind,
		routerID:               routerID,
		driver:                 driver,
		listener:               listener,
		appData:                appData,
		producers:              make(map[string]*Producer),
		consumers:              make(map[string]*Consumer),
		dataProducers:          make(map[string]*DataProducer),
		dataConsumers:          make(map[string]*DataConsumer),
		ssrcToConsumer:         make(map[uint32]string),
		rtxSsrcToConsumer:      make(map[uint32]string),
		streamIdToDataConsumer: make(map[uint16]string),
	}
}

func (t *Transport) Id() string        { return t.id }
func (t *Transport) Type() TransportType { return t.kind }
func (t *Transport) RouterId() string  { return t.routerID }

// SetDumper/SetConnector register the concrete transport's own Dump/Connect,
// called once right after construction by each newXTransport.
func (t *Transport) SetDumper(d transportDumper)       { t.dumper = d }
func (t *Transport) SetConnector(c transportConnector) { t.connector = c }
func (t *Transport) SetCloser(c transportCloser)       { t.closer = c }

// Dump defers to the concrete transport's own Dump when one registered
// itself via SetDumper, else falls back to the bare entity-id listing every
// transport kind shares.
func (t *Transport) Dump() *TransportDump {
	if t.dumper != nil {
		return t.dumper.Dump()
	}
	producerIds, consumerIds, dataProducerIds, dataConsumerIds := t.dumpIds()
	ssrcConsumerId, rtxSsrcConsumerId := t.dumpSsrcMaps()
	return &TransportDump{
		Id:                   t.id,
		Type:                 t.kind,
		ProducerIds:          producerIds,
		ConsumerIds:          consumerIds,
		MapSsrcConsumerId:    ssrcConsumerId,
		MapRtxSsrcConsumerId: rtxSsrcConsumerId,
		DataProducerIds:      dataProducerIds,
		DataConsumerIds:      dataConsumerIds,
	}
}

// Connect applies remote transport parameters via the concrete transport's
// own Connect. Transport kinds that don't support it (DirectTransport)
// leave connector nil and reject the call.
func (t *Transport) Connect(opts TransportConnectOptions) error {
	if t.connector == nil {
		return NewUnsupportedError("transport %q does not support connect", t.id)
	}
	return t.connector.Connect(opts)
}

func (t *Transport) Closed() bool {
	return t.closed
}

func (t *Transport) SetDecoder(d RtpPacketDecoder) {
	t.decoder = d
}

// SetDriver attaches the concrete socket/DTLS/SCTP implementation after
// construction: the process embedding this engine owns driver setup
// (dialing, certificate loading, ICE), which this module never does
// itself (see TransportDriver's doc comment in driver.go).
func (t *Transport) SetDriver(d TransportDriver) {
	t.driver = d
}

// Produce registers a newly negotiated Producer on this transport. No SSRC
// table is built for it; HandleRtpPacket finds the Producer by checking each
// registered Producer's declared encodings against the packet's SSRC.
func (t *Transport) Produce(p *Producer) error {
	if t.closed {
		return NewInvalidStateError("Transport closed")
	}
	if _, ok := t.producers[p.Id()]; ok {
		return NewDuplicateIdError("Producer with id %q already exists", p.Id())
	}
	t.producers[p.Id()] = p
	if err := t.listener.OnTransportNewProducer(t, p); err != nil {
		delete(t.producers, p.Id())
		return err
	}
	p.AddListener(t)
	return nil
}

// Consume registers a newly negotiated Consumer and wires its SSRC (and RTX
// SSRC, if any) into the outbound demux table used by HandleRtcpNack.
func (t *Transport) Consume(c *Consumer, rtxSsrc uint32) error {
	if t.closed {
		return NewInvalidStateError("Transport closed")
	}
	if _, ok := t.consumers[c.Id()]; ok {
		return NewDuplicateIdError("Consumer with id %q already exists", c.Id())
	}
	t.consumers[c.Id()] = c
	if len(c.RtpParameters().Encodings) > 0 {
		t.ssrcToConsumer[c.RtpParameters().Encodings[0].Ssrc] = c.Id()
	}
	if rtxSsrc != 0 {
		t.rtxSsrcToConsumer[rtxSsrc] = c.Id()
	}
	if err := t.listener.OnTransportNewConsumer(t, c); err != nil {
		delete(t.consumers, c.Id())
		if len(c.RtpParameters().Encodings) > 0 {
			delete(t.ssrcToConsumer, c.RtpParameters().Encodings[0].Ssrc)
		}
		if rtxSsrc != 0 {
			delete(t.rtxSsrcToConsumer, rtxSsrc)
		}
		return err
	}
	c.AddListener(t)
	return nil
}

func (t *Transport) ProduceData(dp *DataProducer) error {
	if t.closed {
		return NewInvalidStateError("Transport closed")
	}
	if _, ok := t.dataProducers[dp.Id()]; ok {
		return NewDuplicateIdError("DataProducer with id %q already exists", dp.Id())
	}
	t.dataProducers[dp.Id()] = dp
	if err := t.listener.OnTransportNewDataProducer(t, dp); err != nil {
		delete(t.dataProducers, dp.Id())
		return err
	}
	dp.AddListener(t)
	return nil
}

// allocateDataConsumerStreamId picks an outgoing SCTP stream id for a new
// DataConsumer: the transport's SctpAssociation if one is attached, else a
// simple monotonic counter, matching the way NumSctpStreams bounds the
// association when one exists.
func (t *Transport) allocateDataConsumerStreamId() (uint16, error) {
	if t.sctpAssociation != nil {
		return t.sctpAssociation.AllocateStreamId()
	}
	id := t.nextStreamId
	t.nextStreamId += 2
	return id, nil
}

func (t *Transport) ConsumeData(dc *DataConsumer, streamId uint16) error {
	if t.closed {
		return NewInvalidStateError("Transport closed")
	}
	if _, ok := t.dataConsumers[dc.Id()]; ok {
		return NewDuplicateIdError("DataConsumer with id %q already exists", dc.Id())
	}
	t.dataConsumers[dc.Id()] = dc
	t.streamIdToDataConsumer[streamId] = dc.Id()
	if err := t.listener.OnTransportNewDataConsumer(t, dc); err != nil {
		delete(t.dataConsumers, dc.Id())
		delete(t.streamIdToDataConsumer, streamId)
		return err
	}
	dc.AddListener(t)
	return nil
}

// HandleRtpPacket is invoked by the concrete driver for every inbound RTP
// packet. It resolves the destination Producer by SSRC — checking each
// encoding's negotiated RTX SSRC as well as its media SSRC, so a
// retransmission packet resolves to the same Producer/stream as the media
// it retransmits — and fans the packet up to the Router for delivery to
// matching Consumers.
func (t *Transport) HandleRtpPacket(pkt *rtp.Packet, isKeyFrame bool) {
	var target *Producer
	for _, p := range t.producers {
		if _, _, ok := p.matchEncoding(pkt.SSRC); ok {
			target = p
			break
		}
	}
	listener := t.listener

	if target == nil {
		return
	}
	stream, isNew, drop := target.ReceiveRtpPacket(pkt)
	if drop {
		return
	}
	if isNew {
		listener.OnTransportProducerNewRtpStream(t, target, stream, pkt.SSRC)
	}
	listener.OnTransportProducerRtpPacketReceived(t, target, pkt, stream, isKeyFrame)
}

// HandleRtcpNack is invoked by the concrete driver for every downstream
// generic NACK: it resolves the Consumer the feedback names — by media SSRC
// or by RTX SSRC, since some endpoints report loss against the
// retransmission stream directly — and answers each requested sequence
// number from that Consumer's retransmit history.
func (t *Transport) HandleRtcpNack(nack *rtcp.TransportLayerNack) {
	consumerID, ok := t.ssrcToConsumer[nack.MediaSSRC]
	if !ok {
		consumerID, ok = t.rtxSsrcToConsumer[nack.MediaSSRC]
	}
	if !ok {
		return
	}
	c, ok := t.consumers[consumerID]
	if !ok {
		return
	}
	driver := t.driver
	if driver == nil {
		return
	}
	for _, pair := range nack.Nacks {
		for _, seq := range pair.PacketList() {
			if pkt := c.Retransmit(seq); pkt != nil {
				_ = driver.SendRtp(consumerID, pkt)
			}
		}
	}
}

// HandleRtcpSenderReport is invoked by the concrete driver for every inbound
// RTCP sender report. It resolves the destination Producer by the report's
// SSRC and fans timing alignment up to the Router for delivery to matching
// Consumers.
func (t *Transport) HandleRtcpSenderReport(sr *rtcp.SenderReport) {
	var target *Producer
	for _, p := range t.producers {
		if _, _, ok := p.matchEncoding(sr.SSRC); ok {
			target = p
			break
		}
	}
	listener := t.listener

	if target == nil {
		return
	}
	stream, first := target.ReceiveRtcpSenderReport(sr)
	if stream == nil {
		return
	}
	listener.OnTransportProducerRtcpSenderReport(t, target, stream, first)
}

// HandleDataMessage is invoked by the concrete driver for every inbound SCTP
// or direct message, identified by the DataProducer's own stream id (SCTP)
// or by the direct channel's DataProducer id. The Router owns fan-out to
// that DataProducer's DataConsumers, since that index lives at Router scope.
func (t *Transport) HandleDataMessage(dataProducerID string, payload []byte) {
	dp, ok := t.dataProducers[dataProducerID]
	listener := t.listener
	if !ok {
		return
	}
	listener.OnTransportDataMessage(t, dp, payload)
}

// SendRtpPacket implements ConsumerSink by forwarding to the driver.
func (t *Transport) SendRtpPacket(consumerID string, pkt *rtp.Packet) {
	driver := t.driver
	if driver == nil {
		return
	}
	_ = driver.SendRtp(consumerID, pkt)
}

// SendDataMessage implements DataConsumerSink by forwarding to the driver.
func (t *Transport) SendDataMessage(dataConsumerID string, payload []byte, ppid SctpPayloadType) {
	driver := t.driver
	if driver == nil {
		return
	}
	_ = driver.SendSctp(dataConsumerID, payload, ppid)
}

// RequestKeyFrameFromProducer asks the concrete driver to send a PLI toward
// the sending endpoint for the given media SSRC.
func (t *Transport) RequestKeyFrameFromProducer(mediaSsrc uint32) {
	driver := t.driver
	if driver == nil {
		return
	}
	_ = driver.SendRtcp([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: mediaSsrc}})
}

// Close cascades to every entity this transport owns, then notifies the
// Router.
func (t *Transport) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.closer != nil {
		t.closer.onTransportClose()
	}
	producers := make([]*Producer, 0, len(t.producers))
	for _, p := range t.producers {
		producers = append(producers, p)
	}
	consumers := make([]*Consumer, 0, len(t.consumers))
	for _, c := range t.consumers {
		consumers = append(consumers, c)
	}
	dataProducers := make([]*DataProducer, 0, len(t.dataProducers))
	for _, dp := range t.dataProducers {
		dataProducers = append(dataProducers, dp)
	}
	dataConsumers := make([]*DataConsumer, 0, len(t.dataConsumers))
	for _, dc := range t.dataConsumers {
		dataConsumers = append(dataConsumers, dc)
	}
	driver := t.driver
	listener := t.listener

	for _, c := range consumers {
		c.Close()
	}
	for _, p := range producers {
		p.Close()
	}
	for _, dc := range dataConsumers {
		dc.Close()
	}
	for _, dp := range dataProducers {
		dp.Close()
	}
	if driver != nil {
		_ = driver.Close()
	}
	listener.OnTransportClose(t)
}

// -- ProducerListener / ConsumerListener / DataProducerListener /
// DataConsumerListener --
//
// Transport registers itself as an additional listener on every entity it
// creates (alongside the Router, which owns the cross-transport indices) so
// that closing an entity prunes it from the owning Transport's own maps and
// demux tables too, not just the Router's. Without this, Transport.Dump and
// the ssrc/stream-id lookup tables would keep reporting closed entities
// forever.

func (t *Transport) OnProducerScore(p *Producer, scores []ProducerScore) {}
func (t *Transport) OnProducerPause(p *Producer)                        {}
func (t *Transport) OnProducerResume(p *Producer)                       {}

func (t *Transport) OnProducerClose(p *Producer) {
	delete(t.producers, p.Id())
}

func (t *Transport) OnConsumerClose(c *Consumer)                      { t.removeConsumer(c) }
func (t *Transport) OnConsumerProducerClose(c *Consumer)              { t.removeConsumer(c) }
func (t *Transport) OnConsumerKeyFrameRequired(c *Consumer, spatialLayer int) {}

func (t *Transport) removeConsumer(c *Consumer) {
	delete(t.consumers, c.Id())
	encodings := c.RtpParameters().Encodings
	if len(encodings) == 0 {
		return
	}
	ssrc := encodings[0].Ssrc
	if t.ssrcToConsumer[ssrc] == c.Id() {
		delete(t.ssrcToConsumer, ssrc)
	}
	if encodings[0].Rtx != nil {
		if rtxSsrc := encodings[0].Rtx.Ssrc; t.rtxSsrcToConsumer[rtxSsrc] == c.Id() {
			delete(t.rtxSsrcToConsumer, rtxSsrc)
		}
	}
}

func (t *Transport) OnDataProducerPause(dp *DataProducer)  {}
func (t *Transport) OnDataProducerResume(dp *DataProducer) {}

func (t *Transport) OnDataProducerClose(dp *DataProducer) {
	delete(t.dataProducers, dp.Id())
}

func (t *Transport) OnDataConsumerClose(dc *DataConsumer)         { t.removeDataConsumer(dc) }
func (t *Transport) OnDataConsumerProducerClose(dc *DataConsumer) { t.removeDataConsumer(dc) }

func (t *Transport) removeDataConsumer(dc *DataConsumer) {
	delete(t.dataConsumers, dc.Id())
	for streamId, id := range t.streamIdToDataConsumer {
		if id == dc.Id() {
			delete(t.streamIdToDataConsumer, streamId)
			break
		}
	}
}

func (t *Transport) dumpIds() (producerIds, consumerIds, dataProducerIds, dataConsumerIds []string) {
	for id := range t.producers {
		producerIds = append(producerIds, id)
	}
	for id := range t.consumers {
		consumerIds = append(consumerIds, id)
	}
	for id := range t.dataProducers {
		dataProducerIds = append(dataProducerIds, id)
	}
	for id := range t.dataConsumers {
		dataConsumerIds = append(dataConsumerIds, id)
	}
	return
}

// dumpSsrcMaps reports the demux tables HandleRtcpNack resolves Consumers
// through.
func (t *Transport) dumpSsrcMaps() (ssrcConsumerId, rtxSsrcConsumerId []KeyValue[uint32, string]) {
	for ssrc, id := range t.ssrcToConsumer {
		ssrcConsumerId = append(ssrcConsumerId, KeyValue[uint32, string]{Key: ssrc, Value: id})
	}
	for ssrc, id := range t.rtxSsrcToConsumer {
		rtxSsrcConsumerId = append(rtxSsrcConsumerId, KeyValue[uint32, string]{Key: ssrc, Value: id})
	}
	return
}
