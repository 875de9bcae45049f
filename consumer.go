package sfu

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// ConsumerSink is implemented by the owning Transport. Consumer hands it
// fully rewritten outbound RTP packets.
type ConsumerSink interface {
	SendRtpPacket(consumerID string, pkt *rtp.Packet)
}

// retransmitHistorySize bounds how many recently forwarded packets a
// Consumer keeps around to answer a downstream NACK without asking the
// Producer to resend: a lost packet reported this far back is treated as
// gone for good rather than retransmitted.
const retransmitHistorySize = 256

// ConsumerListener receives the notifications a Consumer emits toward its
// owning Router.
type ConsumerListener interface {
	OnConsumerClose(c *Consumer)
	OnConsumerProducerClose(c *Consumer)
	// OnConsumerKeyFrameRequired fires when c's target spatial layer moves
	// up: the new layer can only start forwarding once a keyframe is seen
	// on it, so the Router asks the source Producer's Transport for one.
	OnConsumerKeyFrameRequired(c *Consumer, spatialLayer int)
}

// Consumer forwards one Producer's media to a single destination transport,
// optionally reducing simulcast/SVC encodings to the single layer currently
// selected.
type Consumer struct {
	id          string
	transportID string
	producerID  string
	kind        MediaKind
	consumerType ConsumerType
	rtpParams   RtpParameters

	paused         bool
	producerPaused bool
	closed         bool
	priority       byte
	appData        H

	layers layerSelector

	ssrc       uint32
	rtxSsrc    uint32
	haveSeq    bool
	seqBase    uint16
	seqOut     uint16
	lastSeqOut uint16
	tsBase     uint32
	tsOut      uint32
	lastTsOut  uint32
	nextRtxSeq uint16

	sink      ConsumerSink
	listeners []ConsumerListener

	sendStream *RtpStream

	// history/historyOrder hold recently forwarded packets keyed by this
	// Consumer's own outbound sequence number, so Retransmit can answer a
	// downstream NACK. historyOrder tracks insertion order for eviction,
	// mirroring keyFrameDebouncer's expiry/pending pairing in producer.go.
	history      map[uint16]*rtp.Packet
	historyOrder []uint16

	// availableLayers records which of the source Producer's spatial layers
	// have been seen at least once, populated by NotifyProducerNewRtpStream.
	availableLayers map[int]struct{}

	// senderReportNtp/senderReportRtp cache the source Producer's most recent
	// RTCP sender report, forwarded by NotifyProducerRtcpSenderReport so an
	// embedding driver can align this Consumer's playout timing against it.
	senderReportNtp uint64
	senderReportRtp uint32
}

// NewConsumer builds a Consumer against consumerParams already negotiated by
// ortc.go's getConsumerRtpParameters/getPipeConsumerRtpParameters.
func NewConsumer(id, transportID, producerID string, kind MediaKind, consumerType ConsumerType, rtpParams RtpParameters, paused, producerPaused bool, preferredLayers *ConsumerLayers, sink ConsumerSink, appData H) *Consumer {
	c := &Consumer{
		id:              id,
		transportID:     transportID,
		producerID:      producerID,
		kind:            kind,
		consumerType:    consumerType,
		rtpParams:       rtpParams,
		paused:          paused,
		producerPaused:  producerPaused,
		priority:        1,
		appData:         appData,
		sink:            sink,
		availableLayers: make(map[int]struct{}),
	}
	if len(rtpParams.Encodings) > 0 {
		c.ssrc = rtpParams.Encodings[0].Ssrc
		if rtpParams.Encodings[0].Rtx != nil {
			c.rtxSsrc = rtpParams.Encodings[0].Rtx.Ssrc
		}
	}
	mimeType := ""
	if len(rtpParams.Codecs) > 0 {
		mimeType = rtpParams.Codecs[0].MimeType
	}
	c.sendStream = NewRtpStream(kind, mimeType, RtpEncodingParameters{Ssrc: c.ssrc})
	if preferredLayers != nil {
		c.layers.SetPreferred(preferredLayers)
	}
	return c
}

func (c *Consumer) Id() string          { return c.id }
func (c *Consumer) ProducerId() string  { return c.producerID }
func (c *Consumer) TransportId() string { return c.transportID }
func (c *Consumer) Kind() MediaKind     { return c.kind }
func (c *Consumer) Type() ConsumerType  { return c.consumerType }

func (c *Consumer) RtpParameters() RtpParameters {
	return c.rtpParams
}

func (c *Consumer) Paused() bool {
	return c.paused
}

func (c *Consumer) ProducerPaused() bool {
	return c.producerPaused
}

func (c *Consumer) Closed() bool {
	return c.closed
}

func (c *Consumer) AddListener(l ConsumerListener) {
	c.listeners = append(c.listeners, l)
}

func (c *Consumer) SetPriority(priority byte) {
	c.priority = priority
}

// SetPreferredLayers records the endpoint's requested spatial/temporal
// layers. For Simulcast/SVC consumers, raising the target layer requests a
// keyframe upstream, since MaybeSwitchAtKeyframe will only adopt the new
// layer once one arrives on it.
func (c *Consumer) SetPreferredLayers(layers *ConsumerLayers) {
	switchingUp := c.layers.SetPreferred(layers)
	simulcastOrSvc := c.consumerType == ConsumerSimulcast || c.consumerType == ConsumerSvc
	listeners := append([]ConsumerListener(nil), c.listeners...)

	if switchingUp && simulcastOrSvc {
		for _, l := range listeners {
			l.OnConsumerKeyFrameRequired(c, layers.SpatialLayer)
		}
	}
}

func (c *Consumer) CurrentLayers() *ConsumerLayers {
	return c.layers.Current()
}

// ForwardRtpPacket is called by the owning Router for every packet received
// on the source Producer's matching encoding. It rewrites SSRC, sequence
// number and timestamp onto the Consumer's own numbering line and, for
// Simulcast/SVC, drops packets that belong to a layer not currently
// selected.
func (c *Consumer) ForwardRtpPacket(pkt *rtp.Packet, spatialLayer int, isKeyFrame bool) {
	if c.closed || c.paused || c.producerPaused {
		return
	}

	var switched *ConsumerLayers
	if c.consumerType == ConsumerSimulcast || c.consumerType == ConsumerSvc {
		switched = c.layers.MaybeSwitchAtKeyframe(spatialLayer, isKeyFrame)
		if switched == nil {
			current := c.layers.Current()
			if current == nil || current.SpatialLayer != spatialLayer {
				return
			}
		}
	}

	out := *pkt
	out.Header.SSRC = c.ssrc

	switch {
	case !c.haveSeq:
		c.haveSeq = true
		c.seqBase, c.seqOut = pkt.SequenceNumber, 0
		c.tsBase, c.tsOut = pkt.Timestamp, 0
	case switched != nil:
		// A layer switch means a different source encoding, and so a
		// different RTP clock origin: rebase both lines so the outbound
		// numbering keeps counting up from where it left off instead of
		// jumping or going backward (§4.5).
		c.seqBase, c.seqOut = pkt.SequenceNumber, c.lastSeqOut+1
		c.tsBase, c.tsOut = pkt.Timestamp, c.lastTsOut+1
	}
	out.Header.SequenceNumber = pkt.SequenceNumber - c.seqBase + c.seqOut
	out.Header.Timestamp = pkt.Timestamp - c.tsBase + c.tsOut
	c.lastSeqOut = out.Header.SequenceNumber
	c.lastTsOut = out.Header.Timestamp

	c.sendStream.ReceivePacket(&out)
	if isKeyFrame {
		c.sendStream.RecordNack()
	}
	c.recordHistory(&out)
	c.sink.SendRtpPacket(c.id, &out)
}

// recordHistory keeps pkt in the retransmit buffer under its own outbound
// sequence number, evicting the oldest entry once the buffer is full.
func (c *Consumer) recordHistory(pkt *rtp.Packet) {
	if c.history == nil {
		c.history = make(map[uint16]*rtp.Packet, retransmitHistorySize)
	}
	seq := pkt.Header.SequenceNumber
	c.history[seq] = pkt
	c.historyOrder = append(c.historyOrder, seq)
	if len(c.historyOrder) > retransmitHistorySize {
		delete(c.history, c.historyOrder[0])
		c.historyOrder = c.historyOrder[1:]
	}
}

// Retransmit answers a downstream NACK for seq: it looks the packet up in
// the retransmit history and, when this Consumer negotiated an RTX
// encoding, rewrites it onto the RTX SSRC with the original sequence
// number prefixed to the payload per RFC 4588. Consumers with no RTX
// encoding resend the packet verbatim on the media SSRC. Returns nil if
// seq was never forwarded or has aged out of history.
func (c *Consumer) Retransmit(seq uint16) *rtp.Packet {
	orig, ok := c.history[seq]
	if !ok {
		return nil
	}
	out := *orig
	if c.rtxSsrc == 0 {
		return &out
	}
	out.Header.SSRC = c.rtxSsrc
	out.Header.SequenceNumber = c.nextRtxSeq
	c.nextRtxSeq++
	payload := make([]byte, 2+len(orig.Payload))
	payload[0] = byte(seq >> 8)
	payload[1] = byte(seq)
	copy(payload[2:], orig.Payload)
	out.Payload = payload
	return &out
}

// RequestKeyFrame builds a PLI targeting the Producer's media SSRC. The
// owning Transport is responsible for actually sending it upstream.
func (c *Consumer) RequestKeyFrame(mediaSsrc uint32) rtcp.Packet {
	c.sendStream.RecordPli()
	return &rtcp.PictureLossIndication{MediaSSRC: mediaSsrc}
}

func (c *Consumer) Pause() error {
	if c.closed {
		return NewInvalidStateError("Consumer closed")
	}
	c.paused = true
	return nil
}

func (c *Consumer) Resume() error {
	if c.closed {
		return NewInvalidStateError("Consumer closed")
	}
	c.paused = false
	return nil
}

// SetProducerPaused/SetProducerResumed are invoked by the owning Router when
// the source Producer pauses or resumes.
func (c *Consumer) SetProducerPaused() {
	c.producerPaused = true
}

func (c *Consumer) SetProducerResumed() {
	c.producerPaused = false
}

// NotifyProducerNewRtpStream marks spatialLayer as available: the source
// Producer just received its first packet for the encoding at that layer.
func (c *Consumer) NotifyProducerNewRtpStream(spatialLayer int) {
	c.availableLayers[spatialLayer] = struct{}{}
}

// AvailableLayers reports which spatial layers have been seen so far.
func (c *Consumer) AvailableLayers() []int {
	out := make([]int, 0, len(c.availableLayers))
	for l := range c.availableLayers {
		out = append(out, l)
	}
	return out
}

// NotifyProducerRtcpSenderReport caches the source Producer's latest sender
// report timing for the embedding driver to use for playout alignment.
func (c *Consumer) NotifyProducerRtcpSenderReport(ntpTime uint64, rtpTime uint32) {
	c.senderReportNtp = ntpTime
	c.senderReportRtp = rtpTime
}

// Score reports the Consumer's outbound stream health alongside the
// Producer's current per-encoding scores, as required by the "score" event.
func (c *Consumer) Score(producerScores []ProducerScore) ConsumerScore {
	producerScore := uint8(0)
	raw := make([]uint8, 0, len(producerScores))
	for _, s := range producerScores {
		raw = append(raw, s.Score)
		if s.Score > producerScore {
			producerScore = s.Score
		}
	}
	return ConsumerScore{
		Score:          c.sendStream.Score(),
		ProducerScore:  producerScore,
		ProducerScores: raw,
	}
}

func (c *Consumer) Close() {
	if c.closed {
		return
	}
	c.closed = true
	listeners := append([]ConsumerListener(nil), c.listeners...)

	for _, l := range listeners {
		l.OnConsumerClose(c)
	}
}

// NotifyProducerClosed tears the Consumer down when its source Producer
// closes: a Consumer cannot outlive the Producer it consumes.
func (c *Consumer) NotifyProducerClosed() {
	if c.closed {
		return
	}
	c.closed = true
	listeners := append([]ConsumerListener(nil), c.listeners...)

	for _, l := range listeners {
		l.OnConsumerProducerClose(c)
	}
}

func (c *Consumer) Dump() *ConsumerDump {
	payloadTypes := make([]byte, 0, len(c.rtpParams.Codecs))
	for _, codec := range c.rtpParams.Codecs {
		payloadTypes = append(payloadTypes, codec.PayloadType)
	}

	layers := make([]int, 0, len(c.availableLayers))
	for l := range c.availableLayers {
		layers = append(layers, l)
	}

	return &ConsumerDump{
		Id:                         c.id,
		ProducerId:                 c.producerID,
		Kind:                       c.kind,
		Type:                       c.consumerType,
		RtpParameters:              c.rtpParams,
		SupportedCodecPayloadTypes: payloadTypes,
		Paused:                     c.paused,
		ProducerPaused:             c.producerPaused,
		Priority:                   c.priority,
		PreferredLayers:            c.layers.Preferred(),
		CurrentLayers:              c.layers.Current(),
		AvailableLayers:            layers,
	}
}

func (c *Consumer) GetStats() *RtpStreamSendStats {
	stats := c.sendStream.Stats()
	return &RtpStreamSendStats{
		BaseRtpStreamStats: stats.BaseRtpStreamStats,
		Type:               "outbound-rtp",
		PacketCount:         stats.PacketCount,
		ByteCount:           stats.ByteCount,
	}
}
