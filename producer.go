package sfu

import (
	"time"

	"github.com/gammazero/deque"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// KeyFrameCoalesceMs is the debounce window for upstream keyframe requests:
// a request for an SSRC that already got one within this many milliseconds
// is dropped rather than re-sent, so a Consumer layer switch and a
// simultaneous packet-loss-driven PLI don't double up on the wire.
const KeyFrameCoalesceMs = 250

// keyFrameRequest is one entry in keyFrameDebouncer's FIFO: the SSRC a
// request was allowed for, and when its coalescing window expires.
type keyFrameRequest struct {
	ssrc    uint32
	expires time.Time
}

// keyFrameDebouncer tracks, per SSRC, whether an upstream keyframe request
// was sent recently enough that a new one should be coalesced away. The
// deque holds entries in expiry order so stale ones can be evicted from the
// front in O(1) amortized without scanning the whole set.
type keyFrameDebouncer struct {
	pending deque.Deque
	expiry  map[uint32]time.Time
}

func newKeyFrameDebouncer() *keyFrameDebouncer {
	return &keyFrameDebouncer{expiry: make(map[uint32]time.Time)}
}

// Allow reports whether an upstream keyframe request for ssrc should be
// sent now, recording it against the coalescing window if so.
func (d *keyFrameDebouncer) Allow(ssrc uint32) bool {
	now := time.Now()
	for d.pending.Len() > 0 && !d.pending.Front().(keyFrameRequest).expires.After(now) {
		expired := d.pending.PopFront().(keyFrameRequest)
		if d.expiry[expired.ssrc] == expired.expires {
			delete(d.expiry, expired.ssrc)
		}
	}

	if until, ok := d.expiry[ssrc]; ok && until.After(now) {
		return false
	}
	expires := now.Add(KeyFrameCoalesceMs * time.Millisecond)
	d.expiry[ssrc] = expires
	d.pending.PushBack(keyFrameRequest{ssrc: ssrc, expires: expires})
	return true
}

// ProducerListener receives the notifications a Producer emits toward its
// owning Router: score changes, pause/resume, and close. Router implements
// this to keep its index maps and RtpObserver fan-out in sync without the
// reflection-based event bus the older client SDK used.
type ProducerListener interface {
	OnProducerScore(p *Producer, scores []ProducerScore)
	OnProducerClose(p *Producer)
	OnProducerPause(p *Producer)
	OnProducerResume(p *Producer)
}

// maxTrackedSsrcs bounds the per-Producer SSRC table: a single encoding line
// legitimately rotates SSRC at most a handful of times (simulcast switches,
// RTX pairing); anything past this points at a misbehaving or attacking
// endpoint, not real traffic.
const maxTrackedSsrcs = 32

// Producer represents an inbound RTP source associated with one transport.
// It owns one RtpStream per negotiated encoding and fans received packets out
// to whichever Consumers are attached by way of its owning Router.
type Producer struct {
	id         string
	transportID string
	kind       MediaKind
	rtpParams  RtpParameters
	rtpMapping RtpMapping
	paused     bool
	closed     bool
	appData    H

	streams   *lru.Cache[uint32, *RtpStream]
	listeners []ProducerListener

	keyFrameRequestDelay uint32
	keyFrameDebounce     *keyFrameDebouncer

	// audioLevelExtID is the RTP header extension id this Producer negotiated
	// for "urn:ietf:params:rtp-hdrext:ssrc-audio-level", or 0 if it didn't
	// negotiate one. Cached at creation since it's looked up on every packet
	// by the Router's RtpObserver fan-out.
	audioLevelExtID int
}

// NewProducer builds a Producer ready to receive packets. It does no codec
// validation of its own; Router.Produce maps and checks the RTP parameters
// against the Router's capabilities before calling it. kind/mapping/type are derived
// by the caller (Router.produce) via ortc.go's negotiation helpers.
func NewProducer(id, transportID string, kind MediaKind, rtpParams RtpParameters, rtpMapping RtpMapping, paused bool, appData H) (*Producer, error) {
	streams, err := lru.New[uint32, *RtpStream](maxTrackedSsrcs)
	if err != nil {
		return nil, newError(ErrFatal, "failed to allocate ssrc table: %s", err)
	}
	p := &Producer{
		id:               id,
		transportID:      transportID,
		kind:             kind,
		rtpParams:        rtpParams,
		rtpMapping:       rtpMapping,
		paused:           paused,
		appData:          appData,
		streams:          streams,
		keyFrameDebounce: newKeyFrameDebouncer(),
	}
	for _, ext := range rtpParams.HeaderExtensions {
		if ext.Uri == "urn:ietf:params:rtp-hdrext:ssrc-audio-level" {
			p.audioLevelExtID = ext.Id
			break
		}
	}
	return p, nil
}

func (p *Producer) Id() string          { return p.id }
func (p *Producer) TransportId() string { return p.transportID }
func (p *Producer) Kind() MediaKind     { return p.kind }

// AudioLevelExtensionId returns the negotiated RTP header extension id for
// "ssrc-audio-level", or 0 if the Producer didn't negotiate one.
func (p *Producer) AudioLevelExtensionId() int { return p.audioLevelExtID }

func (p *Producer) RtpParameters() RtpParameters {
	return p.rtpParams
}

func (p *Producer) Type() ProducerType {
	switch {
	case len(p.rtpParams.Encodings) > 1:
		return ProducerSimulcast
	default:
		return ProducerSimple
	}
}

func (p *Producer) Paused() bool {
	return p.paused
}

func (p *Producer) Closed() bool {
	return p.closed
}

func (p *Producer) AddListener(l ProducerListener) {
	p.listeners = append(p.listeners, l)
}

// streamFor returns the stream for encoding, creating it the first time this
// SSRC is seen, and reports whether it was just created. Streams are never
// reassigned to a different encoding once created: spec's new-stream-once
// rule.
func (p *Producer) streamFor(encoding RtpEncodingParameters) (*RtpStream, bool) {
	if s, ok := p.streams.Get(encoding.Ssrc); ok {
		return s, false
	}
	mimeType := ""
	if len(p.rtpParams.Codecs) > 0 {
		mimeType = p.rtpParams.Codecs[0].MimeType
	}
	s := NewRtpStream(p.kind, mimeType, encoding)
	p.streams.Add(encoding.Ssrc, s)
	return s, true
}

// matchEncoding returns the declared encoding whose Ssrc or Rtx.Ssrc equals
// ssrc, and whether the match was on the RTX SSRC rather than the media
// SSRC, or false if ssrc wasn't negotiated for this Producer at all.
func (p *Producer) matchEncoding(ssrc uint32) (encoding RtpEncodingParameters, isRtx bool, found bool) {
	for _, e := range p.rtpParams.Encodings {
		if e.Ssrc == ssrc {
			return e, false, true
		}
	}
	for _, e := range p.rtpParams.Encodings {
		if e.Rtx != nil && e.Rtx.Ssrc == ssrc {
			return e, true, true
		}
	}
	return RtpEncodingParameters{}, false, false
}

// ReceiveRtpPacket is invoked by the owning Transport for every inbound
// packet. It returns the stream the packet belongs to, whether that stream
// was just created by this packet, and whether the packet should be dropped
// (producer paused, or its SSRC doesn't match any declared encoding or RTX
// SSRC). Packets arriving on an encoding's negotiated RTX SSRC are unwrapped
// back into the media packet they retransmit before being folded into the
// same stream as the media SSRC, per §3's data model.
func (p *Producer) ReceiveRtpPacket(pkt *rtp.Packet) (stream *RtpStream, isNew bool, drop bool) {
	paused := p.paused

	if paused {
		return nil, false, true
	}

	encoding, isRtx, found := p.matchEncoding(pkt.SSRC)
	if !found {
		return nil, false, true
	}
	stream, isNew = p.streamFor(encoding)
	if isRtx {
		unwrapped, ok := unwrapRtxPacket(pkt, encoding.Ssrc)
		if !ok {
			return stream, isNew, true
		}
		stream.ReceivePacket(unwrapped)
		return stream, isNew, false
	}
	stream.ReceivePacket(pkt)
	return stream, isNew, false
}

// unwrapRtxPacket reconstructs the original media packet an RFC 4588
// retransmission carries: the original sequence number is the first two
// payload bytes in network byte order, the remaining payload is the media
// payload unchanged, and mediaSsrc replaces the RTX stream's own SSRC.
// Reports false for a payload too short to carry the sequence-number
// prefix.
func unwrapRtxPacket(pkt *rtp.Packet, mediaSsrc uint32) (*rtp.Packet, bool) {
	if len(pkt.Payload) < 2 {
		return nil, false
	}
	out := *pkt
	out.Header.SSRC = mediaSsrc
	out.Header.SequenceNumber = uint16(pkt.Payload[0])<<8 | uint16(pkt.Payload[1])
	out.Payload = pkt.Payload[2:]
	return &out, true
}

// ReceiveRtcpSenderReport folds an inbound RTCP sender report into the
// stream it names, for Consumers to align playout timing against. Reports
// for an SSRC this Producer has no stream for yet are ignored, since a
// sender report can't itself instantiate a new encoding.
func (p *Producer) ReceiveRtcpSenderReport(sr *rtcp.SenderReport) (*RtpStream, bool) {
	stream, ok := p.streams.Get(sr.SSRC)
	if !ok {
		return nil, false
	}
	first := stream.ReceiveSenderReport(sr.NTPTime, sr.RTPTime)
	return stream, first
}

// ShouldSendKeyFrameRequest reports whether an upstream keyframe request for
// ssrc should actually be sent now, per KEYFRAME_COALESCE_MS: a duplicate
// request for the same SSRC within the coalescing window is suppressed.
func (p *Producer) ShouldSendKeyFrameRequest(ssrc uint32) bool {
	return p.keyFrameDebounce.Allow(ssrc)
}

// Scores returns the current score of every tracked RTP stream, ordered by
// encoding index as they appear in RtpParameters.Encodings.
func (p *Producer) Scores() []ProducerScore {
	scores := make([]ProducerScore, 0, len(p.rtpParams.Encodings))
	for i, encoding := range p.rtpParams.Encodings {
		stream, ok := p.streams.Get(encoding.Ssrc)
		score := uint8(0)
		if ok {
			score = stream.Score()
		}
		scores = append(scores, ProducerScore{
			EncodingIdx: uint32(i),
			Rid:         encoding.Rid,
			Ssrc:        encoding.Ssrc,
			Score:       score,
		})
	}
	return scores
}

func (p *Producer) notifyScore() {
	scores := p.Scores()
	listeners := append([]ProducerListener(nil), p.listeners...)
	for _, l := range listeners {
		l.OnProducerScore(p, scores)
	}
}

// ReceiverReport folds in RTCP feedback for ssrc's stream and notifies
// listeners of the resulting score.
func (p *Producer) ReceiverReport(ssrc uint32, fractionLost uint8, jitter uint32, cumulativeLost uint64) {
	if stream, ok := p.streams.Get(ssrc); ok {
		stream.ReceiverReport(fractionLost, jitter, cumulativeLost)
		p.notifyScore()
	}
}

func (p *Producer) Pause() error {
	if p.closed {
		return NewInvalidStateError("Producer closed")
	}
	already := p.paused
	p.paused = true
	listeners := append([]ProducerListener(nil), p.listeners...)

	if !already {
		for _, l := range listeners {
			l.OnProducerPause(p)
		}
	}
	return nil
}

func (p *Producer) Resume() error {
	if p.closed {
		return NewInvalidStateError("Producer closed")
	}
	wasPaused := p.paused
	p.paused = false
	listeners := append([]ProducerListener(nil), p.listeners...)

	if wasPaused {
		for _, l := range listeners {
			l.OnProducerResume(p)
		}
	}
	return nil
}

func (p *Producer) Close() {
	if p.closed {
		return
	}
	p.closed = true
	listeners := append([]ProducerListener(nil), p.listeners...)

	for _, l := range listeners {
		l.OnProducerClose(p)
	}
}

func (p *Producer) Dump() *ProducerDump {
	dump := &ProducerDump{
		Id:            p.id,
		Kind:          p.kind,
		Type:          p.Type(),
		RtpParameters: p.rtpParams,
		RtpMapping:    p.rtpMapping,
		Paused:        p.paused,
		TraceEventTypes: []ProducerTraceEventType{
			ProducerTraceEventRtp,
			ProducerTraceEventKeyframe,
			ProducerTraceEventPli,
			ProducerTraceEventFir,
		},
	}
	for _, ssrc := range p.streams.Keys() {
		if stream, ok := p.streams.Peek(ssrc); ok {
			dump.RtpStreams = append(dump.RtpStreams, stream.Dump())
		}
	}
	return dump
}

func (p *Producer) GetStats() []*RtpStreamRecvStats {
	var stats []*RtpStreamRecvStats
	for _, ssrc := range p.streams.Keys() {
		if stream, ok := p.streams.Peek(ssrc); ok {
			stats = append(stats, stream.Stats())
		}
	}
	return stats
}
