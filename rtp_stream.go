package sfu

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/pion/rtp"
)

// RtpStreamDump reports a single SSRC's current health as seen by its
// owning Producer.
type RtpStreamDump struct {
	Params      RtpEncodingParameters `json:"params,omitempty"`
	Score       uint8                 `json:"score"`
	PacketCount uint64                `json:"packetCount"`
	ByteCount   uint64                `json:"byteCount"`
}

// scoreSample is one periodic score observation, kept in a rolling window so
// RtpStream.Score() can report a smoothed value instead of a single noisy
// reading.
type scoreSample struct {
	score uint8
	at    time.Time
}

const scoreWindow = 15

// RtpStream tracks a single inbound RTP SSRC belonging to a Producer: the
// encoding it was negotiated under, sequence/timestamp continuity, and a
// rolling health score derived from loss and jitter. A stream is created the
// first time a packet for its SSRC arrives and never migrates to another
// SSRC: spec's "new stream once" rule.
type RtpStream struct {
	mu sync.Mutex

	params RtpEncodingParameters
	kind   MediaKind
	mime   string

	packetCount uint64
	byteCount   uint64
	jitter      uint32

	maxSeq       uint16
	cycles       uint32
	haveSeq      bool
	lastTimeMs   int64
	transitDelta int64

	packetsLost     uint64
	packetsRepaired uint64
	pliCount        uint64
	firCount        uint64
	nackCount       uint64

	haveSenderReport bool
	ntpTime          uint64
	rtpTime          uint32

	scores deque.Deque
}

// NewRtpStream creates a stream for one negotiated encoding.
func NewRtpStream(kind MediaKind, mime string, params RtpEncodingParameters) *RtpStream {
	s := &RtpStream{
		kind:   kind,
		mime:   mime,
		params: params,
	}
	return s
}

// ReceivePacket updates continuity bookkeeping for one received RTP packet.
// It never mutates the packet; producers decide separately whether to
// forward it.
func (s *RtpStream) ReceivePacket(pkt *rtp.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packetCount++
	s.byteCount += uint64(len(pkt.Payload))

	seq := pkt.SequenceNumber
	if !s.haveSeq {
		s.haveSeq = true
		s.maxSeq = seq
		return
	}
	delta := int32(seq) - int32(s.maxSeq)
	switch {
	case delta > 0:
		if seq < s.maxSeq {
			s.cycles++
		}
		s.maxSeq = seq
	case delta < -3000:
		// Large negative jump: sequence number wrapped forward.
		s.cycles++
		s.maxSeq = seq
	default:
		// Out-of-order or duplicate packet within the reorder window; no
		// continuity state change.
	}
}

// ReceiverReport folds in stats carried by an RTCP receiver report: loss
// fraction, jitter, the numbers this module cannot derive from the media
// path alone.
func (s *RtpStream) ReceiverReport(fractionLost uint8, jitter uint32, cumulativeLost uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jitter = jitter
	s.packetsLost = cumulativeLost
	s.recordScore(scoreFromLoss(fractionLost, jitter))
}

func (s *RtpStream) recordScore(score uint8) {
	if s.scores.Len() == scoreWindow {
		s.scores.PopFront()
	}
	s.scores.PushBack(scoreSample{score: score, at: time.Now()})
}

// scoreFromLoss maps a fractional-loss/jitter pair onto mediasoup's 0-10
// producer score scale: 10 is pristine, 0 is unusable.
func scoreFromLoss(fractionLost uint8, jitter uint32) uint8 {
	lossPct := float64(fractionLost) / 256 * 100
	score := 10.0
	switch {
	case lossPct > 20:
		score = 1
	case lossPct > 10:
		score = 4
	case lossPct > 4:
		score = 7
	case lossPct > 1:
		score = 9
	}
	if jitter > 100 {
		score -= 2
	}
	if score < 0 {
		score = 0
	}
	return uint8(score)
}

// Score returns the average of the rolling observation window, or 10 if no
// receiver report has arrived yet (a freshly created stream is assumed
// healthy until proven otherwise).
func (s *RtpStream) Score() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

// scoreLocked is Score()'s body, callable from methods that already hold
// s.mu (sync.Mutex isn't reentrant, so Dump/Stats must use this, not Score).
func (s *RtpStream) scoreLocked() uint8 {
	if s.scores.Len() == 0 {
		return 10
	}
	var total int
	for i := 0; i < s.scores.Len(); i++ {
		total += int(s.scores.At(i).(scoreSample).score)
	}
	return uint8(total / s.scores.Len())
}

// ReceiveSenderReport records the NTP/RTP timestamp pair an RTCP sender
// report carries for this stream's SSRC, for Consumers to align playout
// timing against. It reports whether this is the first sender report seen,
// since only the first establishes the NTP-to-RTP mapping a receiver needs.
func (s *RtpStream) ReceiveSenderReport(ntpTime uint64, rtpTime uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := !s.haveSenderReport
	s.haveSenderReport = true
	s.ntpTime = ntpTime
	s.rtpTime = rtpTime
	return first
}

// SenderReportTiming returns the NTP/RTP timestamp pair from the most recent
// sender report, or zero values if none has arrived yet.
func (s *RtpStream) SenderReportTiming() (ntpTime uint64, rtpTime uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ntpTime, s.rtpTime
}

// RecordPli/RecordFir count outbound keyframe requests for stats purposes.
func (s *RtpStream) RecordPli() {
	s.mu.Lock()
	s.pliCount++
	s.mu.Unlock()
}

func (s *RtpStream) RecordFir() {
	s.mu.Lock()
	s.firCount++
	s.mu.Unlock()
}

func (s *RtpStream) RecordNack() {
	s.mu.Lock()
	s.nackCount++
	s.mu.Unlock()
}

// Dump renders the stream for Producer.Dump().
func (s *RtpStream) Dump() *RtpStreamDump {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &RtpStreamDump{
		Params:      s.params,
		Score:       s.scoreLocked(),
		PacketCount: s.packetCount,
		ByteCount:   s.byteCount,
	}
}

// Stats renders the stream for Producer.GetStats().
func (s *RtpStream) Stats() *RtpStreamRecvStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &RtpStreamRecvStats{
		BaseRtpStreamStats: BaseRtpStreamStats{
			Timestamp:       uint64(time.Now().UnixMilli()),
			Ssrc:            s.params.Ssrc,
			Kind:            s.kind,
			MimeType:        s.mime,
			PacketsLost:     s.packetsLost,
			PacketsRepaired: s.packetsRepaired,
			NackCount:       s.nackCount,
			PliCount:        s.pliCount,
			FirCount:        s.firCount,
			Score:           s.scoreLocked(),
			Rid:             s.params.Rid,
		},
		Type:        "inbound-rtp",
		Jitter:      s.jitter,
		PacketCount: s.packetCount,
		ByteCount:   s.byteCount,
	}
}
