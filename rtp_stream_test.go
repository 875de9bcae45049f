package sfu

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
)

func TestRtpStream_ScoreDefaultsHealthy(t *testing.T) {
	s := NewRtpStream(MediaKind_Video, "video/VP8", RtpEncodingParameters{Ssrc: 1})
	assert.EqualValues(t, 10, s.Score())
}

func TestRtpStream_ReceiverReportLowersScore(t *testing.T) {
	s := NewRtpStream(MediaKind_Video, "video/VP8", RtpEncodingParameters{Ssrc: 1})
	s.ReceiverReport(255, 0, 100) // near-100% loss
	assert.Less(t, s.Score(), uint8(10))
}

func TestRtpStream_ScoreWindowCaps(t *testing.T) {
	s := NewRtpStream(MediaKind_Video, "video/VP8", RtpEncodingParameters{Ssrc: 1})
	for i := 0; i < scoreWindow*3; i++ {
		s.ReceiverReport(0, 0, 0)
	}
	assert.LessOrEqual(t, s.scores.Len(), scoreWindow)
}

func TestRtpStream_ReceivePacketTracksCycles(t *testing.T) {
	s := NewRtpStream(MediaKind_Video, "video/VP8", RtpEncodingParameters{Ssrc: 1})
	s.ReceivePacket(&rtp.Packet{Header: rtp.Header{SequenceNumber: 65530}})
	s.ReceivePacket(&rtp.Packet{Header: rtp.Header{SequenceNumber: 10}})
	assert.EqualValues(t, 1, s.cycles)
}

func TestRtpStream_DumpAndStatsDoNotDeadlock(t *testing.T) {
	s := NewRtpStream(MediaKind_Video, "video/VP8", RtpEncodingParameters{Ssrc: 42})
	s.ReceiverReport(0, 0, 0)

	dump := s.Dump()
	assert.EqualValues(t, 42, dump.Params.Ssrc)

	stats := s.Stats()
	assert.EqualValues(t, 42, stats.Ssrc)
}

func TestScoreFromLoss(t *testing.T) {
	assert.EqualValues(t, 10, scoreFromLoss(0, 0))
	assert.EqualValues(t, 1, scoreFromLoss(255, 0))
	assert.EqualValues(t, 9, scoreFromLoss(3, 0))
}
