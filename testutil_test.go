package sfu

import "github.com/pion/rtp"

var testMediaCodecs = []*RtpCodecCapability{
	{
		Kind:      MediaKind_Audio,
		MimeType:  "audio/opus",
		ClockRate: 48000,
		Channels:  2,
	},
	{
		Kind:      MediaKind_Video,
		MimeType:  "video/VP8",
		ClockRate: 90000,
	},
}

// nopRouterListener discards Router close notifications; used by tests that
// construct a Router directly without a Worker.
type nopRouterListener struct{}

func (nopRouterListener) OnRouterClose(*Router) {}
func (nopRouterListener) PostTask(fn func())    { fn() }

func newTestRouter(t interface {
	Fatalf(format string, args ...any)
}) *Router {
	r, err := NewRouter("router1", testMediaCodecs, nopRouterListener{}, nil)
	if err != nil {
		t.Fatalf("NewRouter: %s", err)
	}
	return r
}

// recordingSink captures every packet a Consumer forwards to it, standing in
// for the owning Transport/driver.
type recordingSink struct {
	packets []recordedPacket
}

type recordedPacket struct {
	consumerID string
	pkt        *rtp.Packet
}

func (s *recordingSink) SendRtpPacket(consumerID string, pkt *rtp.Packet) {
	s.packets = append(s.packets, recordedPacket{consumerID: consumerID, pkt: pkt})
}
