package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWebRtcServerListener struct{ closed bool }

func (l *nopWebRtcServerListener) OnWebRtcServerClose(*WebRtcServer) { l.closed = true }

func newTestWebRtcServer(t *testing.T) *WebRtcServer {
	s, err := NewWebRtcServer("server1", &nopWebRtcServerListener{}, &WebRtcServerOptions{
		ListenInfos: []*TransportListenInfo{{Ip: "127.0.0.1"}},
	})
	require.NoError(t, err)
	return s
}

func TestNewWebRtcServer_RequiresListenInfos(t *testing.T) {
	_, err := NewWebRtcServer("server1", &nopWebRtcServerListener{}, &WebRtcServerOptions{})
	assert.Error(t, err)
}

func TestWebRtcServer_RegisterUnregisterTransport(t *testing.T) {
	s := newTestWebRtcServer(t)
	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), s, nil, r, &WebRtcTransportOptions{})

	s.RegisterTransport(wt)
	assert.Equal(t, 1, s.NumWebRtcTransports())

	dump := s.Dump()
	assert.Contains(t, dump.WebRtcTransportIds, "wt1")

	s.UnregisterTransport(wt)
	assert.Equal(t, 0, s.NumWebRtcTransports())
}

func TestWebRtcServer_CloseCascadesToTransports(t *testing.T) {
	l := &nopWebRtcServerListener{}
	s, err := NewWebRtcServer("server1", l, &WebRtcServerOptions{
		ListenInfos: []*TransportListenInfo{{Ip: "127.0.0.1"}},
	})
	require.NoError(t, err)

	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), s, nil, r, &WebRtcTransportOptions{})
	s.RegisterTransport(wt)

	s.Close()
	assert.True(t, wt.Closed())
	assert.True(t, l.closed)
	assert.True(t, s.Closed())

	l.closed = false
	s.Close()
	assert.False(t, l.closed, "second Close must not notify again")
}
