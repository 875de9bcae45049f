package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebRtcTransport_GeneratesIceParameters(t *testing.T) {
	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), nil, nil, r, &WebRtcTransportOptions{})

	ice := wt.IceParameters()
	assert.NotEmpty(t, ice.UsernameFragment)
	assert.NotEmpty(t, ice.Password)
	assert.Equal(t, IceStateNew, wt.IceState())
}

func TestWebRtcTransport_ConnectRequiresDtlsParameters(t *testing.T) {
	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), nil, nil, r, &WebRtcTransportOptions{})

	assert.Error(t, wt.Connect(TransportConnectOptions{}))

	err := wt.Connect(TransportConnectOptions{DtlsParameters: &DtlsParameters{Role: DtlsRoleClient}})
	assert.NoError(t, err)
	assert.Equal(t, DtlsStateConnecting, wt.dtlsState)
}

func TestWebRtcTransport_SetIceStateAndSelectedTuple(t *testing.T) {
	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), nil, nil, r, &WebRtcTransportOptions{})

	tuple := &TransportTuple{RemoteIp: "203.0.113.9", RemotePort: 9000}
	wt.SetIceState(IceStateConnected, tuple)

	dump := wt.Dump()
	assert.Equal(t, IceStateConnected, dump.WebRtcTransportDump.IceState)
	assert.Same(t, tuple, dump.WebRtcTransportDump.IceSelectedTuple)
}

// TestWebRtcTransport_CloseUnregistersFromServer covers the Transport-closes-
// independently direction: a transport.close request, or a cascade from
// Router.Close(), must purge the transport's entry from its shared
// WebRtcServer, not just the reverse (WebRtcServer.Close() cascading to its
// transports).
func TestWebRtcTransport_CloseUnregistersFromServer(t *testing.T) {
	s := newTestWebRtcServer(t)
	r := newTestRouter(t)
	wt := newWebRtcTransport("wt1", r.Id(), s, nil, r, &WebRtcTransportOptions{})
	s.RegisterTransport(wt)
	require.Equal(t, 1, s.NumWebRtcTransports())

	wt.Transport.Close()

	assert.Equal(t, 0, s.NumWebRtcTransports(), "closing the transport must unregister it from its server")
	assert.False(t, s.Closed(), "the server itself must stay open")
}
