package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTransport_ConnectRejectedInComediaMode(t *testing.T) {
	r := newTestRouter(t)
	pt := newPlainTransport("plain1", r.Id(), nil, r, &PlainTransportOptions{Comedia: true})

	err := pt.Connect(TransportConnectOptions{Ip: "203.0.113.1"})
	assert.Error(t, err)
}

func TestPlainTransport_ConnectSetsTuple(t *testing.T) {
	r := newTestRouter(t)
	pt := newPlainTransport("plain1", r.Id(), nil, r, &PlainTransportOptions{})

	port := uint16(7000)
	require.NoError(t, pt.Connect(TransportConnectOptions{Ip: "203.0.113.5", Port: &port}))

	dump := pt.Dump()
	assert.Equal(t, "203.0.113.5", dump.PlainTransportDump.Tuple.RemoteIp)
}

func TestPlainTransport_SetRemoteTupleForComedia(t *testing.T) {
	r := newTestRouter(t)
	pt := newPlainTransport("plain1", r.Id(), nil, r, &PlainTransportOptions{Comedia: true})

	pt.SetRemoteTuple(TransportTuple{RemoteIp: "198.51.100.2", RemotePort: 4000})

	dump := pt.Dump()
	assert.Equal(t, "198.51.100.2", dump.PlainTransportDump.Tuple.RemoteIp)
	assert.EqualValues(t, 4000, dump.PlainTransportDump.Tuple.RemotePort)
}

func TestPlainTransport_RtcpMuxDefaultsTrue(t *testing.T) {
	r := newTestRouter(t)
	pt := newPlainTransport("plain1", r.Id(), nil, r, &PlainTransportOptions{})
	assert.True(t, pt.rtcpMux)
}
