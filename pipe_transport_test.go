package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeTransport_PairLinksBothSides(t *testing.T) {
	r := newTestRouter(t)
	a := newPipeTransport("pipe-a", r.Id(), nil, r, &PipeTransportOptions{})
	b := newPipeTransport("pipe-b", r.Id(), nil, r, &PipeTransportOptions{})

	a.Pair(b)

	assert.Same(t, b, a.peer)
	assert.Same(t, a, b.peer)
}

func TestPipeTransport_ConnectSetsRemoteTuple(t *testing.T) {
	r := newTestRouter(t)
	pt := newPipeTransport("pipe-a", r.Id(), nil, r, &PipeTransportOptions{})

	port := uint16(5000)
	require.NoError(t, pt.Connect(TransportConnectOptions{Ip: "203.0.113.1", Port: &port}))

	dump := pt.Dump()
	assert.Equal(t, "203.0.113.1", dump.PipeTransportDump.Tuple.RemoteIp)
	assert.EqualValues(t, 5000, dump.PipeTransportDump.Tuple.RemotePort)
}

func TestPipeTransport_DumpReportsRtx(t *testing.T) {
	r := newTestRouter(t)
	pt := newPipeTransport("pipe-a", r.Id(), nil, r, &PipeTransportOptions{EnableRtx: true})

	assert.True(t, pt.Dump().PipeTransportDump.Rtx)
}
