package sfu

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcsfu/core/netcodec"
)

func newTestPipeCodec() netcodec.Codec {
	serverConn, _ := net.Pipe()
	return netcodec.NewNetStringCodec(serverConn, serverConn)
}

func newTestWorker(t *testing.T) *Worker {
	w, err := NewWorker(newTestPipeCodec(), WorkerSettings{})
	require.NoError(t, err)
	return w
}

// requestData marshals method plus an arbitrary payload into the single
// JSON object dispatchWorkerMethod/dispatchRouterMethod expect: they parse
// "method" out of the same blob that also carries the method's own fields.
func requestData(t *testing.T, method string, fields map[string]interface{}) json.RawMessage {
	t.Helper()
	merged := map[string]interface{}{"method": method}
	for k, v := range fields {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	require.NoError(t, err)
	return out
}

func TestNewWorker_RejectsUnsupportedProtocolVersion(t *testing.T) {
	_, err := NewWorker(newTestPipeCodec(), WorkerSettings{ProtocolVersion: "0.1.0"})
	assert.Error(t, err)
}

func TestWorker_CreateRouterAndWebRtcServer(t *testing.T) {
	w := newTestWorker(t)

	r, err := w.CreateRouter("router1", &RouterOptions{MediaCodecs: testMediaCodecs})
	require.NoError(t, err)
	assert.Equal(t, "router1", r.Id())

	_, err = w.CreateRouter("router1", &RouterOptions{MediaCodecs: testMediaCodecs})
	assert.Error(t, err, "duplicate router id must be rejected")

	s, err := w.CreateWebRtcServer("server1", &WebRtcServerOptions{
		ListenInfos: []*TransportListenInfo{{Ip: "127.0.0.1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "server1", s.Id())

	dump := w.Dump()
	assert.Contains(t, dump.RouterIds, "router1")
	assert.Contains(t, dump.WebRtcServerIds, "server1")
}

func TestWorker_CloseCascadesAndRejectsFurtherCreation(t *testing.T) {
	w := newTestWorker(t)
	r, err := w.CreateRouter("router1", &RouterOptions{MediaCodecs: testMediaCodecs})
	require.NoError(t, err)

	w.Close()
	assert.True(t, r.Closed())
	assert.True(t, w.Closed())

	_, err = w.CreateRouter("router2", &RouterOptions{MediaCodecs: testMediaCodecs})
	assert.Error(t, err)
}

func TestWorker_RouterCloseRemovesFromRegistry(t *testing.T) {
	w := newTestWorker(t)
	r, err := w.CreateRouter("router1", &RouterOptions{MediaCodecs: testMediaCodecs})
	require.NoError(t, err)

	r.Close()
	_, err = w.GetRouter("router1")
	assert.Error(t, err)
}

func TestWorker_UpdateSettings(t *testing.T) {
	w := newTestWorker(t)
	w.UpdateSettings(WorkerUpdatableSettings{LogLevel: WorkerLogLevelDebug})
	assert.Equal(t, WorkerLogLevelDebug, w.settings.LogLevel)
}

func TestWorker_GetResourceUsage(t *testing.T) {
	w := newTestWorker(t)
	usage, err := w.GetResourceUsage()
	require.NoError(t, err)
	assert.NotNil(t, usage)
}

func TestWorker_HandleRequestDispatchesCreateRouter(t *testing.T) {
	w := newTestWorker(t)

	data := requestData(t, "worker.createRouter", map[string]interface{}{
		"routerId": "router1",
		"options":  RouterOptions{MediaCodecs: testMediaCodecs},
	})
	result, err := w.handleRequest(context.Background(), internalAddress{}, data)
	require.NoError(t, err)
	assert.NotNil(t, result)

	_, err = w.GetRouter("router1")
	assert.NoError(t, err)
}

func TestWorker_HandleRequestRoutesToRouter(t *testing.T) {
	w := newTestWorker(t)
	_, err := w.CreateRouter("router1", &RouterOptions{MediaCodecs: testMediaCodecs})
	require.NoError(t, err)

	data := requestData(t, "router.dump", nil)
	result, err := w.handleRequest(context.Background(), internalAddress{RouterId: "router1"}, data)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestWorker_HandleRequestUnknownRouter(t *testing.T) {
	w := newTestWorker(t)
	_, err := w.handleRequest(context.Background(), internalAddress{RouterId: "nonexistent"}, requestData(t, "router.dump", nil))
	assert.Error(t, err)
}

func TestWorker_HandleRequestRoutesToWebRtcServer(t *testing.T) {
	w := newTestWorker(t)
	s, err := w.CreateWebRtcServer("server1", &WebRtcServerOptions{
		ListenInfos: []*TransportListenInfo{{Ip: "127.0.0.1"}},
	})
	require.NoError(t, err)

	data := requestData(t, "webRtcServer.dump", nil)
	result, err := w.handleRequest(context.Background(), internalAddress{WebRtcServerId: "server1"}, data)
	require.NoError(t, err)
	assert.NotNil(t, result)

	data = requestData(t, "webRtcServer.close", nil)
	_, err = w.handleRequest(context.Background(), internalAddress{WebRtcServerId: "server1"}, data)
	require.NoError(t, err)
	assert.True(t, s.Closed())

	_, err = w.GetWebRtcServer("server1")
	assert.Error(t, err, "close must deregister the server from the Worker")
}

func TestWorker_HandleRequestUnknownWebRtcServerMethod(t *testing.T) {
	w := newTestWorker(t)
	_, err := w.CreateWebRtcServer("server1", &WebRtcServerOptions{
		ListenInfos: []*TransportListenInfo{{Ip: "127.0.0.1"}},
	})
	require.NoError(t, err)

	data := requestData(t, "webRtcServer.bogus", nil)
	_, err = w.handleRequest(context.Background(), internalAddress{WebRtcServerId: "server1"}, data)
	assert.Error(t, err)
}
