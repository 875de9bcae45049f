package sfu

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtcsfu/core/netcodec"
)

func newPipedControlPipe(handler RequestHandler) (*ControlPipe, netcodec.Codec) {
	serverConn, clientConn := net.Pipe()
	serverCodec := netcodec.NewNetStringCodec(serverConn, serverConn)
	clientCodec := netcodec.NewNetStringCodec(clientConn, clientConn)
	return NewControlPipe(serverCodec, handler), clientCodec
}

func TestControlPipe_RequestResponseRoundTrip(t *testing.T) {
	handler := func(_ context.Context, internal internalAddress, data json.RawMessage) (interface{}, error) {
		return H{"echoed": string(data)}, nil
	}
	pipe, client := newPipedControlPipe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pipe.Run(ctx)

	req := requestEnvelope{Id: 1, Method: "worker.dump", Data: json.RawMessage(`"hi"`)}
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, client.WritePayload(payload))

	respPayload, err := readPayloadWithTimeout(t, client, 2*time.Second)
	require.NoError(t, err)

	var resp responseEnvelope
	require.NoError(t, json.Unmarshal(respPayload, &resp))
	assert.True(t, resp.Accepted)
	assert.EqualValues(t, 1, resp.Id)
}

func TestControlPipe_HandlerErrorBecomesRejection(t *testing.T) {
	handler := func(context.Context, internalAddress, json.RawMessage) (interface{}, error) {
		return nil, NewNotFoundError("nope")
	}
	pipe, client := newPipedControlPipe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pipe.Run(ctx)

	req := requestEnvelope{Id: 2, Method: "x"}
	payload, _ := json.Marshal(req)
	require.NoError(t, client.WritePayload(payload))

	respPayload, err := readPayloadWithTimeout(t, client, 2*time.Second)
	require.NoError(t, err)

	var resp responseEnvelope
	require.NoError(t, json.Unmarshal(respPayload, &resp))
	assert.False(t, resp.Accepted)
	assert.Equal(t, ErrNotFound, resp.Error)
}

func TestControlPipe_HandlerPanicBecomesFatalRejection(t *testing.T) {
	handler := func(context.Context, internalAddress, json.RawMessage) (interface{}, error) {
		panic("boom")
	}
	pipe, client := newPipedControlPipe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pipe.Run(ctx)

	req := requestEnvelope{Id: 3, Method: "x"}
	payload, _ := json.Marshal(req)
	require.NoError(t, client.WritePayload(payload))

	respPayload, err := readPayloadWithTimeout(t, client, 2*time.Second)
	require.NoError(t, err)

	var resp responseEnvelope
	require.NoError(t, json.Unmarshal(respPayload, &resp))
	assert.False(t, resp.Accepted)
	assert.Equal(t, ErrFatal, resp.Error)
}

func TestControlPipe_NotifyDropsWhenBacklogFull(t *testing.T) {
	pipe := NewControlPipe(nil, nil)
	for i := 0; i < 1000; i++ {
		pipe.Notify("target", "event", nil)
	}
	assert.LessOrEqual(t, len(pipe.notifications), cap(pipe.notifications))
}

func TestControlPipe_PostTaskRunsOnReadLoop(t *testing.T) {
	handler := func(context.Context, internalAddress, json.RawMessage) (interface{}, error) {
		return nil, nil
	}
	pipe, _ := newPipedControlPipe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pipe.Run(ctx)

	done := make(chan struct{})
	pipe.PostTask(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task never ran")
	}
}

func readPayloadWithTimeout(t *testing.T, codec netcodec.Codec, timeout time.Duration) ([]byte, error) {
	t.Helper()
	type result struct {
		payload []byte
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		payload, err := codec.ReadPayload()
		ch <- result{payload, err}
	}()

	select {
	case r := <-ch:
		return r.payload, r.err
	case <-time.After(timeout):
		t.Fatal("timed out reading payload")
		return nil, nil
	}
}
