package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopRtpObserverListener struct{ closed bool }

func (l *nopRtpObserverListener) OnRtpObserverClose(*RtpObserver) { l.closed = true }
func (l *nopRtpObserverListener) PostTask(fn func())               { fn() }

func TestRtpObserver_AddRemoveProducer(t *testing.T) {
	o := newRtpObserver("obs1", RtpObserverAudioLevel, &nopRtpObserverListener{}, nil)
	p := newTestProducer(t)

	require.NoError(t, o.AddProducer(p))
	assert.Error(t, o.AddProducer(p), "duplicate add must fail")

	require.NoError(t, o.RemoveProducer(p.Id()))
	assert.Error(t, o.RemoveProducer(p.Id()), "removing twice must fail")
}

func TestRtpObserver_NotifyProducerClosedIsIdempotent(t *testing.T) {
	o := newRtpObserver("obs1", RtpObserverAudioLevel, &nopRtpObserverListener{}, nil)
	p := newTestProducer(t)
	require.NoError(t, o.AddProducer(p))

	o.NotifyProducerClosed(p.Id())
	assert.Empty(t, o.trackedProducers())
	o.NotifyProducerClosed(p.Id()) // must not panic
}

func TestRtpObserver_CloseNotifiesOnce(t *testing.T) {
	l := &nopRtpObserverListener{}
	o := newRtpObserver("obs1", RtpObserverAudioLevel, l, nil)

	o.Close()
	assert.True(t, l.closed)
	assert.True(t, o.Closed())

	l.closed = false
	o.Close()
	assert.False(t, l.closed, "second Close must not notify again")
}

func TestRtpObserver_PauseResumeRejectAfterClose(t *testing.T) {
	o := newRtpObserver("obs1", RtpObserverAudioLevel, &nopRtpObserverListener{}, nil)
	o.Close()
	assert.Error(t, o.Pause())
	assert.Error(t, o.Resume())
}
