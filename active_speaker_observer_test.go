package sfu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSpeakerListener struct {
	speakers chan AudioLevelObserverDominantSpeaker
}

func newChanSpeakerListener() *chanSpeakerListener {
	return &chanSpeakerListener{speakers: make(chan AudioLevelObserverDominantSpeaker, 8)}
}

func (l *chanSpeakerListener) OnDominantSpeaker(_ *ActiveSpeakerObserver, dominant AudioLevelObserverDominantSpeaker) {
	l.speakers <- dominant
}

func TestActiveSpeakerObserver_PicksHighestAverage(t *testing.T) {
	sl := newChanSpeakerListener()
	o := NewActiveSpeakerObserver("aso1", &nopRtpObserverListener{}, sl, &ActiveSpeakerObserverOptions{Interval: 20})
	defer o.Close()

	quiet := newTestProducer(t)
	loud := newTestProducer(t)
	require.NoError(t, o.AddProducer(quiet))
	require.NoError(t, o.AddProducer(loud))

	o.ReportVolume(quiet.Id(), -90)
	o.ReportVolume(loud.Id(), -10)

	select {
	case dominant := <-sl.speakers:
		assert.Equal(t, loud.Id(), dominant.Producer.Id())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dominantspeaker event")
	}
}

func TestActiveSpeakerObserver_OnlyNotifiesOnChange(t *testing.T) {
	sl := newChanSpeakerListener()
	o := NewActiveSpeakerObserver("aso1", &nopRtpObserverListener{}, sl, &ActiveSpeakerObserverOptions{Interval: 20})
	defer o.Close()

	p := newTestProducer(t)
	require.NoError(t, o.AddProducer(p))
	o.ReportVolume(p.Id(), -10)

	select {
	case dominant := <-sl.speakers:
		assert.Equal(t, p.Id(), dominant.Producer.Id())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first dominantspeaker event")
	}

	for i := 0; i < 3; i++ {
		o.ReportVolume(p.Id(), -10)
		time.Sleep(30 * time.Millisecond)
	}

	select {
	case <-sl.speakers:
		t.Fatal("must not re-notify while the dominant speaker is unchanged")
	default:
	}
}

func TestActiveSpeakerObserver_NoEventWithoutSamples(t *testing.T) {
	sl := newChanSpeakerListener()
	o := NewActiveSpeakerObserver("aso1", &nopRtpObserverListener{}, sl, &ActiveSpeakerObserverOptions{Interval: 20})
	defer o.Close()

	p := newTestProducer(t)
	require.NoError(t, o.AddProducer(p))

	select {
	case <-sl.speakers:
		t.Fatal("must not pick a speaker with no reported volume")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestActiveSpeakerObserver_CloseIsIdempotent(t *testing.T) {
	sl := newChanSpeakerListener()
	o := NewActiveSpeakerObserver("aso1", &nopRtpObserverListener{}, sl, &ActiveSpeakerObserverOptions{Interval: 20})

	assert.NotPanics(t, func() {
		o.Close()
		o.Close()
	})
	assert.True(t, o.Closed())
}
