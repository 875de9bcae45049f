package sfu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanVolumeListener struct {
	volumes chan []AudioLevelObserverVolume
	silence chan struct{}
}

func newChanVolumeListener() *chanVolumeListener {
	return &chanVolumeListener{
		volumes: make(chan []AudioLevelObserverVolume, 8),
		silence: make(chan struct{}, 8),
	}
}

func (l *chanVolumeListener) OnAudioLevelVolumes(_ *AudioLevelObserver, volumes []AudioLevelObserverVolume) {
	l.volumes <- volumes
}

func (l *chanVolumeListener) OnAudioLevelSilence(*AudioLevelObserver) {
	l.silence <- struct{}{}
}

func TestAudioLevelObserver_ReportsLoudestAboveThreshold(t *testing.T) {
	vl := newChanVolumeListener()
	o := NewAudioLevelObserver("alo1", &nopRtpObserverListener{}, vl, &AudioLevelObserverOptions{
		MaxEntries: 1,
		Threshold:  -80,
		Interval:   20,
	})
	defer o.Close()

	quiet := newTestProducer(t)
	loud := newTestProducer(t)
	require.NoError(t, o.AddProducer(quiet))
	require.NoError(t, o.AddProducer(loud))

	o.ReportVolume(quiet.Id(), -90)
	o.ReportVolume(loud.Id(), -10)

	select {
	case volumes := <-vl.volumes:
		require.Len(t, volumes, 1)
		assert.Equal(t, loud.Id(), volumes[0].Producer.Id())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for volumes event")
	}
}

func TestAudioLevelObserver_SilenceWhenNothingReported(t *testing.T) {
	vl := newChanVolumeListener()
	o := NewAudioLevelObserver("alo1", &nopRtpObserverListener{}, vl, &AudioLevelObserverOptions{Interval: 20})
	defer o.Close()

	select {
	case <-vl.silence:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for silence event")
	}
}

func TestAudioLevelObserver_PausedSkipsTicks(t *testing.T) {
	vl := newChanVolumeListener()
	o := NewAudioLevelObserver("alo1", &nopRtpObserverListener{}, vl, &AudioLevelObserverOptions{Interval: 20})
	defer o.Close()
	require.NoError(t, o.Pause())

	select {
	case <-vl.silence:
		t.Fatal("paused observer must not emit events")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAudioLevelObserver_CloseStopsTicker(t *testing.T) {
	vl := newChanVolumeListener()
	o := NewAudioLevelObserver("alo1", &nopRtpObserverListener{}, vl, &AudioLevelObserverOptions{Interval: 20})
	o.Close()
	assert.True(t, o.Closed())

	for len(vl.silence) > 0 {
		<-vl.silence
	}
	select {
	case <-vl.silence:
		t.Fatal("closed observer must not keep ticking")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAudioLevelObserver_CloseIsIdempotent(t *testing.T) {
	vl := newChanVolumeListener()
	o := NewAudioLevelObserver("alo1", &nopRtpObserverListener{}, vl, &AudioLevelObserverOptions{Interval: 20})

	assert.NotPanics(t, func() {
		o.Close()
		o.Close()
	})
	assert.True(t, o.Closed())
}
