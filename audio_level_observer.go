package sfu

import (
	"sync"
	"time"
)

// AudioLevelObserverListener receives the "volumes" and "silence" events.
// The Worker implements it to translate observer state into ControlPipe
// notifications.
type AudioLevelObserverListener interface {
	OnAudioLevelVolumes(o *AudioLevelObserver, volumes []AudioLevelObserverVolume)
	OnAudioLevelSilence(o *AudioLevelObserver)
}

// AudioLevelObserver periodically ranks its tracked audio Producers by
// average volume (derived from the RTP "ssrc-audio-level" header extension,
// decoded by the Router when a Producer's packet arrives and reported here via
// ReportVolume) and reports the loudest ones above Threshold.
type AudioLevelObserver struct {
	*RtpObserver

	mu sync.Mutex

	maxEntries uint16
	threshold  int8
	interval   time.Duration

	samples map[string]int8 // producerId -> last reported volume

	volumeListener AudioLevelObserverListener
	ticker         *time.Ticker
	stop           chan struct{}
	stopOnce       sync.Once
}

func NewAudioLevelObserver(id string, listener RtpObserverListener, volumeListener AudioLevelObserverListener, opts *AudioLevelObserverOptions) *AudioLevelObserver {
	maxEntries := opts.MaxEntries
	if maxEntries == 0 {
		maxEntries = 1
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = -80
	}
	interval := opts.Interval
	if interval == 0 {
		interval = 1000
	}
	o := &AudioLevelObserver{
		RtpObserver:    newRtpObserver(id, RtpObserverAudioLevel, listener, opts.AppData),
		maxEntries:     maxEntries,
		threshold:      threshold,
		interval:       time.Duration(interval) * time.Millisecond,
		samples:        make(map[string]int8),
		volumeListener: volumeListener,
		stop:           make(chan struct{}),
	}
	o.RtpObserver.volumeHandler = o.ReportVolume
	o.start()
	return o
}

// ReportVolume is called through the RtpObserver's volume handler when the
// Router decodes an audio-level header extension on a packet from a
// tracked Producer.
func (o *AudioLevelObserver) ReportVolume(producerID string, volume int8) {
	o.mu.Lock()
	o.samples[producerID] = volume
	o.mu.Unlock()
}

// start's goroutine only exists to turn ticker ticks into a PostTask call:
// tick() itself always runs on the Worker's single dispatch loop, never on
// this goroutine, matching spec §5's "driver/timer callbacks are marshaled
// onto the main loop."
func (o *AudioLevelObserver) start() {
	o.ticker = time.NewTicker(o.interval)
	go func() {
		for {
			select {
			case <-o.ticker.C:
				o.listener.PostTask(o.tick)
			case <-o.stop:
				return
			}
		}
	}()
}

func (o *AudioLevelObserver) tick() {
	if o.Paused() || o.Closed() {
		return
	}
	tracked := o.trackedProducers()

	o.mu.Lock()
	type entry struct {
		producer *Producer
		volume   int8
	}
	var entries []entry
	for _, p := range tracked {
		if vol, ok := o.samples[p.Id()]; ok && vol >= o.threshold {
			entries = append(entries, entry{p, vol})
		}
	}
	o.samples = make(map[string]int8)
	o.mu.Unlock()

	if len(entries) == 0 {
		o.volumeListener.OnAudioLevelSilence(o)
		return
	}

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].volume > entries[i].volume {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	if len(entries) > int(o.maxEntries) {
		entries = entries[:o.maxEntries]
	}

	volumes := make([]AudioLevelObserverVolume, 0, len(entries))
	for _, e := range entries {
		volumes = append(volumes, AudioLevelObserverVolume{Producer: e.producer, Volume: e.volume})
	}
	o.volumeListener.OnAudioLevelVolumes(o, volumes)
}

func (o *AudioLevelObserver) Close() {
	o.stopOnce.Do(func() {
		close(o.stop)
		o.ticker.Stop()
	})
	o.RtpObserver.Close()
}
