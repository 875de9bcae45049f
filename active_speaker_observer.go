package sfu

import (
	"sync"
	"time"
)

// ActiveSpeakerObserverListener receives the "dominantspeaker" event.
type ActiveSpeakerObserverListener interface {
	OnDominantSpeaker(o *ActiveSpeakerObserver, dominant AudioLevelObserverDominantSpeaker)
}

// ActiveSpeakerObserver periodically picks the single most consistently
// loud tracked Producer over a sliding window, rather than AudioLevelObserver's
// instantaneous top-N ranking.
type ActiveSpeakerObserver struct {
	*RtpObserver

	mu sync.Mutex

	interval time.Duration
	levels   map[string][]int8 // producerId -> recent volume samples

	speakerListener ActiveSpeakerObserverListener
	current         string
	ticker          *time.Ticker
	stop            chan struct{}
	stopOnce        sync.Once
}

func NewActiveSpeakerObserver(id string, listener RtpObserverListener, speakerListener ActiveSpeakerObserverListener, opts *ActiveSpeakerObserverOptions) *ActiveSpeakerObserver {
	interval := opts.Interval
	if interval == 0 {
		interval = 300
	}
	o := &ActiveSpeakerObserver{
		RtpObserver:     newRtpObserver(id, RtpObserverActiveSpeaker, listener, opts.AppData),
		interval:        time.Duration(interval) * time.Millisecond,
		levels:          make(map[string][]int8),
		speakerListener: speakerListener,
		stop:            make(chan struct{}),
	}
	o.RtpObserver.volumeHandler = o.ReportVolume
	o.start()
	return o
}

func (o *ActiveSpeakerObserver) ReportVolume(producerID string, volume int8) {
	o.mu.Lock()
	samples := append(o.levels[producerID], volume)
	if len(samples) > 8 {
		samples = samples[len(samples)-8:]
	}
	o.levels[producerID] = samples
	o.mu.Unlock()
}

// start's goroutine only exists to turn ticker ticks into a PostTask call:
// tick() itself always runs on the Worker's single dispatch loop, never on
// this goroutine, matching spec §5's "driver/timer callbacks are marshaled
// onto the main loop."
func (o *ActiveSpeakerObserver) start() {
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

func (o *ActiveSpeakerObserver) tick() {
	if o.Paused() || o.Closed() {
		return
	}
	tracked := o.trackedProducers()

	o.mu.Lock()
	var best *Producer
	var bestAvg int
	for _, p := range tracked {
		samples := o.levels[p.Id()]
		if len(samples) == 0 {
			continue
		}
		total := 0
		for _, s := range samples {
			total += int(s)
		}
		avg := total / len(samples)
		if best == nil || avg > bestAvg {
			best, bestAvg = p, avg
		}
	}
	o.mu.Unlock()

	if best == nil || best.Id() == o.current {
		return
	}
	o.current = best.Id()
	o.speakerListener.OnDominantSpeaker(o, AudioLevelObserverDominantSpeaker{Producer: best})
}

func (o *ActiveSpeakerObserver) Close() {
	o.stopOnce.Do(func() {
		close(o.stop)
		o.ticker.Stop()
	})
	o.RtpObserver.Close()
}
