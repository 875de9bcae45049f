package sfu

import "sync"

// RtpObserverKind distinguishes the two concrete observer types a Router can
// own.
type RtpObserverKind string

const (
	RtpObserverAudioLevel    RtpObserverKind = "audiolevel"
	RtpObserverActiveSpeaker RtpObserverKind = "activespeaker"
)

// RtpObserverListener receives the notification an RtpObserver emits toward
// its owning Router, and gives it a way to marshal ticker-driven work onto
// the Worker's single dispatch loop (see AudioLevelObserver/
// ActiveSpeakerObserver's start()).
type RtpObserverListener interface {
	OnRtpObserverClose(o *RtpObserver)
	PostTask(fn func())
}

// RtpObserver is the shared base embedded by AudioLevelObserver and
// ActiveSpeakerObserver: both watch a set of Producers the application
// explicitly adds, rather than every Producer in the Router.
type RtpObserver struct {
	mu sync.RWMutex

	id      string
	kind    RtpObserverKind
	paused  bool
	closed  bool
	appData H

	producers map[string]*Producer

	listener RtpObserverListener

	// volumeHandler is set by AudioLevelObserver/ActiveSpeakerObserver to
	// their own ReportVolume, so the Router's packet fan-out (router.go's
	// OnTransportProducerRtpPacketReceived) can reach the concrete type's
	// state without holding a second, type-specific index of observers.
	volumeHandler func(producerID string, volume int8)
}

func newRtpObserver(id string, kind RtpObserverKind, listener RtpObserverListener, appData H) *RtpObserver {
	return &RtpObserver{
		id:        id,
		kind:      kind,
		appData:   appData,
		producers: make(map[string]*Producer),
		listener:  listener,
	}
}

func (o *RtpObserver) Id() string            { return o.id }
func (o *RtpObserver) Kind() RtpObserverKind { return o.kind }

func (o *RtpObserver) Paused() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.paused
}

func (o *RtpObserver) Closed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

func (o *RtpObserver) AddProducer(p *Producer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return NewInvalidStateError("RtpObserver closed")
	}
	if _, ok := o.producers[p.Id()]; ok {
		return NewDuplicateIdError("Producer with id %q already added", p.Id())
	}
	o.producers[p.Id()] = p
	return nil
}

func (o *RtpObserver) RemoveProducer(producerID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return NewInvalidStateError("RtpObserver closed")
	}
	if _, ok := o.producers[producerID]; !ok {
		return NewNotFoundError("Producer with id %q not found", producerID)
	}
	delete(o.producers, producerID)
	return nil
}

// NotifyProducerClosed drops a Producer from the watch set when it closes
// elsewhere, without requiring an explicit RemoveProducer call.
func (o *RtpObserver) NotifyProducerClosed(producerID string) {
	o.mu.Lock()
	delete(o.producers, producerID)
	o.mu.Unlock()
}

// dispatchVolume forwards a decoded audio-level reading to whichever
// concrete observer registered a volumeHandler. Observer kinds that don't
// care about per-packet volume (none yet, but the hook is generic) simply
// leave it nil.
func (o *RtpObserver) dispatchVolume(producerID string, volume int8) {
	o.mu.RLock()
	h := o.volumeHandler
	o.mu.RUnlock()
	if h != nil {
		h(producerID, volume)
	}
}

func (o *RtpObserver) trackedProducers() []*Producer {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]*Producer, 0, len(o.producers))
	for _, p := range o.producers {
		out = append(out, p)
	}
	return out
}

func (o *RtpObserver) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return NewInvalidStateError("RtpObserver closed")
	}
	o.paused = true
	return nil
}

func (o *RtpObserver) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return NewInvalidStateError("RtpObserver closed")
	}
	o.paused = false
	return nil
}

func (o *RtpObserver) Dump() *RtpObserverDump {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, 0, len(o.producers))
	for id := range o.producers {
		ids = append(ids, id)
	}
	return &RtpObserverDump{Id: o.id, Kind: o.kind, Paused: o.paused, ProducerIds: ids}
}

func (o *RtpObserver) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	listener := o.listener
	o.mu.Unlock()

	listener.OnRtpObserverClose(o)
}
