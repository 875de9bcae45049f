package sfu

import (
	"github.com/pion/rtp"
)

// RouterListener receives the notifications a Router emits toward its
// owning Worker: close, and the task-posting capability every RtpObserver
// reaches through Router.PostTask to marshal its ticker ticks onto the
// Worker's single dispatch loop.
type RouterListener interface {
	OnRouterClose(r *Router)
	PostTask(fn func())
}

// consumerSet is an insertion-ordered set of a Producer's Consumers. Fan-out
// (packet forwarding, score updates, pause/resume propagation) must visit
// Consumers in a deterministic order; a plain Go map does not guarantee one.
type consumerSet struct {
	order []string
	byID  map[string]*Consumer
}

func newConsumerSet() *consumerSet {
	return &consumerSet{byID: make(map[string]*Consumer)}
}

func (s *consumerSet) add(c *Consumer) {
	if _, ok := s.byID[c.Id()]; ok {
		return
	}
	s.byID[c.Id()] = c
	s.order = append(s.order, c.Id())
}

func (s *consumerSet) remove(id string) {
	if s == nil {
		return
	}
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ordered returns the Consumers in the order they were added. Safe to call
// on a nil *consumerSet (a Producer with no Consumers yet).
func (s *consumerSet) ordered() []*Consumer {
	if s == nil {
		return nil
	}
	out := make([]*Consumer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ids returns the Consumer ids in insertion order, for Router.Dump.
func (s *consumerSet) ids() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Router is a group of Transports that can route media and data between one
// another. It owns every Transport, RtpObserver, Producer, DataProducer and
// Consumer/DataConsumer created within it, and maintains the index maps
// needed to answer dump() and to fan packets out without walking every
// entity on every packet.
type Router struct {
	id           string
	rtpCapabilities RtpCapabilities
	appData      H
	closed       bool

	transports   map[string]*Transport
	rtpObservers map[string]*RtpObserver

	producers     map[string]*Producer
	dataProducers map[string]*DataProducer

	// producerConsumers[producerId] holds that Producer's Consumers in
	// insertion order: fan-out (packet forwarding, score, pause/resume) must
	// be deterministic, and a plain map's iteration order isn't.
	producerConsumers map[string]*consumerSet
	// consumerProducer[consumerId] = producerId
	consumerProducer map[string]string

	dataProducerDataConsumers map[string]map[string]*DataConsumer
	dataConsumerDataProducer  map[string]string

	// producerRtpObservers[producerId][observerId] = observer
	producerRtpObservers map[string]map[string]*RtpObserver

	listener RouterListener
}

// NewRouter validates mediaCodecs with ortc.go's negotiation helpers and
// builds an empty Router.
func NewRouter(id string, mediaCodecs []*RtpCodecCapability, listener RouterListener, appData H) (*Router, error) {
	caps, err := generateRouterRtpCapabilities(mediaCodecs)
	if err != nil {
		return nil, NewTypeError("invalid mediaCodecs: %s", err)
	}
	return &Router{
		id:                        id,
		rtpCapabilities:           caps,
		appData:                   appData,
		transports:                make(map[string]*Transport),
		rtpObservers:              make(map[string]*RtpObserver),
		producers:                 make(map[string]*Producer),
		dataProducers:             make(map[string]*DataProducer),
		producerConsumers:         make(map[string]*consumerSet),
		consumerProducer:          make(map[string]string),
		dataProducerDataConsumers: make(map[string]map[string]*DataConsumer),
		dataConsumerDataProducer:  make(map[string]string),
		producerRtpObservers:      make(map[string]map[string]*RtpObserver),
		listener:                  listener,
	}, nil
}

func (r *Router) Id() string { return r.id }

func (r *Router) RtpCapabilities() RtpCapabilities {
	return r.rtpCapabilities
}

func (r *Router) Closed() bool {
	return r.closed
}

// RegisterTransport tracks a Transport created against this router and
// wires the Router up as its listener.
func (r *Router) RegisterTransport(t *Transport) error {
	if r.closed {
		return NewInvalidStateError("Router closed")
	}
	if _, ok := r.transports[t.Id()]; ok {
		return NewDuplicateIdError("Transport with id %q already exists", t.Id())
	}
	r.transports[t.Id()] = t
	return nil
}

func (r *Router) GetTransport(id string) (*Transport, error) {
	t, ok := r.transports[id]
	if !ok {
		return nil, NewNotFoundError("Transport with id %q not found", id)
	}
	return t, nil
}

func (r *Router) GetProducer(id string) (*Producer, error) {
	p, ok := r.producers[id]
	if !ok {
		return nil, NewNotFoundError("Producer with id %q not found", id)
	}
	return p, nil
}

func (r *Router) GetConsumer(id string) (*Consumer, error) {
	producerID, ok := r.consumerProducer[id]
	if !ok {
		return nil, NewNotFoundError("Consumer with id %q not found", id)
	}
	c := r.producerConsumers[producerID].byID[id]
	return c, nil
}

func (r *Router) GetDataProducer(id string) (*DataProducer, error) {
	dp, ok := r.dataProducers[id]
	if !ok {
		return nil, NewNotFoundError("DataProducer with id %q not found", id)
	}
	return dp, nil
}

func (r *Router) GetDataConsumer(id string) (*DataConsumer, error) {
	dataProducerID, ok := r.dataConsumerDataProducer[id]
	if !ok {
		return nil, NewNotFoundError("DataConsumer with id %q not found", id)
	}
	dc, ok := r.dataProducerDataConsumers[dataProducerID][id]
	if !ok {
		return nil, NewNotFoundError("DataConsumer with id %q not found", id)
	}
	return dc, nil
}

func (r *Router) GetRtpObserver(id string) (*RtpObserver, error) {
	o, ok := r.rtpObservers[id]
	if !ok {
		return nil, NewNotFoundError("RtpObserver with id %q not found", id)
	}
	return o, nil
}

// CanConsume reports whether rtpCapabilities can consume producerID's
// consumable parameters, per ortc.go's canConsume.
func (r *Router) CanConsume(producerID string, rtpCapabilities RtpCapabilities) (bool, error) {
	p, ok := r.producers[producerID]
	if !ok {
		return false, NewNotFoundError("Producer with id %q not found", producerID)
	}
	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.rtpCapabilities, r.rtpMappingFor(p))
	if err != nil {
		return false, asError(err)
	}
	return canConsume(consumable, rtpCapabilities)
}

func (r *Router) rtpMappingFor(p *Producer) RtpMapping {
	return p.rtpMapping
}

// -- transportListener --

// OnTransportNewProducer registers p under this Router. Producer ids are
// unique per Router (§3), not per Transport, so this check — not just
// Transport.Produce's per-Transport one — is what actually enforces that.
func (r *Router) OnTransportNewProducer(t *Transport, p *Producer) error {
	if _, ok := r.producers[p.Id()]; ok {
		return NewDuplicateIdError("Producer with id %q already exists", p.Id())
	}
	r.producers[p.Id()] = p
	r.producerConsumers[p.Id()] = newConsumerSet()
	r.producerRtpObservers[p.Id()] = make(map[string]*RtpObserver)
	p.AddListener(r)
	return nil
}

// OnTransportNewConsumer registers c under this Router. Consumer ids are
// unique per Router, mirroring OnTransportNewProducer.
func (r *Router) OnTransportNewConsumer(t *Transport, c *Consumer) error {
	if _, ok := r.consumerProducer[c.Id()]; ok {
		return NewDuplicateIdError("Consumer with id %q already exists", c.Id())
	}
	r.consumerProducer[c.Id()] = c.ProducerId()
	if m, ok := r.producerConsumers[c.ProducerId()]; ok {
		m.add(c)
	}
	c.AddListener(r)
	return nil
}

func (r *Router) OnTransportNewDataProducer(t *Transport, dp *DataProducer) error {
	if _, ok := r.dataProducers[dp.Id()]; ok {
		return NewDuplicateIdError("DataProducer with id %q already exists", dp.Id())
	}
	r.dataProducers[dp.Id()] = dp
	r.dataProducerDataConsumers[dp.Id()] = make(map[string]*DataConsumer)
	dp.AddListener(r)
	return nil
}

func (r *Router) OnTransportNewDataConsumer(t *Transport, dc *DataConsumer) error {
	if _, ok := r.dataConsumerDataProducer[dc.Id()]; ok {
		return NewDuplicateIdError("DataConsumer with id %q already exists", dc.Id())
	}
	r.dataConsumerDataProducer[dc.Id()] = dc.DataProducerId()
	if m, ok := r.dataProducerDataConsumers[dc.DataProducerId()]; ok {
		m[dc.Id()] = dc
	}
	dc.AddListener(r)
	return nil
}

// OnTransportProducerNewRtpStream forwards a newly observed encoding to every
// Consumer of p, so each can initialize its per-layer state (availableLayers)
// before packets for that layer start arriving.
func (r *Router) OnTransportProducerNewRtpStream(t *Transport, p *Producer, stream *RtpStream, ssrc uint32) {
	consumers := r.producerConsumers[p.Id()].ordered()

	spatialLayer := 0
	for i, e := range p.RtpParameters().Encodings {
		if e.Ssrc == ssrc {
			spatialLayer = i
			break
		}
	}
	for _, c := range consumers {
		c.NotifyProducerNewRtpStream(spatialLayer)
	}
}

// OnTransportProducerRtcpSenderReport propagates p's sender-report timing to
// every Consumer of p, for playout alignment.
func (r *Router) OnTransportProducerRtcpSenderReport(t *Transport, p *Producer, stream *RtpStream, first bool) {
	consumers := r.producerConsumers[p.Id()].ordered()

	ntpTime, rtpTime := stream.SenderReportTiming()
	for _, c := range consumers {
		c.NotifyProducerRtcpSenderReport(ntpTime, rtpTime)
	}
}

// OnTransportProducerRtpPacketReceived fans a received packet out to every
// Consumer of the Producer (in insertion-ordered iteration, matching the
// spec's consumer-before-RtpObserver fan-out choice) and then to every
// RtpObserver watching it, decoding the "ssrc-audio-level" header extension
// for audio Producers so AudioLevelObserver/ActiveSpeakerObserver actually
// receive samples.
func (r *Router) OnTransportProducerRtpPacketReceived(t *Transport, p *Producer, pkt *rtp.Packet, stream *RtpStream, isKeyFrame bool) {
	consumers := r.producerConsumers[p.Id()].ordered()
	observers := make([]*RtpObserver, 0, len(r.producerRtpObservers[p.Id()]))
	for _, o := range r.producerRtpObservers[p.Id()] {
		observers = append(observers, o)
	}

	spatialLayer := 0
	for i, e := range p.RtpParameters().Encodings {
		if e.Ssrc == pkt.SSRC {
			spatialLayer = i
			break
		}
	}
	for _, c := range consumers {
		c.ForwardRtpPacket(pkt, spatialLayer, isKeyFrame)
	}

	_ = stream
	if p.Kind() != MediaKind_Audio || len(observers) == 0 {
		return
	}
	if level, ok := decodeAudioLevel(pkt, p.AudioLevelExtensionId()); ok {
		for _, o := range observers {
			o.dispatchVolume(p.Id(), level)
		}
	}
}

// decodeAudioLevel reads the one-byte RTP header extension defined by RFC
// 6464 ("urn:ietf:params:rtp-hdrext:ssrc-audio-level"): the low 7 bits carry
// the level as negated dBov (0 = loudest, 127 = silence).
func decodeAudioLevel(pkt *rtp.Packet, extID int) (int8, bool) {
	if extID <= 0 {
		return 0, false
	}
	ext := pkt.GetExtension(uint8(extID))
	if len(ext) == 0 {
		return 0, false
	}
	return -int8(ext[0] & 0x7f), true
}

// OnTransportDataMessage fans an inbound message out to dp's DataConsumers
// as a plain broadcast (no subchannel filtering), mirroring what SendData
// does for a programmatic dataProducer.send call.
func (r *Router) OnTransportDataMessage(t *Transport, dp *DataProducer, payload []byte) {
	_ = r.SendData(dp.Id(), payload, SctpPayloadWebRTCBinary, nil)
}

// SendData accepts payload on behalf of dataProducerID and forwards it to
// every DataConsumer subscribed to it, restricted to subchannels when given
// (a DataConsumer with no subchannel subscription of its own accepts any
// message). Dropped silently if dataProducerID is paused.
func (r *Router) SendData(dataProducerID string, payload []byte, ppid SctpPayloadType, subchannels []uint16) error {
	dp, ok := r.dataProducers[dataProducerID]
	consumerSet := r.dataProducerDataConsumers[dataProducerID]
	consumers := make([]*DataConsumer, 0, len(consumerSet))
	for _, dc := range consumerSet {
		consumers = append(consumers, dc)
	}
	if !ok {
		return NewNotFoundError("DataProducer with id %q not found", dataProducerID)
	}
	if !dp.ReceiveMessage(payload) {
		return nil
	}

	if len(subchannels) == 0 {
		for _, dc := range consumers {
			dc.ForwardMessage(payload, ppid, 0)
		}
		return nil
	}
	for _, dc := range consumers {
		for _, s := range subchannels {
			if dc.acceptsSubchannel(s) {
				dc.ForwardMessage(payload, ppid, s)
				break
			}
		}
	}
	return nil
}

// OnTransportNeedWorstRemoteFractionLost aggregates the fraction-lost values
// reported by every Consumer of producerID/ssrc and returns the worst (max)
// one, which the Transport then folds into its own sender report logic.
func (r *Router) OnTransportNeedWorstRemoteFractionLost(t *Transport, p *Producer, ssrc uint32) uint8 {
	consumers := r.producerConsumers[p.Id()].ordered()

	var worst uint8
	for _, c := range consumers {
		stats := c.GetStats()
		if stats.FractionLost > worst {
			worst = stats.FractionLost
		}
	}
	return worst
}

func (r *Router) OnTransportClose(t *Transport) {
	delete(r.transports, t.Id())
}

// -- ProducerListener --

// OnProducerScore fans a score update out to every Consumer of p in
// deterministic, insertion order (§5, Testable Property 6).
func (r *Router) OnProducerScore(p *Producer, scores []ProducerScore) {
	consumers := r.producerConsumers[p.Id()].ordered()
	for _, c := range consumers {
		_ = c.Score(scores)
	}
}

func (r *Router) OnProducerClose(p *Producer) {
	consumers := r.producerConsumers[p.Id()].ordered()
	observers := r.producerRtpObservers[p.Id()]
	delete(r.producers, p.Id())
	delete(r.producerConsumers, p.Id())
	delete(r.producerRtpObservers, p.Id())

	for _, c := range consumers {
		c.NotifyProducerClosed()
	}
	for _, o := range observers {
		o.NotifyProducerClosed(p.Id())
	}
}

func (r *Router) OnProducerPause(p *Producer) {
	consumers := r.producerConsumers[p.Id()].ordered()
	for _, c := range consumers {
		c.SetProducerPaused()
	}
}

func (r *Router) OnProducerResume(p *Producer) {
	consumers := r.producerConsumers[p.Id()].ordered()
	for _, c := range consumers {
		c.SetProducerResumed()
	}
}

// -- ConsumerListener --

func (r *Router) OnConsumerClose(c *Consumer) {
	delete(r.consumerProducer, c.Id())
	r.producerConsumers[c.ProducerId()].remove(c.Id())
}

func (r *Router) OnConsumerProducerClose(c *Consumer) {
	r.OnConsumerClose(c)
}

// -- DataProducerListener --

func (r *Router) OnDataProducerClose(dp *DataProducer) {
	consumers := r.dataProducerDataConsumers[dp.Id()]
	delete(r.dataProducers, dp.Id())
	delete(r.dataProducerDataConsumers, dp.Id())

	for _, dc := range consumers {
		dc.NotifyDataProducerClosed()
	}
}

func (r *Router) OnDataProducerPause(dp *DataProducer) {
	consumers := r.dataProducerDataConsumers[dp.Id()]
	for _, dc := range consumers {
		dc.SetDataProducerPaused()
	}
}

func (r *Router) OnDataProducerResume(dp *DataProducer) {
	consumers := r.dataProducerDataConsumers[dp.Id()]
	for _, dc := range consumers {
		dc.SetDataProducerResumed()
	}
}

// -- DataConsumerListener --

func (r *Router) OnDataConsumerClose(dc *DataConsumer) {
	delete(r.dataConsumerDataProducer, dc.Id())
	if m, ok := r.dataProducerDataConsumers[dc.DataProducerId()]; ok {
		delete(m, dc.Id())
	}
}

func (r *Router) OnDataConsumerProducerClose(dc *DataConsumer) {
	r.OnDataConsumerClose(dc)
}

// -- RtpObserverListener --

func (r *Router) OnRtpObserverClose(o *RtpObserver) {
	delete(r.rtpObservers, o.Id())
	for _, m := range r.producerRtpObservers {
		delete(m, o.Id())
	}
}

// PostTask forwards to the owning Worker's ControlPipe, so an RtpObserver's
// ticker goroutine never touches Router/Producer state directly: it posts a
// closure and the Worker's single dispatch loop runs it in turn.
func (r *Router) PostTask(fn func()) {
	r.listener.PostTask(fn)
}

// RegisterRtpObserver tracks a newly created RtpObserver.
func (r *Router) RegisterRtpObserver(o *RtpObserver) error {
	if r.closed {
		return NewInvalidStateError("Router closed")
	}
	if _, ok := r.rtpObservers[o.Id()]; ok {
		return NewDuplicateIdError("RtpObserver with id %q already exists", o.Id())
	}
	r.rtpObservers[o.Id()] = o
	return nil
}

// ObserverAddProducer adds producerID to observerID's watch set and tracks
// the reverse index used for Producer-close cleanup.
func (r *Router) ObserverAddProducer(observerID, producerID string) error {
	o, ok := r.rtpObservers[observerID]
	p, pok := r.producers[producerID]
	if !ok {
		return NewNotFoundError("RtpObserver with id %q not found", observerID)
	}
	if !pok {
		return NewNotFoundError("Producer with id %q not found", producerID)
	}
	if err := o.AddProducer(p); err != nil {
		return err
	}
	if r.producerRtpObservers[producerID] == nil {
		r.producerRtpObservers[producerID] = make(map[string]*RtpObserver)
	}
	r.producerRtpObservers[producerID][observerID] = o
	return nil
}

// ObserverRemoveProducer drops producerID from observerID's watch set.
func (r *Router) ObserverRemoveProducer(observerID, producerID string) error {
	o, ok := r.rtpObservers[observerID]
	if !ok {
		return NewNotFoundError("RtpObserver with id %q not found", observerID)
	}
	if err := o.RemoveProducer(producerID); err != nil {
		return err
	}
	if m, ok := r.producerRtpObservers[producerID]; ok {
		delete(m, observerID)
	}
	return nil
}

// CreateAudioLevelObserver builds and registers an AudioLevelObserver,
// wiring volumeListener to receive its "volumes"/"silence" events.
func (r *Router) CreateAudioLevelObserver(id string, volumeListener AudioLevelObserverListener, opts *AudioLevelObserverOptions) (*AudioLevelObserver, error) {
	o := NewAudioLevelObserver(id, r, volumeListener, opts)
	if err := r.RegisterRtpObserver(o.RtpObserver); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateActiveSpeakerObserver builds and registers an ActiveSpeakerObserver,
// wiring speakerListener to receive its "dominantspeaker" event.
func (r *Router) CreateActiveSpeakerObserver(id string, speakerListener ActiveSpeakerObserverListener, opts *ActiveSpeakerObserverOptions) (*ActiveSpeakerObserver, error) {
	o := NewActiveSpeakerObserver(id, r, speakerListener, opts)
	if err := r.RegisterRtpObserver(o.RtpObserver); err != nil {
		return nil, err
	}
	return o, nil
}

// RequestConsumerKeyFrame resolves consumerID's source Producer's media SSRC
// and asks the owning Transport's driver to send a PLI for it, subject to
// the KEYFRAME_COALESCE_MS debounce.
func (r *Router) RequestConsumerKeyFrame(consumerID string) error {
	c, err := r.GetConsumer(consumerID)
	if err != nil {
		return err
	}
	producerID := r.consumerProducer[consumerID]
	p := r.producers[producerID]
	if p == nil || len(p.RtpParameters().Encodings) == 0 {
		return NewInvalidStateError("consumer %q has no source media ssrc", consumerID)
	}
	mediaSsrc := p.RtpParameters().Encodings[0].Ssrc
	c.RequestKeyFrame(mediaSsrc)

	return r.requestKeyFrameUpstream(p, mediaSsrc)
}

// requestKeyFrameUpstream sends a PLI for ssrc toward p's Transport, unless
// a request for the same SSRC already went out within KEYFRAME_COALESCE_MS.
func (r *Router) requestKeyFrameUpstream(p *Producer, ssrc uint32) error {
	if !p.ShouldSendKeyFrameRequest(ssrc) {
		return nil
	}
	t, err := r.GetTransport(p.TransportId())
	if err != nil {
		return err
	}
	t.RequestKeyFrameFromProducer(ssrc)
	return nil
}

// OnConsumerKeyFrameRequired implements ConsumerListener: a Consumer raises
// this when SetPreferredLayers/RequestSwitch moves its target spatial layer
// up, since the new layer can only be forwarded once a keyframe is seen on
// it (layers.go's MaybeSwitchAtKeyframe).
func (r *Router) OnConsumerKeyFrameRequired(c *Consumer, spatialLayer int) {
	p := r.producers[c.ProducerId()]
	if p == nil {
		return
	}
	encodings := p.RtpParameters().Encodings
	if spatialLayer < 0 || spatialLayer >= len(encodings) {
		return
	}
	_ = r.requestKeyFrameUpstream(p, encodings[spatialLayer].Ssrc)
}

// PipeToRouter creates a loopback pair of PipeTransports connecting this
// Router to target within the same Worker, and pipes producerID across it.
// Cross-worker (and so cross-host) routing is out of scope: both Routers
// must live in the same process for this to be used.
func (r *Router) PipeToRouter(opts PipeToRouterOptions) (*PipeToRouterResult, error) {
	if opts.Router == nil {
		return nil, NewTypeError("missing destination Router")
	}
	if opts.Router == r {
		return nil, NewTypeError("cannot pipe a Router to itself")
	}
	if opts.ProducerId == "" {
		return nil, NewTypeError("missing producerId")
	}

	p, ok := r.producers[opts.ProducerId]
	if !ok {
		return nil, NewNotFoundError("Producer with id %q not found", opts.ProducerId)
	}

	enableSctp := true
	if opts.EnableSctp != nil {
		enableSctp = *opts.EnableSctp
	}

	srcPipeId := generateIdentifier()
	dstPipeId := generateIdentifier()

	srcPipe := newPipeTransport(srcPipeId, r.id, nil, r, &PipeTransportOptions{
		ListenInfo: opts.ListenInfo,
		EnableSctp: enableSctp,
		EnableRtx:  opts.EnableRtx,
	})
	dstPipe := newPipeTransport(dstPipeId, opts.Router.id, nil, opts.Router, &PipeTransportOptions{
		ListenInfo: opts.ListenInfo,
		EnableSctp: enableSctp,
		EnableRtx:  opts.EnableRtx,
	})
	srcPipe.Pair(dstPipe)

	r.transports[srcPipeId] = srcPipe.Transport
	opts.Router.transports[dstPipeId] = dstPipe.Transport

	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.rtpCapabilities, r.rtpMappingFor(p))
	if err != nil {
		return nil, asError(err)
	}
	pipeParams := getPipeConsumerRtpParameters(consumable, opts.EnableRtx)

	pipeProducerId := generateIdentifier()
	pipeProducer, err := NewProducer(pipeProducerId, dstPipeId, p.Kind(), pipeParams, RtpMapping{}, p.Paused(), p.appData)
	if err != nil {
		return nil, err
	}
	if err := dstPipe.Produce(pipeProducer); err != nil {
		return nil, err
	}

	sink := &pipeLoopbackSink{peer: dstPipe.Transport}
	pipeConsumer := NewConsumer(generateIdentifier(), srcPipeId, p.Id(), p.Kind(), ConsumerPipe, pipeParams, false, p.Paused(), nil, sink, nil)
	if err := srcPipe.Consume(pipeConsumer, 0); err != nil {
		return nil, err
	}

	return &PipeToRouterResult{PipeConsumer: pipeConsumer, PipeProducer: pipeProducer}, nil
}

// pipeLoopbackSink delivers a PipeConsumer's outbound packets straight into
// the paired PipeTransport's inbound path, standing in for the socket a
// cross-host pipe would otherwise use.
type pipeLoopbackSink struct {
	peer *Transport
}

func (s *pipeLoopbackSink) SendRtpPacket(consumerID string, pkt *rtp.Packet) {
	s.peer.HandleRtpPacket(pkt, false)
}

// CreateWebRtcTransport builds and registers a WebRtcTransport, bound to
// either opts.WebRtcServer or its own ListenInfos per opts.Validate().
func (r *Router) CreateWebRtcTransport(id string, opts WebRtcTransportOptions) (*WebRtcTransport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defaults := WebRtcTransportOptions{
		EnableUdp:                       ref(true),
		InitialAvailableOutgoingBitrate: 600000,
		MaxSctpMessageSize:              262144,
		SctpSendBufferSize:              262144,
	}
	if err := override(&defaults, &opts); err != nil {
		return nil, newError(ErrFatal, "failed to apply WebRtcTransportOptions: %s", err)
	}
	opts = defaults

	t := newWebRtcTransport(id, r.id, opts.WebRtcServer, nil, r, &opts)
	if err := r.RegisterTransport(t.Transport); err != nil {
		return nil, err
	}
	if opts.WebRtcServer != nil {
		opts.WebRtcServer.RegisterTransport(t)
	}
	return t, nil
}

// CreatePlainTransport builds and registers a PlainTransport listening on
// opts.ListenInfo.
func (r *Router) CreatePlainTransport(id string, opts PlainTransportOptions) (*PlainTransport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defaults := PlainTransportOptions{
		RtcpMux:            ref(true),
		MaxSctpMessageSize: 262144,
		SctpSendBufferSize: 262144,
		SrtpCryptoSuite:    AES_CM_128_HMAC_SHA1_80,
	}
	if err := override(&defaults, &opts); err != nil {
		return nil, newError(ErrFatal, "failed to apply PlainTransportOptions: %s", err)
	}
	opts = defaults

	t := newPlainTransport(id, r.id, nil, r, &opts)
	if err := r.RegisterTransport(t.Transport); err != nil {
		return nil, err
	}
	return t, nil
}

// CreatePipeTransport builds and registers a PipeTransport listening on
// opts.ListenInfo. Use PipeToRouter instead for a within-worker pairing.
func (r *Router) CreatePipeTransport(id string, opts PipeTransportOptions) (*PipeTransport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defaults := PipeTransportOptions{
		MaxSctpMessageSize: 268435456,
		SctpSendBufferSize: 268435456,
	}
	if err := override(&defaults, &opts); err != nil {
		return nil, newError(ErrFatal, "failed to apply PipeTransportOptions: %s", err)
	}
	opts = defaults

	t := newPipeTransport(id, r.id, nil, r, &opts)
	if err := r.RegisterTransport(t.Transport); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateDirectTransport builds and registers a DirectTransport, used for
// in-process data channels and for RTP injected through HandleRtpPacket.
func (r *Router) CreateDirectTransport(id string, opts DirectTransportOptions) (*DirectTransport, error) {
	defaults := DirectTransportOptions{MaxMessageSize: 262144}
	if err := override(&defaults, &opts); err != nil {
		return nil, newError(ErrFatal, "failed to apply DirectTransportOptions: %s", err)
	}
	opts = defaults

	t := newDirectTransport(id, r.id, nil, r, &opts)
	if err := r.RegisterTransport(t.Transport); err != nil {
		return nil, err
	}
	return t, nil
}

// Produce negotiates opts.RtpParameters against this Router's capabilities
// and registers a Producer on transportID. An empty opts.Id mints one, the
// same accommodation pipeToRouter needs for its own pipe Producers.
func (r *Router) Produce(transportID string, opts ProducerOptions) (*Producer, error) {
	t, err := r.GetTransport(transportID)
	if err != nil {
		return nil, err
	}
	mapping, err := getProducerRtpParametersMapping(opts.RtpParameters, r.RtpCapabilities())
	if err != nil {
		return nil, asError(err)
	}
	id := opts.Id
	if id == "" {
		id = generateIdentifier()
	}
	p, err := NewProducer(id, transportID, opts.Kind, opts.RtpParameters, mapping, opts.Paused, opts.AppData)
	if err != nil {
		return nil, err
	}
	if err := t.Produce(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Consume negotiates a Consumer for opts.ProducerId against opts.RtpCapabilities
// and registers it on transportID, failing per CanConsume if the two sides
// share no codec.
func (r *Router) Consume(transportID string, opts ConsumerOptions) (*Consumer, error) {
	t, err := r.GetTransport(transportID)
	if err != nil {
		return nil, err
	}
	p, ok := r.producers[opts.ProducerId]
	if !ok {
		return nil, NewNotFoundError("Producer with id %q not found", opts.ProducerId)
	}

	consumable, err := getConsumableRtpParameters(p.Kind(), p.RtpParameters(), r.rtpCapabilities, r.rtpMappingFor(p))
	if err != nil {
		return nil, asError(err)
	}
	if ok, err := canConsume(consumable, opts.RtpCapabilities); err != nil {
		return nil, asError(err)
	} else if !ok {
		return nil, NewUnsupportedError("cannot consume producer %q with the given rtpCapabilities", opts.ProducerId)
	}

	var consumerParams RtpParameters
	var consumerType ConsumerType
	if opts.Pipe {
		consumerParams = getPipeConsumerRtpParameters(consumable, false)
		consumerType = ConsumerPipe
	} else {
		consumerParams, err = getConsumerRtpParameters(consumable, opts.RtpCapabilities, false)
		if err != nil {
			return nil, asError(err)
		}
		consumerType = ConsumerType(p.Type())
	}

	var rtxSsrc uint32
	if len(consumerParams.Encodings) > 0 && consumerParams.Encodings[0].Rtx != nil {
		rtxSsrc = consumerParams.Encodings[0].Rtx.Ssrc
	}

	c := NewConsumer(generateIdentifier(), transportID, opts.ProducerId, p.Kind(), consumerType, consumerParams, opts.Paused, p.Paused(), opts.PreferredLayers, t, opts.AppData)
	if err := t.Consume(c, rtxSsrc); err != nil {
		return nil, err
	}
	return c, nil
}

// ProduceData registers a DataProducer on transportID. Its type follows
// whether SctpStreamParameters was given, mirroring the sctp/direct split
// DataProducerType already encodes.
func (r *Router) ProduceData(transportID string, opts DataProducerOptions) (*DataProducer, error) {
	t, err := r.GetTransport(transportID)
	if err != nil {
		return nil, err
	}
	id := opts.Id
	if id == "" {
		id = generateIdentifier()
	}
	kind := DataProducerDirect
	if opts.SctpStreamParameters != nil {
		kind = DataProducerSctp
	}
	dp := NewDataProducer(id, transportID, kind, opts.SctpStreamParameters, opts.Label, opts.Protocol, opts.Paused, opts.AppData)
	if err := t.ProduceData(dp); err != nil {
		return nil, err
	}
	return dp, nil
}

// ConsumeData registers a DataConsumer forwarding opts.DataProducerId's
// messages to transportID, inheriting the source DataProducer's type and
// its own outgoing SCTP stream id from the Transport's association.
func (r *Router) ConsumeData(transportID string, opts DataConsumerOptions) (*DataConsumer, error) {
	t, err := r.GetTransport(transportID)
	if err != nil {
		return nil, err
	}
	dp, ok := r.dataProducers[opts.DataProducerId]
	if !ok {
		return nil, NewNotFoundError("DataProducer with id %q not found", opts.DataProducerId)
	}

	kind := DataConsumerDirect
	if dp.Type() == DataProducerSctp {
		kind = DataConsumerSctp
	}
	streamId, err := t.allocateDataConsumerStreamId()
	if err != nil {
		return nil, err
	}
	dc := NewDataConsumer(generateIdentifier(), transportID, opts.DataProducerId, kind, dp.sctpParams, dp.Label(), dp.Protocol(), opts.Paused, dp.Paused(), opts.Subchannels, t, opts.AppData)
	if err := t.ConsumeData(dc, streamId); err != nil {
		return nil, err
	}
	return dc, nil
}

func (r *Router) Close() {
	if r.closed {
		return
	}
	r.closed = true
	transports := make([]*Transport, 0, len(r.transports))
	for _, t := range r.transports {
		transports = append(transports, t)
	}
	observers := make([]*RtpObserver, 0, len(r.rtpObservers))
	for _, o := range r.rtpObservers {
		observers = append(observers, o)
	}
	listener := r.listener

	for _, o := range observers {
		o.Close()
	}
	for _, t := range transports {
		t.Close()
	}
	listener.OnRouterClose(r)
}

func (r *Router) Dump() *RouterDump {
	dump := &RouterDump{Id: r.id}
	for id := range r.transports {
		dump.TransportIds = append(dump.TransportIds, id)
	}
	for id := range r.rtpObservers {
		dump.RtpObserverIds = append(dump.RtpObserverIds, id)
	}
	for producerID, consumers := range r.producerConsumers {
		dump.MapProducerIdConsumerIds = append(dump.MapProducerIdConsumerIds, KeyValues[string, string]{Key: producerID, Values: consumers.ids()})
	}
	for consumerID, producerID := range r.consumerProducer {
		dump.MapConsumerIdProducerId = append(dump.MapConsumerIdProducerId, KeyValue[string, string]{Key: consumerID, Value: producerID})
	}
	for producerID, observers := range r.producerRtpObservers {
		var ids []string
		for id := range observers {
			ids = append(ids, id)
		}
		dump.MapProducerIdObserverIds = append(dump.MapProducerIdObserverIds, KeyValues[string, string]{Key: producerID, Values: ids})
	}
	for dataProducerID, consumers := range r.dataProducerDataConsumers {
		var ids []string
		for id := range consumers {
			ids = append(ids, id)
		}
		dump.MapDataProducerIdDataConsumerIds = append(dump.MapDataProducerIdDataConsumerIds, KeyValues[string, string]{Key: dataProducerID, Values: ids})
	}
	for dataConsumerID, dataProducerID := range r.dataConsumerDataProducer {
		dump.MapDataConsumerIdDataProducerId = append(dump.MapDataConsumerIdDataProducerId, KeyValue[string, string]{Key: dataConsumerID, Value: dataProducerID})
	}
	return dump
}
