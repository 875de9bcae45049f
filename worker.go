package sfu

import (
	"context"
	"encoding/json"

	"github.com/go-logr/logr"
	hashiversion "github.com/hashicorp/go-version"

	"github.com/rtcsfu/core/netcodec"
)

// minProtocolVersion is the oldest controller protocol version this Worker
// accepts. A controller speaking an older, incompatible wire shape is
// rejected at startup rather than fail confusingly on the first request.
const minProtocolVersion = ">= 1.0.0"

// Worker is the top-level registry: it owns every WebRtcServer and Router.
// ControlPipe.readLoop is the single goroutine that ever mutates the entity
// graph: it processes requests inline, one at a time, in arrival order, and
// drains the same task queue that RtpObserver timers post their ticks
// through (see PostTask). That single-loop discipline is what makes
// close-cascade and index-map mutation safe without a lock covering the
// graph. Where an entity holds a mutex (RtpStream, the RtpObservers,
// SctpAssociation), it guards only that entity's own fields.
type Worker struct {
	settings WorkerSettings
	logger   logr.Logger

	webRtcServers map[string]*WebRtcServer
	routers       map[string]*Router

	pipe *ControlPipe

	closed bool
}

// NewWorker validates settings.ProtocolVersion (if set) against
// minProtocolVersion and returns a Worker with no entities yet.
func NewWorker(codec netcodec.Codec, settings WorkerSettings) (*Worker, error) {
	if settings.ProtocolVersion != "" {
		v, err := hashiversion.NewVersion(settings.ProtocolVersion)
		if err != nil {
			return nil, NewTypeError("invalid protocolVersion %q: %s", settings.ProtocolVersion, err)
		}
		constraint, err := hashiversion.NewConstraint(minProtocolVersion)
		if err != nil {
			return nil, newError(ErrFatal, "invalid protocol version constraint: %s", err)
		}
		if !constraint.Check(v) {
			return nil, NewInvalidRequestError("unsupported protocol version %s (require %s)", v, minProtocolVersion)
		}
	}

	defaults := WorkerSettings{LogLevel: WorkerLogLevelError}
	if err := override(&defaults, &settings); err != nil {
		return nil, newError(ErrFatal, "failed to apply worker settings: %s", err)
	}

	w := &Worker{
		settings:      defaults,
		logger:        NewLogger("worker"),
		webRtcServers: make(map[string]*WebRtcServer),
		routers:       make(map[string]*Router),
	}
	w.pipe = NewControlPipe(codec, w.handleRequest)
	return w, nil
}

// Run starts the ControlPipe dispatch loop and blocks until ctx is
// cancelled or the pipe fails.
func (w *Worker) Run(ctx context.Context) error {
	return w.pipe.Run(ctx)
}

func (w *Worker) Closed() bool {
	return w.closed
}

// CreateWebRtcServer creates and registers a new WebRtcServer.
func (w *Worker) CreateWebRtcServer(id string, opts *WebRtcServerOptions) (*WebRtcServer, error) {
	if w.closed {
		return nil, NewInvalidStateError("Worker closed")
	}
	if _, ok := w.webRtcServers[id]; ok {
		return nil, NewDuplicateIdError("WebRtcServer with id %q already exists", id)
	}
	server, err := NewWebRtcServer(id, w, opts)
	if err != nil {
		return nil, err
	}
	w.webRtcServers[id] = server
	return server, nil
}

func (w *Worker) GetWebRtcServer(id string) (*WebRtcServer, error) {
	s, ok := w.webRtcServers[id]
	if !ok {
		return nil, NewNotFoundError("WebRtcServer with id %q not found", id)
	}
	return s, nil
}

// CreateRouter creates and registers a new Router.
func (w *Worker) CreateRouter(id string, opts *RouterOptions) (*Router, error) {
	if w.closed {
		return nil, NewInvalidStateError("Worker closed")
	}
	if _, ok := w.routers[id]; ok {
		return nil, NewDuplicateIdError("Router with id %q already exists", id)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	router, err := NewRouter(id, opts.MediaCodecs, w, opts.AppData)
	if err != nil {
		return nil, err
	}
	w.routers[id] = router
	return router, nil
}

func (w *Worker) GetRouter(id string) (*Router, error) {
	r, ok := w.routers[id]
	if !ok {
		return nil, NewNotFoundError("Router with id %q not found", id)
	}
	return r, nil
}

// -- RouterListener / WebRtcServerListener --

func (w *Worker) OnRouterClose(r *Router) {
	delete(w.routers, r.Id())
}

func (w *Worker) OnWebRtcServerClose(s *WebRtcServer) {
	delete(w.webRtcServers, s.Id())
}

// PostTask queues fn to run on the ControlPipe's single dispatch goroutine,
// interleaved with inbound requests in the order both arrive. RtpObservers
// reach this through Router.PostTask so their ticker-driven ticks mutate
// state on the same loop as everything else, instead of racing it from their
// own goroutine (spec §5: driver/timer callbacks are marshaled onto the main
// loop).
func (w *Worker) PostTask(fn func()) {
	w.pipe.PostTask(fn)
}

// OnRouterNeedWebRtcServer resolves the webRtcServerId named by a
// createTransport(webrtc) request into the shared WebRtcServer instance the
// new transport should listen through. router is unused beyond identifying
// the caller for the error message; WebRtcServers are Worker-scoped, not
// Router-scoped.
func (w *Worker) OnRouterNeedWebRtcServer(router *Router, webRtcServerId string) (*WebRtcServer, error) {
	server, err := w.GetWebRtcServer(webRtcServerId)
	if err != nil {
		return nil, NewTypeError("router %q: WebRtcServer with id %q not found", router.Id(), webRtcServerId)
	}
	return server, nil
}

func (w *Worker) UpdateSettings(update WorkerUpdatableSettings) {
	if update.LogLevel != "" {
		w.settings.LogLevel = update.LogLevel
	}
	if update.LogTags != nil {
		w.settings.LogTags = update.LogTags
	}
}

func (w *Worker) Dump() *WorkerDump {
	dump := &WorkerDump{}
	for id := range w.webRtcServers {
		dump.WebRtcServerIds = append(dump.WebRtcServerIds, id)
	}
	for id := range w.routers {
		dump.RouterIds = append(dump.RouterIds, id)
	}
	return dump
}

func (w *Worker) GetResourceUsage() (*ResourceUsage, error) {
	return GetResourceUsage()
}

// Close tears down every Router and WebRtcServer this Worker owns.
func (w *Worker) Close() {
	if w.closed {
		return
	}
	w.closed = true
	routers := make([]*Router, 0, len(w.routers))
	for _, r := range w.routers {
		routers = append(routers, r)
	}
	servers := make([]*WebRtcServer, 0, len(w.webRtcServers))
	for _, s := range w.webRtcServers {
		servers = append(servers, s)
	}

	for _, r := range routers {
		r.Close()
	}
	for _, s := range servers {
		s.Close()
	}
}

// handleRequest is the ControlPipe's RequestHandler: it resolves the
// addressing chain to the target entity and dispatches by method name. The
// most specific non-empty field of internal wins, since a request aimed at
// e.g. a Consumer carries its RouterId and TransportId too.
func (w *Worker) handleRequest(ctx context.Context, internal internalAddress, data json.RawMessage) (interface{}, error) {
	switch {
	case internal.ConsumerId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchConsumerMethod(router, internal.ConsumerId, data)
	case internal.ProducerId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchProducerMethod(router, internal.ProducerId, data)
	case internal.DataConsumerId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchDataConsumerMethod(router, internal.DataConsumerId, data)
	case internal.DataProducerId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchDataProducerMethod(router, internal.DataProducerId, data)
	case internal.RtpObserverId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchRtpObserverMethod(router, internal.RtpObserverId, data)
	case internal.TransportId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchTransportMethod(router, internal.TransportId, data)
	case internal.RouterId != "":
		router, err := w.GetRouter(internal.RouterId)
		if err != nil {
			return nil, err
		}
		return w.dispatchRouterMethod(router, internal, data)
	case internal.WebRtcServerId != "":
		server, err := w.GetWebRtcServer(internal.WebRtcServerId)
		if err != nil {
			return nil, err
		}
		return w.dispatchWebRtcServerMethod(server, data)
	default:
		return w.dispatchWorkerMethod(data)
	}
}

type createRouterRequest struct {
	RouterId string       `json:"routerId"`
	Options  RouterOptions `json:"options"`
}

type createWebRtcServerRequest struct {
	WebRtcServerId string              `json:"webRtcServerId"`
	Options        WebRtcServerOptions `json:"options"`
}

func (w *Worker) dispatchWorkerMethod(data json.RawMessage) (interface{}, error) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, NewInvalidRequestError("bad worker request: %s", err)
	}

	switch req.Method {
	case "worker.dump":
		return w.Dump(), nil
	case "worker.getResourceUsage":
		return w.GetResourceUsage()
	case "worker.createRouter":
		var r createRouterRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createRouter request: %s", err)
		}
		router, err := w.CreateRouter(r.RouterId, &r.Options)
		if err != nil {
			return nil, err
		}
		return router.Dump(), nil
	case "worker.createWebRtcServer":
		var r createWebRtcServerRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createWebRtcServer request: %s", err)
		}
		server, err := w.CreateWebRtcServer(r.WebRtcServerId, &r.Options)
		if err != nil {
			return nil, err
		}
		return server.Dump(), nil
	case "worker.close":
		w.Close()
		return nil, nil
	default:
		return nil, NewInvalidRequestError("unknown worker method %q", req.Method)
	}
}

// requestMethod extracts "method" out of a request's data blob: the
// ControlPipe's dispatch() passes method and data together (see dispatch in
// controlpipe.go), so every per-scope dispatcher re-parses it from data
// rather than receiving it as a separate argument.
func requestMethod(data json.RawMessage) (string, error) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return "", NewInvalidRequestError("bad request: %s", err)
	}
	return req.Method, nil
}

type createTransportRequest[T any] struct {
	TransportId string `json:"transportId"`
	Options     T      `json:"options"`
}

// createWebRtcTransportRequest is createTransportRequest[WebRtcTransportOptions]
// widened with webRtcServerId: createTransport(webrtc) is the one transport
// kind that can be attached to a listener shared across routers, named by id
// rather than embedded in the options body (WebRtcTransportOptions.WebRtcServer
// carries json:"-" since a live *WebRtcServer can't be unmarshaled directly).
type createWebRtcTransportRequest struct {
	TransportId    string                 `json:"transportId"`
	WebRtcServerId string                 `json:"webRtcServerId,omitempty"`
	Options        WebRtcTransportOptions `json:"options"`
}

type pipeToRouterRequest struct {
	DstRouterId    string              `json:"dstRouterId"`
	ListenInfo     TransportListenInfo `json:"listenInfo"`
	ProducerId     string              `json:"producerId,omitempty"`
	DataProducerId string              `json:"dataProducerId,omitempty"`
	EnableSctp     *bool               `json:"enableSctp,omitempty"`
	NumSctpStreams *NumSctpStreams     `json:"numSctpStreams,omitempty"`
	EnableRtx      bool                `json:"enableRtx,omitempty"`
	EnableSrtp     bool                `json:"enableSrtp,omitempty"`
}

type createRtpObserverRequest[T any] struct {
	RtpObserverId string `json:"rtpObserverId"`
	Options       T      `json:"options"`
}

func (w *Worker) dispatchWebRtcServerMethod(server *WebRtcServer, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	switch method {
	case "webRtcServer.dump":
		return server.Dump(), nil
	case "webRtcServer.close":
		server.Close()
		return nil, nil
	default:
		return nil, NewInvalidRequestError("unknown webRtcServer method %q", method)
	}
}

func (w *Worker) dispatchRouterMethod(router *Router, internal internalAddress, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	switch method {
	case "router.dump":
		return router.Dump(), nil
	case "router.close":
		router.Close()
		return nil, nil
	case "router.canConsume":
		var r struct {
			ProducerId      string          `json:"producerId"`
			RtpCapabilities RtpCapabilities `json:"rtpCapabilities"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad canConsume request: %s", err)
		}
		return router.CanConsume(r.ProducerId, r.RtpCapabilities)
	case "router.createWebRtcTransport":
		var r createWebRtcTransportRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createWebRtcTransport request: %s", err)
		}
		if r.WebRtcServerId != "" {
			server, err := w.OnRouterNeedWebRtcServer(router, r.WebRtcServerId)
			if err != nil {
				return nil, err
			}
			r.Options.WebRtcServer = server
		}
		t, err := router.CreateWebRtcTransport(r.TransportId, r.Options)
		if err != nil {
			return nil, err
		}
		return t.Dump(), nil
	case "router.createPlainTransport":
		var r createTransportRequest[PlainTransportOptions]
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createPlainTransport request: %s", err)
		}
		t, err := router.CreatePlainTransport(r.TransportId, r.Options)
		if err != nil {
			return nil, err
		}
		return t.Dump(), nil
	case "router.createPipeTransport":
		var r createTransportRequest[PipeTransportOptions]
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createPipeTransport request: %s", err)
		}
		t, err := router.CreatePipeTransport(r.TransportId, r.Options)
		if err != nil {
			return nil, err
		}
		return t.Dump(), nil
	case "router.createDirectTransport":
		var r createTransportRequest[DirectTransportOptions]
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createDirectTransport request: %s", err)
		}
		t, err := router.CreateDirectTransport(r.TransportId, r.Options)
		if err != nil {
			return nil, err
		}
		return t.Dump(), nil
	case "router.pipeToRouter":
		var r pipeToRouterRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad pipeToRouter request: %s", err)
		}
		dst, err := w.GetRouter(r.DstRouterId)
		if err != nil {
			return nil, err
		}
		result, err := router.PipeToRouter(PipeToRouterOptions{
			ListenInfo:     r.ListenInfo,
			ProducerId:     r.ProducerId,
			DataProducerId: r.DataProducerId,
			Router:         dst,
			EnableSctp:     r.EnableSctp,
			NumSctpStreams: r.NumSctpStreams,
			EnableRtx:      r.EnableRtx,
			EnableSrtp:     r.EnableSrtp,
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	case "router.createAudioLevelObserver":
		var r createRtpObserverRequest[AudioLevelObserverOptions]
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createAudioLevelObserver request: %s", err)
		}
		o, err := router.CreateAudioLevelObserver(r.RtpObserverId, w, &r.Options)
		if err != nil {
			return nil, err
		}
		return o.Dump(), nil
	case "router.createActiveSpeakerObserver":
		var r createRtpObserverRequest[ActiveSpeakerObserverOptions]
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad createActiveSpeakerObserver request: %s", err)
		}
		o, err := router.CreateActiveSpeakerObserver(r.RtpObserverId, w, &r.Options)
		if err != nil {
			return nil, err
		}
		return o.Dump(), nil
	default:
		return nil, NewInvalidRequestError("unknown router method %q", method)
	}
}

func (w *Worker) dispatchTransportMethod(router *Router, transportID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	t, err := router.GetTransport(transportID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "transport.dump":
		return t.Dump(), nil
	case "transport.close":
		t.Close()
		return nil, nil
	case "transport.connect":
		var r TransportConnectOptions
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad connect request: %s", err)
		}
		if err := t.Connect(r); err != nil {
			return nil, err
		}
		return nil, nil
	case "transport.produce":
		var r ProducerOptions
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad produce request: %s", err)
		}
		p, err := router.Produce(transportID, r)
		if err != nil {
			return nil, err
		}
		return p.Dump(), nil
	case "transport.consume":
		var r ConsumerOptions
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad consume request: %s", err)
		}
		c, err := router.Consume(transportID, r)
		if err != nil {
			return nil, err
		}
		return c.Dump(), nil
	case "transport.produceData":
		var r DataProducerOptions
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad produceData request: %s", err)
		}
		dp, err := router.ProduceData(transportID, r)
		if err != nil {
			return nil, err
		}
		return dp.Dump(), nil
	case "transport.consumeData":
		var r DataConsumerOptions
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad consumeData request: %s", err)
		}
		dc, err := router.ConsumeData(transportID, r)
		if err != nil {
			return nil, err
		}
		return dc.Dump(), nil
	default:
		return nil, NewInvalidRequestError("unknown transport method %q", method)
	}
}

func (w *Worker) dispatchProducerMethod(router *Router, producerID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	p, err := router.GetProducer(producerID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "producer.dump":
		return p.Dump(), nil
	case "producer.getStats":
		return p.GetStats(), nil
	case "producer.pause":
		return nil, p.Pause()
	case "producer.resume":
		return nil, p.Resume()
	case "producer.close":
		p.Close()
		return nil, nil
	default:
		return nil, NewInvalidRequestError("unknown producer method %q", method)
	}
}

func (w *Worker) dispatchConsumerMethod(router *Router, consumerID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	c, err := router.GetConsumer(consumerID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "consumer.dump":
		return c.Dump(), nil
	case "consumer.getStats":
		return c.GetStats(), nil
	case "consumer.pause":
		return nil, c.Pause()
	case "consumer.resume":
		return nil, c.Resume()
	case "consumer.close":
		c.Close()
		return nil, nil
	case "consumer.setPreferredLayers":
		var r ConsumerLayers
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad setPreferredLayers request: %s", err)
		}
		c.SetPreferredLayers(&r)
		return nil, nil
	case "consumer.setPriority":
		var r struct {
			Priority byte `json:"priority"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad setPriority request: %s", err)
		}
		c.SetPriority(r.Priority)
		return nil, nil
	case "consumer.requestKeyFrame":
		return nil, router.RequestConsumerKeyFrame(consumerID)
	default:
		return nil, NewInvalidRequestError("unknown consumer method %q", method)
	}
}

func (w *Worker) dispatchDataProducerMethod(router *Router, dataProducerID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	dp, err := router.GetDataProducer(dataProducerID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "dataProducer.dump":
		return dp.Dump(), nil
	case "dataProducer.getStats":
		return dp.GetStats(), nil
	case "dataProducer.pause":
		return nil, dp.Pause()
	case "dataProducer.resume":
		return nil, dp.Resume()
	case "dataProducer.close":
		dp.Close()
		return nil, nil
	case "dataProducer.send":
		var r struct {
			Data        []byte          `json:"data"`
			Ppid        SctpPayloadType `json:"ppid,omitempty"`
			Subchannels []uint16        `json:"subchannels,omitempty"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad send request: %s", err)
		}
		ppid := r.Ppid
		if ppid == SctpPayloadUnknown {
			ppid = SctpPayloadWebRTCBinary
		}
		return nil, router.SendData(dataProducerID, r.Data, ppid, r.Subchannels)
	default:
		return nil, NewInvalidRequestError("unknown dataProducer method %q", method)
	}
}

func (w *Worker) dispatchDataConsumerMethod(router *Router, dataConsumerID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	dc, err := router.GetDataConsumer(dataConsumerID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "dataConsumer.dump":
		return dc.Dump(), nil
	case "dataConsumer.getStats":
		return dc.GetStats(), nil
	case "dataConsumer.pause":
		return nil, dc.Pause()
	case "dataConsumer.resume":
		return nil, dc.Resume()
	case "dataConsumer.close":
		dc.Close()
		return nil, nil
	case "dataConsumer.setSubchannels":
		var r struct {
			Subchannels []uint16 `json:"subchannels"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad setSubchannels request: %s", err)
		}
		dc.SetSubchannels(r.Subchannels)
		return nil, nil
	default:
		return nil, NewInvalidRequestError("unknown dataConsumer method %q", method)
	}
}

func (w *Worker) dispatchRtpObserverMethod(router *Router, rtpObserverID string, data json.RawMessage) (interface{}, error) {
	method, err := requestMethod(data)
	if err != nil {
		return nil, err
	}

	o, err := router.GetRtpObserver(rtpObserverID)
	if err != nil {
		return nil, err
	}

	switch method {
	case "rtpObserver.dump":
		return o.Dump(), nil
	case "rtpObserver.pause":
		return nil, o.Pause()
	case "rtpObserver.resume":
		return nil, o.Resume()
	case "rtpObserver.close":
		o.Close()
		return nil, nil
	case "rtpObserver.addProducer":
		var r struct {
			ProducerId string `json:"producerId"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad addProducer request: %s", err)
		}
		return nil, router.ObserverAddProducer(rtpObserverID, r.ProducerId)
	case "rtpObserver.removeProducer":
		var r struct {
			ProducerId string `json:"producerId"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, NewInvalidRequestError("bad removeProducer request: %s", err)
		}
		return nil, router.ObserverRemoveProducer(rtpObserverID, r.ProducerId)
	default:
		return nil, NewInvalidRequestError("unknown rtpObserver method %q", method)
	}
}

// audioLevelVolumeNotification/audioLevelDominantSpeakerNotification are the
// wire shapes pushed for AudioLevelObserver/ActiveSpeakerObserver events:
// *Producer itself carries no json tags, so its id is extracted here.
type audioLevelVolumeNotification struct {
	ProducerId string `json:"producerId"`
	Volume     int8   `json:"volume"`
}

type dominantSpeakerNotification struct {
	ProducerId string `json:"producerId"`
}

// OnAudioLevelVolumes/OnAudioLevelSilence/OnDominantSpeaker implement
// AudioLevelObserverListener/ActiveSpeakerObserverListener: the Worker is
// what owns the ControlPipe, so it is what turns observer state changes
// into outbound notifications.
func (w *Worker) OnAudioLevelVolumes(o *AudioLevelObserver, volumes []AudioLevelObserverVolume) {
	payload := make([]audioLevelVolumeNotification, 0, len(volumes))
	for _, v := range volumes {
		payload = append(payload, audioLevelVolumeNotification{ProducerId: v.Producer.Id(), Volume: v.Volume})
	}
	w.pipe.Notify(o.Id(), "volumes", payload)
}

func (w *Worker) OnAudioLevelSilence(o *AudioLevelObserver) {
	w.pipe.Notify(o.Id(), "silence", nil)
}

func (w *Worker) OnDominantSpeaker(o *ActiveSpeakerObserver, dominant AudioLevelObserverDominantSpeaker) {
	w.pipe.Notify(o.Id(), "dominantspeaker", dominantSpeakerNotification{ProducerId: dominant.Producer.Id()})
}
