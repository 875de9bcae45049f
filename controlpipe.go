package sfu

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/rtcsfu/core/netcodec"
)

// internalAddress carries the addressing chain a request's "internal"
// object uses to reach the entity it targets, mirroring the nesting of the
// entity hierarchy: a request never needs more than one non-empty field at
// each level below the one it addresses.
type internalAddress struct {
	WebRtcServerId string `json:"webRtcServerId,omitempty"`
	RouterId       string `json:"routerId,omitempty"`
	TransportId    string `json:"transportId,omitempty"`
	ProducerId     string `json:"producerId,omitempty"`
	ConsumerId     string `json:"consumerId,omitempty"`
	DataProducerId string `json:"dataProducerId,omitempty"`
	DataConsumerId string `json:"dataConsumerId,omitempty"`
	RtpObserverId  string `json:"rtpObserverId,omitempty"`
}

// requestEnvelope is the wire shape of one inbound ControlPipe request.
type requestEnvelope struct {
	Id       uint32          `json:"id"`
	Method   string          `json:"method"`
	Internal internalAddress `json:"internal"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// responseEnvelope is the wire shape of one outbound ControlPipe reply: it
// is either an acceptance (Accepted true, Data optional) or a rejection
// (Accepted false, Error/Reason set).
type responseEnvelope struct {
	Id       uint32      `json:"id"`
	Accepted bool        `json:"accepted"`
	Data     interface{} `json:"data,omitempty"`
	Error    ErrorKind   `json:"error,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// notificationEnvelope is the wire shape of an outbound event notification,
// unprompted by any request (score updates, close events, and so on).
type notificationEnvelope struct {
	TargetId string      `json:"targetId"`
	Event    string      `json:"event"`
	Data     interface{} `json:"data,omitempty"`
}

// RequestHandler dispatches one decoded request to whatever Worker/Router/
// Transport/etc. method it names, returning the payload to put in Data on
// success.
type RequestHandler func(ctx context.Context, internal internalAddress, data json.RawMessage) (interface{}, error)

// ControlPipe is the server side of the netstring/JSON wire protocol: it
// reads framed requests, dispatches them through a caller-supplied handler,
// writes back the accept/error envelope, and separately emits notifications
// pushed by the handler's side effects.
type ControlPipe struct {
	codec   netcodec.Codec
	handler RequestHandler
	logger  logr.Logger

	notifications chan notificationEnvelope
	tasks         chan func()
}

func NewControlPipe(codec netcodec.Codec, handler RequestHandler) *ControlPipe {
	return &ControlPipe{
		codec:         codec,
		handler:       handler,
		logger:        NewLogger("controlpipe"),
		notifications: make(chan notificationEnvelope, 256),
		tasks:         make(chan func(), 256),
	}
}

// Notify queues a notification for delivery; it never blocks the caller
// beyond the channel's buffer, so a slow reader cannot stall a packet fan-out.
func (p *ControlPipe) Notify(targetId, event string, data interface{}) {
	select {
	case p.notifications <- notificationEnvelope{TargetId: targetId, Event: event, Data: data}:
	default:
		p.logger.Info("dropping notification, backlog full", "event", event, "targetId", targetId)
	}
}

// PostTask queues fn to run on readLoop's goroutine, the same one that
// processes inbound requests one at a time in arrival order. It is how
// anything that would otherwise need its own goroutine (RtpObserver ticker
// ticks) marshals its work onto the single loop spec §5 requires, instead of
// mutating entity state from a goroutine of its own.
func (p *ControlPipe) PostTask(fn func()) {
	select {
	case p.tasks <- fn:
	default:
		p.logger.Info("dropping task, backlog full")
	}
}

// Run reads requests and writes notifications until ctx is cancelled or the
// codec returns an unrecoverable error. A panic inside a handler is
// recovered in dispatch, logged, and answered as an ErrFatal rejection of
// that request; the pipe and the Worker keep running.
func (p *ControlPipe) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return p.readLoop(ctx)
	})
	group.Go(func() error {
		return p.writeLoop(ctx)
	})

	return group.Wait()
}

// readLoop is the single goroutine that ever calls into the handler: it owns
// a dedicated reader goroutine that only blocks on codec.ReadPayload and
// hands each payload over a channel, then serially drains that channel
// alongside p.tasks so requests are processed one at a time in arrival order
// and posted tasks (RtpObserver ticks) never run concurrently with a request
// (spec §5: "no locks; there is no shared mutable state across threads
// inside the core").
func (p *ControlPipe) readLoop(ctx context.Context) error {
	payloads := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		for {
			payload, err := p.codec.ReadPayload()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case payloads <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case payload := <-payloads:
			p.handleRequest(ctx, payload)
		case fn := <-p.tasks:
			fn()
		}
	}
}

func (p *ControlPipe) handleRequest(ctx context.Context, payload []byte) {
	resp := p.dispatch(ctx, payload)
	data, err := json.Marshal(resp)
	if err != nil {
		p.logger.Error(err, "failed to marshal response")
		return
	}
	if err := p.codec.WritePayload(data); err != nil {
		p.logger.Error(err, "failed to write response")
	}
}

func (p *ControlPipe) dispatch(ctx context.Context, payload []byte) (resp responseEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(fmt.Errorf("%v", r), "request handler panicked")
			resp = responseEnvelope{Accepted: false, Error: ErrFatal, Reason: fmt.Sprintf("%v", r)}
		}
	}()

	var req requestEnvelope
	if err := json.Unmarshal(payload, &req); err != nil {
		return responseEnvelope{Accepted: false, Error: ErrInvalidRequest, Reason: err.Error()}
	}

	result, err := p.handler(ctx, req.Internal, req.Data)
	if err != nil {
		e := asError(err)
		return responseEnvelope{Id: req.Id, Accepted: false, Error: e.Kind, Reason: e.Message}
	}
	return responseEnvelope{Id: req.Id, Accepted: true, Data: result}
}

func (p *ControlPipe) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-p.notifications:
			data, err := json.Marshal(n)
			if err != nil {
				p.logger.Error(err, "failed to marshal notification")
				continue
			}
			if err := p.codec.WritePayload(data); err != nil {
				return err
			}
		}
	}
}
