package sfu

import (
	"sync"

	"github.com/pion/sctp"
)

// SctpAssociation wraps a pion/sctp Association for transports that enabled
// SCTP (WebRtcTransport, PlainTransport, PipeTransport). The association
// itself is established by whatever TransportDriver owns the underlying
// socket; this type only tracks the per-stream bookkeeping this module's
// routing layer needs (stream id to DataProducer/DataConsumer).
type SctpAssociation struct {
	mu sync.Mutex

	assoc   *sctp.Association
	streams map[uint16]*sctp.Stream

	nextStreamId uint16
	maxStreams   uint16
}

// NewSctpAssociation wraps an already-established association. assoc may be
// nil until the driver finishes its handshake; OpenStream fails until then.
func NewSctpAssociation(assoc *sctp.Association, numStreams NumSctpStreams) *SctpAssociation {
	return &SctpAssociation{
		assoc:      assoc,
		streams:    make(map[uint16]*sctp.Stream),
		maxStreams: uint16(numStreams.MIS),
	}
}

func (a *SctpAssociation) Attach(assoc *sctp.Association) {
	a.mu.Lock()
	a.assoc = assoc
	a.mu.Unlock()
}

// OpenStream opens (or returns the already-open) SCTP stream for a
// DataProducer/DataConsumer's negotiated stream id.
func (a *SctpAssociation) OpenStream(streamId uint16, ppid sctp.PayloadProtocolIdentifier) (*sctp.Stream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.assoc == nil {
		return nil, NewInvalidStateError("sctp association not established")
	}
	if s, ok := a.streams[streamId]; ok {
		return s, nil
	}
	s, err := a.assoc.OpenStream(streamId, ppid)
	if err != nil {
		return nil, NewInvalidStateError("failed to open sctp stream %d: %s", streamId, err)
	}
	a.streams[streamId] = s
	return s, nil
}

// AllocateStreamId picks the next unused outgoing stream id, honoring the
// negotiated MIS (maximum inbound streams) limit.
func (a *SctpAssociation) AllocateStreamId() (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := uint16(0); i < a.maxStreams; i++ {
		id := a.nextStreamId
		a.nextStreamId++
		if a.nextStreamId >= a.maxStreams {
			a.nextStreamId = 0
		}
		if _, used := a.streams[id]; !used {
			return id, nil
		}
		_ = i
	}
	return 0, NewInvalidStateError("no free sctp stream id available")
}

func (a *SctpAssociation) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, s := range a.streams {
		_ = s.Close()
		delete(a.streams, id)
	}
	if a.assoc != nil {
		return a.assoc.Close()
	}
	return nil
}
