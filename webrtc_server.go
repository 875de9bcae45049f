package sfu

// WebRtcServerListener receives the notification a WebRtcServer emits
// toward its owning Worker.
type WebRtcServerListener interface {
	OnWebRtcServerClose(s *WebRtcServer)
}

// WebRtcServer is a singleton listening resource shared by many
// WebRtcTransports, so they can reuse the same UDP/TCP sockets and ICE
// candidates instead of each opening its own.
type WebRtcServer struct {
	id         string
	listenInfos []*TransportListenInfo
	appData    H
	closed     bool

	webRtcTransports map[string]*WebRtcTransport

	localIceUsernameFragments map[string]string // fragment -> webRtcTransportId
	tupleHashes               map[uint64]string // tupleHash -> webRtcTransportId

	listener WebRtcServerListener
}

func NewWebRtcServer(id string, listener WebRtcServerListener, opts *WebRtcServerOptions) (*WebRtcServer, error) {
	if len(opts.ListenInfos) == 0 {
		return nil, NewTypeError("missing listenInfos")
	}
	return &WebRtcServer{
		id:                        id,
		listenInfos:               opts.ListenInfos,
		appData:                   opts.AppData,
		webRtcTransports:          make(map[string]*WebRtcTransport),
		localIceUsernameFragments: make(map[string]string),
		tupleHashes:               make(map[uint64]string),
		listener:                  listener,
	}, nil
}

func (s *WebRtcServer) Id() string { return s.id }

func (s *WebRtcServer) Closed() bool {
	return s.closed
}

// RegisterTransport indexes a WebRtcTransport's local ICE username fragment
// so inbound STUN binding requests can be demultiplexed to it.
func (s *WebRtcServer) RegisterTransport(t *WebRtcTransport) {
	s.webRtcTransports[t.Id()] = t
	s.localIceUsernameFragments[t.IceParameters().UsernameFragment] = t.Id()
}

func (s *WebRtcServer) UnregisterTransport(t *WebRtcTransport) {
	delete(s.webRtcTransports, t.Id())
	delete(s.localIceUsernameFragments, t.IceParameters().UsernameFragment)
}

func (s *WebRtcServer) NumWebRtcTransports() int {
	return len(s.webRtcTransports)
}

// Close cascades to every WebRtcTransport still bound to this server: each
// is closed with a plain Close; no close reason is recorded for them.
func (s *WebRtcServer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	transports := make([]*WebRtcTransport, 0, len(s.webRtcTransports))
	for _, t := range s.webRtcTransports {
		transports = append(transports, t)
	}
	listener := s.listener

	for _, t := range transports {
		t.Close()
	}
	listener.OnWebRtcServerClose(s)
}

func (s *WebRtcServer) Dump() *WebRtcServerDump {
	dump := &WebRtcServerDump{Id: s.id}
	for id := range s.webRtcTransports {
		dump.WebRtcTransportIds = append(dump.WebRtcTransportIds, id)
	}
	for frag, id := range s.localIceUsernameFragments {
		dump.LocalIceUsernameFragments = append(dump.LocalIceUsernameFragments, IceUserNameFragment{
			LocalIceUsernameFragment: frag,
			WebRtcTransportId:        id,
		})
	}
	return dump
}
