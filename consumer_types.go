package sfu

// ConsumerType mirrors ProducerType but from the receiving side: a pipe
// Consumer forwards every original encoding unchanged, the others reduce
// to a single encoding (and, for Simulcast/Svc, support layer switching).
type ConsumerType string

const (
	ConsumerSimple    ConsumerType = "simple"
	ConsumerSimulcast ConsumerType = "simulcast"
	ConsumerSvc       ConsumerType = "svc"
	ConsumerPipe      ConsumerType = "pipe"
)

// ConsumerOptions define options to create a consumer.
type ConsumerOptions struct {
	// ProducerId is the id of the Producer to consume.
	ProducerId string `json:"producerId,omitempty"`

	// RtpCapabilities is the RTP capabilities of the consuming endpoint.
	RtpCapabilities RtpCapabilities `json:"rtpCapabilities,omitempty"`

	// Paused define whether the Consumer must start in paused mode. Default false.
	Paused bool `json:"paused,omitempty"`

	// Mid is the MID for the Consumer. If not specified, a sequential number is used.
	Mid string `json:"mid,omitempty"`

	// PreferredLayers define preferred spatial and temporal layer for simulcast
	// or SVC media sources.
	PreferredLayers *ConsumerLayers `json:"preferredLayers,omitempty"`

	// Pipe marks this as the consumer side of a within-worker Router pairing:
	// it forwards every consumable encoding unmodified.
	Pipe bool `json:"-"`

	// IgnoreDtx disables discarding of empty packets when DTX is negotiated.
	IgnoreDtx bool `json:"ignoreDtx,omitempty"`

	// AppData is custom application data.
	AppData H `json:"appData,omitempty"`
}

// ConsumerScore define "score" event data.
type ConsumerScore struct {
	// Score of the RTP stream of the consumer.
	Score uint8 `json:"score"`

	// ProducerScore is the highest score among the producer's RTP streams.
	ProducerScore uint8 `json:"producerScore"`

	// ProducerScores is scores of all RTP streams in the producer ordered by encoding index.
	ProducerScores []uint8 `json:"producerScores,omitempty"`
}

// ConsumerLayers define spatial and temporal layer selection for a Simulcast
// or SVC consumer. Both are plain ints; TemporalLayer is omitted from JSON
// when it is 0.
type ConsumerLayers struct {
	SpatialLayer  int `json:"spatialLayer"`
	TemporalLayer int `json:"temporalLayer,omitempty"`
}

// ConsumerTraceEventType define the type for "trace" event.
type ConsumerTraceEventType string

const (
	ConsumerTraceEventRtp      ConsumerTraceEventType = "rtp"
	ConsumerTraceEventKeyframe ConsumerTraceEventType = "keyframe"
	ConsumerTraceEventNack     ConsumerTraceEventType = "nack"
	ConsumerTraceEventPli      ConsumerTraceEventType = "pli"
	ConsumerTraceEventFir      ConsumerTraceEventType = "fir"
)

// ConsumerTraceEventData is "trace" event data.
type ConsumerTraceEventData struct {
	Type      ConsumerTraceEventType `json:"type,omitempty"`
	Timestamp uint64                 `json:"timestamp,omitempty"`
	Direction string                 `json:"direction,omitempty"`
	Info      any                    `json:"info,omitempty"`
}

// ConsumerDump reports the full persistent state of a Consumer.
type ConsumerDump struct {
	Id              string                   `json:"id,omitempty"`
	ProducerId      string                   `json:"producerId,omitempty"`
	Kind            MediaKind                `json:"kind,omitempty"`
	Type            ConsumerType             `json:"type,omitempty"`
	RtpParameters   RtpParameters            `json:"rtpParameters,omitempty"`
	ConsumableRtpEncodings []RtpEncodingParameters `json:"consumableRtpEncodings,omitempty"`
	SupportedCodecPayloadTypes []byte        `json:"supportedCodecPayloadTypes,omitempty"`
	TraceEventTypes []ConsumerTraceEventType `json:"traceEventTypes,omitempty"`
	Paused          bool                     `json:"paused,omitempty"`
	ProducerPaused  bool                     `json:"producerPaused,omitempty"`
	Priority        byte                     `json:"priority,omitempty"`
	PreferredLayers *ConsumerLayers          `json:"preferredLayers,omitempty"`
	CurrentLayers   *ConsumerLayers          `json:"currentLayers,omitempty"`
	AvailableLayers []int                    `json:"availableLayers,omitempty"`
}

// ConsumerStat is the statistic info of a consumer.
type ConsumerStat = RtpStreamSendStats
