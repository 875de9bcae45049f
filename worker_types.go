package sfu

type WorkerLogLevel string

const (
	WorkerLogLevelDebug WorkerLogLevel = "debug"
	WorkerLogLevelWarn  WorkerLogLevel = "warn"
	WorkerLogLevelError WorkerLogLevel = "error"
	WorkerLogLevelNone  WorkerLogLevel = "none"
)

type WorkerLogTag string

const (
	WorkerLogTagInfo      WorkerLogTag = "info"
	WorkerLogTagIce       WorkerLogTag = "ice"
	WorkerLogTagDtls      WorkerLogTag = "dtls"
	WorkerLogTagRtp       WorkerLogTag = "rtp"
	WorkerLogTagSrtp      WorkerLogTag = "srtp"
	WorkerLogTagRtcp      WorkerLogTag = "rtcp"
	WorkerLogTagRtx       WorkerLogTag = "rtx"
	WorkerLogTagBwe       WorkerLogTag = "bwe"
	WorkerLogTagScore     WorkerLogTag = "score"
	WorkerLogTagSimulcast WorkerLogTag = "simulcast"
	WorkerLogTagSvc       WorkerLogTag = "svc"
	WorkerLogTagSctp      WorkerLogTag = "sctp"
)

// WorkerSettings configures a Worker at creation time.
type WorkerSettings struct {
	// ProtocolVersion is the wire protocol version this Worker requires of
	// its controller, checked against hashicorp/go-version constraints.
	ProtocolVersion string `json:"protocolVersion,omitempty"`

	// LogLevel is stored on the Worker and replaced by UpdateSettings; the
	// loggers do not read it.
	LogLevel WorkerLogLevel `json:"logLevel,omitempty"`

	// LogTags is stored the same way and is not read by the loggers either;
	// per-scope log filtering comes only from the DEBUG environment variable.
	LogTags []WorkerLogTag `json:"logTags,omitempty"`

	// DtlsCertificateFile/DtlsPrivateKeyFile point a WebRtcTransport driver
	// at a fixed DTLS identity. If empty, the driver is expected to
	// generate one dynamically.
	DtlsCertificateFile string `json:"dtlsCertificateFile,omitempty"`
	DtlsPrivateKeyFile  string `json:"dtlsPrivateKeyFile,omitempty"`

	// AppData is custom application data.
	AppData H `json:"appData,omitempty"`
}

// WorkerUpdatableSettings is the subset of WorkerSettings that can be
// changed after creation via Worker.UpdateSettings.
type WorkerUpdatableSettings struct {
	LogLevel WorkerLogLevel `json:"logLevel,omitempty"`
	LogTags  []WorkerLogTag `json:"logTags,omitempty"`
}

// WorkerDump reports every top-level entity this Worker owns.
type WorkerDump struct {
	WebRtcServerIds []string `json:"webRtcServerIds,omitempty"`
	RouterIds       []string `json:"routerIds,omitempty"`
}
