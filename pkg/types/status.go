package types

// HandleStatus summarizes one built engine.
type HandleStatus struct {
	// example: nl-en
	Key string `json:"key" example:"nl-en"`
	// When the engine finished building (unix seconds).
	// example: 1700000000
	BuiltAt int64 `json:"built_at_unix" example:"1700000000"`
	// Last time the engine served a call (unix seconds, 0 if never).
	// example: 1700000100
	LastUsed int64 `json:"last_used_unix" example:"1700000100"`
	// Calls served so far.
	// example: 42
	Calls uint64 `json:"calls" example:"42"`
	// Callers waiting for their turn.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Calls currently running (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Waiting callers allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// RegistryStatus lists the built engines of one capability.
type RegistryStatus struct {
	// example: translation
	Capability string         `json:"capability" example:"translation"`
	Handles    []HandleStatus `json:"handles"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Registries []RegistryStatus `json:"registries"`
	// True once startup preloading has finished.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Builds completed since start.
	// example: 3
	BuildsTotal uint64 `json:"builds_total" example:"3"`
	// Builds that failed since start.
	// example: 0
	BuildFailures uint64 `json:"build_failures" example:"0"`
	// Last build error observed, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
