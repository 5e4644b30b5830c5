package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CouplingRecord describes one resolved coupling at run time.
type CouplingRecord struct {
	ID       string `json:"id"`
	Producer string `json:"producer"`
	Consumer string `json:"consumer"`
	Strategy string `json:"strategy"`
}

// RunRecord summarizes one workspace run: what was wired and how far the
// run advanced. It never carries component-internal state.
type RunRecord struct {
	VersionedRecord
	RunID      string           `json:"run_id"`
	Components []string         `json:"components"`
	Couplings  []CouplingRecord `json:"couplings,omitempty"`
	Requested  int              `json:"requested"`
	Completed  int              `json:"completed"`
	Failures   int64            `json:"failures"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// IterationSample records watched producer values as of one completed
// iteration boundary.
type IterationSample struct {
	Iteration int64              `json:"iteration"`
	Values    map[string]float64 `json:"values"`
}

// ActionFailureRecord is one isolated action failure within a run.
type ActionFailureRecord struct {
	Iteration int64  `json:"iteration"`
	Action    string `json:"action"`
	Error     string `json:"error"`
}
