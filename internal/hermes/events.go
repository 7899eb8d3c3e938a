package hermes

import (
	"encoding/json"
	"time"
)

// RunRequestEvent asks the service to queue an evaluation. Document is any accepted input
// layout; Mode is "rank", "classify" or empty for the document's own mode.
type RunRequestEvent struct {
	Document json.RawMessage `json:"document"`
	Mode     string          `json:"mode,omitempty"`
	Source   string          `json:"source,omitempty"`
}

type RunCreatedEvent struct {
	RunID  string `json:"run_id"`
	Mode   string `json:"mode,omitempty"`
	Source string `json:"source,omitempty"`
}

type RunStartedEvent struct {
	RunID string `json:"run_id"`
}

type RunCompletedEvent struct {
	RunID      string          `json:"run_id"`
	Mode       string          `json:"mode"`
	Kind       string          `json:"kind"`
	Elements   int             `json:"elements"`
	DurationMs float64         `json:"duration_ms"`
	Result     json.RawMessage `json:"result"`
}

type RunFailedEvent struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

type StatsEvent struct {
	Pending   int       `json:"pending"`
	Running   int       `json:"running"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	AvgMs     float64   `json:"avg_completion_ms"`
	Timestamp time.Time `json:"timestamp"`
}
