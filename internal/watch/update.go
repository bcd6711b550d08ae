package watch

import (
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

// State is the lifecycle state of a Watcher.
type State int

const (
	// StateIdle means Start has not been called.
	StateIdle State = iota
	// StatePolling means the watcher is ticking.
	StatePolling
	// StateStopped is final. It is reached on completion, on a fatal fetch
	// error, or through Stop.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Indicator summarises the watcher for display.
type Indicator string

// Indicator values.
const (
	IndicatorIdle     Indicator = "idle"
	IndicatorPolling  Indicator = "polling"
	IndicatorRetrying Indicator = "retrying"
	IndicatorStopped  Indicator = "stopped"
)

// Update is published after every tick, successful or not.
//
// Logs is the accumulated log of the watch so far and must be treated as
// read-only. New holds just the entries added by this tick.
type Update struct {
	RunID       int64                `json:"run_id"`
	Tick        int                  `json:"tick"`
	Status      domain.Status        `json:"status"`
	Conclusion  domain.Conclusion    `json:"conclusion"`
	ExternalURL string               `json:"external_url,omitempty"`
	Jobs        []domain.JobSnapshot `json:"jobs"`
	Logs        []domain.LogEntry    `json:"-"`
	New         []domain.LogEntry    `json:"logs"`
	Connected   bool                 `json:"connected"`
	Err         error                `json:"-"`
	Error       string               `json:"error,omitempty"`
	Indicator   Indicator            `json:"indicator"`
	Terminal    bool                 `json:"terminal"`
}
