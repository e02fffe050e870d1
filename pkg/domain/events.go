package domain

import (
	"context"
	"time"
)

// Outcome is the three-way result of a single load step.
type Outcome int

const (
	// OutcomeLoaded means data was found and applied.
	OutcomeLoaded Outcome = iota
	// OutcomeSkipped means optional data was absent and the default was kept.
	OutcomeSkipped
	// OutcomeFailed means required data was absent or malformed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NodeEvent is emitted after a node has been visited.
type NodeEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Document  string        `json:"document"`
	NodeID    NodeID        `json:"node_id"`
	NodeName  string        `json:"node_name"`
	Kind      NodeKind      `json:"kind"`
	Outcome   Outcome       `json:"outcome"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// EntryEvent is emitted after an archive entry has been read.
type EntryEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Document  string    `json:"document"`
	Location  string    `json:"location"`
	Bytes     int       `json:"bytes"`
}

// LoadHooks defines callbacks for loader observability.
type LoadHooks struct {
	OnNodeLoaded func(context.Context, *NodeEvent)
	OnEntryRead  func(context.Context, *EntryEvent)
}
