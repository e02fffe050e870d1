package loader

import (
	"time"

	"github.com/aretw0/strata/pkg/domain"
)

// NodeResult is the outcome of visiting one node.
type NodeResult struct {
	NodeID  domain.NodeID   `json:"node_id"`
	Name    string          `json:"name"`
	Kind    domain.NodeKind `json:"-"`
	Outcome domain.Outcome  `json:"-"`
	Err     error           `json:"-"`
}

// Limitation records data that was present but deliberately not loaded.
type Limitation struct {
	NodeID   domain.NodeID `json:"node_id"`
	Name     string        `json:"name"`
	Location string        `json:"location"`
	Err      error         `json:"-"`
}

// Report summarizes a load.
type Report struct {
	SyntaxVersion int
	Nodes         []NodeResult
	Limitations   []Limitation
	// LegacyMasks counts transparency masks converted from {location}.mask entries.
	LegacyMasks int
	BytesRead   int64
	Duration    time.Duration
}

func newReport(version int) *Report {
	return &Report{SyntaxVersion: version}
}

func (r *Report) add(res NodeResult) {
	r.Nodes = append(r.Nodes, res)
}

func (r *Report) addLimitation(lim Limitation) {
	r.Limitations = append(r.Limitations, lim)
}

// Result returns the result recorded for id.
func (r *Report) Result(id domain.NodeID) (NodeResult, bool) {
	for _, res := range r.Nodes {
		if res.NodeID == id {
			return res, true
		}
	}
	return NodeResult{}, false
}

// Failed counts nodes that did not load.
func (r *Report) Failed() int {
	count := 0
	for _, res := range r.Nodes {
		if res.Outcome == domain.OutcomeFailed {
			count++
		}
	}
	return count
}

// OK reports whether every visited node loaded.
func (r *Report) OK() bool {
	return r.Failed() == 0
}
