package loader

import (
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
)

// NodeError reports the failure of a single node.
type NodeError struct {
	NodeID   domain.NodeID
	Name     string
	Kind     domain.NodeKind
	Location string
	Err      error
}

func (e *NodeError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q at %s: %v", e.Kind, e.Name, e.Location, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func nodeError(n domain.Node, location string, err error) *NodeError {
	return &NodeError{NodeID: n.ID(), Name: n.Name(), Kind: n.Kind(), Location: location, Err: err}
}
