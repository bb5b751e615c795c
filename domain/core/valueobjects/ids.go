package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const (
	nodeIDPrefix = "node-"
	edgeIDPrefix = "edge-"
)

// NodeID identifies a node within one mind map. Ids come from untrusted
// documents so any non-blank string is accepted.
type NodeID struct {
	value string
}

// NewNodeID validates and wraps an id string.
func NewNodeID(id string) (NodeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return NodeID{}, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// SyntheticNodeID returns the id assigned to the n-th (1-based) node that
// arrived without one.
func SyntheticNodeID(n int) NodeID {
	return NodeID{value: fmt.Sprintf("%s%d", nodeIDPrefix, n)}
}

func (id NodeID) String() string           { return id.value }
func (id NodeID) IsZero() bool             { return id.value == "" }
func (id NodeID) Equals(other NodeID) bool { return id.value == other.value }

// EdgeID identifies an edge within one mind map.
type EdgeID struct {
	value string
}

func NewEdgeID(id string) (EdgeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return EdgeID{}, pkgerrors.NewValidationError("edge ID cannot be empty")
	}
	return EdgeID{value: id}, nil
}

// SyntheticEdgeID returns the id assigned to the n-th (1-based) edge that
// arrived without one.
func SyntheticEdgeID(n int) EdgeID {
	return EdgeID{value: fmt.Sprintf("%s%d", edgeIDPrefix, n)}
}

func (id EdgeID) String() string           { return id.value }
func (id EdgeID) IsZero() bool             { return id.value == "" }
func (id EdgeID) Equals(other EdgeID) bool { return id.value == other.value }
