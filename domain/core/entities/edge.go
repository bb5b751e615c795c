package entities

import "github.com/ndstyle/mindflow2/domain/core/valueobjects"

// Edge links two nodes. Direction is only a source/target labeling.
type Edge struct {
	id     valueobjects.EdgeID
	source valueobjects.NodeID
	target valueobjects.NodeID
}

func NewEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID) *Edge {
	return &Edge{id: id, source: source, target: target}
}

func (e *Edge) ID() valueobjects.EdgeID     { return e.id }
func (e *Edge) Source() valueobjects.NodeID { return e.source }
func (e *Edge) Target() valueobjects.NodeID { return e.target }

// Touches reports whether the edge has nodeID as either endpoint.
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.source.Equals(nodeID) || e.target.Equals(nodeID)
}

func (e *Edge) Clone() *Edge {
	c := *e
	return &c
}
