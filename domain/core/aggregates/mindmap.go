package aggregates

import (
	"fmt"
	"time"

	"github.com/ndstyle/mindflow2/domain/core/entities"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/domain/events"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// MainTopicLabel is the label of the root node of a fresh mind map.
const MainTopicLabel = "Main Topic"

// Metadata is free-form document information with no effect on algorithms.
type Metadata struct {
	Title       string
	Description string
}

// MindMap is the aggregate root for one node/edge graph. Every edge
// endpoint resolves to a node in the map and ids are unique per collection.
// A MindMap is owned by a single editing session and is not safe for
// concurrent use.
type MindMap struct {
	id       string
	metadata Metadata

	nodes     []*entities.Node
	nodeIndex map[valueobjects.NodeID]*entities.Node
	edges     []*entities.Edge
	edgeIndex map[valueobjects.EdgeID]*entities.Edge

	nodeSeq int
	edgeSeq int

	version int
	events  []events.DomainEvent
	now     func() time.Time
}

// NewMindMap creates an empty mind map.
func NewMindMap(metadata Metadata) *MindMap {
	return &MindMap{
		metadata:  metadata,
		nodeIndex: make(map[valueobjects.NodeID]*entities.Node),
		edgeIndex: make(map[valueobjects.EdgeID]*entities.Edge),
		version:   1,
		now:       time.Now,
	}
}

// NewDefaultMindMap creates the editor's starting graph: a single main
// topic at the canvas center.
func NewDefaultMindMap() *MindMap {
	m := NewMindMap(Metadata{})
	root := entities.NewNode(m.nextNodeID(), MainTopicLabel, valueobjects.CanvasCenter, entities.WithLevel(0))
	m.insertNode(root)
	return m
}

// Reconstruct rebuilds a mind map from parts that are already well formed,
// such as the output of normalization. Duplicate ids and dangling edges are
// rejected rather than repaired.
func Reconstruct(nodes []*entities.Node, edges []*entities.Edge, metadata Metadata) (*MindMap, error) {
	m := NewMindMap(metadata)
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := m.nodeIndex[n.ID()]; dup {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("duplicate node id %q", n.ID()))
		}
		m.insertNode(n.Clone())
	}
	for _, e := range edges {
		if e == nil {
			continue
		}
		if _, dup := m.edgeIndex[e.ID()]; dup {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("duplicate edge id %q", e.ID()))
		}
		if err := m.requireNodes(e.Source(), e.Target()); err != nil {
			return nil, err
		}
		m.insertEdge(e.Clone())
	}
	return m, nil
}

// ID returns the stored document id, empty until the map is saved.
func (m *MindMap) ID() string { return m.id }

// AssignID records the document id handed out by a store.
func (m *MindMap) AssignID(id string) { m.id = id }

func (m *MindMap) Metadata() Metadata { return m.metadata }

func (m *MindMap) SetMetadata(metadata Metadata) {
	m.metadata = metadata
	m.version++
}

// Version increases by one for every applied mutation.
func (m *MindMap) Version() int { return m.version }

func (m *MindMap) NodeCount() int { return len(m.nodes) }
func (m *MindMap) EdgeCount() int { return len(m.edges) }
func (m *MindMap) IsEmpty() bool  { return len(m.nodes) == 0 }

// Nodes returns copies of the nodes in insertion order.
func (m *MindMap) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns copies of the edges in insertion order.
func (m *MindMap) Edges() []*entities.Edge {
	out := make([]*entities.Edge, len(m.edges))
	for i, e := range m.edges {
		out[i] = e.Clone()
	}
	return out
}

// Node returns a copy of the node with the given id.
func (m *MindMap) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	n, ok := m.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (m *MindMap) HasNode(id valueobjects.NodeID) bool {
	_, ok := m.nodeIndex[id]
	return ok
}

func (m *MindMap) HasEdge(id valueobjects.EdgeID) bool {
	_, ok := m.edgeIndex[id]
	return ok
}

// AddNode appends a node with a fresh id. An empty label becomes
// entities.DefaultLabel and a nil position is replaced by a grid slot.
func (m *MindMap) AddNode(label string, position *valueobjects.Position) *entities.Node {
	if label == "" {
		label = entities.DefaultLabel
	}
	pos := valueobjects.DefaultPosition(len(m.nodes))
	if position != nil {
		pos = *position
	}

	n := entities.NewNode(m.nextNodeID(), label, pos)
	m.insertNode(n)
	m.version++
	m.record(events.NewNodeAdded(m.id, m.version, n.ID().String(), n.Label(), pos.X(), pos.Y(), m.now()))
	return n.Clone()
}

// RemoveNode deletes the node and every edge touching it. It reports
// whether anything was removed; a missing id is not an error.
func (m *MindMap) RemoveNode(id valueobjects.NodeID) bool {
	if _, ok := m.nodeIndex[id]; !ok {
		return false
	}

	var removed []string
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.Touches(id) {
			delete(m.edgeIndex, e.ID())
			removed = append(removed, e.ID().String())
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(m.edges); i++ {
		m.edges[i] = nil
	}
	m.edges = kept

	for i, n := range m.nodes {
		if n.ID().Equals(id) {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			break
		}
	}
	delete(m.nodeIndex, id)

	m.version++
	m.record(events.NewNodeRemoved(m.id, m.version, id.String(), removed, m.now()))
	return true
}

// Connect appends an edge from source to target. Both endpoints must exist;
// otherwise an INVALID_REFERENCE error is returned and the map is untouched.
// Parallel edges and self loops are allowed.
func (m *MindMap) Connect(source, target valueobjects.NodeID) (*entities.Edge, error) {
	if err := m.requireNodes(source, target); err != nil {
		return nil, err
	}

	e := entities.NewEdge(m.nextEdgeID(), source, target)
	m.insertEdge(e)
	m.version++
	m.record(events.NewNodesConnected(m.id, m.version, e.ID().String(), source.String(), target.String(), m.now()))
	return e.Clone(), nil
}

// Disconnect removes one edge. A missing id is a no-op.
func (m *MindMap) Disconnect(id valueobjects.EdgeID) bool {
	if _, ok := m.edgeIndex[id]; !ok {
		return false
	}
	for i, e := range m.edges {
		if e.ID().Equals(id) {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			break
		}
	}
	delete(m.edgeIndex, id)

	m.version++
	m.record(events.NewEdgeRemoved(m.id, m.version, id.String(), m.now()))
	return true
}

// Relabel updates a node's label in place. A missing id is a no-op.
func (m *MindMap) Relabel(id valueobjects.NodeID, label string) bool {
	n, ok := m.nodeIndex[id]
	if !ok {
		return false
	}
	old := n.Label()
	n.Relabel(label)
	if old == n.Label() {
		return true
	}

	m.version++
	m.record(events.NewNodeRelabeled(m.id, m.version, id.String(), old, n.Label(), m.now()))
	return true
}

// Move repositions a node. A missing id is a no-op.
func (m *MindMap) Move(id valueobjects.NodeID, position valueobjects.Position) bool {
	n, ok := m.nodeIndex[id]
	if !ok {
		return false
	}
	n.MoveTo(position)

	m.version++
	m.record(events.NewNodeMoved(m.id, m.version, id.String(), position.X(), position.Y(), m.now()))
	return true
}

// Validate checks the structural invariants.
func (m *MindMap) Validate() error {
	if len(m.nodeIndex) != len(m.nodes) {
		return pkgerrors.NewValidationError("node ids are not unique")
	}
	if len(m.edgeIndex) != len(m.edges) {
		return pkgerrors.NewValidationError("edge ids are not unique")
	}
	for _, e := range m.edges {
		if err := m.requireNodes(e.Source(), e.Target()); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy without pending events.
func (m *MindMap) Clone() *MindMap {
	c := NewMindMap(m.metadata)
	c.id = m.id
	c.version = m.version
	c.nodeSeq = m.nodeSeq
	c.edgeSeq = m.edgeSeq
	c.now = m.now
	for _, n := range m.nodes {
		c.insertNode(n.Clone())
	}
	for _, e := range m.edges {
		c.insertEdge(e.Clone())
	}
	return c
}

// PullEvents returns and clears the recorded domain events.
func (m *MindMap) PullEvents() []events.DomainEvent {
	out := m.events
	m.events = nil
	return out
}

// Children returns the targets of edges leaving id, in edge order.
func (m *MindMap) Children(id valueobjects.NodeID) []valueobjects.NodeID {
	var out []valueobjects.NodeID
	for _, e := range m.edges {
		if e.Source().Equals(id) {
			out = append(out, e.Target())
		}
	}
	return out
}

func (m *MindMap) requireNodes(ids ...valueobjects.NodeID) error {
	for _, id := range ids {
		if _, ok := m.nodeIndex[id]; !ok {
			return pkgerrors.NewInvalidReferenceError(id.String())
		}
	}
	return nil
}

func (m *MindMap) insertNode(n *entities.Node) {
	m.nodes = append(m.nodes, n)
	m.nodeIndex[n.ID()] = n
}

func (m *MindMap) insertEdge(e *entities.Edge) {
	m.edges = append(m.edges, e)
	m.edgeIndex[e.ID()] = e
}

// nextNodeID hands out node-N ids from a counter that never goes back, so a
// removed node's id is not reissued within the session.
func (m *MindMap) nextNodeID() valueobjects.NodeID {
	if m.nodeSeq < len(m.nodes) {
		m.nodeSeq = len(m.nodes)
	}
	for {
		m.nodeSeq++
		id := valueobjects.SyntheticNodeID(m.nodeSeq)
		if _, taken := m.nodeIndex[id]; !taken {
			return id
		}
	}
}

func (m *MindMap) nextEdgeID() valueobjects.EdgeID {
	if m.edgeSeq < len(m.edges) {
		m.edgeSeq = len(m.edges)
	}
	for {
		m.edgeSeq++
		id := valueobjects.SyntheticEdgeID(m.edgeSeq)
		if _, taken := m.edgeIndex[id]; !taken {
			return id
		}
	}
}

func (m *MindMap) record(event events.DomainEvent) {
	m.events = append(m.events, event)
}
