// Package editor binds an interactive canvas to a live mind map. Every
// gesture is translated into a mutation on the aggregate so the graph
// invariants hold after each one; the canvas itself only renders.
package editor

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/domain/events"
	"github.com/ndstyle/mindflow2/domain/exchange"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// ChangeKind tells listeners what part of the session changed.
type ChangeKind string

const (
	ChangeGraph     ChangeKind = "graph"
	ChangeSelection ChangeKind = "selection"
	ChangeEditing   ChangeKind = "editing"
)

// Change is delivered to listeners after a gesture took effect.
type Change struct {
	Kind      ChangeKind
	Events    []events.DomainEvent
	Selection Selection
	Version   int
}

// Listener observes session changes. Listeners run after the session lock
// is released and may call back into the session.
type Listener func(Change)

// Selection is the currently selected node or edge. At most one is set.
type Selection struct {
	Node valueobjects.NodeID
	Edge valueobjects.EdgeID
}

func (s Selection) IsEmpty() bool { return s.Node.IsZero() && s.Edge.IsZero() }

type labelEdit struct {
	node  valueobjects.NodeID
	draft string
}

// Session owns one live mind map for the lifetime of a view.
type Session struct {
	mu        sync.Mutex
	graph     *aggregates.MindMap
	selection Selection
	editing   *labelEdit
	listeners map[int]Listener
	nextSub   int
	readOnly  bool
	closed    bool
	logger    *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// ReadOnly rejects every mutating gesture, as in the shared view.
func ReadOnly() SessionOption {
	return func(s *Session) { s.readOnly = true }
}

func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession starts editing m. A nil m starts from the default graph with a
// single main topic. Pending events already recorded on m are discarded.
func NewSession(m *aggregates.MindMap, opts ...SessionOption) *Session {
	if m == nil {
		m = aggregates.NewDefaultMindMap()
	}
	m.PullEvents()
	s := &Session{
		graph:     m,
		listeners: make(map[int]Listener),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || l == nil {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close releases all listeners. The graph is left as it is.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.editing = nil
	s.listeners = make(map[int]Listener)
	s.logger.Debug("Editor session closed", zap.String("mindmap_id", s.graph.ID()))
}

func (s *Session) IsReadOnly() bool { return s.readOnly }

// MindMap returns a copy of the live graph.
func (s *Session) MindMap() *aggregates.MindMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Document returns the live graph in exchange form for rendering.
func (s *Session) Document() exchange.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return exchange.FromMindMap(s.graph)
}

func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Draft returns the label being edited, if any.
func (s *Session) Draft() (valueobjects.NodeID, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return valueobjects.NodeID{}, "", false
	}
	return s.editing.node, s.editing.draft, true
}

// Activate is a single activation on a node: it selects it. Activating the
// empty canvas (a zero id) clears the selection.
func (s *Session) Activate(id valueobjects.NodeID) error {
	return s.apply(ChangeSelection, false, func() error {
		if id.IsZero() {
			s.selection = Selection{}
			return nil
		}
		if !s.graph.HasNode(id) {
			return pkgerrors.NewInvalidReferenceError(id.String())
		}
		s.selection = Selection{Node: id}
		return nil
	})
}

// ActivateEdge selects an edge.
func (s *Session) ActivateEdge(id valueobjects.EdgeID) error {
	return s.apply(ChangeSelection, false, func() error {
		if !s.graph.HasEdge(id) {
			return pkgerrors.NewNotFoundError("edge")
		}
		s.selection = Selection{Edge: id}
		return nil
	})
}

// DoubleActivate is a double activation on a node: it selects the node and
// starts editing its label.
func (s *Session) DoubleActivate(id valueobjects.NodeID) error {
	return s.apply(ChangeEditing, true, func() error {
		node, ok := s.graph.Node(id)
		if !ok {
			return pkgerrors.NewInvalidReferenceError(id.String())
		}
		s.selection = Selection{Node: id}
		s.editing = &labelEdit{node: id, draft: node.Label()}
		return nil
	})
}

// UpdateDraft replaces the label being edited. The graph is not touched
// until CommitEdit.
func (s *Session) UpdateDraft(text string) error {
	return s.apply(ChangeEditing, true, func() error {
		if s.editing == nil {
			return pkgerrors.NewValidationError("no label is being edited")
		}
		s.editing.draft = text
		return nil
	})
}

// CommitEdit relabels the node with the draft and leaves edit mode.
func (s *Session) CommitEdit() error {
	return s.apply(ChangeGraph, true, func() error {
		if s.editing == nil {
			return pkgerrors.NewValidationError("no label is being edited")
		}
		edit := s.editing
		s.editing = nil
		s.graph.Relabel(edit.node, edit.draft)
		return nil
	})
}

// CancelEdit leaves edit mode without changing the label.
func (s *Session) CancelEdit() {
	_ = s.apply(ChangeEditing, false, func() error {
		s.editing = nil
		return nil
	})
}

// AddNode adds a node and selects it. A nil position uses the default grid.
func (s *Session) AddNode(label string, position *valueobjects.Position) (valueobjects.NodeID, error) {
	var id valueobjects.NodeID
	err := s.apply(ChangeGraph, true, func() error {
		id = s.graph.AddNode(label, position).ID()
		s.selection = Selection{Node: id}
		return nil
	})
	return id, err
}

// DeleteSelection removes the selected node with its edges, or the selected
// edge. Nothing selected is a no-op.
func (s *Session) DeleteSelection() error {
	return s.apply(ChangeGraph, true, func() error {
		sel := s.selection
		s.selection = Selection{}
		switch {
		case !sel.Node.IsZero():
			if s.editing != nil && s.editing.node.Equals(sel.Node) {
				s.editing = nil
			}
			s.graph.RemoveNode(sel.Node)
		case !sel.Edge.IsZero():
			s.graph.Disconnect(sel.Edge)
		}
		return nil
	})
}

// DragConnect connects two nodes after a drag from source to target.
func (s *Session) DragConnect(source, target valueobjects.NodeID) (valueobjects.EdgeID, error) {
	var id valueobjects.EdgeID
	err := s.apply(ChangeGraph, true, func() error {
		edge, err := s.graph.Connect(source, target)
		if err != nil {
			return err
		}
		id = edge.ID()
		return nil
	})
	return id, err
}

// DragMove moves a node to where it was dropped.
func (s *Session) DragMove(id valueobjects.NodeID, x, y float64) error {
	return s.apply(ChangeGraph, true, func() error {
		pos, err := valueobjects.NewPosition(x, y)
		if err != nil {
			return err
		}
		s.graph.Move(id, pos)
		return nil
	})
}

// apply runs fn under the lock and notifies listeners afterwards. Graph
// changes are reported with the events fn caused; a graph gesture that
// changed nothing notifies no one.
func (s *Session) apply(kind ChangeKind, mutating bool, fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pkgerrors.NewValidationError("editor session is closed")
	}
	if mutating && s.readOnly {
		s.mu.Unlock()
		return pkgerrors.NewForbiddenError("mind map is read-only")
	}
	if err := fn(); err != nil {
		s.mu.Unlock()
		s.logger.Debug("Gesture rejected", zap.String("kind", string(kind)), zap.Error(err))
		return err
	}

	change := Change{Kind: kind, Selection: s.selection, Version: s.graph.Version()}
	if kind == ChangeGraph {
		change.Events = s.graph.PullEvents()
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if kind == ChangeGraph && len(change.Events) == 0 {
		return nil
	}
	for _, l := range listeners {
		l(change)
	}
	return nil
}
