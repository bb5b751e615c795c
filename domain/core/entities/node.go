package entities

import (
	"strings"

	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
)

const (
	// DefaultLabel is given to nodes created without a label.
	DefaultLabel = "New Node"
	// PlaceholderLabel replaces labels that are blank after normalization.
	PlaceholderLabel = "Untitled"
)

// Node is a single concept on the mind map.
type Node struct {
	id       valueobjects.NodeID
	label    string
	position valueobjects.Position
	level    *int
	color    string
	priority *int
	data     map[string]interface{}
}

// NodeOption configures optional presentation fields.
type NodeOption func(*Node)

func WithLevel(level int) NodeOption {
	return func(n *Node) {
		if level >= 0 {
			n.level = &level
		}
	}
}

func WithColor(color string) NodeOption {
	return func(n *Node) { n.color = color }
}

func WithPriority(priority int) NodeOption {
	return func(n *Node) { n.priority = &priority }
}

// WithData attaches the free-form data bag carried by the exchange format.
func WithData(data map[string]interface{}) NodeOption {
	return func(n *Node) {
		if len(data) == 0 {
			return
		}
		n.data = make(map[string]interface{}, len(data))
		for k, v := range data {
			n.data[k] = v
		}
	}
}

// NewNode builds a node. A blank label becomes PlaceholderLabel.
func NewNode(id valueobjects.NodeID, label string, position valueobjects.Position, opts ...NodeOption) *Node {
	n := &Node{
		id:       id,
		label:    sanitizeLabel(label),
		position: position,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) ID() valueobjects.NodeID         { return n.id }
func (n *Node) Label() string                   { return n.label }
func (n *Node) Position() valueobjects.Position { return n.position }
func (n *Node) Color() string                   { return n.color }

// Level returns the hierarchy depth hint and whether one was set.
func (n *Node) Level() (int, bool) {
	if n.level == nil {
		return 0, false
	}
	return *n.level, true
}

func (n *Node) Priority() (int, bool) {
	if n.priority == nil {
		return 0, false
	}
	return *n.priority, true
}

// Data returns a copy of the data bag, or nil when empty.
func (n *Node) Data() map[string]interface{} {
	if len(n.data) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(n.data))
	for k, v := range n.data {
		out[k] = v
	}
	return out
}

// Relabel replaces the label. The data bag's label is kept in sync so
// consumers that read data.label see the same text.
func (n *Node) Relabel(label string) {
	n.label = sanitizeLabel(label)
	if _, ok := n.data["label"]; ok {
		n.data["label"] = n.label
	}
}

func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	c := *n
	if n.level != nil {
		lvl := *n.level
		c.level = &lvl
	}
	if n.priority != nil {
		p := *n.priority
		c.priority = &p
	}
	c.data = n.Data()
	return &c
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return PlaceholderLabel
	}
	return label
}
