package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
)

func nodeID(t *testing.T, s string) valueobjects.NodeID {
	t.Helper()
	id, err := valueobjects.NewNodeID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestNewNode_Label(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"keeps label", "Idea", "Idea"},
		{"trims whitespace", "  Idea  ", "Idea"},
		{"blank becomes placeholder", "   ", PlaceholderLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNode(nodeID(t, "a"), tt.label, valueobjects.MustPosition(0, 0))
			assert.Equal(t, tt.want, n.Label())
		})
	}
}

func TestNode_OptionsAndClone(t *testing.T) {
	n := NewNode(nodeID(t, "a"), "Root", valueobjects.MustPosition(1, 2),
		WithLevel(0), WithColor("blue"), WithPriority(3),
		WithData(map[string]interface{}{"label": "Root", "note": "x"}))

	lvl, ok := n.Level()
	assert.True(t, ok)
	assert.Equal(t, 0, lvl)

	c := n.Clone()
	c.Relabel("Changed")
	c.MoveTo(valueobjects.MustPosition(9, 9))

	assert.Equal(t, "Root", n.Label())
	assert.Equal(t, "Root", n.Data()["label"])
	assert.Equal(t, "Changed", c.Data()["label"])
	assert.Equal(t, 1.0, n.Position().X())
}

func TestNode_NegativeLevelIgnored(t *testing.T) {
	n := NewNode(nodeID(t, "a"), "Root", valueobjects.MustPosition(0, 0), WithLevel(-1))
	_, ok := n.Level()
	assert.False(t, ok)
}

func TestEdge_Touches(t *testing.T) {
	eid, _ := valueobjects.NewEdgeID("e1")
	e := NewEdge(eid, nodeID(t, "a"), nodeID(t, "b"))

	assert.True(t, e.Touches(nodeID(t, "a")))
	assert.True(t, e.Touches(nodeID(t, "b")))
	assert.False(t, e.Touches(nodeID(t, "c")))
}
