// Package exchange defines the graph exchange JSON format shared by the
// generator, importers, stores and exporters.
package exchange

import (
	"github.com/ndstyle/mindflow2/domain/core/aggregates"
)

// Document is the canonical wire shape of a mind map.
type Document struct {
	Nodes    []NodeDoc `json:"nodes"`
	Edges    []EdgeDoc `json:"edges"`
	Metadata Metadata  `json:"metadata"`
}

type NodeDoc struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Position PositionDoc            `json:"position"`
	Level    *int                   `json:"level,omitempty"`
	Color    string                 `json:"color,omitempty"`
	Priority *int                   `json:"priority,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type PositionDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type EdgeDoc struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// FromMindMap converts the aggregate into its wire form. Slices are never
// nil so empty collections encode as [].
func FromMindMap(m *aggregates.MindMap) Document {
	doc := Document{
		Nodes: make([]NodeDoc, 0, m.NodeCount()),
		Edges: make([]EdgeDoc, 0, m.EdgeCount()),
		Metadata: Metadata{
			Title:       m.Metadata().Title,
			Description: m.Metadata().Description,
		},
	}

	for _, n := range m.Nodes() {
		nd := NodeDoc{
			ID:    n.ID().String(),
			Label: n.Label(),
			Position: PositionDoc{
				X: n.Position().X(),
				Y: n.Position().Y(),
			},
			Color: n.Color(),
			Data:  n.Data(),
		}
		if lvl, ok := n.Level(); ok {
			nd.Level = &lvl
		}
		if p, ok := n.Priority(); ok {
			nd.Priority = &p
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, e := range m.Edges() {
		doc.Edges = append(doc.Edges, EdgeDoc{
			ID:     e.ID().String(),
			Source: e.Source().String(),
			Target: e.Target().String(),
		})
	}
	return doc
}
