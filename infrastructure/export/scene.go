// Package export renders mind maps into their download and share formats.
package export

import (
	"math"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
)

const (
	minSceneWidth  = 1200.0
	minSceneHeight = 800.0
	scenePadding   = 50.0
	nodeRadius     = 30.0

	backgroundColor = "#000000"
	nodeFill        = "#3b82f6"
	nodeStroke      = "#1d4ed8"
	edgeStroke      = "#6b7280"
	labelColor      = "#ffffff"
)

// Scene is a render-ready snapshot of a mind map: absolute shapes only, no
// references back into the live graph.
type Scene struct {
	Width      float64
	Height     float64
	Background string
	Nodes      []SceneNode
	Edges      []SceneEdge
}

type SceneNode struct {
	ID     string
	Label  string
	X, Y   float64
	Radius float64
	Fill   string
	Stroke string
}

type SceneEdge struct {
	ID             string
	X1, Y1, X2, Y2 float64
	Stroke         string
}

// BuildScene lays out every node relative to the bounding box of the map,
// so the top-left node sits just inside the padding whatever its stored
// coordinates. Edges whose endpoints are not in the map are skipped.
func BuildScene(m *aggregates.MindMap) Scene {
	s := Scene{
		Width:      minSceneWidth,
		Height:     minSceneHeight,
		Background: backgroundColor,
	}

	nodes := m.Nodes()
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position().X())
		minY = math.Min(minY, n.Position().Y())
	}
	dx := scenePadding + nodeRadius - minX
	dy := scenePadding + nodeRadius - minY

	at := make(map[valueobjects.NodeID][2]float64, len(nodes))
	for _, n := range nodes {
		x := n.Position().X() + dx
		y := n.Position().Y() + dy
		at[n.ID()] = [2]float64{x, y}

		fill := nodeFill
		if c := n.Color(); isHexColor(c) {
			fill = c
		}
		s.Nodes = append(s.Nodes, SceneNode{
			ID:     n.ID().String(),
			Label:  n.Label(),
			X:      x,
			Y:      y,
			Radius: nodeRadius,
			Fill:   fill,
			Stroke: nodeStroke,
		})

		if w := x + nodeRadius + scenePadding; w > s.Width {
			s.Width = w
		}
		if h := y + nodeRadius + scenePadding; h > s.Height {
			s.Height = h
		}
	}

	for _, e := range m.Edges() {
		src, okSrc := at[e.Source()]
		dst, okDst := at[e.Target()]
		if !okSrc || !okDst {
			continue
		}
		s.Edges = append(s.Edges, SceneEdge{
			ID:     e.ID().String(),
			X1:     src[0],
			Y1:     src[1],
			X2:     dst[0],
			Y2:     dst[1],
			Stroke: edgeStroke,
		})
	}
	return s
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
