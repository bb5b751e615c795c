// Package services holds the pure domain logic that works on a whole mind
// map: normalization, analysis and layout. Nothing here performs I/O.
package services

import (
	"unicode/utf8"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
)

// Complexity is the low/medium/high bucket of a mind map.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Suggestions, in evaluation order.
const (
	SuggestMoreNodes       = "Consider adding more nodes for better organization"
	SuggestMoreConnections = "Add more connections between related concepts"
	SuggestFlatten         = "Consider flattening the structure for better readability"
	SuggestShorterLabels   = "Some node labels are quite long - consider shorter, more concise labels"
)

const (
	shortLabelLimit = 10
	longLabelLimit  = 30
)

// NodeTypes buckets nodes by label length in characters.
type NodeTypes struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// AnalysisResult holds derived structural metrics. It is never persisted.
type AnalysisResult struct {
	TotalNodes         int        `json:"totalNodes"`
	TotalEdges         int        `json:"totalEdges"`
	MaxDepth           int        `json:"maxDepth"`
	AverageConnections float64    `json:"averageConnections"`
	NodeTypes          NodeTypes  `json:"nodeTypes"`
	Complexity         Complexity `json:"complexity"`
	Suggestions        []string   `json:"suggestions"`

	RootCount     int `json:"rootCount"`
	LeafCount     int `json:"leafCount"`
	IsolatedNodes int `json:"isolatedNodes"`
}

// Analyzer computes AnalysisResult. It is stateless and deterministic.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes metrics for m without modifying it.
func (a *Analyzer) Analyze(m *aggregates.MindMap) AnalysisResult {
	g := newAdjacency(m)

	result := AnalysisResult{
		TotalNodes:  len(g.order),
		TotalEdges:  m.EdgeCount(),
		MaxDepth:    g.maxDepth(),
		Suggestions: []string{},
	}
	if result.TotalNodes > 0 {
		result.AverageConnections = float64(result.TotalEdges) / float64(result.TotalNodes)
	}

	for _, n := range m.Nodes() {
		switch l := utf8.RuneCountInString(n.Label()); {
		case l < shortLabelLimit:
			result.NodeTypes.Short++
		case l < longLabelLimit:
			result.NodeTypes.Medium++
		default:
			result.NodeTypes.Long++
		}
	}

	for _, id := range g.order {
		if g.inDegree[id] == 0 {
			result.RootCount++
		}
		if len(g.children[id]) == 0 {
			result.LeafCount++
		}
		if g.inDegree[id] == 0 && len(g.children[id]) == 0 && !g.selfLoop[id] {
			result.IsolatedNodes++
		}
	}

	result.Complexity = ClassifyComplexity(result.TotalNodes, result.MaxDepth)
	result.Suggestions = suggest(result)
	return result
}

// MaxDepth returns the number of nodes on the longest root-to-leaf path.
func (a *Analyzer) MaxDepth(m *aggregates.MindMap) int {
	return newAdjacency(m).maxDepth()
}

// ClassifyComplexity applies the complexity table, first match wins.
func ClassifyComplexity(totalNodes, maxDepth int) Complexity {
	switch {
	case totalNodes > 20 || maxDepth > 4:
		return ComplexityHigh
	case totalNodes > 10 || maxDepth > 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func suggest(r AnalysisResult) []string {
	out := []string{}
	if r.TotalNodes < 5 {
		out = append(out, SuggestMoreNodes)
	}
	if r.AverageConnections < 1 {
		out = append(out, SuggestMoreConnections)
	}
	if r.MaxDepth > 5 {
		out = append(out, SuggestFlatten)
	}
	if float64(r.NodeTypes.Long) > float64(r.TotalNodes)*0.3 {
		out = append(out, SuggestShorterLabels)
	}
	return out
}

// adjacency is a source to target view of the map. Self loops are kept out
// of the child lists and in-degree counts.
type adjacency struct {
	order    []valueobjects.NodeID
	children map[valueobjects.NodeID][]valueobjects.NodeID
	inDegree map[valueobjects.NodeID]int
	selfLoop map[valueobjects.NodeID]bool
}

func newAdjacency(m *aggregates.MindMap) *adjacency {
	g := &adjacency{
		children: make(map[valueobjects.NodeID][]valueobjects.NodeID),
		inDegree: make(map[valueobjects.NodeID]int),
		selfLoop: make(map[valueobjects.NodeID]bool),
	}
	for _, n := range m.Nodes() {
		g.order = append(g.order, n.ID())
	}
	for _, e := range m.Edges() {
		if e.Source().Equals(e.Target()) {
			g.selfLoop[e.Source()] = true
			continue
		}
		g.children[e.Source()] = append(g.children[e.Source()], e.Target())
		g.inDegree[e.Target()]++
	}
	return g
}

// maxDepth walks from every root (no incoming edge) and then from any node
// left unvisited, which covers components that are pure cycles. Edges back
// into the current path are ignored so cycles terminate.
func (g *adjacency) maxDepth() int {
	if len(g.order) == 0 {
		return 0
	}

	depth := make(map[valueobjects.NodeID]int, len(g.order))
	onPath := make(map[valueobjects.NodeID]bool)

	var visit func(id valueobjects.NodeID) int
	visit = func(id valueobjects.NodeID) int {
		if d, ok := depth[id]; ok {
			return d
		}
		onPath[id] = true
		best := 0
		for _, child := range g.children[id] {
			if onPath[child] {
				continue
			}
			if d := visit(child); d > best {
				best = d
			}
		}
		onPath[id] = false
		depth[id] = best + 1
		return best + 1
	}

	max := 0
	for _, id := range g.order {
		if g.inDegree[id] == 0 {
			if d := visit(id); d > max {
				max = d
			}
		}
	}
	for _, id := range g.order {
		if d := visit(id); d > max {
			max = d
		}
	}
	return max
}
