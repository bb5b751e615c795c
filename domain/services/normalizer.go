package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/entities"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
	"github.com/ndstyle/mindflow2/domain/exchange"
)

// NormalizationReport counts the repairs made while normalizing.
type NormalizationReport struct {
	SynthesizedNodeIDs int
	SynthesizedEdgeIDs int
	DefaultedLabels    int
	DefaultedPositions int
	DroppedNodes       int
	DroppedEdges       int
	FlattenedChildren  int
}

// Repaired reports whether the input needed any repair.
func (r NormalizationReport) Repaired() bool {
	return r != NormalizationReport{}
}

// Normalizer is the single conversion boundary from untrusted data to a
// well formed MindMap. It never fails on parseable input: missing or
// malformed pieces are substituted or dropped.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeJSON parses and normalizes raw bytes. The only error is
// MALFORMED_INPUT for a syntax-invalid payload.
func (n *Normalizer) NormalizeJSON(data []byte) (*aggregates.MindMap, NormalizationReport, error) {
	raw, err := exchange.ParseUntrusted(data)
	if err != nil {
		return nil, NormalizationReport{}, err
	}
	m, report := n.Normalize(raw)
	return m, report, nil
}

// rawNode is one flattened node entry before ids are settled.
type rawNode struct {
	obj      map[string]interface{}
	label    string // set for bare string entries
	parent   int    // index into the flattened slice, -1 for top level
	explicit string
	id       valueobjects.NodeID
}

// rawEdge is an edge entry with resolved endpoint strings.
type rawEdge struct {
	index    int
	explicit string
	source   string
	target   string
}

// Normalize converts untrusted data into a MindMap.
func (n *Normalizer) Normalize(raw exchange.Untrusted) (*aggregates.MindMap, NormalizationReport) {
	var report NormalizationReport
	root := raw.Object()

	flat := flattenNodes(asSlice(root["nodes"]), -1, &report)

	// Explicit ids are claimed first, in order, so that a synthetic id never
	// steals an id an edge may be pointing at.
	nodeClaimed := make(map[string]int, len(flat))
	for i := range flat {
		id := flat[i].explicit
		if id == "" {
			continue
		}
		if _, taken := nodeClaimed[id]; taken {
			flat[i].explicit = ""
			continue
		}
		nodeClaimed[id] = i
	}

	alloc := newIDAllocator(nodeClaimed)
	nodes := make([]*entities.Node, 0, len(flat))
	for i := range flat {
		rn := &flat[i]
		if rn.explicit != "" {
			rn.id, _ = valueobjects.NewNodeID(rn.explicit)
		} else {
			rn.id, _ = valueobjects.NewNodeID(alloc.next("node-", i+1))
			report.SynthesizedNodeIDs++
		}
		nodes = append(nodes, buildNode(rn, i, &report))
	}

	resolve := make(map[string]valueobjects.NodeID, len(flat))
	for _, rn := range flat {
		resolve[rn.id.String()] = rn.id
	}

	rawEdges := collectEdges(asSlice(root["edges"]), &report)
	edgeClaimed := make(map[string]int, len(rawEdges))
	for i := range rawEdges {
		id := rawEdges[i].explicit
		if id == "" {
			continue
		}
		if _, taken := edgeClaimed[id]; taken {
			rawEdges[i].explicit = ""
			continue
		}
		edgeClaimed[id] = i
	}
	edgeAlloc := newIDAllocator(edgeClaimed)

	edges := make([]*entities.Edge, 0, len(rawEdges))
	for _, re := range rawEdges {
		src, okSrc := resolve[re.source]
		dst, okDst := resolve[re.target]
		if !okSrc || !okDst {
			report.DroppedEdges++
			if re.explicit != "" {
				delete(edgeClaimed, re.explicit)
			}
			continue
		}
		idText := re.explicit
		if idText == "" {
			idText = edgeAlloc.next("edge-", re.index+1)
			report.SynthesizedEdgeIDs++
		}
		id, _ := valueobjects.NewEdgeID(idText)
		edges = append(edges, entities.NewEdge(id, src, dst))
	}

	// Hierarchical input contributes parent to child edges after the
	// explicit edge list.
	next := len(rawEdges)
	for _, rn := range flat {
		if rn.parent < 0 {
			continue
		}
		next++
		id, _ := valueobjects.NewEdgeID(edgeAlloc.next("edge-", next))
		edges = append(edges, entities.NewEdge(id, flat[rn.parent].id, rn.id))
		report.SynthesizedEdgeIDs++
	}

	meta := aggregates.Metadata{}
	if obj, ok := root["metadata"].(map[string]interface{}); ok {
		meta.Title = stringValue(obj["title"])
		meta.Description = stringValue(obj["description"])
	}

	m, err := aggregates.Reconstruct(nodes, edges, meta)
	if err != nil {
		// Unreachable: ids were deduplicated and edges resolved above.
		return aggregates.NewMindMap(meta), report
	}
	return m, report
}

func flattenNodes(entries []interface{}, parent int, report *NormalizationReport) []rawNode {
	var out []rawNode
	var walk func(items []interface{}, parent int)
	walk = func(items []interface{}, parent int) {
		for _, item := range items {
			switch v := item.(type) {
			case map[string]interface{}:
				idx := len(out)
				out = append(out, rawNode{obj: v, parent: parent, explicit: idValue(v["id"])})
				if parent >= 0 {
					report.FlattenedChildren++
				}
				if children := asSlice(v["children"]); len(children) > 0 {
					walk(children, idx)
				}
			case string:
				out = append(out, rawNode{label: v, parent: parent})
				if parent >= 0 {
					report.FlattenedChildren++
				}
			default:
				report.DroppedNodes++
			}
		}
	}
	walk(entries, parent)
	return out
}

func buildNode(rn *rawNode, index int, report *NormalizationReport) *entities.Node {
	obj := rn.obj
	if obj == nil {
		obj = map[string]interface{}{}
	}
	data, _ := obj["data"].(map[string]interface{})

	label := rn.label
	if strings.TrimSpace(label) == "" {
		label = stringValue(obj["label"])
	}
	if strings.TrimSpace(label) == "" {
		label = stringValue(data["label"])
	}
	if strings.TrimSpace(label) == "" {
		label = entities.PlaceholderLabel
		report.DefaultedLabels++
	}

	pos, ok := positionValue(obj)
	if !ok {
		pos = valueobjects.DefaultPosition(index)
		report.DefaultedPositions++
	}

	var opts []entities.NodeOption
	if lvl, ok := intValue(obj["level"]); ok && lvl >= 0 {
		opts = append(opts, entities.WithLevel(lvl))
	}
	if p, ok := intValue(obj["priority"]); ok {
		opts = append(opts, entities.WithPriority(p))
	} else if p, ok := intValue(data["priority"]); ok {
		opts = append(opts, entities.WithPriority(p))
	}
	if c := stringValue(obj["color"]); c != "" {
		opts = append(opts, entities.WithColor(c))
	} else if c := stringValue(data["color"]); c != "" {
		opts = append(opts, entities.WithColor(c))
	}
	if len(data) > 0 {
		opts = append(opts, entities.WithData(data))
	}

	return entities.NewNode(rn.id, label, pos, opts...)
}

func collectEdges(entries []interface{}, report *NormalizationReport) []rawEdge {
	out := make([]rawEdge, 0, len(entries))
	for i, item := range entries {
		obj, ok := item.(map[string]interface{})
		if !ok {
			report.DroppedEdges++
			continue
		}
		src := idValue(obj["source"])
		if src == "" {
			src = idValue(obj["from"])
		}
		dst := idValue(obj["target"])
		if dst == "" {
			dst = idValue(obj["to"])
		}
		out = append(out, rawEdge{
			index:    i,
			explicit: idValue(obj["id"]),
			source:   src,
			target:   dst,
		})
	}
	return out
}

// positionValue reads a nested position object first, then top level x/y.
func positionValue(obj map[string]interface{}) (valueobjects.Position, bool) {
	if p, ok := obj["position"].(map[string]interface{}); ok {
		if pos, ok := xyValue(p); ok {
			return pos, true
		}
	}
	return xyValue(obj)
}

func xyValue(obj map[string]interface{}) (valueobjects.Position, bool) {
	x, okX := floatValue(obj["x"])
	y, okY := floatValue(obj["y"])
	if !okX || !okY {
		return valueobjects.Position{}, false
	}
	pos, err := valueobjects.NewPosition(x, y)
	return pos, err == nil
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// idValue accepts string and integral numeric ids, since generators often
// emit {"id": 1}.
func idValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func floatValue(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func intValue(v interface{}) (int, bool) {
	f, ok := floatValue(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// idAllocator hands out prefix-N ids, preferring the caller's N and moving
// up past anything already claimed.
type idAllocator struct {
	claimed map[string]int
}

func newIDAllocator(claimed map[string]int) *idAllocator {
	return &idAllocator{claimed: claimed}
}

func (a *idAllocator) next(prefix string, n int) string {
	for {
		id := prefix + strconv.Itoa(n)
		if _, taken := a.claimed[id]; !taken {
			a.claimed[id] = -1
			return id
		}
		n++
	}
}
