package services

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/core/entities"
	"github.com/ndstyle/mindflow2/domain/core/valueobjects"
)

const (
	// FallbackTitle and FallbackDescription label generated maps.
	FallbackTitle       = "Generated Mind Map"
	FallbackDescription = "AI-generated from user notes"

	fallbackRadius    = 200.0
	fallbackStepAngle = 72.0
	fallbackMaxTopics = 5
	fallbackMaxLabel  = 50
)

// RadialPositions places count points on a circle around center, starting
// at angle 0 and advancing by stepDegrees.
func RadialPositions(center valueobjects.Position, radius, stepDegrees float64, count int) []valueobjects.Position {
	out := make([]valueobjects.Position, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(i) * stepDegrees * math.Pi / 180
		out = append(out, valueobjects.MustPosition(
			center.X()+radius*math.Cos(angle),
			center.Y()+radius*math.Sin(angle),
		))
	}
	return out
}

// FallbackMindMap builds a small map from the first non-empty lines of the
// notes: a main topic with up to five children arranged in a circle. It is
// used whenever the generator's output cannot be used.
func FallbackMindMap(notes string) *aggregates.MindMap {
	var topics []string
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topics = append(topics, truncateRunes(line, fallbackMaxLabel))
		if len(topics) == fallbackMaxTopics {
			break
		}
	}

	rootID, _ := valueobjects.NewNodeID("1")
	nodes := []*entities.Node{
		entities.NewNode(rootID, aggregates.MainTopicLabel, valueobjects.CanvasCenter,
			entities.WithLevel(0), entities.WithData(map[string]interface{}{"label": aggregates.MainTopicLabel})),
	}
	edges := make([]*entities.Edge, 0, len(topics))

	positions := RadialPositions(valueobjects.CanvasCenter, fallbackRadius, fallbackStepAngle, len(topics))
	for i, topic := range topics {
		id, _ := valueobjects.NewNodeID(fmt.Sprintf("%d", i+2))
		nodes = append(nodes, entities.NewNode(id, topic, positions[i],
			entities.WithLevel(1), entities.WithData(map[string]interface{}{"label": topic})))

		edgeID, _ := valueobjects.NewEdgeID(fmt.Sprintf("edge-1-%s", id))
		edges = append(edges, entities.NewEdge(edgeID, rootID, id))
	}

	m, err := aggregates.Reconstruct(nodes, edges, aggregates.Metadata{
		Title:       FallbackTitle,
		Description: FallbackDescription,
	})
	if err != nil {
		return aggregates.NewDefaultMindMap()
	}
	return m
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
