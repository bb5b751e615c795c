package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockProvider answers generation prompts without a model: the first note
// line becomes the root and the following lines its children. It is used
// for local development and tests.
type MockProvider struct {
	available bool
}

func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

func (m *MockProvider) IsAvailable() bool { return m.available }

func (m *MockProvider) SetAvailable(available bool) { m.available = available }

func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}

	lines := noteLines(prompt)
	if len(lines) == 0 {
		lines = []string{"Main Topic"}
	}

	type pos struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	type node struct {
		ID       string `json:"id"`
		Label    string `json:"label"`
		Position pos    `json:"position"`
		Level    int    `json:"level"`
	}
	type edge struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Target string `json:"target"`
	}
	doc := struct {
		Nodes    []node            `json:"nodes"`
		Edges    []edge            `json:"edges"`
		Metadata map[string]string `json:"metadata"`
	}{
		Metadata: map[string]string{"title": lines[0], "description": "Generated by the mock provider"},
	}

	doc.Nodes = append(doc.Nodes, node{ID: "1", Label: lines[0], Position: pos{400, 300}, Level: 0})
	for i, line := range lines[1:] {
		id := fmt.Sprintf("%d", i+2)
		doc.Nodes = append(doc.Nodes, node{
			ID:       id,
			Label:    line,
			Position: pos{X: 150 + float64(i)*160, Y: 500},
			Level:    1,
		})
		doc.Edges = append(doc.Edges, edge{ID: "edge-1-" + id, Source: "1", Target: id})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}

// noteLines extracts the non-blank note lines embedded in a prompt built by
// BuildPrompt.
func noteLines(prompt string) []string {
	const start, end = "Notes:\n", "\n\nPlease create"
	i := strings.Index(prompt, start)
	if i < 0 {
		return nil
	}
	body := prompt[i+len(start):]
	if j := strings.Index(body, end); j >= 0 {
		body = body[:j]
	}

	var out []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
