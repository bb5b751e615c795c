package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const systemPrompt = "You are an expert at analyzing text and creating structured mind maps. " +
	"Always return valid JSON that can be parsed by JavaScript."

const promptTemplate = `Analyze the following notes and create a structured mind map.

Notes:
%s

Please create a mind map with the following structure:
1. Identify the main topic or central idea
2. Extract key concepts and organize them hierarchically
3. Create logical connections between related concepts
4. Use clear, concise labels for each node

Return the result as a JSON object with this exact structure:
{
  "nodes": [
    {
      "id": "1",
      "label": "Main Topic",
      "position": { "x": 400, "y": 300 },
      "data": { "label": "Main Topic" }
    }
  ],
  "edges": [
    {
      "id": "edge-1-2",
      "source": "1",
      "target": "2"
    }
  ],
  "metadata": {
    "title": "Generated Mind Map",
    "description": "AI-generated from user notes"
  }
}

Ensure all nodes have unique IDs and all edges reference valid node IDs. Position nodes in a logical layout with the main topic in the center.`

// BuildPrompt renders the generation prompt for notes.
func BuildPrompt(notes string) string {
	return fmt.Sprintf(promptTemplate, notes)
}

// Generator asks a Provider for a mind map. Its output is returned
// verbatim; parsing and repair happen in the caller.
type Generator struct {
	provider Provider
	logger   *zap.Logger
}

func NewGenerator(provider Provider, logger *zap.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, notes string) (string, error) {
	if g.provider == nil || !g.provider.IsAvailable() {
		return "", pkgerrors.NewUnavailableError("llm")
	}

	text, err := g.provider.Complete(ctx, BuildPrompt(notes), CompletionOptions{
		System:      systemPrompt,
		Temperature: 0.7,
		MaxTokens:   2000,
		Format:      "json",
	})
	if err != nil {
		g.logger.Warn("LLM completion failed", zap.Int("notes_length", len(notes)), zap.Error(err))
		return "", pkgerrors.NewExternalError("llm", err)
	}
	g.logger.Debug("LLM completion received", zap.Int("response_length", len(text)))
	return text, nil
}
