package embedding

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrNoEmbedding = errors.New("no embeddings returned")

// GenAI embeds text with Google's embedding models, through Vertex AI when a
// project is given and through the Gemini API when only an API key is.
type GenAI struct {
	client     *genai.Client
	model      string
	dimensions int32
}

func NewGenAI(ctx context.Context, apiKey, project, location, model string, dimensions int) (*GenAI, error) {
	if model == "" {
		model = "text-embedding-005"
	}

	cc := &genai.ClientConfig{}
	switch {
	case apiKey != "":
		cc.APIKey = apiKey
		cc.Backend = genai.BackendGeminiAPI
	case project != "":
		cc.Project = project
		cc.Location = location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, errors.New("genai embedding needs an API key or a GCP project")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAI{client: client, model: model, dimensions: int32(dimensions)}, nil
}

func (g *GenAI) Model() string { return g.model }

func (g *GenAI) Embed(ctx context.Context, text string, task Task) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	cfg := &genai.EmbedContentConfig{TaskType: string(task)}
	if g.dimensions > 0 {
		cfg.OutputDimensionality = &g.dimensions
	}

	result, err := g.client.Models.EmbedContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, ErrNoEmbedding
	}
	return result.Embeddings[0].Values, nil
}
