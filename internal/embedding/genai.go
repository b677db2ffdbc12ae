package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGenAIModel = "gemini-embedding-001"

// GenAIEngine embeds text with the Google Gemini API.
type GenAIEngine struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGenAIEngine creates a GenAI engine. dims, when positive, requests a
// reduced output dimensionality.
func NewGenAIEngine(ctx context.Context, apiKey, model string, dims int) (*GenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai: API key is required")
	}
	if model == "" {
		model = defaultGenAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	return &GenAIEngine{client: client, model: model, dims: dims}, nil
}

// EmbedBatch embeds texts in one call and normalizes the result. Reduced
// dimensionality output is not unit-norm on the wire.
func (e *GenAIEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if e.dims > 0 {
		d := int32(e.dims)
		cfg.OutputDimensionality = &d
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = Normalize(emb.Values)
	}
	return out, nil
}

// Dimensions returns the requested dimensionality; 768 is the model default.
func (e *GenAIEngine) Dimensions() int {
	if e.dims > 0 {
		return e.dims
	}
	return 768
}

func (e *GenAIEngine) Name() string { return "genai:" + e.model }
