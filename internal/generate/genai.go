package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when GenAIConfig.Model is empty.
const DefaultModel = "gemini-2.5-flash"

type GenAIConfig struct {
	APIKey string
	Model  string
}

// GenAIProvider generates blocks with a Gemini model in JSON response mode.
type GenAIProvider struct {
	client *genai.Client
	model  string
}

func NewGenAIProvider(ctx context.Context, cfg GenAIConfig) (*GenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GenAIProvider{client: client, model: model}, nil
}

func (p *GenAIProvider) Generate(ctx context.Context, prompt string, hint Hint) ([]byte, error) {
	system, err := SystemPrompt(hint)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("generate content: empty response")
	}
	return []byte(text), nil
}

// SystemPrompt describes the expected output for hint.
func SystemPrompt(hint Hint) (string, error) {
	schema, err := json.MarshalIndent(hint.Schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You write content blocks for a storefront page builder.\n")
	if hint.Kind != "" {
		fmt.Fprintf(&sb, "Return exactly one JSON object {\"kind\": %q, \"data\": {...}}.\n", hint.Kind)
	} else {
		sb.WriteString("Return a JSON object {\"blocks\": [{\"kind\": ..., \"data\": {...}}, ...]} in page order.\n")
	}
	sb.WriteString("Use only these kinds and fields. Fields marked required must be non-empty.\n")
	sb.Write(schema)
	sb.WriteString("\n")
	if len(hint.Rows) > 0 {
		rows, err := json.Marshal(hint.Rows)
		if err != nil {
			return "", fmt.Errorf("encode rows: %w", err)
		}
		sb.WriteString("Base every fact on these data rows and do not invent values:\n")
		sb.Write(rows)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
