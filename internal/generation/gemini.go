package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash-001"

// GeminiGenerator is a Generator backed by the Gemini generateContent endpoint using
// structured JSON output.
type GeminiGenerator struct {
	client *generativelanguage.GenerativeClient
	model  string
	logger zerolog.Logger
}

// NewGeminiGenerator creates a generator for model. An empty endpoint uses the public API.
func NewGeminiGenerator(ctx context.Context, apiKey, model, endpoint string, logger zerolog.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(endpoint, "/")))
	}
	// API keys are only accepted over REST
	client, err := generativelanguage.NewGenerativeRESTClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "gemini").Str("model", model).Logger(),
	}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.GenerateContent(ctx, &generativelanguagepb.GenerateContentRequest{
		Model: "models/" + g.model,
		Contents: []*generativelanguagepb.Content{{
			Role:  "user",
			Parts: []*generativelanguagepb.Part{textPart(req.Prompt)},
		}},
		SystemInstruction: &generativelanguagepb.Content{
			Parts: []*generativelanguagepb.Part{textPart(req.SystemInstruction)},
		},
		GenerationConfig: &generativelanguagepb.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   toGeminiSchema(req.Schema),
		},
	})
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &ServiceError{Scope: req.Scope, StatusCode: apiErr.Code, Err: errors.New(apiErr.Message)}
		}
		return "", &ServiceError{Scope: req.Scope, Err: err}
	}

	if reason := resp.GetPromptFeedback().GetBlockReason(); reason != generativelanguagepb.GenerateContentResponse_PromptFeedback_BLOCK_REASON_UNSPECIFIED {
		return "", &ServiceError{Scope: req.Scope, Err: fmt.Errorf("prompt blocked: %s", reason)}
	}
	if len(resp.GetCandidates()) == 0 || resp.GetCandidates()[0].GetContent() == nil {
		return "", &ServiceError{Scope: req.Scope, Err: errors.New("response has no candidates")}
	}

	cand := resp.GetCandidates()[0]
	var b strings.Builder
	for _, part := range cand.GetContent().GetParts() {
		b.WriteString(part.GetText())
	}
	if b.Len() == 0 {
		return "", &ServiceError{Scope: req.Scope, Err: fmt.Errorf("candidate has no text (finish reason %s)", cand.GetFinishReason())}
	}

	if usage := resp.GetUsageMetadata(); usage != nil {
		g.logger.Debug().
			Str("scope", string(req.Scope)).
			Int32("prompt_tokens", usage.GetPromptTokenCount()).
			Int32("candidate_tokens", usage.GetCandidatesTokenCount()).
			Msg("Gemini usage")
	}
	return b.String(), nil
}

func textPart(text string) *generativelanguagepb.Part {
	return &generativelanguagepb.Part{Data: &generativelanguagepb.Part_Text{Text: text}}
}

func toGeminiSchema(s *Schema) *generativelanguagepb.Schema {
	if s == nil {
		return nil
	}
	out := &generativelanguagepb.Schema{
		Type:             generativelanguagepb.Type(generativelanguagepb.Type_value[s.Type]),
		Format:           s.Format,
		Description:      s.Description,
		Nullable:         s.Nullable,
		Enum:             s.Enum,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrdering,
		Items:            toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*generativelanguagepb.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}
