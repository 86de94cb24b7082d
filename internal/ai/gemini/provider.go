package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kiranshivaraju/racetime/internal/config"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Provider implements models.AIProvider using Google's Gemini API.
type Provider struct {
	client    *genai.Client
	modelName string
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, modelName: cfg.Model}, nil
}

func (p *Provider) Name() string { return "gemini" }

// ModelName returns the configured model.
func (p *Provider) ModelName() string { return p.modelName }

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.Completion, error) {
	// A fresh model handle per call keeps per-request settings off shared state.
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(0)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Completion{}, fmt.Errorf("%w: %w", models.ErrInferenceTimeout, err)
		}
		return models.Completion{}, fmt.Errorf("%w: %w", models.ErrProviderUnavailable, err)
	}

	text := responseText(resp)
	if text == "" {
		return models.Completion{}, fmt.Errorf("%w: empty candidate", models.ErrInvalidResponse)
	}
	return models.Completion{Content: text, Model: p.modelName}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

var _ models.AIProvider = (*Provider)(nil)
