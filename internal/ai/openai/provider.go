package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kiranshivaraju/racetime/internal/config"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Provider implements models.AIProvider on top of an OpenAI-compatible chat
// completions endpoint.
type Provider struct {
	name   string
	model  string
	client *goopenai.Client
}

// NewProvider builds a provider reporting the given name. An empty BaseURL
// targets api.openai.com.
func NewProvider(name string, cfg config.OpenAIConfig) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		name:   name,
		model:  cfg.Model,
		client: goopenai.NewClientWithConfig(clientCfg),
	}
}

func (p *Provider) Name() string { return p.name }

// ModelName returns the configured model.
func (p *Provider) ModelName() string { return p.model }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.Completion, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSON {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return models.Completion{}, classifyError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return models.Completion{}, fmt.Errorf("%w: no choices in response", models.ErrInvalidResponse)
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return models.Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
	}, nil
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", models.ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %w", models.ErrProviderUnavailable, err)
}

var _ models.AIProvider = (*Provider)(nil)
