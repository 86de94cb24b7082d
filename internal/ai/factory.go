package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/racetime/internal/ai/gemini"
	"github.com/kiranshivaraju/racetime/internal/ai/openai"
	"github.com/kiranshivaraju/racetime/internal/config"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup. vLLM and Ollama are served through their
// OpenAI-compatible endpoints.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider("openai", cfg.OpenAI), nil
	case "vllm":
		return openai.NewProvider("vllm", cfg.VLLM), nil
	case "ollama":
		return openai.NewProvider("ollama", cfg.Ollama), nil
	case "gemini":
		return gemini.NewProvider(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, vllm, ollama, gemini", cfg.Provider)
	}
}
