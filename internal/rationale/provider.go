package rationale

import (
	"context"
	"fmt"

	"kdigo-rationale-server/internal/config"
)

// NewProvider builds the provider selected by GENERATION_PROVIDER.
func NewProvider(ctx context.Context, cfg config.GenerationConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
