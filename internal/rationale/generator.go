// Package rationale sends composed prompts to a text-generation provider and
// turns the completion into a safe rationale text.
package rationale

import (
	"context"
	"errors"
	"time"

	"kdigo-rationale-server/internal/logger"
)

// Completion is a single-shot generation request.
type Completion struct {
	Model       string
	Content     string
	Temperature float32
}

// Provider is the narrow interface to an external text-generation service:
// prompt in, text out. Implementations return ErrRateLimited or
// ErrMalformedResponse (wrapped) when they can tell those cases apart.
type Provider interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// Generator produces rationales. It never retries; retry policy belongs to callers.
type Generator struct {
	provider    Provider
	model       string
	temperature float32
	timeout     time.Duration
	log         *logger.Logger
}

type GeneratorConfig struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewGenerator(provider Provider, cfg GeneratorConfig, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		provider:    provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log.With("service", "RationaleGenerator"),
	}
}

// Model is the identifier sent to the provider.
func (g *Generator) Model() string { return g.model }

// Generate returns the sanitized rationale for prompt, or a *GenerationError.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.provider.Complete(ctx, Completion{
		Model:       g.model,
		Content:     prompt,
		Temperature: g.temperature,
	})
	if err != nil {
		genErr := classify(ctx, err)
		g.log.Warn("Generation failed", "kind", string(genErr.Kind), "model", g.model, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", genErr
	}

	g.log.Debug("Generation completed", "model", g.model, "duration_ms", time.Since(start).Milliseconds(), "chars", len(raw))
	return Sanitize(raw), nil
}

func classify(ctx context.Context, err error) *GenerationError {
	var genErr *GenerationError
	switch {
	case errors.As(err, &genErr):
		return genErr
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &GenerationError{Kind: KindTimeout, Err: err}
	case errors.Is(err, ErrRateLimited):
		return &GenerationError{Kind: KindRateLimited, Err: err}
	case errors.Is(err, ErrMalformedResponse):
		return &GenerationError{Kind: KindMalformed, Err: err}
	default:
		return &GenerationError{Kind: KindProvider, Err: err}
	}
}
