// Package extract turns a free-text runner description into structured fields
// using a language model.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/racetime/internal/cache"
	"github.com/kiranshivaraju/racetime/internal/trace"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

var (
	// ErrExtractionFailed covers every failure to obtain a usable reply: the
	// provider call failed or the reply did not match the expected schema.
	ErrExtractionFailed = errors.New("no data extracted")
	// ErrEmptyReply is wrapped by ErrExtractionFailed when the reply was {}.
	ErrEmptyReply = errors.New("empty reply")
	// ErrEmptyDescription is returned before any provider call for blank input.
	ErrEmptyDescription = errors.New("description is empty")
)

// ReplyCache stores raw provider replies. cache.Cache satisfies it.
type ReplyCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// modelNamer is implemented by providers that report their configured model.
type modelNamer interface {
	ModelName() string
}

// Extractor calls the language model with the fixed extraction instruction.
type Extractor struct {
	provider models.AIProvider
	observer trace.Observer
	cache    ReplyCache
	cacheTTL time.Duration
	timeout  time.Duration
}

type Option func(*Extractor)

// WithObserver records one span per provider call.
func WithObserver(o trace.Observer) Option {
	return func(e *Extractor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithCache reuses replies for identical descriptions for ttl.
func WithCache(c ReplyCache, ttl time.Duration) Option {
	return func(e *Extractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithTimeout bounds a single provider call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

func NewExtractor(provider models.AIProvider, opts ...Option) *Extractor {
	e := &Extractor{provider: provider, observer: trace.Nop{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the fields found in description. Any provider or parse
// failure is reported as ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, description string) (models.RunnerProfile, error) {
	if strings.TrimSpace(description) == "" {
		return models.RunnerProfile{}, ErrEmptyDescription
	}

	content, err := e.reply(ctx, description)
	if err != nil {
		return models.RunnerProfile{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return ParseReply(content)
}

func (e *Extractor) reply(ctx context.Context, description string) (string, error) {
	var model string
	if mn, ok := e.provider.(modelNamer); ok {
		model = mn.ModelName()
	}
	key := cache.ExtractionKey(e.provider.Name(), model, systemPrompt, description)
	if e.cache != nil {
		cached, found, err := e.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("extraction cache read failed", "error", err)
		} else if found {
			return string(cached), nil
		}
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	span := models.Span{
		ID:        uuid.New(),
		Name:      SpanName,
		Input:     description,
		Provider:  e.provider.Name(),
		StartedAt: time.Now().UTC(),
	}
	out, err := e.provider.Complete(callCtx, models.CompletionRequest{
		System: systemPrompt,
		User:   description,
		JSON:   true,
	})
	span.EndedAt = time.Now().UTC()
	span.Model = out.Model
	if err != nil {
		span.Error = err.Error()
	} else {
		span.Output = out.Content
	}
	e.observer.Record(ctx, span)

	if err != nil {
		return "", err
	}

	// Only replies that parse are worth replaying.
	if e.cache != nil {
		if _, perr := ParseReply(out.Content); perr == nil {
			if err := e.cache.Set(ctx, key, []byte(out.Content), e.cacheTTL); err != nil {
				slog.Warn("extraction cache write failed", "error", err)
			}
		}
	}
	return out.Content, nil
}
