// Package pipeline runs a description through extraction, validation and
// prediction, and keeps a history of those runs.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/racetime/internal/extract"
	"github.com/kiranshivaraju/racetime/internal/predict"
	"github.com/kiranshivaraju/racetime/internal/store"
	"github.com/kiranshivaraju/racetime/internal/trace"
	"github.com/kiranshivaraju/racetime/internal/validate"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Extractor pulls runner fields out of free text. *extract.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, description string) (models.RunnerProfile, error)
}

// Predictor estimates a finish time. *predict.Predictor satisfies it.
type Predictor interface {
	Predict(age int, gender string, pace5k float64) (predict.Estimate, error)
}

// RunStore persists run history. store.Store satisfies it.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, filter store.RunFilter) ([]*models.Run, int, error)
}

// Result is a successful estimate.
type Result struct {
	RunID    uuid.UUID               `json:"run_id"`
	Profile  models.ValidatedProfile `json:"profile"`
	Estimate predict.Estimate        `json:"estimate"`
}

type Service struct {
	extractor Extractor
	predictor Predictor
	runs      RunStore
	flusher   trace.Flusher
	provider  string
}

type Option func(*Service)

// WithRunStore records every run.
func WithRunStore(rs RunStore) Option {
	return func(s *Service) { s.runs = rs }
}

// WithFlusher flushes buffered spans after each successful run.
func WithFlusher(f trace.Flusher) Option {
	return func(s *Service) {
		if f != nil {
			s.flusher = f
		}
	}
}

// WithProvider names the language model provider in run records.
func WithProvider(name string) Option {
	return func(s *Service) { s.provider = name }
}

func NewService(extractor Extractor, predictor Predictor, opts ...Option) *Service {
	s := &Service{extractor: extractor, predictor: predictor, flusher: trace.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate runs the full pipeline. Errors come back unchanged from the stage
// that produced them; the predictor is never called when fields are missing.
// The description reaches the extractor exactly as given.
func (s *Service) Estimate(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, extract.ErrEmptyDescription
	}

	run := &models.Run{
		ID:        uuid.New(),
		Provider:  s.provider,
		CreatedAt: time.Now().UTC(),
	}

	profile, err := s.extractor.Extract(ctx, description)
	if err != nil {
		s.finish(ctx, run, models.RunStatusExtractionFailed, err)
		return nil, err
	}
	run.Age, run.Gender, run.Pace5k = profile.Age, profile.Gender, profile.Pace5k

	valid, err := validate.Profile(profile)
	if err != nil {
		var missing *validate.MissingFieldsError
		if errors.As(err, &missing) {
			run.MissingFields = missing.Fields
		}
		s.finish(ctx, run, models.RunStatusMissingFields, err)
		return nil, err
	}

	est, err := s.predictor.Predict(valid.Age, valid.Gender, valid.Pace5k)
	if err != nil {
		s.finish(ctx, run, models.RunStatusPredictionFailed, err)
		return nil, err
	}
	run.PredictedSeconds = &est.Seconds
	run.PredictedTime = &est.Formatted
	s.finish(ctx, run, models.RunStatusCompleted, nil)

	if err := s.flusher.Flush(ctx); err != nil {
		slog.Warn("trace flush failed", "run_id", run.ID, "error", err)
	}

	return &Result{RunID: run.ID, Profile: valid, Estimate: est}, nil
}

func (s *Service) finish(ctx context.Context, run *models.Run, status string, cause error) {
	run.Status = status
	if cause != nil {
		msg := cause.Error()
		run.ErrorMessage = &msg
	}

	slog.Info("estimate run finished",
		"run_id", run.ID,
		"status", status,
		"provider", run.Provider,
	)

	if s.runs == nil {
		return
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		slog.Error("failed to persist run", "run_id", run.ID, "error", err)
	}
}

// GetRun returns one recorded run.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	if s.runs == nil {
		return nil, store.ErrNotFound
	}
	return s.runs.GetRun(ctx, id)
}

// ListRuns returns a page of recorded runs, newest first, and the total count.
func (s *Service) ListRuns(ctx context.Context, filter store.RunFilter) ([]*models.Run, int, error) {
	if s.runs == nil {
		return []*models.Run{}, 0, nil
	}
	return s.runs.ListRuns(ctx, filter)
}
