package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/racetime/internal/api/response"
	"github.com/kiranshivaraju/racetime/internal/extract"
	"github.com/kiranshivaraju/racetime/internal/pipeline"
	"github.com/kiranshivaraju/racetime/internal/predict"
	"github.com/kiranshivaraju/racetime/internal/regression"
	"github.com/kiranshivaraju/racetime/internal/store"
	"github.com/kiranshivaraju/racetime/internal/validate"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

const maxDescriptionBytes = 8 << 10

// Estimator defines the interface the estimate handlers depend on.
// *pipeline.Service satisfies it.
type Estimator interface {
	Estimate(ctx context.Context, description string) (*pipeline.Result, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, filter store.RunFilter) ([]*models.Run, int, error)
}

type estimateResponse struct {
	RunID            uuid.UUID               `json:"run_id"`
	Profile          models.ValidatedProfile `json:"profile"`
	GenderCategory   string                  `json:"gender_category"`
	PredictedSeconds float64                 `json:"predicted_seconds"`
	PredictedTime    string                  `json:"predicted_time"`
}

// NewCreateEstimateHandler returns an http.HandlerFunc for POST /api/v1/estimates.
func NewCreateEstimateHandler(svc Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Description string `json:"description"`
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxDescriptionBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if strings.TrimSpace(req.Description) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "description is required", nil)
			return
		}

		result, err := svc.Estimate(r.Context(), req.Description)
		if err != nil {
			writeEstimateError(w, err)
			return
		}

		response.JSON(w, estimateResponse{
			RunID:            result.RunID,
			Profile:          result.Profile,
			GenderCategory:   result.Estimate.GenderCategory,
			PredictedSeconds: result.Estimate.Seconds,
			PredictedTime:    result.Estimate.Formatted,
		})
	}
}

// writeEstimateError maps pipeline errors onto the API error envelope.
// Provider detail stays in the logs; the client only learns extraction failed.
func writeEstimateError(w http.ResponseWriter, err error) {
	var missing *validate.MissingFieldsError
	switch {
	case errors.Is(err, extract.ErrEmptyDescription):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "description is required", nil)
	case errors.Is(err, extract.ErrExtractionFailed):
		slog.Warn("extraction failed", "error", err)
		response.Error(w, http.StatusBadGateway, "EXTRACTION_FAILED",
			"Could not extract runner data from the description", nil)
	case errors.As(err, &missing):
		response.Error(w, http.StatusUnprocessableEntity, "MISSING_FIELDS",
			"Some required information is missing", map[string]any{"missing": missing.Fields})
	case errors.Is(err, regression.ErrModelUnavailable):
		response.Error(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE",
			"The prediction model is not loaded", nil)
	case errors.Is(err, regression.ErrIncompatibleSchema), errors.Is(err, predict.ErrInvalidPrediction):
		slog.Error("prediction failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "PREDICTION_FAILED",
			"The model could not produce a prediction", nil)
	default:
		slog.Error("estimate failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// NewListEstimatesHandler returns an http.HandlerFunc for GET /api/v1/estimates.
func NewListEstimatesHandler(svc Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.RunFilter{Status: q.Get("status")}

		if filter.Status != "" && !validRunStatus(filter.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "unknown status", nil)
			return
		}
		if v := q.Get("since"); v != "" {
			since, err := time.Parse(time.RFC3339, v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = since
		}
		var err error
		if filter.Page, err = intParam(q.Get("page")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be an integer", nil)
			return
		}
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be an integer", nil)
			return
		}
		filter = filter.Normalize()

		runs, total, err := svc.ListRuns(r.Context(), filter)
		if err != nil {
			slog.Error("list runs failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list estimates", nil)
			return
		}
		if runs == nil {
			runs = []*models.Run{}
		}

		response.Collection(w, runs, response.NewPaginationMeta(filter.Page, filter.Limit, total))
	}
}

// NewGetEstimateHandler returns an http.HandlerFunc for GET /api/v1/estimates/{runID}.
func NewGetEstimateHandler(svc Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(chi.URLParam(r, "runID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_RUN_ID", "Invalid run ID", nil)
			return
		}

		run, err := svc.GetRun(r.Context(), runID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RUN_NOT_FOUND", "Estimate not found", nil)
			return
		}
		if err != nil {
			slog.Error("get run failed", "run_id", runID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load estimate", nil)
			return
		}

		response.JSON(w, run)
	}
}

func validRunStatus(s string) bool {
	switch s {
	case models.RunStatusCompleted, models.RunStatusExtractionFailed,
		models.RunStatusMissingFields, models.RunStatusPredictionFailed:
		return true
	}
	return false
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
