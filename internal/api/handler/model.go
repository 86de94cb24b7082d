package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/racetime/internal/api/response"
	"github.com/kiranshivaraju/racetime/internal/regression"
)

// ModelHolder exposes the loaded regression model. *regression.Holder satisfies it.
type ModelHolder interface {
	Info() regression.Info
	Load(ctx context.Context) error
}

// NewModelInfoHandler returns an http.HandlerFunc for GET /api/v1/model.
func NewModelInfoHandler(h ModelHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, h.Info())
	}
}

// NewReloadModelHandler returns an http.HandlerFunc for POST /api/v1/admin/model/reload.
// A failed reload leaves the previous model serving.
func NewReloadModelHandler(h ModelHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Load(r.Context()); err != nil {
			slog.Error("model reload failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "MODEL_RELOAD_FAILED",
				"Could not load the model artifact", map[string]any{"model": h.Info()})
			return
		}

		info := h.Info()
		slog.Info("model reloaded", "name", info.Name, "version", info.Version)
		response.JSON(w, info)
	}
}
