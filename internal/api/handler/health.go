package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/kiranshivaraju/racetime/internal/api/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. Any
// unreachable dependency or a missing model yields 503 DEGRADED.
func NewHealthHandler(db, cache Pinger, model ModelHolder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		checks := map[string]string{
			"database": status(ctx, db),
			"cache":    status(ctx, cache),
			"model":    "ok",
		}
		if !model.Info().Loaded {
			checks["model"] = "unavailable"
		}

		for _, v := range checks {
			if v != "ok" {
				response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
					"One or more services degraded", checks)
				return
			}
		}
		response.JSON(w, map[string]any{"status": "ok", "checks": checks})
	}
}

func status(ctx context.Context, p Pinger) string {
	if p == nil || p.Ping(ctx) != nil {
		return "degraded"
	}
	return "ok"
}
