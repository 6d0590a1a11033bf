// Package http assembles the service's HTTP surface: domain handlers, the
// middleware chain, operational endpoints, and the manual automation trigger.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	loanhandler "fundgate/internal/loan/handler"
	"fundgate/internal/platform/middleware"
	treasuryhandler "fundgate/internal/treasury/handler"
	"fundgate/pkg/platform/httputil"
)

// Sweeper triggers one automation sweep on demand.
type Sweeper interface {
	RunOnce(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Loans      *loanhandler.Handler
	Treasuries *treasuryhandler.Handler
	Sweeper    Sweeper
	Validator  middleware.JWTValidator
	// AdminTokenHash guards the manual sweep trigger when set.
	AdminTokenHash string
	Logger         *slog.Logger
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	deps.Treasuries.Register(r)
	deps.Loans.Register(r, middleware.RequireAuth(deps.Validator, deps.Logger))

	sweep := handleSweep(deps.Sweeper, deps.Logger)
	if deps.AdminTokenHash != "" {
		r.With(middleware.RequireAdminToken(deps.AdminTokenHash, deps.Logger)).Post("/automation/run", sweep)
	} else {
		r.Post("/automation/run", sweep)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func handleSweep(sweeper Sweeper, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sweeper.RunOnce(ctx); err != nil {
			logger.ErrorContext(ctx, "manual sweep failed",
				"request_id", middleware.GetRequestID(ctx), "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "completed"})
	}
}
