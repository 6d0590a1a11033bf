package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundgate/internal/platform/middleware"
	"fundgate/internal/treasury"
	"fundgate/pkg/platform/httputil"
)

// Service defines the treasury operations the HTTP layer depends on.
type Service interface {
	Get(ctx context.Context, purpose treasury.Purpose) (treasury.Treasury, error)
	List(ctx context.Context) ([]treasury.Treasury, error)
	AddFunds(ctx context.Context, purpose treasury.Purpose, amount int64, source string) error
	Allocate(ctx context.Context, purpose treasury.Purpose, amount int64, reason string, governanceApproved bool) error
	Transfer(ctx context.Context, from, to treasury.Purpose, amount int64, governanceApproved bool) error
	Health(ctx context.Context, purpose treasury.Purpose, stats treasury.PortfolioStats) (treasury.Health, error)
	MultiHealth(ctx context.Context, stats treasury.PortfolioStats) (treasury.MultiHealth, error)
}

// StatsProvider supplies loan portfolio statistics for health reporting.
type StatsProvider interface {
	PortfolioStats(ctx context.Context) (treasury.PortfolioStats, error)
}

// Handler wires treasury endpoints to the treasury service.
type Handler struct {
	service Service
	stats   StatsProvider
	logger  *slog.Logger
}

// New constructs a treasury handler with its dependencies.
func New(service Service, stats StatsProvider, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		stats:   stats,
		logger:  logger,
	}
}

// Register mounts treasury endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/treasuries", h.HandleList)
	r.Get("/treasuries/health", h.HandleMultiHealth)
	r.Get("/treasuries/{purpose}", h.HandleGet)
	r.Get("/treasuries/{purpose}/health", h.HandleHealth)
	r.Post("/treasuries/{purpose}/funds", h.HandleAddFunds)
	r.Post("/treasuries/{purpose}/allocations", h.HandleAllocate)
	r.Post("/treasuries/transfers", h.HandleTransfer)
}

// HandleList handles GET /treasuries requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	treasuries, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TreasuryListResponse{Treasuries: treasuries})
}

// HandleGet handles GET /treasuries/{purpose} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	purpose, err := treasury.ParsePurpose(chi.URLParam(r, "purpose"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(r.Context(), purpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleHealth handles GET /treasuries/{purpose}/health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	purpose, err := treasury.ParsePurpose(chi.URLParam(r, "purpose"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.portfolioStats(ctx, purpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	health, err := h.service.Health(ctx, purpose, stats)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, health)
}

// HandleMultiHealth handles GET /treasuries/health requests.
func (h *Handler) HandleMultiHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.portfolioStats(ctx, treasury.PurposeLoan)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	health, err := h.service.MultiHealth(ctx, stats)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, health)
}

// HandleAddFunds handles POST /treasuries/{purpose}/funds requests.
func (h *Handler) HandleAddFunds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	purpose, err := treasury.ParsePurpose(chi.URLParam(r, "purpose"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddFundsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AddFunds(ctx, purpose, req.Amount, req.Source); err != nil {
		h.logger.ErrorContext(ctx, "add treasury funds failed",
			"request_id", requestID, "purpose", purpose, "error", err)
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(ctx, purpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleAllocate handles POST /treasuries/{purpose}/allocations requests.
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	purpose, err := treasury.ParsePurpose(chi.URLParam(r, "purpose"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AllocateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Allocate(ctx, purpose, req.Amount, req.Reason, req.GovernanceApproved); err != nil {
		h.logger.ErrorContext(ctx, "treasury allocation failed",
			"request_id", requestID, "purpose", purpose, "error", err)
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(ctx, purpose)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleTransfer handles POST /treasuries/transfers requests.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Transfer(ctx, req.from, req.to, req.Amount, req.GovernanceApproved); err != nil {
		h.logger.ErrorContext(ctx, "treasury transfer failed",
			"request_id", requestID, "from", req.From, "to", req.To, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// portfolioStats returns loan book statistics for the loan treasury and an
// empty snapshot for the others.
func (h *Handler) portfolioStats(ctx context.Context, purpose treasury.Purpose) (treasury.PortfolioStats, error) {
	if purpose != treasury.PurposeLoan || h.stats == nil {
		return treasury.PortfolioStats{}, nil
	}
	return h.stats.PortfolioStats(ctx)
}
