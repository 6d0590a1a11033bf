package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundgate/internal/loan"
	"fundgate/internal/platform/middleware"
	dErrors "fundgate/pkg/domain-errors"
	"fundgate/pkg/platform/httputil"
)

// Service defines the loan operations the HTTP layer depends on.
type Service interface {
	CreateLoan(ctx context.Context, req loan.CreateLoanRequest) (loan.Loan, error)
	Get(ctx context.Context, id string) (loan.Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]loan.Loan, error)
	Overdue(ctx context.Context) ([]loan.Loan, error)
	Payments(ctx context.Context, loanID string) ([]loan.Payment, error)
	ProcessPayment(ctx context.Context, loanID, payerID string, amount int64, method loan.PaymentMethod) (loan.Payment, error)
	Quote(ctx context.Context, loanID string) (loan.PayoffQuote, error)
	EarlyPayoff(ctx context.Context, loanID, payerID string, method loan.PaymentMethod) (loan.Payment, error)
	UpdateStatus(ctx context.Context, loanID string, status loan.Status) (loan.Loan, error)
	StatsFor(ctx context.Context, borrowerID string) (loan.BorrowerStats, error)
}

// Handler wires loan endpoints to the loan service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a loan handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts loan endpoints on the router. Payment-taking endpoints sit
// behind the auth middleware; the payer identity comes from the verified
// token, never the request body.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/loans", h.HandleCreate)
	r.Get("/loans/overdue", h.HandleOverdue)
	r.Get("/loans", h.HandleListByBorrower)
	r.Get("/loans/{id}", h.HandleGet)
	r.Get("/loans/{id}/payments", h.HandlePayments)
	r.Get("/loans/{id}/payoff", h.HandleQuote)
	r.Put("/loans/{id}/status", h.HandleUpdateStatus)
	r.Get("/borrowers/{id}/stats", h.HandleBorrowerStats)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/loans/{id}/payments", h.HandleProcessPayment)
		r.Post("/loans/{id}/payoff", h.HandleEarlyPayoff)
	})
}

// HandleCreate handles POST /loans requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateLoanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.CreateLoan(ctx, req.Domain())
	if err != nil {
		h.logger.ErrorContext(ctx, "loan creation failed",
			"request_id", requestID, "borrower_id", req.BorrowerID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, l)
}

// HandleGet handles GET /loans/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, l)
}

// HandleListByBorrower handles GET /loans?borrower={id} requests.
func (h *Handler) HandleListByBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID := r.URL.Query().Get("borrower")
	if borrowerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "borrower query parameter is required"))
		return
	}
	loans, err := h.service.ListByBorrower(r.Context(), borrowerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoanListResponse{Loans: loans})
}

// HandleOverdue handles GET /loans/overdue requests.
func (h *Handler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.Overdue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoanListResponse{Loans: loans})
}

// HandlePayments handles GET /loans/{id}/payments requests.
func (h *Handler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.Payments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PaymentListResponse{Payments: payments})
}

// HandleQuote handles GET /loans/{id}/payoff requests.
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quote)
}

// HandleProcessPayment handles POST /loans/{id}/payments requests.
func (h *Handler) HandleProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	payerID := middleware.GetBorrowerID(ctx)
	if payerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProcessPaymentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.ProcessPayment(ctx, chi.URLParam(r, "id"), payerID, req.Amount, req.ParsedMethod())
	if err != nil {
		h.logger.ErrorContext(ctx, "payment processing failed",
			"request_id", requestID, "loan_id", chi.URLParam(r, "id"), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleEarlyPayoff handles POST /loans/{id}/payoff requests.
func (h *Handler) HandleEarlyPayoff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	payerID := middleware.GetBorrowerID(ctx)
	if payerID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[EarlyPayoffRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.EarlyPayoff(ctx, chi.URLParam(r, "id"), payerID, req.ParsedMethod())
	if err != nil {
		h.logger.ErrorContext(ctx, "early payoff failed",
			"request_id", requestID, "loan_id", chi.URLParam(r, "id"), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleUpdateStatus handles PUT /loans/{id}/status requests.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	l, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "status override failed",
			"request_id", requestID, "loan_id", chi.URLParam(r, "id"), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, l)
}

// HandleBorrowerStats handles GET /borrowers/{id}/stats requests.
func (h *Handler) HandleBorrowerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.StatsFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
