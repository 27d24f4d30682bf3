package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"credit-application/internal/api/handler/dto"
	"credit-application/internal/domain/credit"
	"credit-application/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreditHandler struct {
	service credit.CreditService
	logger  *slog.Logger
}

func NewCreditHandler(s credit.CreditService, l *slog.Logger) *CreditHandler {
	if s == nil {
		panic("credit service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CreditHandler{
		service: s,
		logger:  l.With("component", "CreditHandler"),
	}
}

func getCreditCodeFromURL(r *http.Request) (uuid.UUID, error) {
	codeStr := chi.URLParam(r, "creditCode")
	if codeStr == "" {
		return uuid.Nil, fmt.Errorf("%w: creditCode not found in URL path", apperrors.ErrInvalidArgument)
	}
	code, err := uuid.Parse(codeStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid creditCode format in URL path: %s", apperrors.ErrInvalidArgument, codeStr)
	}
	return code, nil
}

// CreateCredit handles POST /credits
// @Summary Request a new credit
// @Description Submits a credit application for an existing customer. The credit starts in PENDING status.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body dto.CreateCreditRequest true "Credit application request"
// @Success 201 {object} dto.CreditResponse "Credit application accepted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or unknown customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits [post]
func (h *CreditHandler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create credit request")

	var req dto.CreateCreditRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Create credit request failed validation", slog.Any("error", err))
		respondError(w, err)
		return
	}
	h.logger.DebugContext(r.Context(), "Request validation passed")

	day, err := req.FirstInstallmentDate()
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.RequestCredit(r.Context(), credit.RequestParams{
		CreditValue:          *req.CreditValue,
		DayFirstInstallment:  day,
		NumberOfInstallments: req.NumberOfInstallments,
		CustomerID:           req.CustomerID,
	})
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidArgument) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to create credit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCreditResponse(created)
	h.logger.InfoContext(r.Context(), "Credit created successfully", slog.String("creditCode", resp.CreditCode))
	respondJSON(w, http.StatusCreated, resp)
}

// ListCredits handles GET /credits?customerId={id}
// @Summary List a customer's credits
// @Description Lists the credit applications owned by a customer as trimmed summaries.
// @Tags Credits
// @Produce json
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CreditSummaryResponse "List of credit summaries"
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing customerId query parameter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits [get]
func (h *CreditHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from query", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received list credits request")

	credits, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list credits", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.CreditSummaryResponse, len(credits))
	for i, cr := range credits {
		resp[i] = dto.NewCreditSummaryResponse(cr)
	}

	h.logger.InfoContext(r.Context(), "Credits listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// GetCreditByCode handles GET /credits/{creditCode}?customerId={id}
// @Summary Retrieve a credit by its code
// @Description Retrieves the full view of a credit application. The requesting customer must own the credit.
// @Tags Credits
// @Produce json
// @Param creditCode path string true "Credit code (UUID)"
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CreditResponse "Credit details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid parameters or unknown credit code"
// @Failure 403 {object} dto.ErrorResponse "Credit belongs to a different customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits/{creditCode} [get]
func (h *CreditHandler) GetCreditByCode(w http.ResponseWriter, r *http.Request) {
	creditCode, err := getCreditCodeFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get credit code from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}
	customerID, err := getCustomerIDFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from query", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received get credit by code request")

	cr, err := h.service.GetByCode(r.Context(), customerID, creditCode)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get credit by code", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCreditResponse(cr)
	h.logger.InfoContext(r.Context(), "Credit retrieved successfully")
	respondJSON(w, http.StatusOK, resp)
}

// ApproveCredit handles POST /credits/{creditCode}/approve
// @Summary Approve a pending credit
// @Description Transitions a PENDING credit application to APPROVED.
// @Tags Credits
// @Produce json
// @Param creditCode path string true "Credit code (UUID)"
// @Success 204 "Credit successfully approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid or unknown credit code"
// @Failure 409 {object} dto.ErrorResponse "Credit already decided"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits/{creditCode}/approve [post]
func (h *CreditHandler) ApproveCredit(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve", h.service.Approve)
}

// RejectCredit handles POST /credits/{creditCode}/reject
// @Summary Reject a pending credit
// @Description Transitions a PENDING credit application to REJECTED.
// @Tags Credits
// @Produce json
// @Param creditCode path string true "Credit code (UUID)"
// @Success 204 "Credit successfully rejected"
// @Failure 400 {object} dto.ErrorResponse "Invalid or unknown credit code"
// @Failure 409 {object} dto.ErrorResponse "Credit already decided"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits/{creditCode}/reject [post]
func (h *CreditHandler) RejectCredit(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject", h.service.Reject)
}

func (h *CreditHandler) decide(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, creditCode uuid.UUID) error) {
	creditCode, err := getCreditCodeFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get credit code from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received credit decision request", slog.String("action", action))

	if err := apply(r.Context(), creditCode); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to decide credit", slog.String("action", action), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Credit decision applied successfully", slog.String("action", action))
	respondJSON(w, http.StatusNoContent, nil)
}
