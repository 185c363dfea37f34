package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
	"github.com/yourorg/helpdesk/internal/security/middleware"
	"github.com/yourorg/helpdesk/internal/service"
)

// CreateTicketRequest is the client payload for a new ticket. Any
// creator or status fields the caller sends are ignored: the creator
// comes from the token, the status is always Pending.
type CreateTicketRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ClientID     *int64 `json:"clientId"`
	ContractID   *int64 `json:"contractId"`
	WithdrawalID *int64 `json:"withdrawalId"`
}

// UpdateStatusRequest carries the requested status transition
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketHandler handles the ticket endpoints
type TicketHandler struct {
	service *service.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *service.TicketService, logger *slog.Logger) *TicketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketHandler{service: ticketService, logger: logger}
}

// List handles GET /api/tickets
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	tickets, err := h.service.ListVisible(claims)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		h.logger.Error("failed to list tickets", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list tickets"})
		return
	}

	if tickets == nil {
		tickets = []*domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

// Get handles GET /api/tickets/{id}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}

	ticket, err := h.service.Get(claims, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
		case errors.Is(err, domain.ErrForbidden):
			// the ticket exists but belongs to someone else
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			h.logger.Error("failed to get ticket", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to get ticket"})
		}
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Create handles POST /api/tickets
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	ticket, err := h.service.Create(claims, service.CreateTicketInput{
		Title:        req.Title,
		Description:  req.Description,
		ClientID:     req.ClientID,
		ContractID:   req.ContractID,
		WithdrawalID: req.WithdrawalID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	metrics.ObserveTicketCreated()
	writeJSON(w, http.StatusCreated, ticket)
}

// UpdateStatus handles PUT /api/tickets/{id}/status, admin only
func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	status, err := domain.ParseTicketStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ticket, err := h.service.UpdateStatus(claims, id, status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
		default:
			h.logger.Error("failed to update ticket status", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to update status"})
		}
		return
	}

	metrics.ObserveStatusUpdate(string(status))
	writeJSON(w, http.StatusOK, ticket)
}
