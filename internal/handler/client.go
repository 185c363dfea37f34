package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
	"github.com/yourorg/helpdesk/internal/security/ratelimit"
	"github.com/yourorg/helpdesk/internal/service"
)

// ClientHandler handles client registration and login
type ClientHandler struct {
	service  *service.ClientService
	throttle *ratelimit.LoginThrottle
	logger   *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService, throttle *ratelimit.LoginThrottle, logger *slog.Logger) *ClientHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientHandler{
		service:  clientService,
		throttle: throttle,
		logger:   logger,
	}
}

// Register handles POST /api/clients/register
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode client register request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	client, err := h.service.Register(req.Name, req.Email, req.Password, req.PhoneNumber)
	if err != nil {
		metrics.ObserveRegistration("client", "rejected")
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	metrics.ObserveRegistration("client", "ok")
	writeJSON(w, http.StatusCreated, PrincipalResponse{
		ID:    client.ID,
		Name:  client.Name,
		Email: client.Email,
	})
}

// Login handles POST /api/clients/login
func (h *ClientHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		return
	}

	if h.throttle != nil && !h.throttle.Allow(r.Context(), "client", req.Email) {
		metrics.ObserveLogin("client", "throttled")
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many failed attempts"})
		return
	}

	token, err := h.service.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Error("client login failed", slog.String("error", err.Error()))
		metrics.ObserveLogin("client", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
		return
	}
	if token == "" {
		if h.throttle != nil {
			h.throttle.RecordFailure(r.Context(), "client", req.Email)
		}
		metrics.ObserveLogin("client", "invalid")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	if h.throttle != nil {
		h.throttle.Reset(r.Context(), "client", req.Email)
	}
	metrics.ObserveLogin("client", "success")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
