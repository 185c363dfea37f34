package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/middleware"
	"github.com/yourorg/helpdesk/internal/security/ratelimit"
	"github.com/yourorg/helpdesk/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRequest represents a registration request for either kind
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token string `json:"token"`
}

// PrincipalResponse is the public representation of a principal; the
// password never appears in any response.
type PrincipalResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AdminHandler handles admin registration, login and lookups
type AdminHandler struct {
	service  *service.AdminService
	throttle *ratelimit.LoginThrottle
	logger   *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, throttle *ratelimit.LoginThrottle, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		service:  adminService,
		throttle: throttle,
		logger:   logger,
	}
}

// Register handles POST /api/admins/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode admin register request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	admin, err := h.service.Register(req.Name, req.Email, req.Password, req.PhoneNumber)
	if err != nil {
		metrics.ObserveRegistration("admin", "rejected")
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	metrics.ObserveRegistration("admin", "ok")
	writeJSON(w, http.StatusCreated, PrincipalResponse{
		ID:    admin.ID,
		Name:  admin.Name,
		Email: admin.Email,
	})
}

// Login handles POST /api/admins/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		return
	}

	if h.throttle != nil && !h.throttle.Allow(r.Context(), "admin", req.Email) {
		metrics.ObserveLogin("admin", "throttled")
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many failed attempts"})
		return
	}

	token, err := h.service.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Error("admin login failed", slog.String("error", err.Error()))
		metrics.ObserveLogin("admin", "error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
		return
	}
	if token == "" {
		// unknown email and wrong password look identical on purpose
		if h.throttle != nil {
			h.throttle.RecordFailure(r.Context(), "admin", req.Email)
		}
		metrics.ObserveLogin("admin", "invalid")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	if h.throttle != nil {
		h.throttle.Reset(r.Context(), "admin", req.Email)
	}
	metrics.ObserveLogin("admin", "success")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// GetByID handles GET /api/admins/{id}, admin role only
func (h *AdminHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if err := security.Require(claims, security.RoleAdmin); err != nil {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}

	admin, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "admin not found"})
			return
		}
		h.logger.Error("failed to get admin", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, PrincipalResponse{
		ID:          admin.ID,
		Name:        admin.Name,
		Email:       admin.Email,
		PhoneNumber: admin.PhoneNumber,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
