package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/infrastructure/security"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// AuthAPIHandlers handles authentication requests
type AuthAPIHandlers struct {
	authService *security.AuthService
	logger      *zap.Logger
}

// NewAuthAPIHandlers creates a new auth API handlers instance
func NewAuthAPIHandlers(authService *security.AuthService, logger *zap.Logger) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthAPIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req security.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, apperrors.NewBadRequestError("Invalid JSON payload"))
		return
	}

	resp, err := h.authService.Authenticate(r.Context(), req)
	if err != nil {
		h.logger.Info("login failed", zap.String("email", req.Email))
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}
