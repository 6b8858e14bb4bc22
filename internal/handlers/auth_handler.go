package handlers

import (
	"net/http"

	"easel-ticket/internal/services"
	"easel-ticket/internal/store"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /api/auth/login
func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	result, err := h.auth.Login(e.Request.Context(), req.Email, req.Password)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"user":    result.Admin,
	})
}

// Me reports the admin behind the request's auth token, if any.
// GET /api/auth/me
func (h *AuthHandler) Me(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.Collection().Name != "admins" {
		return e.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          store.AdminFromRecord(e.Auth),
	})
}
