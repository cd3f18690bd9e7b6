package handler

import (
	"context"
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/service"
)

// UserService defines privileged user management operations.
type UserService interface {
	CreateUser(ctx context.Context, actor model.Principal, params service.SignUpParams, rank model.Rank) (model.User, error)
	ChangePassword(ctx context.Context, principal model.Principal, newPassword string) error
}

// User handles HTTP endpoints for the authenticated user.
type User struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Rank     string `json:"rank"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// Get returns the authenticated user.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(principal.User))
}

// Create provisions a user with an explicit rank. Admin only.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username, password and email are required")
		return
	}

	h.logger.Debug("User handler: processing create request",
		"actor", principal.Username,
		"username", req.Username)

	user, err := h.userService.CreateUser(r.Context(), principal, service.SignUpParams{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}, model.ParseRank(req.Rank))
	if err != nil {
		h.logger.Error("User handler: create failed",
			"actor", principal.Username,
			"username", req.Username,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: user created",
		"actor", principal.Username,
		"username", user.Username,
		"rank", user.Rank)

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// ChangePassword rotates the authenticated user's salt and hash,
// invalidating every outstanding session token.
func (h *User) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), principal, req.Password); err != nil {
		h.logger.Error("User handler: password change failed",
			"username", principal.Username,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: password changed",
		"username", principal.Username)

	w.WriteHeader(http.StatusNoContent)
}
