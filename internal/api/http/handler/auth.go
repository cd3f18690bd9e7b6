package handler

import (
	"context"
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/api/http/cookie"
	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/service"
)

// AuthService defines sign-up and sign-in operations.
type AuthService interface {
	SignUp(ctx context.Context, params service.SignUpParams) (model.User, string, error)
	SignIn(ctx context.Context, username, plaintext string) (string, error)
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Rank       string  `json:"rank"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Rank:       string(u.Rank),
		ProfilePic: u.ProfilePic,
	}
}

// SignUp registers a new user and starts a session.
func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username, password and email are required")
		return
	}

	h.logger.Debug("Auth handler: processing sign-up request",
		"username", req.Username)

	user, token, err := h.authService.SignUp(r.Context(), service.SignUpParams{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.logger.Error("Auth handler: sign-up failed",
			"username", req.Username,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: sign-up completed",
		"username", user.Username)

	cookie.Write(w, token)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// SignIn verifies credentials and starts a session.
func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Debug("Auth handler: processing sign-in request",
		"username", req.Username)

	token, err := h.authService.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign-in failed",
			"username", req.Username,
			"error", err.Error())
		cookie.Clear(w)
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: sign-in completed",
		"username", req.Username)

	cookie.Write(w, token)
	w.WriteHeader(http.StatusNoContent)
}

// SignOut ends the session by expiring the cookie. Tokens are
// stateless so nothing is revoked server side.
func (h *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
