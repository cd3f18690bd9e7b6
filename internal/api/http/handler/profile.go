package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// ProfileService defines profile picture operations.
type ProfileService interface {
	SetPicture(ctx context.Context, principal model.Principal, r io.Reader) (string, error)
	GetPicture(ctx context.Context, principal model.Principal) (io.ReadCloser, error)
	RemovePicture(ctx context.Context, principal model.Principal) error
}

// Profile handles HTTP endpoints for profile pictures.
type Profile struct {
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProfile creates a new Profile handler.
func NewProfile(profileService ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// GetPicture streams the authenticated user's profile picture.
func (h *Profile) GetPicture(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	rc, err := h.profileService.GetPicture(r.Context(), principal)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Profile handler: failed to stream picture",
			"username", principal.Username,
			"error", err.Error())
	}
}

// SetPicture replaces the authenticated user's profile picture with
// the request body.
func (h *Profile) SetPicture(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	key, err := h.profileService.SetPicture(r.Context(), principal, r.Body)
	if err != nil {
		h.logger.Error("Profile handler: failed to set picture",
			"username", principal.Username,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"profile_pic": key})
}

// RemovePicture deletes the authenticated user's profile picture.
func (h *Profile) RemovePicture(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	if err := h.profileService.RemovePicture(r.Context(), principal); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
