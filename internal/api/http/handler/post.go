package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// PostService defines content operations.
type PostService interface {
	Create(ctx context.Context, principal model.Principal, name, content, path string) (model.Post, error)
	Get(ctx context.Context, path, name string) (model.Post, error)
	List(ctx context.Context, path string) ([]model.Post, error)
	Delete(ctx context.Context, principal model.Principal, path, name string) error
}

// Post handles HTTP endpoints for content entries.
type Post struct {
	postService    PostService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewPost creates a new Post handler.
func NewPost(postService PostService, contextManager model.ContextManager, logger *logger.Logger) *Post {
	return &Post{
		postService:    postService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type createPostRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Path    string `json:"path"`
}

type postResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Path    string    `json:"path"`
	Owner   string    `json:"owner"`
}

func toPostResponse(p model.Post) postResponse {
	return postResponse{
		ID:      p.ID.String(),
		Name:    p.Name,
		Content: p.Content,
		Date:    p.Date,
		Path:    p.Path,
		Owner:   p.Owner,
	}
}

// Get returns a single post by path and name, or every post under a
// path when no name is given.
func (h *Post) Get(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	name := r.URL.Query().Get("name")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	if name == "" {
		posts, err := h.postService.List(r.Context(), path)
		if err != nil {
			handleError(w, err)
			return
		}
		out := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			out = append(out, toPostResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	post, err := h.postService.Get(r.Context(), path, name)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// Create stores a new post owned by the authenticated user.
func (h *Post) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Path == "" {
		writeError(w, http.StatusBadRequest, "name and path are required")
		return
	}

	post, err := h.postService.Create(r.Context(), principal, req.Name, req.Content, req.Path)
	if err != nil {
		h.logger.Error("Post handler: create failed",
			"username", principal.Username,
			"name", req.Name,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Post handler: post created",
		"username", principal.Username,
		"name", post.Name,
		"path", post.Path)

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

// Delete removes a post. Only the owner or an admin may delete.
func (h *Post) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.contextManager.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	path := r.URL.Query().Get("path")
	name := r.URL.Query().Get("name")
	if path == "" || name == "" {
		writeError(w, http.StatusBadRequest, "path and name are required")
		return
	}

	if err := h.postService.Delete(r.Context(), principal, path, name); err != nil {
		h.logger.Error("Post handler: delete failed",
			"username", principal.Username,
			"name", name,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Post handler: post deleted",
		"username", principal.Username,
		"name", name,
		"path", path)

	w.WriteHeader(http.StatusNoContent)
}
