package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// Post manages content entries.
type Post struct {
	posts  model.PostStore
	logger *logger.Logger
}

func NewPost(posts model.PostStore, logger *logger.Logger) *Post {
	return &Post{
		posts:  posts,
		logger: logger,
	}
}

// Create stores a new post owned by the principal.
func (p *Post) Create(ctx context.Context, principal model.Principal, name, content, path string) (model.Post, error) {
	post := model.Post{
		ID:      uuid.New(),
		Name:    name,
		Content: content,
		Date:    time.Now(),
		Path:    path,
		Owner:   principal.User.Username,
	}

	saved, err := p.posts.Create(ctx, post)
	if err != nil {
		p.logger.Error("Post service: failed to create post",
			"name", name,
			"owner", post.Owner,
			"error", err.Error())
		return model.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	p.logger.Info("Post service: post created",
		"id", saved.ID,
		"path", saved.Path,
		"name", saved.Name)

	return saved, nil
}

// Get returns the post served under path/name.
func (p *Post) Get(ctx context.Context, path, name string) (model.Post, error) {
	post, err := p.posts.GetByPathAndName(ctx, path, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Post{}, model.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// List returns the posts under a path, newest first.
func (p *Post) List(ctx context.Context, path string) ([]model.Post, error) {
	posts, err := p.posts.ListByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post. Only the owner or an admin may delete it.
func (p *Post) Delete(ctx context.Context, principal model.Principal, path, name string) error {
	post, err := p.posts.GetByPathAndName(ctx, path, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get post: %w", err)
	}

	if post.Owner != principal.User.Username && !principal.IsAdmin() {
		p.logger.Info("Post service: delete refused",
			"id", post.ID,
			"owner", post.Owner,
			"actor", principal.User.Username)
		return model.ErrInsufficientRank
	}

	if err := p.posts.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	p.logger.Info("Post service: post deleted",
		"id", post.ID,
		"actor", principal.User.Username)

	return nil
}
