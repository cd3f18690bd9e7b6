package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostStore defines persistence operations for posts.
type PostStore interface {
	Create(ctx context.Context, post Post) (Post, error)
	Upsert(ctx context.Context, post Post) (Post, error)
	GetByPathAndName(ctx context.Context, path, name string) (Post, error)
	ListByPath(ctx context.Context, path string) ([]Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Post is a stored content entry served under Path/Name.
// Owner references the username of the user who created it.
type Post struct {
	ID      uuid.UUID
	Name    string
	Content string
	Date    time.Time
	Path    string
	Owner   string
}
