package model

import (
	"context"
	"io"
)

// MediaStorage stores binary media assets (imported attachments,
// profile pictures) outside the relational store.
type MediaStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
