// Package mocks provides testify mocks for the model store interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/peroxide-labs/peroxide/internal/model"
)

// UserStore is a mock implementation of model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdatePassword(ctx context.Context, username string, salt, passwordHash []byte) error {
	args := m.Called(ctx, username, salt, passwordHash)
	return args.Error(0)
}

func (m *UserStore) UpdateProfilePic(ctx context.Context, username string, key *string) error {
	args := m.Called(ctx, username, key)
	return args.Error(0)
}

// PostStore is a mock implementation of model.PostStore.
type PostStore struct {
	mock.Mock
}

func (m *PostStore) Create(ctx context.Context, post model.Post) (model.Post, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *PostStore) Upsert(ctx context.Context, post model.Post) (model.Post, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *PostStore) GetByPathAndName(ctx context.Context, path, name string) (model.Post, error) {
	args := m.Called(ctx, path, name)
	return args.Get(0).(model.Post), args.Error(1)
}

func (m *PostStore) ListByPath(ctx context.Context, path string) ([]model.Post, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MediaStorage is a mock implementation of model.MediaStorage.
type MediaStorage struct {
	mock.Mock
}

func (m *MediaStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MediaStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MediaStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MediaStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
