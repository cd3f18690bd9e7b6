package service

import (
	"context"
	"fmt"
	"io"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// profileKeyPrefix namespaces profile pictures in media storage.
const profileKeyPrefix = "profile/"

// Profile manages user profile pictures. Picture bytes live in media
// storage; the users row carries only the storage key.
type Profile struct {
	users  model.UserStore
	media  model.MediaStorage
	logger *logger.Logger
}

// NewProfile creates a new Profile service instance.
func NewProfile(users model.UserStore, media model.MediaStorage, logger *logger.Logger) *Profile {
	return &Profile{
		users:  users,
		media:  media,
		logger: logger,
	}
}

// SetPicture stores the picture and records its key on the user row.
func (s *Profile) SetPicture(ctx context.Context, principal model.Principal, r io.Reader) (string, error) {
	key := profileKeyPrefix + principal.Username

	if err := s.media.Upload(ctx, key, r); err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}
	if err := s.users.UpdateProfilePic(ctx, principal.Username, &key); err != nil {
		return "", fmt.Errorf("failed to record profile picture: %w", err)
	}

	s.logger.Info("Profile service: picture updated",
		"username", principal.Username,
		"key", key)

	return key, nil
}

// GetPicture streams the user's picture from media storage.
func (s *Profile) GetPicture(ctx context.Context, principal model.Principal) (io.ReadCloser, error) {
	if principal.ProfilePic == nil {
		return nil, model.ErrNotFound
	}

	ok, err := s.media.Exists(ctx, *principal.ProfilePic)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile picture: %w", err)
	}
	if !ok {
		return nil, model.ErrNotFound
	}

	return s.media.Download(ctx, *principal.ProfilePic)
}

// RemovePicture deletes the stored picture and clears the user row.
func (s *Profile) RemovePicture(ctx context.Context, principal model.Principal) error {
	if principal.ProfilePic == nil {
		return model.ErrNotFound
	}

	if err := s.media.Delete(ctx, *principal.ProfilePic); err != nil {
		return fmt.Errorf("failed to delete profile picture: %w", err)
	}
	if err := s.users.UpdateProfilePic(ctx, principal.Username, nil); err != nil {
		return fmt.Errorf("failed to clear profile picture: %w", err)
	}

	s.logger.Info("Profile service: picture removed",
		"username", principal.Username)

	return nil
}
