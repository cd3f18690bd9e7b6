//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/password"
	repo "github.com/peroxide-labs/peroxide/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "peroxide_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/peroxide_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	salt, err := password.GenerateSalt()
	require.NoError(t, err)

	t.Run("user_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn.DB)
		u := model.User{
			Username:     "ann",
			Name:         "Ann",
			Salt:         salt,
			PasswordHash: password.Hash(salt, "correct horse"),
			Email:        "a@x.com",
			Rank:         model.RankUser,
		}

		created, err := ur.Create(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.Username, created.Username)
		require.Equal(t, model.RankUser, created.Rank)

		got, err := ur.GetByUsername(ctx, "ann")
		require.NoError(t, err)
		require.Equal(t, u.PasswordHash, got.PasswordHash)

		_, err = ur.Create(ctx, u)
		require.ErrorIs(t, err, model.ErrDuplicate)

		_, err = ur.GetByUsername(ctx, "ghost")
		require.ErrorIs(t, err, model.ErrNotFound)

		newSalt, err := password.GenerateSalt()
		require.NoError(t, err)
		newHash := password.Hash(newSalt, "new password")
		require.NoError(t, ur.UpdatePassword(ctx, "ann", newSalt, newHash))

		rotated, err := ur.GetByUsername(ctx, "ann")
		require.NoError(t, err)
		require.Equal(t, newHash, rotated.PasswordHash)

		key := "profile/ann"
		require.NoError(t, ur.UpdateProfilePic(ctx, "ann", &key))
		withPic, err := ur.GetByUsername(ctx, "ann")
		require.NoError(t, err)
		require.NotNil(t, withPic.ProfilePic)
		require.Equal(t, key, *withPic.ProfilePic)

		require.NoError(t, ur.UpdateProfilePic(ctx, "ann", nil))
		cleared, err := ur.GetByUsername(ctx, "ann")
		require.NoError(t, err)
		require.Nil(t, cleared.ProfilePic)
	})

	t.Run("post_repository", func(t *testing.T) {
		pr := repo.NewPostRepository(conn.DB)
		p := model.Post{
			ID:      uuid.New(),
			Name:    "hello",
			Content: "<p>hi</p>",
			Date:    time.Now().UTC(),
			Path:    "/blog",
			Owner:   "ann",
		}

		created, err := pr.Create(ctx, p)
		require.NoError(t, err)
		require.Equal(t, p.ID, created.ID)

		got, err := pr.GetByPathAndName(ctx, "/blog", "hello")
		require.NoError(t, err)
		require.Equal(t, p.Content, got.Content)

		list, err := pr.ListByPath(ctx, "/blog")
		require.NoError(t, err)
		require.Len(t, list, 1)

		dup := p
		dup.ID = uuid.New()
		_, err = pr.Create(ctx, dup)
		require.ErrorIs(t, err, model.ErrDuplicate)

		dup.Content = "<p>edited</p>"
		upserted, err := pr.Upsert(ctx, dup)
		require.NoError(t, err)
		require.Equal(t, p.ID, upserted.ID)
		require.Equal(t, "<p>edited</p>", upserted.Content)

		require.NoError(t, pr.Delete(ctx, p.ID))
		require.ErrorIs(t, pr.Delete(ctx, p.ID), model.ErrNotFound)
	})
}
