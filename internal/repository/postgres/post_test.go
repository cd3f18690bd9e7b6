package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-labs/peroxide/internal/model"
)

func postColumns() []string {
	return []string{"id", "name", "content", "date", "path", "owner"}
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(postColumns()).
		AddRow(id.String(), "hello", "<p>hi</p>", now, "/blog", "ann")
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(id, "hello", "<p>hi</p>", now, "/blog", "ann").
		WillReturnRows(rows)

	saved, err := repo.Create(context.Background(), model.Post{
		ID: id, Name: "hello", Content: "<p>hi</p>", Date: now, Path: "/blog", Owner: "ann",
	})
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "/blog", saved.Path)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Create_DuplicatePathName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(id, "hello", "<p>hi</p>", now, "/blog", "ann").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := repo.Create(context.Background(), model.Post{
		ID: id, Name: "hello", Content: "<p>hi</p>", Date: now, Path: "/blog", Owner: "ann",
	})
	assert.ErrorIs(t, err, model.ErrDuplicate)
}

func TestPostRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	existing := uuid.New()
	incoming := uuid.New()
	now := time.Now()

	// On conflict the row keeps its original id but takes the new
	// content, date and owner.
	rows := sqlmock.NewRows(postColumns()).
		AddRow(existing.String(), "hello", "<p>updated</p>", now, "/blog", "wordpress-import")
	mock.ExpectQuery(`(?s)INSERT INTO posts.*ON CONFLICT \(path, name\) DO UPDATE`).
		WithArgs(incoming, "hello", "<p>updated</p>", now, "/blog", "wordpress-import").
		WillReturnRows(rows)

	saved, err := repo.Upsert(context.Background(), model.Post{
		ID: incoming, Name: "hello", Content: "<p>updated</p>", Date: now, Path: "/blog", Owner: "wordpress-import",
	})
	require.NoError(t, err)
	assert.Equal(t, existing, saved.ID)
	assert.Equal(t, "<p>updated</p>", saved.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByPathAndName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows(postColumns()).
		AddRow(id.String(), "hello", "<p>hi</p>", time.Now(), "/blog", "ann")
	mock.ExpectQuery(`SELECT .* FROM posts WHERE path = \$1 AND name = \$2`).
		WithArgs("/blog", "hello").
		WillReturnRows(rows)

	post, err := repo.GetByPathAndName(context.Background(), "/blog", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ann", post.Owner)
}

func TestPostRepository_GetByPathAndName_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT .* FROM posts`).
		WithArgs("/blog", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPathAndName(context.Background(), "/blog", "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostRepository_ListByPath(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows(postColumns()).
		AddRow(uuid.New().String(), "b", "2", time.Now(), "/blog", "ann").
		AddRow(uuid.New().String(), "a", "1", time.Now().Add(-time.Hour), "/blog", "ann")
	mock.ExpectQuery(`SELECT .* FROM posts WHERE path = \$1 ORDER BY date DESC`).
		WithArgs("/blog").
		WillReturnRows(rows)

	posts, err := repo.ListByPath(context.Background(), "/blog")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[0].Name)
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
}

func TestPostRepository_Delete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), id), model.ErrNotFound)
}
