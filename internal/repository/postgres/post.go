package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/peroxide-labs/peroxide/internal/model"
)

var _ model.PostStore = (*PostRepository)(nil)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{
		db: db,
	}
}

func (r *PostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	query := `INSERT INTO posts (id, name, content, date, path, owner)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, name, content, date, path, owner`

	var saved model.Post
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Name, post.Content, post.Date, post.Path, post.Owner,
	).Scan(
		&saved.ID, &saved.Name, &saved.Content, &saved.Date, &saved.Path, &saved.Owner,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Post{}, model.ErrDuplicate
		}
		return model.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	return saved, nil
}

// Upsert inserts the post or, when a post already exists at the same
// path and name, replaces its content, date and owner in place.
func (r *PostRepository) Upsert(ctx context.Context, post model.Post) (model.Post, error) {
	query := `INSERT INTO posts (id, name, content, date, path, owner)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (path, name) DO UPDATE
			  SET content = EXCLUDED.content, date = EXCLUDED.date, owner = EXCLUDED.owner
			  RETURNING id, name, content, date, path, owner`

	var saved model.Post
	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.Name, post.Content, post.Date, post.Path, post.Owner,
	).Scan(
		&saved.ID, &saved.Name, &saved.Content, &saved.Date, &saved.Path, &saved.Owner,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to upsert post: %w", err)
	}

	return saved, nil
}

func (r *PostRepository) GetByPathAndName(ctx context.Context, path, name string) (model.Post, error) {
	var post model.Post
	query := `SELECT id, name, content, date, path, owner
			  FROM posts WHERE path = $1 AND name = $2`

	err := r.db.QueryRowContext(ctx, query, path, name).Scan(
		&post.ID, &post.Name, &post.Content, &post.Date, &post.Path, &post.Owner,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, model.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (r *PostRepository) ListByPath(ctx context.Context, path string) ([]model.Post, error) {
	query := `SELECT id, name, content, date, path, owner
			  FROM posts WHERE path = $1 ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Name, &post.Content, &post.Date, &post.Path, &post.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}
