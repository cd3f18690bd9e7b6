package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/peroxide-labs/peroxide/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations on username, email, or salt.
const uniqueViolation = "23505"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	var rank string
	query := `SELECT username, name, profile_pic, salt, password_hash, email, rank
			  FROM users WHERE username = $1`

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username, &user.Name, &user.ProfilePic, &user.Salt, &user.PasswordHash, &user.Email, &rank,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}
	user.Rank = model.ParseRank(rank)

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (username, name, profile_pic, salt, password_hash, email, rank)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING username, name, profile_pic, salt, password_hash, email, rank`

	var savedUser model.User
	var rank string
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Name, user.ProfilePic, user.Salt, user.PasswordHash, user.Email, string(user.Rank),
	).Scan(
		&savedUser.Username, &savedUser.Name, &savedUser.ProfilePic,
		&savedUser.Salt, &savedUser.PasswordHash, &savedUser.Email, &rank,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	savedUser.Rank = model.ParseRank(rank)

	return savedUser, nil
}

// UpdateProfilePic sets or clears the user's profile picture key.
func (r *UserRepository) UpdateProfilePic(ctx context.Context, username string, key *string) error {
	query := `UPDATE users SET profile_pic = $2 WHERE username = $1`

	res, err := r.db.ExecContext(ctx, query, username, key)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
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

func (r *UserRepository) UpdatePassword(ctx context.Context, username string, salt, passwordHash []byte) error {
	query := `UPDATE users SET salt = $2, password_hash = $3 WHERE username = $1`

	res, err := r.db.ExecContext(ctx, query, username, salt, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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
