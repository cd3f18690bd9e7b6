package model

import "context"

// UserStore defines persistence operations for user credentials.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, username string, salt, passwordHash []byte) error
	UpdateProfilePic(ctx context.Context, username string, key *string) error
}

// Rank is the coarse authorization level of a user.
type Rank string

const (
	RankUser  Rank = "User"
	RankAdmin Rank = "Admin"
)

// ParseRank maps a stored rank value to a Rank. Anything that is not
// exactly "Admin" degrades to RankUser, never the other way around.
func ParseRank(s string) Rank {
	if s == string(RankAdmin) {
		return RankAdmin
	}
	return RankUser
}

// User represents a stored user with authentication material.
// Salt is generated once at provisioning and never changes except
// through a password rotation, which replaces both Salt and PasswordHash.
type User struct {
	Username     string
	Name         string
	ProfilePic   *string
	Salt         []byte
	PasswordHash []byte
	Email        string
	Rank         Rank
}

// Principal is the authenticated user resolved for a single request.
// It is never cached across requests.
type Principal struct {
	User
}

// IsAdmin reports whether the principal holds the elevated rank.
func (p Principal) IsAdmin() bool {
	return p.Rank == RankAdmin
}
