package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint on
	// username or email is violated. It is safe to surface verbatim.
	ErrDuplicate = errors.New("username or email already taken")
	// ErrInvalidToken covers every structural, signature, algorithm,
	// and expiry failure of a session token.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrInvalidCredentials is the single caller-visible failure for
	// sign-in and authentication. Unknown user, wrong password, store
	// failure and confirmation mismatch all collapse into it so the
	// boundary never reveals which step failed.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInsufficientRank is returned when an operation requires the
	// Admin rank and the principal does not hold it.
	ErrInsufficientRank = errors.New("insufficient rank")
)
