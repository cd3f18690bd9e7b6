package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/password"
)

// Claims represents session token claims: the username and the
// second-order confirmation digest of the stored password hash.
type Claims struct {
	jwt.RegisteredClaims
	Username     string `json:"username"`
	Confirmation string `json:"cnf"`
}

// Keyring holds the process-wide symmetric signing key. It is built
// once at startup and read concurrently without synchronization.
type Keyring struct {
	secret []byte
}

// NewKeyring creates a Keyring from the externally supplied secret.
// An empty secret is refused so the process fails fast instead of
// signing with a known key.
func NewKeyring(secret string) (*Keyring, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &Keyring{secret: []byte(secret)}, nil
}

// sessionTTL is the token's own authoritative lifetime. The cookie that
// carries it is retained for less (see the cookie package).
const sessionTTL = 24 * time.Hour

// IssueSession signs a session token for the given user. The token
// carries a confirmation digest derived from the current stored hash,
// so rotating the hash invalidates the token.
func (k *Keyring) IssueSession(user model.User) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		Username:     user.Username,
		Confirmation: password.Confirmation(user.PasswordHash),
	})

	tokenString, err := t.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseSession validates a session token and returns its claims.
// Every failure mode, wrong algorithm, bad signature, malformed
// structure, expiry, missing claims, collapses into ErrInvalidToken.
func (k *Keyring) ParseSession(tokenString string) (Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return k.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}
	if !t.Valid {
		return Claims{}, model.ErrInvalidToken
	}
	if claims.Username == "" || claims.Confirmation == "" || claims.ExpiresAt == nil {
		return Claims{}, model.ErrInvalidToken
	}

	return *claims, nil
}
