package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/password"
	"github.com/peroxide-labs/peroxide/internal/token"
)

// Auth provisions credentials and resolves session tokens back into
// authenticated principals.
type Auth struct {
	users   model.UserStore
	keyring *token.Keyring
	logger  *logger.Logger
}

func NewAuth(users model.UserStore, keyring *token.Keyring, logger *logger.Logger) *Auth {
	return &Auth{
		users:   users,
		keyring: keyring,
		logger:  logger,
	}
}

// SignUpParams carries the fields of an account creation request.
type SignUpParams struct {
	Name     string
	Username string
	Password string
	Email    string
}

// SignUp creates a self-service account. The rank is always User and
// a session token is issued immediately so the caller is signed in.
func (a *Auth) SignUp(ctx context.Context, params SignUpParams) (model.User, string, error) {
	a.logger.Debug("Auth service: starting sign up",
		"username", params.Username)

	user, err := a.provision(ctx, params, model.RankUser)
	if err != nil {
		return model.User{}, "", err
	}

	sessionToken, err := a.keyring.IssueSession(user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session token",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: sign up completed",
		"username", params.Username)

	return user, sessionToken, nil
}

// CreateUser creates an account with an explicit rank. Only an Admin
// principal may call it; unlike sign up, no session token is issued.
func (a *Auth) CreateUser(ctx context.Context, actor model.Principal, params SignUpParams, rank model.Rank) (model.User, error) {
	if !actor.IsAdmin() {
		a.logger.Info("Auth service: privileged create refused",
			"actor", actor.User.Username)
		return model.User{}, model.ErrInsufficientRank
	}

	a.logger.Debug("Auth service: privileged user creation",
		"actor", actor.User.Username,
		"username", params.Username,
		"rank", rank)

	user, err := a.provision(ctx, params, rank)
	if err != nil {
		return model.User{}, err
	}

	a.logger.Info("Auth service: privileged user created",
		"actor", actor.User.Username,
		"username", params.Username)

	return user, nil
}

func (a *Auth) provision(ctx context.Context, params SignUpParams, rank model.Rank) (model.User, error) {
	salt, err := password.GenerateSalt()
	if err != nil {
		a.logger.Error("Auth service: failed to generate salt",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	user := model.User{
		Username:     params.Username,
		Name:         params.Name,
		Salt:         salt,
		PasswordHash: password.Hash(salt, params.Password),
		Email:        params.Email,
		Rank:         rank,
	}

	saved, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			a.logger.Info("Auth service: duplicate username or email",
				"username", params.Username)
			return model.User{}, model.ErrDuplicate
		}
		a.logger.Error("Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// SignIn verifies a username/password pair and issues a session token.
// Unknown user, store failure, and wrong password all surface as
// model.ErrInvalidCredentials; the distinction lives only in logs.
func (a *Auth) SignIn(ctx context.Context, username, plaintext string) (string, error) {
	a.logger.Debug("Auth service: starting sign in",
		"username", username)

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		a.logger.Error("Auth service: failed to load user for sign in",
			"username", username,
			"error", err.Error())
		return "", model.ErrInvalidCredentials
	}

	if !password.Verify(user.Salt, user.PasswordHash, plaintext) {
		a.logger.Info("Auth service: password mismatch",
			"username", username)
		return "", model.ErrInvalidCredentials
	}

	sessionToken, err := a.keyring.IssueSession(user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session token",
			"username", username,
			"error", err.Error())
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: sign in completed",
		"username", username)

	return sessionToken, nil
}

// ResolveSession turns a session token back into a principal. The
// token is verified against the keyring, the credential is reloaded
// from storage, and the confirmation digest is recomputed from the
// current stored hash, so a rotated hash invalidates the session.
func (a *Auth) ResolveSession(ctx context.Context, tokenString string) (model.Principal, error) {
	claims, err := a.keyring.ParseSession(tokenString)
	if err != nil {
		a.logger.Info("Auth service: session token rejected",
			"error", err.Error())
		return model.Principal{}, model.ErrInvalidToken
	}

	user, err := a.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		// Not-found and store failure are logged apart but collapse
		// into one caller-visible rejection.
		a.logger.Error("Auth service: failed to load user for session",
			"username", claims.Username,
			"error", err.Error())
		return model.Principal{}, model.ErrInvalidCredentials
	}

	if !password.ConfirmationMatches(user.PasswordHash, claims.Confirmation) {
		a.logger.Info("Auth service: session confirmation mismatch",
			"username", claims.Username)
		return model.Principal{}, model.ErrInvalidCredentials
	}

	return model.Principal{User: user}, nil
}

// ChangePassword rotates the salt and stored hash for the principal's
// account. Every session token issued against the old hash stops
// resolving immediately.
func (a *Auth) ChangePassword(ctx context.Context, principal model.Principal, newPassword string) error {
	salt, err := password.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := password.Hash(salt, newPassword)
	if err := a.users.UpdatePassword(ctx, principal.User.Username, salt, hash); err != nil {
		a.logger.Error("Auth service: failed to rotate password",
			"username", principal.User.Username,
			"error", err.Error())
		return fmt.Errorf("failed to rotate password: %w", err)
	}

	a.logger.Info("Auth service: password rotated",
		"username", principal.User.Username)

	return nil
}
