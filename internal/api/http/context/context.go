// Package context carries the authenticated principal through request contexts.
package context

import (
	"context"

	"github.com/peroxide-labs/peroxide/internal/model"
)

type contextKey int

// principalKey is the context key under which the authenticated
// principal is stored.
const principalKey contextKey = iota

// Manager stores and retrieves the authenticated principal on request
// contexts.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipal returns a new context carrying the principal.
func (m *Manager) SetPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the principal from the context.
// The second return value reports whether a principal was present.
func (m *Manager) GetPrincipal(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(model.Principal)
	return principal, ok
}
