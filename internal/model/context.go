package model

import "context"

// ContextManager stores and retrieves the authenticated principal on a
// request context.
type ContextManager interface {
	SetPrincipal(ctx context.Context, principal Principal) context.Context
	GetPrincipal(ctx context.Context) (Principal, bool)
}
