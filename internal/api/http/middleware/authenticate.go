package middleware

import (
	"context"
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/api/http/cookie"
	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// SessionResolver resolves a principal from a signed session token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, tokenString string) (model.Principal, error)
}

// Authenticate validates session cookies and injects the principal
// into the request context. Requests without a valid session are
// rejected with 401 before reaching the handler.
type Authenticate struct {
	sessions       SessionResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, logger: logger}
}

// Handle wraps next with session cookie authentication.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := cookie.Read(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		principal, err := m.sessions.ResolveSession(r.Context(), tokenString)
		if err != nil {
			m.logger.Debug("Authenticate middleware: session rejected",
				"path", r.URL.Path,
				"error", err.Error())
			cookie.Clear(w)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := m.contextManager.SetPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
