package middleware

import (
	"net/http"

	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
)

// Authorize gates handlers behind a rank check. It must run after
// Authenticate so the principal is already on the context.
type Authorize struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthorize creates a new Authorize middleware instance.
func NewAuthorize(contextManager model.ContextManager, logger *logger.Logger) *Authorize {
	return &Authorize{contextManager: contextManager, logger: logger}
}

// RequireAdmin rejects requests whose principal is not an admin.
func (m *Authorize) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := m.contextManager.GetPrincipal(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			m.logger.Debug("Authorize middleware: admin access denied",
				"username", principal.Username,
				"path", r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
