// Package cookie centralizes session cookie behavior.
package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Name is the canonical session cookie name.
const Name = "jwt-token"

// maxAge is the cookie lifetime. The token inside carries its own
// expiry and is validated independently of the cookie lifetime.
const maxAge = 12 * time.Hour

// Read returns the trimmed session token when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(Name)
	if err != nil || c == nil {
		return "", false
	}
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the session cookie carrying the signed token.
func Write(w http.ResponseWriter, token string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    strings.TrimSpace(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
