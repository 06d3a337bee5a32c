package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/movienight/internal/auth"
)

// RequireSession lets requests through only with a live session, which it
// puts in the request context.
func RequireSession(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := m.Current()
			if !ok {
				RedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// RedirectToLogin sends the browser to the login route. API calls get a 401
// naming the route; HTMX requests get HX-Redirect; pages get a 303.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":    "not signed in",
			"redirect": "/login",
		})
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
