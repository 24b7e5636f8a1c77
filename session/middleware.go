package session

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// FromContext returns the session attached by RequireRole.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// RequireRole lets a request through only when its session holds one of
// roles. deny writes the rejection; it receives 401 when there is no
// session and 403 when the role does not match.
func (m *Manager) RequireRole(deny func(w http.ResponseWriter, status int), roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := m.Get(r)
			if !ok {
				deny(w, http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[s.Role]; !ok {
				deny(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
		})
	}
}
