package http

import (
	"context"
	"net/http"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/session"
	"github.com/google/uuid"
)

const SessionCookie = "estoque_session"

type SessionStore interface {
	Get(ctx context.Context, id string) *session.Session
}

type sessionKey struct{}

// SessionMiddleware resolves the caller's session from its cookie, issuing a
// fresh id when the cookie is missing or malformed.
func SessionMiddleware(store SessionStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey{}, store.Get(r.Context(), id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}
