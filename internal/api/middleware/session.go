package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sessionIDKey contextKey = "session_id"

const (
	sessionHeader    = "X-Session-ID"
	sessionCookie    = "sid"
	sessionCookieAge = 30 * 24 * 60 * 60
)

// Session resolves the visitor session used to debounce feed rotations.
// The X-Session-ID header wins over the sid cookie; when neither is present
// a new UUID is issued as a cookie and echoed in the response header.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionHeader)
		if id == "" {
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   sessionCookieAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(sessionHeader, id)
		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID retrieves the session stored by Session.
// Returns an empty string if the middleware was not applied.
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}
