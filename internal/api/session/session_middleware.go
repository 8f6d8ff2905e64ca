package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

type contextKey string

const sessionKey contextKey = "session"

// Require resolves the bearer token into a live session and stores it in the
// request context. Requests without one get a 401.
func Require(store *Store, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "session.Require"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			sess, err := store.Resolve(tokenString)
			if err != nil {
				l.WarnContext(ctx, "Session resolution failed", slog.Any("error", err))
				api.ServiceErrorResponse(w, r, err)
				return
			}

			ctx = WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}
