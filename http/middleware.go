package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/bookshelf"
)

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (bookshelf.User, error)
}

type userContextKey struct{}

// UserFromContext returns the user set by AuthMiddleware, or the zero User.
func UserFromContext(ctx context.Context) bookshelf.User {
	u, _ := ctx.Value(userContextKey{}).(bookshelf.User)
	return u
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u bookshelf.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// AuthMiddleware requires an "Authorization: Bearer <token>" header and puts
// the token's user on the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				HandleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequestLogger logs one http_request line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			slog.LogAttrs(r.Context(), levelForStatus(status), "http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
