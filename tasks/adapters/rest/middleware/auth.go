package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"taskboard/tasks/core"
	"taskboard/tasks/pkg/res"
)

type principalKey struct{}

type TokenVerifier interface {
	Verify(token string) (core.Principal, error)
}

// Auth resolves the bearer token into a Principal stored in the request context.
func Auth(log *slog.Logger, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				res.Error(w, "missing token", http.StatusUnauthorized)
				return
			}

			p, err := verifier.Verify(token)
			if err != nil {
				log.Debug("token rejected", "request_id", RequestID(r.Context()), "error", err)
				res.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// BearerToken returns the token from "Authorization: Bearer <token>", or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func WithPrincipal(ctx context.Context, p core.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (core.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(core.Principal)
	return p, ok
}
