package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/maisonhq/maison/internal/platform/httpapi"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

type contextKey struct{}

// identityKey stores the verified Identity on the request context.
var identityKey contextKey

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom extracts the verified identity from the context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// Middleware verifies the Authorization bearer token and attaches the
// caller identity to the request context. Requests without a valid token
// receive a 401 JSON error.
func Middleware(cfg Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			httpapi.WriteError(w, err)
			return
		}
		identity, err := Verify(cfg, token)
		if err != nil {
			httpapi.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "authorization header is required")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "authorization header must use the Bearer scheme")
	}
	return strings.TrimSpace(token), nil
}
