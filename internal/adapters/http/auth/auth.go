// Package auth implements the OAuth2 authorization-code bearer dependency that
// guards every companies route. Tokens are not verified here; the identity
// provider and the data backend own verification, so the token is only
// extracted and handed on through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAuthenticated is returned when no usable bearer token is present.
var ErrNotAuthenticated = errors.New("Not authenticated")

// SchemeName names the security scheme in the OpenAPI document.
const SchemeName = "OAuth2AuthorizationCodeBearer"

type (
	tokenKey   struct{}
	subjectKey struct{}
)

// WithToken stores token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by Middleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// SubjectFromContext returns the token subject stored by Middleware. It is
// empty for opaque tokens.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey{}).(string)
	return sub
}

// Subject returns the "sub" claim of a JWT without verifying its signature;
// it is meant for logs only. Tokens that are not JWTs yield "".
func Subject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrNotAuthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// Middleware rejects requests without a bearer token by calling deny, and
// otherwise stores the token and its subject in the request context.
func Middleware(deny func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				deny(w, r, err)
				return
			}
			ctx := WithToken(r.Context(), token)
			if sub := Subject(token); sub != "" {
				ctx = context.WithValue(ctx, subjectKey{}, sub)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Flow describes the OAuth2 authorization-code endpoints for documentation.
type Flow struct {
	AuthorizationURL string
	TokenURL         string
	ClientID         string
}
