// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/atinyakov/GophDeck/internal/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// maxSignedBody bounds how much of a request body is read for verification.
const maxSignedBody = 1 << 20

// SignatureAuth returns a middleware that enforces signed requests.
//
// It reads the request body, verifies the Ed25519 signature headers against
// it and, on success, stores the signer's identity in the request context so
// it can be used downstream as the authenticated caller. The body is replaced
// so handlers can read it again. now may be nil to use time.Now.
func SignatureAuth(now func() time.Time, skew time.Duration) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBody+1))
			if err != nil {
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			if len(body) > maxSignedBody {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			_ = r.Body.Close()

			identity, err := auth.VerifyRequest(r, body, now(), skew)
			if err != nil {
				http.Error(w, "unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// GetIdentityFromContext extracts the authenticated identity from the request
// context. Returns an empty string if not found.
func GetIdentityFromContext(ctx context.Context) string {
	val := ctx.Value(identityKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
