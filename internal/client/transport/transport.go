// Package transport provides the remote blob store the keyed document store
// reads from and writes to. Documents are addressed by identity only.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophDeck/internal/client/identity"
)

// Transport is an opaque get/put blob store keyed by identity.
// Put must be idempotent and Exists must have no side effects. Each call is
// independently fallible; nothing is atomic across calls.
type Transport interface {
	Exists(ctx context.Context, id identity.Identity) (bool, error)
	Get(ctx context.Context, id identity.Identity) ([]byte, error)
	Put(ctx context.Context, id identity.Identity, data []byte) error
}

// ErrNotFound is returned by Get when no document exists for the identity.
var ErrNotFound = errors.New("document not found")

// StatusError reports an unexpected HTTP status from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Body)
}
