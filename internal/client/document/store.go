// Package document maintains a player's character list as a single remote
// document addressed by their identity.
//
// The document is plain text, one record per line in the form name|payload.
// Writes always replace the whole document; there is no locking and the last
// writer wins. Records are matched by their serialized line (RecordKey).
package document

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/GophDeck/internal/client/identity"
	"github.com/atinyakov/GophDeck/internal/client/transport"
)

// State is the verification state of a Store.
type State int

const (
	// StateUnverified means the remote document has not been checked yet.
	StateUnverified State = iota
	// StateVerified means a document exists for the identity.
	StateVerified
	// StateRejected means no document exists for the identity. It is terminal.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrIdentityMismatch is returned when no document exists for the identity.
	ErrIdentityMismatch = errors.New("no document for identity: wrong or unknown secret")
	// ErrNotVerified is returned by document operations before Initialize succeeds.
	ErrNotVerified = errors.New("document store is not verified")
	// ErrAlreadyInitialized is returned by CreateEmpty once the identity has been checked.
	ErrAlreadyInitialized = errors.New("document store already initialized")
)

// TransportError wraps a failure of the remote store.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Store is the keyed document store for one identity. It is not safe for
// concurrent use; callers issue one operation at a time.
type Store struct {
	transport transport.Transport
	identity  identity.Identity
	state     State
	log       *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an unverified store for id.
func New(t transport.Transport, id identity.Identity, opts ...Option) *Store {
	s := &Store{
		transport: t,
		identity:  id,
		state:     StateUnverified,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the identity the store is bound to.
func (s *Store) Identity() identity.Identity { return s.identity }

// State returns the current verification state.
func (s *Store) State() State { return s.state }

// Initialize checks once whether a document exists for the identity.
// If none does, the store becomes Rejected and ErrIdentityMismatch is
// returned. A transport failure leaves the store Unverified.
func (s *Store) Initialize(ctx context.Context) (State, error) {
	if s.state == StateRejected {
		return s.state, ErrIdentityMismatch
	}
	ok, err := s.transport.Exists(ctx, s.identity)
	if err != nil {
		return s.state, &TransportError{Op: "initialize", Err: err}
	}
	if !ok {
		s.state = StateRejected
		s.log.Debug("identity rejected", zap.String("identity", s.identity.String()))
		return s.state, ErrIdentityMismatch
	}
	s.state = StateVerified
	s.log.Debug("identity verified", zap.String("identity", s.identity.String()))
	return s.state, nil
}

// CreateEmpty writes an empty document for a brand-new identity and marks
// the store verified. On failure the caller must discard the secret.
func (s *Store) CreateEmpty(ctx context.Context) error {
	if s.state != StateUnverified {
		return ErrAlreadyInitialized
	}
	if err := s.transport.Put(ctx, s.identity, []byte{}); err != nil {
		return &TransportError{Op: "create", Err: err}
	}
	s.state = StateVerified
	return nil
}

// FetchDocument returns the whole document text.
func (s *Store) FetchDocument(ctx context.Context) (string, error) {
	if s.state != StateVerified {
		return "", ErrNotVerified
	}
	data, err := s.transport.Get(ctx, s.identity)
	if err != nil {
		return "", &TransportError{Op: "fetch", Err: err}
	}
	return string(data), nil
}

// Load fetches and parses the document.
func (s *Store) Load(ctx context.Context) (RecordSet, error) {
	raw, err := s.FetchDocument(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRecords(raw), nil
}

// SaveDocument overwrites the remote document with records. records is
// never modified, so a failed save can be retried with the same value.
func (s *Store) SaveDocument(ctx context.Context, records RecordSet) error {
	if s.state != StateVerified {
		return ErrNotVerified
	}
	body := records.Serialize()
	if err := s.transport.Put(ctx, s.identity, []byte(body)); err != nil {
		return &TransportError{Op: "save", Err: err}
	}
	s.log.Debug("document saved",
		zap.String("identity", s.identity.String()),
		zap.Int("records", len(records)),
	)
	return nil
}
