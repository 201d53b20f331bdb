// Package session drives the identity flow of the client: it loads or
// accepts a secret, verifies it against the remote store and, once ready,
// performs read-modify-write cycles on the character list.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/GophDeck/internal/client/document"
	"github.com/atinyakov/GophDeck/internal/client/identity"
	"github.com/atinyakov/GophDeck/internal/client/transport"
)

// Status tells the caller what to do next.
type Status int

const (
	// StatusNeedSecret means the user must enter or create a secret.
	StatusNeedSecret Status = iota
	// StatusReady means the document is verified and can be edited.
	StatusReady
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "need-secret"
}

var (
	// ErrNotReady is returned by document operations before the session is ready.
	ErrNotReady = errors.New("session is not ready")
	// ErrSecretStored is returned by CreateIdentity while a secret is still
	// stored locally. Logout first to discard it.
	ErrSecretStored = errors.New("a secret is already stored")
)

// Dialer builds a transport authenticated with secret.
type Dialer func(secret identity.Secret) (transport.Transport, error)

// Controller holds the state of one client session. It is not safe for
// concurrent use.
type Controller struct {
	provider identity.Provider
	dial     Dialer
	log      *zap.Logger

	secret identity.Secret
	store  *document.Store
}

// New returns a controller that persists secrets with provider and reaches
// the remote store through dial.
func New(provider identity.Provider, dial Dialer, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{provider: provider, dial: dial, log: log}
}

// Resume verifies the locally stored secret, if any.
func (c *Controller) Resume(ctx context.Context) (Status, error) {
	secret, ok := c.provider.LoadSecret()
	if !ok {
		return StatusNeedSecret, nil
	}
	s, err := identity.ParseSecret(string(secret))
	if err != nil {
		c.clear()
		return StatusNeedSecret, err
	}
	return c.verify(ctx, s)
}

// Enter persists a user-supplied secret and verifies it. Malformed input is
// rejected before anything is stored.
func (c *Controller) Enter(ctx context.Context, raw string) (Status, error) {
	s, err := identity.ParseSecret(raw)
	if err != nil {
		return StatusNeedSecret, err
	}
	if err := c.provider.PersistSecret(s); err != nil {
		return StatusNeedSecret, fmt.Errorf("persist secret: %w", err)
	}
	return c.verify(ctx, s)
}

// CreateIdentity generates a new secret, stores it and creates an empty
// document for it. If the document cannot be created the secret is cleared
// so no half-initialized identity is left behind. A stored secret, verified
// or not, is never overwritten.
func (c *Controller) CreateIdentity(ctx context.Context) (identity.Secret, error) {
	if c.HasStoredSecret() {
		return "", ErrSecretStored
	}
	s, err := identity.GenerateSecret()
	if err != nil {
		return "", err
	}
	if err := c.provider.PersistSecret(s); err != nil {
		return "", fmt.Errorf("persist secret: %w", err)
	}

	store, err := c.open(s)
	if err != nil {
		c.clear()
		return "", err
	}
	if err := store.CreateEmpty(ctx); err != nil {
		c.clear()
		return "", err
	}

	c.secret, c.store = s, store
	c.log.Info("identity created", zap.String("identity", store.Identity().String()))
	return s, nil
}

// HasStoredSecret reports whether the provider holds a secret.
func (c *Controller) HasStoredSecret() bool {
	_, ok := c.provider.LoadSecret()
	return ok
}

// Logout forgets the secret locally and resets the session.
func (c *Controller) Logout() error {
	c.secret, c.store = "", nil
	return c.provider.ClearSecret()
}

// Ready reports whether document operations are allowed.
func (c *Controller) Ready() bool {
	return c.store != nil && c.store.State() == document.StateVerified
}

// Identity returns the verified identity, or "" before the session is ready.
func (c *Controller) Identity() identity.Identity {
	if !c.Ready() {
		return ""
	}
	return c.store.Identity()
}

// Secret returns the verified secret, or "" before the session is ready.
func (c *Controller) Secret() identity.Secret {
	if !c.Ready() {
		return ""
	}
	return c.secret
}

// List fetches the current character list.
func (c *Controller) List(ctx context.Context) (document.RecordSet, error) {
	if !c.Ready() {
		return nil, ErrNotReady
	}
	return c.store.Load(ctx)
}

// SaveCharacter stores a character. With a nil editing key it is appended;
// otherwise every record matching editing is replaced in place.
func (c *Controller) SaveCharacter(ctx context.Context, editing *document.RecordKey, name, payload string) (document.Record, error) {
	if !c.Ready() {
		return document.Record{}, ErrNotReady
	}
	rec, err := document.NewRecord(name, payload)
	if err != nil {
		return document.Record{}, err
	}
	records, err := c.store.Load(ctx)
	if err != nil {
		return document.Record{}, err
	}
	if err := c.store.SaveDocument(ctx, records.Upsert(editing, rec)); err != nil {
		return document.Record{}, err
	}
	return rec, nil
}

// DeleteCharacter removes every record matching key.
func (c *Controller) DeleteCharacter(ctx context.Context, key document.RecordKey) error {
	if !c.Ready() {
		return ErrNotReady
	}
	records, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	return c.store.SaveDocument(ctx, records.Delete(key))
}

func (c *Controller) verify(ctx context.Context, s identity.Secret) (Status, error) {
	c.secret, c.store = "", nil

	store, err := c.open(s)
	if err != nil {
		return StatusNeedSecret, err
	}
	if _, err := store.Initialize(ctx); err != nil {
		if errors.Is(err, document.ErrIdentityMismatch) {
			c.log.Info("secret rejected", zap.String("identity", store.Identity().String()))
			c.clear()
		}
		return StatusNeedSecret, err
	}

	c.secret, c.store = s, store
	return StatusReady, nil
}

func (c *Controller) open(s identity.Secret) (*document.Store, error) {
	id, err := identity.DeriveIdentity(s)
	if err != nil {
		return nil, err
	}
	t, err := c.dial(s)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return document.New(t, id, document.WithLogger(c.log)), nil
}

func (c *Controller) clear() {
	if err := c.provider.ClearSecret(); err != nil {
		c.log.Warn("failed to clear secret", zap.Error(err))
	}
}
