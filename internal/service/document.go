// Package service provides the document business logic, delegating
// persistence to a DocumentRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/atinyakov/GophDeck/internal/auth"
	"github.com/atinyakov/GophDeck/internal/models"
)

// MaxDocumentSize bounds a stored document. Documents are small human-curated
// lists.
const MaxDocumentSize = 64 << 10

var (
	// ErrInvalidIdentity is returned for identities that are not hex Ed25519 keys.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrDocumentTooLarge is returned when content exceeds MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document too large")
	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("document is not valid UTF-8")
)

// DocumentRepository defines the persistence operations needed by the
// DocumentService.
type DocumentRepository interface {
	// Exists reports whether a document is stored for identity.
	Exists(ctx context.Context, identity string) (bool, error)
	// Get returns the document for identity.
	Get(ctx context.Context, identity string) (*models.Document, error)
	// Put creates or fully overwrites the document for identity.
	Put(ctx context.Context, identity, content string, now time.Time) error
}

// DocumentService implements the remote document store.
type DocumentService struct {
	// repo is the underlying persistence repository.
	repo DocumentRepository
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// NewDocumentService constructs a DocumentService with the provided repository.
func NewDocumentService(repo DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo, now: time.Now}
}

// Exists reports whether identity has a document.
func (s *DocumentService) Exists(ctx context.Context, identity string) (bool, error) {
	if err := validateIdentity(identity); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, identity)
}

// Get returns the document for identity.
func (s *DocumentService) Get(ctx context.Context, identity string) (*models.Document, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, identity)
}

// Put replaces the document for identity with content.
func (s *DocumentService) Put(ctx context.Context, identity string, content []byte) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}
	if len(content) > MaxDocumentSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrDocumentTooLarge, len(content), MaxDocumentSize)
	}
	if !utf8.Valid(content) {
		return ErrInvalidContent
	}
	return s.repo.Put(ctx, identity, string(content), s.now().UTC())
}

func validateIdentity(identity string) error {
	if _, err := auth.PublicKeyFromIdentity(identity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}
