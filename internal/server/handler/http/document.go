// Package http provides the HTTP handlers for the document store.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophDeck/internal/middleware"
	"github.com/atinyakov/GophDeck/internal/models"
	"github.com/atinyakov/GophDeck/internal/repository"
	"github.com/atinyakov/GophDeck/internal/service"
)

// DocumentService defines the document operations required by the
// DocumentHandler.
type DocumentService interface {
	// Exists reports whether a document is stored for identity.
	Exists(ctx context.Context, identity string) (bool, error)
	// Get returns the document for identity or repository.ErrDocumentNotFound.
	Get(ctx context.Context, identity string) (*models.Document, error)
	// Put replaces the document for identity.
	Put(ctx context.Context, identity string, content []byte) error
}

// DocumentHandler serves /api/documents/{identity}.
type DocumentHandler struct {
	DocumentService DocumentService
	Logger          *zap.Logger
}

// identity returns the path identity if it matches the authenticated caller.
// Otherwise it writes an error response and returns false.
func (h *DocumentHandler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "identity")
	caller := middleware.GetIdentityFromContext(r.Context())
	if caller == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if id != caller {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return id, true
}

// Head answers 200 if a document exists for the identity and 404 otherwise.
func (h *DocumentHandler) Head(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	exists, err := h.DocumentService.Exists(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Get writes the document as text/plain.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	doc, err := h.DocumentService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !doc.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", doc.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	_, _ = io.WriteString(w, doc.Content)
}

// Put replaces the document with the request body.
func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, service.MaxDocumentSize+1))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.DocumentService.Put(r.Context(), id, body); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDocumentNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidIdentity):
		http.Error(w, "invalid identity", http.StatusBadRequest)
	case errors.Is(err, service.ErrDocumentTooLarge):
		http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, service.ErrInvalidContent):
		http.Error(w, "invalid content", http.StatusBadRequest)
	default:
		if h.Logger != nil {
			h.Logger.Error("document request failed", zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
