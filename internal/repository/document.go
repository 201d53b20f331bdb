// Package repository provides persistence implementations for the document
// service using PostgreSQL or SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophDeck/internal/models"
)

// ErrDocumentNotFound is returned when no document exists for an identity.
var ErrDocumentNotFound = errors.New("document not found")

// PostgresDocumentRepository stores documents in a PostgreSQL database.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

// Exists reports whether a document is stored for identity. An empty
// document counts as existing.
func (r *PostgresDocumentRepository) Exists(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE identity = $1)`,
		identity,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Exists failed: %w", err)
	}
	return exists, nil
}

// Get fetches the document for identity.
//
// Returns ErrDocumentNotFound if there is none.
func (r *PostgresDocumentRepository) Get(ctx context.Context, identity string) (*models.Document, error) {
	doc := models.Document{Identity: identity}
	err := r.DB.QueryRowContext(ctx, `
		SELECT content, updated_at FROM documents WHERE identity = $1
	`, identity).Scan(&doc.Content, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get failed: %w", err)
	}
	return &doc, nil
}

// Put creates or fully overwrites the document for identity.
func (r *PostgresDocumentRepository) Put(ctx context.Context, identity, content string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO documents (identity, content, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`, identity, content, now)
	if err != nil {
		return fmt.Errorf("Put failed: %w", err)
	}
	return nil
}
