package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophDeck/internal/models"
)

// SQLiteDocumentRepository stores documents in a SQLite database. Timestamps
// are kept as unix milliseconds.
type SQLiteDocumentRepository struct {
	DB *sql.DB
}

// NewSQLiteDocumentRepository creates a repository over an open SQLite db.
func NewSQLiteDocumentRepository(db *sql.DB) *SQLiteDocumentRepository {
	return &SQLiteDocumentRepository{DB: db}
}

func (r *SQLiteDocumentRepository) Exists(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE identity = ?)`,
		identity,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Exists failed: %w", err)
	}
	return exists, nil
}

func (r *SQLiteDocumentRepository) Get(ctx context.Context, identity string) (*models.Document, error) {
	var (
		content string
		millis  int64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT content, updated_at FROM documents WHERE identity = ?`,
		identity,
	).Scan(&content, &millis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get failed: %w", err)
	}
	return &models.Document{
		Identity:  identity,
		Content:   content,
		UpdatedAt: time.UnixMilli(millis).UTC(),
	}, nil
}

func (r *SQLiteDocumentRepository) Put(ctx context.Context, identity, content string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO documents (identity, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
	`, identity, content, now.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("Put failed: %w", err)
	}
	return nil
}
