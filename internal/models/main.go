// Package models defines the data structures stored by the GophDeck server.
package models

import "time"

// Document is the single blob kept for an identity.
type Document struct {
	// Identity is the hex Ed25519 public key that owns the document.
	Identity string
	// Content is the document text; empty is a valid document.
	Content string
	// UpdatedAt is the time of the last overwrite.
	UpdatedAt time.Time
}
