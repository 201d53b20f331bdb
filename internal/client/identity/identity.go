// Package identity generates, validates and persists the player's secret and
// derives the public identity that addresses the remote document.
//
// A Secret is the hex encoding of a 32-byte Ed25519 seed. Its Identity is the
// hex encoding of the matching public key.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Secret is the private credential held only by the client.
type Secret string

// Identity is the public address of a document, derived from a Secret.
type Identity string

// String implements fmt.Stringer.
func (i Identity) String() string { return string(i) }

// GenerationError is returned when a fresh secret cannot be produced.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate secret: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// InvalidSecretError is returned for structurally malformed secrets.
type InvalidSecretError struct {
	Reason string
}

func (e *InvalidSecretError) Error() string {
	return "invalid secret: " + e.Reason
}

// randReader is swapped in tests to simulate a broken entropy source.
var randReader io.Reader = rand.Reader

// GenerateSecret returns a fresh random secret.
func GenerateSecret() (Secret, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(randReader, seed); err != nil {
		return "", &GenerationError{Err: err}
	}
	return Secret(hex.EncodeToString(seed)), nil
}

// ParseSecret normalizes user input and validates it. A secret is the hex
// encoding of a 32-byte Ed25519 seed, so short literals such as "abc" are
// rejected with an *InvalidSecretError and never reach the remote store.
func ParseSecret(raw string) (Secret, error) {
	s := Secret(strings.ToLower(strings.TrimSpace(raw)))
	if _, err := s.seed(); err != nil {
		return "", err
	}
	return s, nil
}

// DeriveIdentity returns the identity for s. It is deterministic.
func DeriveIdentity(s Secret) (Identity, error) {
	key, err := s.PrivateKey()
	if err != nil {
		return "", err
	}
	return Identity(hex.EncodeToString(key.Public().(ed25519.PublicKey))), nil
}

// PrivateKey expands the secret into the Ed25519 key used to sign requests.
func (s Secret) PrivateKey() (ed25519.PrivateKey, error) {
	seed, err := s.seed()
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func (s Secret) seed() ([]byte, error) {
	if s == "" {
		return nil, &InvalidSecretError{Reason: "empty"}
	}
	seed, err := hex.DecodeString(string(s))
	if err != nil {
		return nil, &InvalidSecretError{Reason: "not hex encoded"}
	}
	if len(seed) != ed25519.SeedSize {
		return nil, &InvalidSecretError{
			Reason: fmt.Sprintf("want %d bytes, got %d", ed25519.SeedSize, len(seed)),
		}
	}
	return seed, nil
}
