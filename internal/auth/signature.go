// Package auth implements the signed-request scheme shared by the GophDeck
// client transport and the server middleware. A request is authenticated by an
// Ed25519 signature made with the key whose public half is the caller's
// identity.
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names carried by every signed request.
const (
	HeaderIdentity  = "X-GophDeck-Identity"
	HeaderTimestamp = "X-GophDeck-Timestamp"
	HeaderSignature = "X-GophDeck-Signature"
)

// DefaultSkew is the accepted distance between the signer's clock and ours.
const DefaultSkew = 5 * time.Minute

var (
	// ErrMissingSignature is returned when any of the signing headers is absent.
	ErrMissingSignature = errors.New("missing signature headers")
	// ErrBadSignature is returned when the signature does not verify.
	ErrBadSignature = errors.New("signature mismatch")
	// ErrStaleRequest is returned when the timestamp is outside the allowed skew.
	ErrStaleRequest = errors.New("request timestamp outside allowed window")
	// ErrMalformedIdentity is returned when an identity is not a hex Ed25519 public key.
	ErrMalformedIdentity = errors.New("malformed identity")
)

// CanonicalMessage builds the byte string that gets signed for a request.
func CanonicalMessage(method, path string, timestamp int64, body []byte) []byte {
	sum := sha256.Sum256(body)
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('\n')
	b.WriteString(hex.EncodeToString(sum[:]))
	return []byte(b.String())
}

// PublicKeyFromIdentity decodes a hex identity into an Ed25519 public key.
func PublicKeyFromIdentity(identity string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedIdentity, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// SignRequest attaches the identity, timestamp and signature headers to req.
// body must be the exact bytes sent as the request body (nil for none).
func SignRequest(req *http.Request, key ed25519.PrivateKey, body []byte, now time.Time) {
	pub := key.Public().(ed25519.PublicKey)
	ts := now.Unix()
	sig := ed25519.Sign(key, CanonicalMessage(req.Method, req.URL.Path, ts, body))

	req.Header.Set(HeaderIdentity, hex.EncodeToString(pub))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, hex.EncodeToString(sig))
}

// VerifyRequest checks the signing headers of req against body and returns the
// authenticated identity.
func VerifyRequest(req *http.Request, body []byte, now time.Time, skew time.Duration) (string, error) {
	identity := strings.ToLower(req.Header.Get(HeaderIdentity))
	tsHeader := req.Header.Get(HeaderTimestamp)
	sigHeader := req.Header.Get(HeaderSignature)
	if identity == "" || tsHeader == "" || sigHeader == "" {
		return "", ErrMissingSignature
	}

	pub, err := PublicKeyFromIdentity(identity)
	if err != nil {
		return "", err
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad timestamp", ErrBadSignature)
	}
	if d := now.Sub(time.Unix(ts, 0)); d > skew || d < -skew {
		return "", ErrStaleRequest
	}

	sig, err := hex.DecodeString(sigHeader)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return "", ErrBadSignature
	}
	if !ed25519.Verify(pub, CanonicalMessage(req.Method, req.URL.Path, ts, body), sig) {
		return "", ErrBadSignature
	}
	return identity, nil
}
