package document

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates a record's name from its payload.
const Delimiter = "|"

// ErrInvalidRecord is returned by NewRecord for input that would not survive
// a save/parse round trip.
var ErrInvalidRecord = errors.New("invalid record")

// Record is one line of the document.
type Record struct {
	Name    string
	Payload string

	// raw holds the line of a record parsed without a delimiter.
	raw string
}

// RecordKey identifies a record by its serialized line. Two records with the
// same line are the same record as far as the store is concerned.
type RecordKey string

// NewRecord validates name and payload. Names may not contain the delimiter
// or line breaks; payloads may not contain line breaks.
func NewRecord(name, payload string) (Record, error) {
	if strings.TrimSpace(name) == "" {
		return Record{}, fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if strings.ContainsAny(name, Delimiter+"\r\n") {
		return Record{}, fmt.Errorf("%w: name must not contain %q or line breaks", ErrInvalidRecord, Delimiter)
	}
	if strings.ContainsAny(payload, "\r\n") {
		return Record{}, fmt.Errorf("%w: payload must not contain line breaks", ErrInvalidRecord)
	}
	return Record{Name: name, Payload: payload}, nil
}

// ParseRecord splits a line on the first delimiter. A line without one is
// all name.
func ParseRecord(line string) Record {
	name, payload, found := strings.Cut(line, Delimiter)
	if !found {
		return Record{Name: line, raw: line}
	}
	return Record{Name: name, Payload: payload}
}

// Line returns the serialized form of r. A record parsed from a line without
// a delimiter keeps that line unchanged.
func (r Record) Line() string {
	if r.raw != "" {
		return r.raw
	}
	return r.Name + Delimiter + r.Payload
}

// Key returns the matching key of r.
func (r Record) Key() RecordKey {
	return RecordKey(r.Line())
}

// Items splits the payload into catalog identifiers.
func (r Record) Items() []string {
	if r.Payload == "" {
		return nil
	}
	return strings.Split(r.Payload, ",")
}
