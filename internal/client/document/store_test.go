package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophDeck/internal/client/identity"
	"github.com/atinyakov/GophDeck/internal/client/transport"
)

// countingTransport wraps a Memory transport and counts Exists calls.
type countingTransport struct {
	*transport.Memory
	exists int
}

func (c *countingTransport) Exists(ctx context.Context, id identity.Identity) (bool, error) {
	c.exists++
	return c.Memory.Exists(ctx, id)
}

func newIdentity(t *testing.T) identity.Identity {
	t.Helper()
	s, err := identity.GenerateSecret()
	require.NoError(t, err)
	id, err := identity.DeriveIdentity(s)
	require.NoError(t, err)
	return id
}

func TestInitialize_Rejected(t *testing.T) {
	tr := &countingTransport{Memory: transport.NewMemory()}
	s := New(tr, newIdentity(t))

	state, err := s.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Equal(t, StateRejected, state)
	assert.Equal(t, 1, tr.exists)

	// Rejected is terminal: no further remote checks.
	_, err = s.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Equal(t, 1, tr.exists)

	_, err = s.FetchDocument(context.Background())
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.ErrorIs(t, s.CreateEmpty(context.Background()), ErrAlreadyInitialized)
}

func TestCreateEmptyThenInitialize(t *testing.T) {
	tr := transport.NewMemory()
	id := newIdentity(t)

	fresh := New(tr, id)
	require.NoError(t, fresh.CreateEmpty(context.Background()))
	assert.Equal(t, StateVerified, fresh.State())

	doc, ok := tr.Document(id)
	require.True(t, ok)
	assert.Empty(t, doc)

	s := New(tr, id)
	state, err := s.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)

	raw, err := s.FetchDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", raw)
}

func TestCreateEmpty_TransportFailure(t *testing.T) {
	boom := errors.New("put refused")
	tr := &transport.Memory{FailPut: boom}
	s := New(tr, newIdentity(t))

	err := s.CreateEmpty(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "create", te.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUnverified, s.State())
}

func TestInitialize_TransportFailure(t *testing.T) {
	boom := errors.New("offline")
	s := New(&transport.Memory{FailExists: boom}, newIdentity(t))

	state, err := s.Initialize(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUnverified, state)
}

func TestOperationsRequireVerified(t *testing.T) {
	s := New(transport.NewMemory(), newIdentity(t))

	_, err := s.FetchDocument(context.Background())
	assert.ErrorIs(t, err, ErrNotVerified)
	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.ErrorIs(t, s.SaveDocument(context.Background(), nil), ErrNotVerified)
}

func TestReadModifyWrite(t *testing.T) {
	tr := transport.NewMemory()
	id := newIdentity(t)
	require.NoError(t, tr.Put(context.Background(), id, []byte("Alice|1,2,3\nBob|4,5")))

	s := New(tr, id)
	_, err := s.Initialize(context.Background())
	require.NoError(t, err)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecordSet{{Name: "Alice", Payload: "1,2,3"}, {Name: "Bob", Payload: "4,5"}}, records)

	records = records.Upsert(key("Alice|1,2,3"), Record{Name: "Alice", Payload: "9,9"})
	require.NoError(t, s.SaveDocument(context.Background(), records))

	records, err = s.Load(context.Background())
	require.NoError(t, err)
	records = records.Delete("Bob|4,5")
	require.NoError(t, s.SaveDocument(context.Background(), records))

	doc, _ := tr.Document(id)
	assert.Equal(t, "Alice|9,9", string(doc))
}

func TestSaveDocument_TransportFailureKeepsRecords(t *testing.T) {
	tr := transport.NewMemory()
	id := newIdentity(t)
	s := New(tr, id)
	require.NoError(t, s.CreateEmpty(context.Background()))

	records := ParseRecords("Alice|1,2,3\nBob|4,5")
	snapshot := append(RecordSet(nil), records...)

	boom := errors.New("put failed")
	tr.FailPut = boom
	err := s.SaveDocument(context.Background(), records)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "save", te.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, snapshot, records)

	doc, _ := tr.Document(id)
	assert.Empty(t, doc, "remote document untouched")

	// A manual retry with the same value succeeds.
	tr.FailPut = nil
	require.NoError(t, s.SaveDocument(context.Background(), records))
	doc, _ = tr.Document(id)
	assert.Equal(t, "Alice|1,2,3\nBob|4,5", string(doc))
}

func TestFetchDocument_TransportFailure(t *testing.T) {
	tr := transport.NewMemory()
	s := New(tr, newIdentity(t))
	require.NoError(t, s.CreateEmpty(context.Background()))

	tr.FailGet = errors.New("timeout")
	_, err := s.FetchDocument(context.Background())
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unverified", StateUnverified.String())
	assert.Equal(t, "verified", StateVerified.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "State(9)", State(9).String())
}
