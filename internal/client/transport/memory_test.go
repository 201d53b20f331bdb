package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	ok, err := m.Exists(ctx, "id")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "id", []byte("a|b")))
	data, err := m.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "a|b", string(data))

	data[0] = 'z'
	stored, _ := m.Document("id")
	assert.Equal(t, "a|b", string(stored), "callers get a copy")
	assert.Equal(t, 1, m.Puts)
}

func TestMemory_Failures(t *testing.T) {
	boom := errors.New("boom")
	m := &Memory{FailExists: boom, FailGet: boom, FailPut: boom}
	ctx := context.Background()

	_, err := m.Exists(ctx, "id")
	assert.ErrorIs(t, err, boom)
	_, err = m.Get(ctx, "id")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Put(ctx, "id", nil), boom)
	assert.Zero(t, m.Puts)
}

func TestMemory_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().Exists(ctx, "id")
	assert.ErrorIs(t, err, context.Canceled)
}
