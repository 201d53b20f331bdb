package identity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, string(a), 64)
	assert.NotEqual(t, a, b)

	_, err = DeriveIdentity(a)
	assert.NoError(t, err)
}

func TestGenerateSecret_Failure(t *testing.T) {
	orig := randReader
	randReader = failingReader{}
	defer func() { randReader = orig }()

	_, err := GenerateSecret()
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, err.Error(), "entropy unavailable")
}

func TestDeriveIdentity_Deterministic(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)

	first, err := DeriveIdentity(s)
	require.NoError(t, err)
	second, err := DeriveIdentity(s)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.String(), 64)
	assert.NotContains(t, string(first), string(s))
}

func TestDeriveIdentity_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		secret Secret
	}{
		{"empty", ""},
		{"not hex", Secret(strings.Repeat("zz", 32))},
		{"short", "abc"},
		{"long", Secret(strings.Repeat("ab", 33))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveIdentity(tt.secret)
			var invalid *InvalidSecretError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestParseSecret_Normalizes(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)

	got, err := ParseSecret("  " + strings.ToUpper(string(s)) + "\n")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = ParseSecret("   ")
	var invalid *InvalidSecretError
	assert.ErrorAs(t, err, &invalid)
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deck.key")
	p := NewFileProvider(path)

	_, ok := p.LoadSecret()
	assert.False(t, ok, "nothing stored yet")

	require.NoError(t, p.PersistSecret("first"))
	require.NoError(t, p.PersistSecret("second"))
	got, ok := p.LoadSecret()
	require.True(t, ok)
	assert.Equal(t, Secret("second"), got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, p.ClearSecret())
	require.NoError(t, p.ClearSecret())
	_, ok = p.LoadSecret()
	assert.False(t, ok)
}

func TestFileProvider_BlankFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.key")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0o600))

	_, ok := NewFileProvider(path).LoadSecret()
	assert.False(t, ok)
}

func TestNewFileProvider_Default(t *testing.T) {
	assert.Equal(t, DefaultKeyFile, NewFileProvider("").Path)
}

func TestMemoryProvider(t *testing.T) {
	var p MemoryProvider
	_, ok := p.LoadSecret()
	assert.False(t, ok)

	require.NoError(t, p.PersistSecret("abc"))
	got, ok := p.LoadSecret()
	assert.True(t, ok)
	assert.Equal(t, Secret("abc"), got)

	require.NoError(t, p.ClearSecret())
	_, ok = p.LoadSecret()
	assert.False(t, ok)
}
