package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) *RecordKey {
	k := RecordKey(s)
	return &k
}

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RecordSet
	}{
		{
			name: "empty document",
			raw:  "",
			want: RecordSet{},
		},
		{
			name: "two records",
			raw:  "Alice|1,2,3\nBob|4,5",
			want: RecordSet{{Name: "Alice", Payload: "1,2,3"}, {Name: "Bob", Payload: "4,5"}},
		},
		{
			name: "blank lines and trailing newline",
			raw:  "\nAlice|1\n\n\nBob|2\n",
			want: RecordSet{{Name: "Alice", Payload: "1"}, {Name: "Bob", Payload: "2"}},
		},
		{
			name: "crlf",
			raw:  "Alice|1\r\nBob|2\r\n",
			want: RecordSet{{Name: "Alice", Payload: "1"}, {Name: "Bob", Payload: "2"}},
		},
		{
			name: "no delimiter",
			raw:  "Carol",
			want: RecordSet{{Name: "Carol", raw: "Carol"}},
		},
		{
			name: "split on first delimiter only",
			raw:  "Dave|1|2",
			want: RecordSet{{Name: "Dave", Payload: "1|2"}},
		},
		{
			name: "empty name",
			raw:  "|7",
			want: RecordSet{{Name: "", Payload: "7"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecords(tt.raw))
		})
	}
}

func TestParseSerializeIdempotent(t *testing.T) {
	docs := []string{
		"Alice|1,2,3\nBob|4,5",
		"Solo|",
		"A|1\nA|1\nB|2,3,4",
		"Ünïcode|x,y",
		"Carol\nBob|4,5",
	}
	for _, doc := range docs {
		first := ParseRecords(doc)
		assert.Equal(t, doc, first.Serialize())
		assert.Equal(t, first, ParseRecords(first.Serialize()))
	}
}

func TestLineWithoutDelimiter(t *testing.T) {
	rs := ParseRecords("Carol\nBob|4,5")
	assert.Equal(t, RecordKey("Carol"), rs[0].Key())
	assert.Equal(t, "Carol\nBob|4,5", rs.Serialize())

	// Saving after an edit elsewhere leaves the untouched line as it was.
	edited := rs.Upsert(key("Bob|4,5"), Record{Name: "Bob", Payload: "6"})
	assert.Equal(t, "Carol\nBob|6", edited.Serialize())

	assert.Equal(t, RecordSet{{Name: "Bob", Payload: "4,5"}}, rs.Delete("Carol"))
	assert.Equal(t, rs, rs.Delete("Carol|"))

	renamed := rs.Upsert(key("Carol"), Record{Name: "Carol", Payload: "1"})
	assert.Equal(t, "Carol|1\nBob|4,5", renamed.Serialize())

	assert.Equal(t, "", RecordSet{}.Serialize())
}

func TestUpsert(t *testing.T) {
	base := ParseRecords("Alice|1,2,3\nBob|4,5")

	t.Run("replace in place", func(t *testing.T) {
		got := base.Upsert(key("Alice|1,2,3"), Record{Name: "Alice", Payload: "9,9"})
		assert.Equal(t, RecordSet{{Name: "Alice", Payload: "9,9"}, {Name: "Bob", Payload: "4,5"}}, got)
	})

	t.Run("rename keeps position", func(t *testing.T) {
		got := base.Upsert(key("Bob|4,5"), Record{Name: "Robert", Payload: "4,5"})
		assert.Equal(t, RecordSet{{Name: "Alice", Payload: "1,2,3"}, {Name: "Robert", Payload: "4,5"}}, got)
	})

	t.Run("target matches nothing", func(t *testing.T) {
		got := base.Upsert(key("Zed|0"), Record{Name: "Zed", Payload: "1"})
		assert.Equal(t, base, got)
	})

	t.Run("target is a prefix only", func(t *testing.T) {
		got := base.Upsert(key("Alice|1,2"), Record{Name: "Alice", Payload: "0"})
		assert.Equal(t, base, got)
	})

	t.Run("append", func(t *testing.T) {
		got := base.Upsert(nil, Record{Name: "Carol", Payload: "6"})
		assert.Equal(t, RecordSet{{Name: "Alice", Payload: "1,2,3"}, {Name: "Bob", Payload: "4,5"}, {Name: "Carol", Payload: "6"}}, got)
	})

	t.Run("duplicates all replaced", func(t *testing.T) {
		dup := ParseRecords("A|1\nB|2\nA|1")
		got := dup.Upsert(key("A|1"), Record{Name: "A", Payload: "3"})
		assert.Equal(t, RecordSet{{Name: "A", Payload: "3"}, {Name: "B", Payload: "2"}, {Name: "A", Payload: "3"}}, got)
	})

	assert.Equal(t, RecordSet{{Name: "Alice", Payload: "1,2,3"}, {Name: "Bob", Payload: "4,5"}}, base, "receiver is not modified")
}

func TestUpsert_AppendDoesNotAlias(t *testing.T) {
	base := make(RecordSet, 1, 4)
	base[0] = Record{Name: "A", Payload: "1"}

	first := base.Upsert(nil, Record{Name: "B", Payload: "2"})
	second := base.Upsert(nil, Record{Name: "C", Payload: "3"})

	assert.Equal(t, RecordSet{{Name: "A", Payload: "1"}, {Name: "B", Payload: "2"}}, first)
	assert.Equal(t, RecordSet{{Name: "A", Payload: "1"}, {Name: "C", Payload: "3"}}, second)
}

func TestDelete(t *testing.T) {
	base := ParseRecords("Alice|1,2,3\nBob|4,5")

	assert.Equal(t, RecordSet{{Name: "Alice", Payload: "1,2,3"}}, base.Delete("Bob|4,5"))
	assert.Equal(t, base, base.Delete("Nobody|1"))

	dup := ParseRecords("A|1\nB|2\nA|1\nA|11")
	assert.Equal(t, RecordSet{{Name: "B", Payload: "2"}, {Name: "A", Payload: "11"}}, dup.Delete("A|1"))
	assert.Len(t, dup, 4, "receiver is not modified")
}

func TestNewRecord(t *testing.T) {
	r, err := NewRecord("Alice", "1,2,3")
	require.NoError(t, err)
	assert.Equal(t, RecordKey("Alice|1,2,3"), r.Key())
	assert.Equal(t, []string{"1", "2", "3"}, r.Items())

	for _, tc := range []struct{ name, payload string }{
		{"", "1"},
		{"   ", "1"},
		{"Al|ice", "1"},
		{"Al\nice", "1"},
		{"Alice", "1\n2"},
		{"Alice", "1\r"},
	} {
		_, err := NewRecord(tc.name, tc.payload)
		assert.ErrorIs(t, err, ErrInvalidRecord, "%q/%q", tc.name, tc.payload)
	}
}

func TestRecordItems_Empty(t *testing.T) {
	assert.Nil(t, Record{Name: "x"}.Items())
}
