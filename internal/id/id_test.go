package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for range 500 {
		got, err := Generate("fig")
		require.NoError(t, err)
		require.NotContains(t, seen, got)
		seen[got] = struct{}{}

		assert.Len(t, got, len("fig-")+21)
		assert.Regexp(t, `^fig-[A-Za-z0-9_-]{21}$`, got)
	}
}

func TestFieldID(t *testing.T) {
	a, b := FieldID(), FieldID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate("book")
	}
}
