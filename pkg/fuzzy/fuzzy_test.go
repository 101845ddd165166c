package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	catalog := []string{"discord"}

	tests := []struct {
		name  string
		query string
		want  string
		kind  Kind
		ok    bool
	}{
		{"substring", "disc", "discord", Contains, true},
		{"upper case query", "  DISC ", "discord", Contains, true},
		{"typo", "dizcord", "discord", Fuzzy, true},
		{"unrelated", "spotify", "", None, false},
		{"empty query", "   ", "", None, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Resolve(tt.query, catalog)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, m.Value)
			assert.Equal(t, tt.kind, m.Kind)
		})
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	_, ok := Resolve("discord", nil)
	assert.False(t, ok)
}

func TestResolveContainmentPrefersCatalogOrder(t *testing.T) {
	m, ok := Resolve("code", []string{"visual studio code", "code blocks"})
	require.True(t, ok)
	assert.Equal(t, "visual studio code", m.Value)
	assert.Equal(t, 0, m.Index)
}

func TestResolveContainmentSkipsApproximatePass(t *testing.T) {
	m, ok := Resolve("fire", []string{"campfire", "firefox"})
	require.True(t, ok)
	assert.Equal(t, "campfire", m.Value)
	assert.Equal(t, Contains, m.Kind)
}

func TestClosestTieGoesToFirst(t *testing.T) {
	m, ok := Closest("abcx", []string{"abcy", "abcz"})
	require.True(t, ok)
	assert.Equal(t, "abcy", m.Value)
	assert.Equal(t, 0, m.Index)
}

func TestClosestThresholdIsExclusive(t *testing.T) {
	// LCS("abc", "abcdefg") = 3, ratio = 6/10 = 0.6 which must not pass.
	_, ok := Closest("abc", []string{"abcdefg"})
	assert.False(t, ok)
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 12.0/14.0, Ratio("dizcord", "discord"), 1e-9)
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 1.0, Ratio("same", "same"))
	assert.Less(t, Ratio("spotify", "discord"), Threshold)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "contains", Contains.String())
	assert.Equal(t, "fuzzy", Fuzzy.String())
	assert.Equal(t, "none", None.String())
}
