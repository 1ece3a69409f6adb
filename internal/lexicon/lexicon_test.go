package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedTables(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)
	require.NotNil(t, s)

	// Default is cached, repeat calls hand back the same store.
	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestEveryCategoryHasPattern(t *testing.T) {
	s := MustDefault()

	for _, cat := range Priority {
		p, ok := s.Pattern(cat)
		require.True(t, ok, "missing pattern for %s", cat)
		assert.NotEmpty(t, p.Keywords, "%s has no keywords", cat)
		assert.Greater(t, p.Weight, 0.0, "%s has no weight", cat)
		switch p.Valence {
		case ValenceNegative, ValencePositive, ValenceNeutral:
		default:
			t.Errorf("%s has unknown valence %q", cat, p.Valence)
		}
	}

	_, ok := s.Pattern(Category("bored"))
	assert.False(t, ok)
}

func TestValenceAccessors(t *testing.T) {
	s := MustDefault()

	assert.Negative(t, s.Weight("hopeless"))
	assert.Positive(t, s.Weight("happy"))
	assert.Zero(t, s.Weight("table"))

	assert.True(t, s.IsNegator("not"))
	assert.True(t, s.IsNegator("cannot"))
	assert.False(t, s.IsNegator("very"))

	assert.True(t, s.IsBooster("extremely"))
	assert.False(t, s.IsBooster("slightly"))

	assert.True(t, s.IsDampener("slightly"))
	assert.False(t, s.IsDampener("extremely"))
}

func TestCrisisTiersPopulated(t *testing.T) {
	s := MustDefault()

	assert.Contains(t, s.CrisisPhrases(), "want to die")
	assert.Contains(t, s.CrisisPhrases(), "kill myself")

	// Hopelessness is an elevated signal, not an immediate crisis.
	assert.Contains(t, s.ElevatedPhrases(), "hopeless")
	assert.NotContains(t, s.CrisisPhrases(), "hopeless")
}

func TestParseCategory(t *testing.T) {
	cat, ok := ParseCategory("overwhelmed")
	require.True(t, ok)
	assert.Equal(t, Overwhelmed, cat)

	_, ok = ParseCategory("melancholy")
	assert.False(t, ok)
}
