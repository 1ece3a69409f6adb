package coping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlabs/solace/internal/lexicon"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Len(t, c.All(), 13)

	tool, ok := c.ByID("breathing_478")
	require.True(t, ok)
	assert.Equal(t, "4-7-8 Breathing", tool.Name)
	assert.Equal(t, TypeBreathing, tool.Type)
	assert.True(t, tool.Interactive)
	assert.NotEmpty(t, tool.Instructions)

	_, ok = c.ByID("nope")
	assert.False(t, ok)
}

func TestRecommendOverwhelmed(t *testing.T) {
	c := MustDefault()

	recs := c.Recommend(lexicon.Overwhelmed, Options{})
	require.Len(t, recs, 3)

	// Every pick either targets overwhelmed directly or is general-purpose.
	types := map[Type]bool{}
	for _, r := range recs {
		types[r.Tool.Type] = true
		if r.Relevance == 1.0 {
			assert.Contains(t, r.Tool.Targets, "overwhelmed")
		}
	}
	assert.True(t, types[TypeBreathing] || types[TypeGrounding],
		"overwhelmed picks should include a breathing or grounding tool, got %v", types)
}

func TestRecommendRankingIsDeterministic(t *testing.T) {
	c := MustDefault()

	first := c.Recommend(lexicon.Anxious, Options{Limit: 5})
	for i := 0; i < 10; i++ {
		again := c.Recommend(lexicon.Anxious, Options{Limit: 5})
		assert.Equal(t, first, again)
	}

	// Direct targets rank ahead of general tools, shorter first within a tier.
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		assert.GreaterOrEqual(t, prev.Relevance, cur.Relevance)
		if prev.Relevance == cur.Relevance {
			assert.LessOrEqual(t, prev.Tool.DurationMinutes, cur.Tool.DurationMinutes)
		}
	}
}

func TestRecommendFilters(t *testing.T) {
	c := MustDefault()

	recs := c.Recommend(lexicon.Stressed, Options{MaxDuration: 5, Limit: 10})
	for _, r := range recs {
		assert.LessOrEqual(t, r.Tool.DurationMinutes, 5)
	}

	recs = c.Recommend(lexicon.Stressed, Options{Difficulty: DifficultyMedium, Limit: 10})
	for _, r := range recs {
		assert.Equal(t, DifficultyMedium, r.Tool.Difficulty)
	}

	recs = c.Recommend(lexicon.Stressed, Options{PreferredTypes: []Type{TypeJournaling}, Limit: 10})
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, TypeJournaling, r.Tool.Type)
	}
}

func TestRecommendGeneralFallback(t *testing.T) {
	c := MustDefault()

	// No tool targets "grateful" directly, so only general tools apply.
	recs := c.Recommend(lexicon.Grateful, Options{Limit: 10})
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, 0.5, r.Relevance)
		assert.Contains(t, r.Tool.Targets, TargetGeneral)
	}
}

func TestByTypeAndQuick(t *testing.T) {
	c := MustDefault()

	breathing := c.ByType(TypeBreathing)
	assert.Len(t, breathing, 3)

	for _, tool := range c.Quick(5) {
		assert.LessOrEqual(t, tool.DurationMinutes, 5)
	}
}

func TestStartSession(t *testing.T) {
	c := MustDefault()

	s, err := c.StartSession("breathing_478")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 5, s.TotalSteps)
	assert.Equal(t, "inhale", s.Steps[1].Action)

	other, err := c.StartSession("breathing_478")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)

	// Non-interactive tools have no guided session.
	_, err = c.StartSession("journaling_gratitude")
	assert.Error(t, err)

	_, err = c.StartSession("missing")
	assert.Error(t, err)
}
