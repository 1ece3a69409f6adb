package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

func templateRequest(input string, cat lexicon.Category, intensity sentiment.Intensity) *Request {
	return &Request{
		Text:       input,
		Normalized: text.Normalize(input),
		Emotion:    &emotion.Result{Primary: cat, Confidence: 0.8},
		Sentiment:  sentiment.Score{Compound: -0.5, Intensity: intensity},
	}
}

func TestTemplateNeverFails(t *testing.T) {
	tpl := NewTemplate()

	for _, cat := range lexicon.Priority {
		req := templateRequest("i am having a day", cat, sentiment.IntensityLow)
		cand, err := tpl.Attempt(context.Background(), req)
		require.NoError(t, err, "category %s", cat)
		assert.NotEmpty(t, cand.Message)
		assert.Equal(t, TypeTemplateSupportive, cand.Type)
		assert.Equal(t, "template", cand.Source)
	}
}

func TestTemplateIsDeterministic(t *testing.T) {
	tpl := NewTemplate()
	req := templateRequest("i feel really stressed about work", lexicon.Stressed, sentiment.IntensityMedium)

	first, err := tpl.Attempt(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := tpl.Attempt(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first.Message, again.Message)
	}

	// Different input text picks different variants (usually).
	other, err := tpl.Attempt(context.Background(),
		templateRequest("so much pressure from every direction lately", lexicon.Stressed, sentiment.IntensityMedium))
	require.NoError(t, err)
	assert.NotEqual(t, first.Message, other.Message)
}

func TestTemplateAddsProfessionalHelpAtHighIntensity(t *testing.T) {
	tpl := NewTemplate()

	low, err := tpl.Attempt(context.Background(),
		templateRequest("a bit sad today", lexicon.Sad, sentiment.IntensityLow))
	require.NoError(t, err)

	high, err := tpl.Attempt(context.Background(),
		templateRequest("a bit sad today", lexicon.Sad, sentiment.IntensityHigh))
	require.NoError(t, err)

	assert.Greater(t, len(high.Message), len(low.Message))
	assert.Contains(t, high.Message, "counselor")
}

func TestTemplateIncludesCopingSuggestion(t *testing.T) {
	tpl := NewTemplate()

	cand, err := tpl.Attempt(context.Background(),
		templateRequest("everything is too much", lexicon.Overwhelmed, sentiment.IntensityMedium))
	require.NoError(t, err)
	assert.Contains(t, cand.Message, "Here's something that might help:")
}

func TestTemplateUnknownCategoryFallsBackToNeutral(t *testing.T) {
	tpl := NewTemplate()

	req := templateRequest("hello there", lexicon.Category("bored"), sentiment.IntensityLow)
	cand, err := tpl.Attempt(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, cand.Message)
}

func TestTemplateCrisis(t *testing.T) {
	tpl := NewTemplate()
	req := templateRequest("i want to give up", lexicon.Sad, sentiment.IntensityExtreme)

	cand := tpl.Crisis(req)
	assert.Equal(t, TypeCrisisIntervention, cand.Type)
	assert.NotEmpty(t, cand.Message)

	// Crisis responses never contain the supportive template assembly.
	assert.NotContains(t, cand.Message, "Here's something that might help:")

	again := tpl.Crisis(req)
	assert.Equal(t, cand.Message, again.Message)
}

func TestTemplateFollowUps(t *testing.T) {
	tpl := NewTemplate()

	qs := tpl.FollowUps(lexicon.Anxious)
	require.Len(t, qs, 3)
	assert.True(t, strings.HasSuffix(qs[0], "?"))

	// Categories without a dedicated table get the generic set.
	generic := tpl.FollowUps(lexicon.Grateful)
	require.NotEmpty(t, generic)
	assert.Equal(t, defaultFollowUps, generic)

	crisis := tpl.CrisisFollowUps()
	assert.Contains(t, crisis, "Are you in a safe place?")
}

func TestTemplateSuggestions(t *testing.T) {
	tpl := NewTemplate()

	low := tpl.Suggestions(lexicon.Anxious, sentiment.IntensityLow, "some input")
	assert.Len(t, low, 2)

	high := tpl.Suggestions(lexicon.Anxious, sentiment.IntensityExtreme, "some input")
	assert.Len(t, high, 3)

	seen := map[string]bool{}
	for _, s := range high {
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}

	again := tpl.Suggestions(lexicon.Anxious, sentiment.IntensityExtreme, "some input")
	assert.Equal(t, high, again)
}
