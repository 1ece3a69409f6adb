package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

func newTestClassifier(t *testing.T) (*Classifier, *sentiment.Scorer) {
	t.Helper()
	store, err := lexicon.Default()
	require.NoError(t, err)
	return New(store, DefaultConfig()), sentiment.NewScorer(store, sentiment.DefaultConfig())
}

func classify(c *Classifier, s *sentiment.Scorer, input string) Result {
	nt := text.Normalize(input)
	return c.Classify(nt, s.Score(nt))
}

func TestClassifyPrimaryCategories(t *testing.T) {
	c, s := newTestClassifier(t)

	tests := []struct {
		input string
		want  lexicon.Category
	}{
		{"I feel really overwhelmed with work deadlines", lexicon.Overwhelmed},
		{"I'm so anxious, my heart is racing and I can't stop worrying", lexicon.Anxious},
		{"I feel sad and lonely, I've been crying all day", lexicon.Sad},
		{"I'm so angry, I'm completely fed up with this", lexicon.Angry},
		{"I'm so excited, this is the best day ever!", lexicon.Excited},
		{"I feel so grateful and thankful for my friends", lexicon.Grateful},
		{"I'm confused, I don't understand what's happening", lexicon.Confused},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := classify(c, s, tt.input)
			assert.Equal(t, tt.want, got.Primary)
			assert.Greater(t, got.Confidence, 0.0)
			assert.Equal(t, SourceRuleBased, got.Source)
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c, s := newTestClassifier(t)

	got := classify(c, s, "")
	assert.Equal(t, lexicon.Neutral, got.Primary)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.Secondary)
	assert.Empty(t, got.Matched)
}

func TestClassifyNoMatchDefaultsNeutral(t *testing.T) {
	c, s := newTestClassifier(t)

	got := classify(c, s, "the train leaves at seven from platform two")
	assert.Equal(t, lexicon.Neutral, got.Primary)
	assert.Zero(t, got.Confidence)
}

func TestClassifyDeterministic(t *testing.T) {
	c, s := newTestClassifier(t)

	input := "I'm stressed and anxious about everything, it's too much"
	first := classify(c, s, input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classify(c, s, input))
	}
}

func TestClassifyConfidenceCappedAtOne(t *testing.T) {
	c, s := newTestClassifier(t)

	got := classify(c, s, "stressed pressure overwhelmed burden deadline panic worried tense exhausted, so much work, can't cope, burning out, at my limit")
	assert.Equal(t, lexicon.Stressed, got.Primary)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassifyConfidenceMonotonic(t *testing.T) {
	c, s := newTestClassifier(t)

	one := classify(c, s, "puzzled today")
	two := classify(c, s, "puzzled and uncertain today")
	three := classify(c, s, "puzzled uncertain bewildered today")

	assert.Less(t, one.Confidence, two.Confidence)
	assert.Less(t, two.Confidence, three.Confidence)
}

func TestClassifySecondaryRanking(t *testing.T) {
	c, s := newTestClassifier(t)

	got := classify(c, s, "I'm stressed and anxious and a bit sad about the deadline")
	require.NotEmpty(t, got.Secondary)
	assert.LessOrEqual(t, len(got.Secondary), 3)

	for i := 1; i < len(got.Secondary); i++ {
		assert.GreaterOrEqual(t, got.Secondary[i-1].Score, got.Secondary[i].Score)
	}
	for _, sec := range got.Secondary {
		assert.NotEqual(t, got.Primary, sec.Category)
		assert.LessOrEqual(t, sec.Score, 0.9)
	}
}

func TestClassifyMatchedKeywords(t *testing.T) {
	c, s := newTestClassifier(t)

	got := classify(c, s, "I feel sad and lonely and empty")
	assert.Equal(t, lexicon.Sad, got.Primary)
	assert.Subset(t, []string{"sad", "lonely", "empty", "down", "hopeless"}, got.Matched)
	assert.Contains(t, got.Matched, "sad")
	assert.LessOrEqual(t, len(got.Matched), 5)
}

func TestContainsTermWordBoundaries(t *testing.T) {
	assert.True(t, containsTerm("i feel sad today", "sad"))
	assert.True(t, containsTerm("sad", "sad"))
	assert.True(t, containsTerm("too much to handle", "too much"))
	assert.False(t, containsTerm("the sadness lingers", "sad"))
	assert.False(t, containsTerm("a deadline looms", "deadlines"))
}
