package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(lexicon.MustDefault())
}

func TestScanCrisisPhrases(t *testing.T) {
	d := newDetector(t)

	tests := []struct {
		name  string
		input string
		want  Severity
	}{
		{"explicit crisis", "sometimes i just want to die", SeverityCrisis},
		{"self harm", "i have been thinking about hurting myself with self harm", SeverityCrisis},
		{"hopelessness is elevated", "I feel hopeless about everything", SeverityElevated},
		{"cannot go on", "i can't go on like this", SeverityElevated},
		{"plain sadness", "i feel sad today", SeverityNormal},
		{"word boundary holds", "the suicidegirls article", SeverityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := d.Scan(text.Normalize(tt.input))
			assert.Equal(t, tt.want, flag.Severity)
			assert.Equal(t, tt.want != SeverityNormal, flag.Triggered)
			if tt.want != SeverityNormal {
				assert.NotEmpty(t, flag.Matched)
			}
		})
	}
}

func TestScanEmptyInput(t *testing.T) {
	d := newDetector(t)
	flag := d.Scan(text.Normalize("   "))
	assert.Equal(t, SeverityNormal, flag.Severity)
	assert.False(t, flag.Triggered)
}

func TestScanCrisisOutranksElevated(t *testing.T) {
	d := newDetector(t)
	flag := d.Scan(text.Normalize("i feel hopeless and i want to die"))
	require.Equal(t, SeverityCrisis, flag.Severity)
	assert.Contains(t, flag.Matched, "want to die")
}

func TestAssessEscalatesHighIntensityNegative(t *testing.T) {
	d := newDetector(t)
	flag := Flag{Severity: SeverityNormal}
	res := &emotion.Result{Primary: lexicon.Sad}

	got := d.Assess(flag, res, sentiment.Score{Compound: -0.6, Intensity: sentiment.IntensityHigh})
	assert.Equal(t, SeverityElevated, got.Severity)
	assert.True(t, got.Triggered)

	// Low intensity negative emotion stays normal.
	got = d.Assess(flag, res, sentiment.Score{Compound: -0.3, Intensity: sentiment.IntensityLow})
	assert.Equal(t, SeverityNormal, got.Severity)
}

func TestAssessEscalatesDeepNegativeCompound(t *testing.T) {
	d := newDetector(t)
	flag := Flag{Severity: SeverityNormal}
	res := &emotion.Result{Primary: lexicon.Neutral}

	got := d.Assess(flag, res, sentiment.Score{Compound: -0.9, Intensity: sentiment.IntensityMedium})
	assert.Equal(t, SeverityElevated, got.Severity)
}

func TestAssessNeverDowngradesCrisis(t *testing.T) {
	d := newDetector(t)
	flag := Flag{Severity: SeverityCrisis, Triggered: true}
	res := &emotion.Result{Primary: lexicon.Positive}

	got := d.Assess(flag, res, sentiment.Score{Compound: 0.9, Intensity: sentiment.IntensityLow})
	assert.Equal(t, SeverityCrisis, got.Severity)
	assert.True(t, got.Triggered)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate("That sounds really difficult. I'm here to listen."))

	err := v.Validate("ok")
	require.ErrorIs(t, err, ErrRejected)

	err = v.Validate("You should just get over it and move on with your life.")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "get over it")

	long := make([]byte, 2100)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, v.Validate(string(long)), ErrRejected)
}

func TestResourcesFor(t *testing.T) {
	crisis := ResourcesFor(SeverityCrisis, lexicon.Sad)
	require.NotEmpty(t, crisis)
	assert.Equal(t, "988 Suicide & Crisis Lifeline", crisis[0].Name)

	elevated := ResourcesFor(SeverityElevated, lexicon.Anxious)
	require.NotEmpty(t, elevated)
	var names []string
	for _, r := range elevated {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "Anxiety and Depression Association of America")

	assert.Empty(t, ResourcesFor(SeverityNormal, lexicon.Sad))
}
