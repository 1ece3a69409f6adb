// Package safety implements the crisis detection layer. It scans normalized
// input for tiered crisis language, escalates borderline cases using the
// classifier and sentiment outputs, and validates generated responses before
// they reach a user. Detection runs fresh on every request; results are never
// cached or reused across inputs.
package safety

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

// Severity is the outcome tier of a safety scan.
type Severity string

const (
	// SeverityNormal means no intervention is needed.
	SeverityNormal Severity = "normal"
	// SeverityElevated means the input shows sustained distress that warrants
	// surfacing support resources alongside the regular response.
	SeverityElevated Severity = "elevated"
	// SeverityCrisis means explicit crisis language was found. The response
	// pipeline must short-circuit to the crisis intervention path.
	SeverityCrisis Severity = "crisis"
)

// Flag is the result of scanning one input.
type Flag struct {
	Severity  Severity `json:"severity"`
	Matched   []string `json:"matched,omitempty"`
	Triggered bool     `json:"intervention_triggered"`
}

// Detector matches input text against the tiered crisis phrase set.
type Detector struct {
	store *lexicon.Store
}

// NewDetector builds a detector over the given lexicon store.
func NewDetector(store *lexicon.Store) *Detector {
	return &Detector{store: store}
}

// Scan checks the input for crisis and elevated phrases. A panic anywhere in
// the scan is recovered and reported as elevated severity: a broken detector
// must fail toward caution, never toward silence.
func (d *Detector) Scan(nt text.Normalized) (flag Flag) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("safety scan panicked, failing to elevated")
			flag = Flag{Severity: SeverityElevated, Triggered: true}
		}
	}()

	if nt.Empty() {
		return Flag{Severity: SeverityNormal}
	}

	var matched []string
	for _, phrase := range d.store.CrisisPhrases() {
		if containsPhrase(nt.Clean, phrase) {
			matched = append(matched, phrase)
		}
	}
	if len(matched) > 0 {
		return Flag{Severity: SeverityCrisis, Matched: matched, Triggered: true}
	}

	for _, phrase := range d.store.ElevatedPhrases() {
		if containsPhrase(nt.Clean, phrase) {
			matched = append(matched, phrase)
		}
	}
	if len(matched) > 0 {
		return Flag{Severity: SeverityElevated, Matched: matched, Triggered: true}
	}
	return Flag{Severity: SeverityNormal}
}

// Assess escalates a normal flag to elevated when the classifier and
// sentiment outputs point at sustained distress even though no tiered phrase
// matched: a strongly negative emotion at high intensity, or a deeply
// negative compound score. Crisis flags pass through untouched.
func (d *Detector) Assess(flag Flag, res *emotion.Result, score sentiment.Score) Flag {
	if flag.Severity != SeverityNormal {
		return flag
	}
	if res != nil && negativeValence(d.store, res.Primary) {
		switch score.Intensity {
		case sentiment.IntensityHigh, sentiment.IntensityExtreme:
			flag.Severity = SeverityElevated
			flag.Triggered = true
			return flag
		}
	}
	if score.Compound < -0.8 {
		flag.Severity = SeverityElevated
		flag.Triggered = true
	}
	return flag
}

func negativeValence(store *lexicon.Store, cat lexicon.Category) bool {
	p, ok := store.Pattern(cat)
	return ok && p.Valence == lexicon.ValenceNegative
}

// containsPhrase reports whether phrase occurs in clean on word boundaries.
// clean is space-delimited lowercase text, so boundary checks reduce to
// padding both sides with spaces.
func containsPhrase(clean, phrase string) bool {
	return strings.Contains(" "+clean+" ", " "+phrase+" ")
}

// ErrRejected marks a generated response that failed validation.
var ErrRejected = errors.New("response rejected")

// ContentPolicy decides whether a generated response is acceptable to show.
type ContentPolicy interface {
	Check(msg string) error
}

// PhrasePolicy rejects responses containing any of a fixed set of dismissive
// phrases. Generative backends occasionally produce minimizing advice that
// is harmful in a support context, so the list is checked on every response.
type PhrasePolicy struct {
	Banned []string
}

// DefaultPhrasePolicy returns the stock dismissive-phrase list.
func DefaultPhrasePolicy() *PhrasePolicy {
	return &PhrasePolicy{Banned: []string{
		"just think positive",
		"get over it",
		"it could be worse",
		"just relax",
		"stop being dramatic",
		"snap out of it",
		"just cheer up",
		"other people have it worse",
	}}
}

// Check implements ContentPolicy.
func (p *PhrasePolicy) Check(msg string) error {
	lower := strings.ToLower(msg)
	for _, phrase := range p.Banned {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: dismissive phrase %q", ErrRejected, phrase)
		}
	}
	return nil
}

// Validator checks generated responses for basic shape and content before
// they are returned. Template responses are trusted; this guards the
// generative backends.
type Validator struct {
	MinLen int
	MaxLen int
	Policy ContentPolicy
}

// NewValidator builds a validator with the default length bounds and the
// stock phrase policy.
func NewValidator() *Validator {
	return &Validator{MinLen: 10, MaxLen: 2000, Policy: DefaultPhrasePolicy()}
}

// Validate returns nil when the response is acceptable, or an error wrapping
// ErrRejected describing the first failed check.
func (v *Validator) Validate(msg string) error {
	trimmed := strings.TrimSpace(msg)
	if len(trimmed) < v.MinLen {
		return fmt.Errorf("%w: too short (%d chars)", ErrRejected, len(trimmed))
	}
	if len(trimmed) > v.MaxLen {
		return fmt.Errorf("%w: too long (%d chars)", ErrRejected, len(trimmed))
	}
	if v.Policy != nil {
		if err := v.Policy.Check(trimmed); err != nil {
			return err
		}
	}
	return nil
}
