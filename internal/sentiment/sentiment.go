// Package sentiment implements the lexicon-based valence scorer. It is
// independent of category classification: the classifier consumes its output
// but the score itself is computed purely from the valence word table.
package sentiment

import (
	"math"

	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/text"
)

// Intensity labels the magnitude of a sentiment score.
type Intensity string

const (
	IntensityLow     Intensity = "low"
	IntensityMedium  Intensity = "medium"
	IntensityHigh    Intensity = "high"
	IntensityExtreme Intensity = "extreme"
)

// Score is the immutable per-request sentiment result.
type Score struct {
	// Compound is the aggregate polarity in [-1, 1].
	Compound float64 `json:"compound"`
	// Intensity is derived from |Compound| by fixed thresholds.
	Intensity Intensity `json:"intensity"`
}

// Config holds the scorer tunables.
type Config struct {
	// NegationWindow is how many preceding tokens a negator reaches over.
	NegationWindow int `mapstructure:"negation_window" yaml:"negation_window"`
	// BoosterScale multiplies the weight of a token following a booster.
	BoosterScale float64 `mapstructure:"booster_scale" yaml:"booster_scale"`
	// DampenerScale multiplies the weight of a token following a dampener.
	DampenerScale float64 `mapstructure:"dampener_scale" yaml:"dampener_scale"`
	// Gain scales the token-count-normalized sum before clamping. Higher
	// gain makes short emphatic inputs saturate sooner.
	Gain float64 `mapstructure:"gain" yaml:"gain"`
}

// DefaultConfig returns the scorer defaults.
func DefaultConfig() Config {
	return Config{
		NegationWindow: 3,
		BoosterScale:   1.3,
		DampenerScale:  0.7,
		Gain:           1.5,
	}
}

// Scorer computes valence scores from normalized text. Stateless and safe
// for concurrent use.
type Scorer struct {
	store *lexicon.Store
	cfg   Config
}

// NewScorer creates a scorer over the given lexicon store.
func NewScorer(store *lexicon.Store, cfg Config) *Scorer {
	if cfg.NegationWindow <= 0 {
		cfg.NegationWindow = DefaultConfig().NegationWindow
	}
	if cfg.BoosterScale == 0 {
		cfg.BoosterScale = DefaultConfig().BoosterScale
	}
	if cfg.DampenerScale == 0 {
		cfg.DampenerScale = DefaultConfig().DampenerScale
	}
	if cfg.Gain == 0 {
		cfg.Gain = DefaultConfig().Gain
	}
	return &Scorer{store: store, cfg: cfg}
}

// Score computes the aggregate valence of the input. Deterministic: the same
// input always produces the same score. Empty input scores 0 with low
// intensity.
func (s *Scorer) Score(nt text.Normalized) Score {
	if nt.Empty() {
		return Score{Compound: 0, Intensity: IntensityLow}
	}

	var sum float64
	for i, tok := range nt.Tokens {
		w := s.store.Weight(tok)
		if w == 0 {
			continue
		}

		// Intensifier directly before the weighted token scales it.
		if i > 0 {
			switch prev := nt.Tokens[i-1]; {
			case s.store.IsBooster(prev):
				w *= s.cfg.BoosterScale
			case s.store.IsDampener(prev):
				w *= s.cfg.DampenerScale
			}
		}

		// A negator within the window inverts the contribution.
		if s.negatedAt(nt.Tokens, i) {
			w = -w
		}

		sum += w
	}

	compound := clamp(sum * s.cfg.Gain / float64(len(nt.Tokens)))
	return Score{Compound: compound, Intensity: IntensityFor(compound)}
}

func (s *Scorer) negatedAt(tokens []string, i int) bool {
	lo := i - s.cfg.NegationWindow
	if lo < 0 {
		lo = 0
	}
	for j := lo; j < i; j++ {
		if s.store.IsNegator(tokens[j]) {
			return true
		}
	}
	return false
}

// IntensityFor maps a compound score magnitude to its intensity label.
func IntensityFor(compound float64) Intensity {
	switch mag := math.Abs(compound); {
	case mag >= 0.85:
		return IntensityExtreme
	case mag >= 0.55:
		return IntensityHigh
	case mag >= 0.2:
		return IntensityMedium
	default:
		return IntensityLow
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
