// Package emotion implements the lexicon-based emotion classifier. It
// combines keyword/phrase matches with the sentiment scorer's polarity to
// produce a primary category, a confidence, and a ranked secondary list.
//
// Classification is deterministic: identical input always yields an
// identical result, and score ties resolve by the fixed category priority
// order. Downstream safety logic depends on this stability.
package emotion

import (
	"math"
	"strings"

	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

// Source tags which classifier produced a result.
const (
	SourceRuleBased = "rule_based"
	SourceDefault   = "default"
)

// CategoryScore is one entry in the secondary emotion ranking.
type CategoryScore struct {
	Category lexicon.Category `json:"category"`
	Score    float64          `json:"score"`
}

// Result is the immutable per-request classification outcome.
type Result struct {
	Primary    lexicon.Category `json:"primary_emotion"`
	Confidence float64          `json:"confidence"`
	Secondary  []CategoryScore  `json:"secondary_emotions"`
	Matched    []string         `json:"keywords_matched"`
	Source     string           `json:"source"`
}

// Config holds the classifier tunables. The normalization constant and the
// minimum score threshold are deliberately configuration, not constants:
// they are tuned empirically rather than derived.
type Config struct {
	// ConfidenceNorm divides the winning raw score before capping at 1.0.
	ConfidenceNorm float64 `mapstructure:"confidence_norm" yaml:"confidence_norm"`
	// MinScore is the floor below which classification defaults to neutral.
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`
	// PhraseBonus multiplies the category weight for phrase (vs keyword) hits.
	PhraseBonus float64 `mapstructure:"phrase_bonus" yaml:"phrase_bonus"`
	// IntensifierBoost multiplies a category score once per matched
	// intensifier word.
	IntensifierBoost float64 `mapstructure:"intensifier_boost" yaml:"intensifier_boost"`
	// SentimentAlign enables polarity-aligned score boosting.
	SentimentAlign bool `mapstructure:"sentiment_align" yaml:"sentiment_align"`
	// MaxSecondary caps the secondary emotion list.
	MaxSecondary int `mapstructure:"max_secondary" yaml:"max_secondary"`
	// MaxMatched caps the reported matched keyword list.
	MaxMatched int `mapstructure:"max_matched" yaml:"max_matched"`
}

// DefaultConfig returns the classifier defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceNorm:   3.0,
		MinScore:         0.3,
		PhraseBonus:      1.5,
		IntensifierBoost: 1.3,
		SentimentAlign:   true,
		MaxSecondary:     3,
		MaxMatched:       5,
	}
}

// Classifier scores normalized text against the emotion lexicon. Stateless
// and safe for concurrent use.
type Classifier struct {
	store *lexicon.Store
	cfg   Config
}

// New creates a classifier over the given lexicon store.
func New(store *lexicon.Store, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.ConfidenceNorm <= 0 {
		cfg.ConfidenceNorm = def.ConfidenceNorm
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.PhraseBonus <= 0 {
		cfg.PhraseBonus = def.PhraseBonus
	}
	if cfg.IntensifierBoost <= 0 {
		cfg.IntensifierBoost = def.IntensifierBoost
	}
	if cfg.MaxSecondary <= 0 {
		cfg.MaxSecondary = def.MaxSecondary
	}
	if cfg.MaxMatched <= 0 {
		cfg.MaxMatched = def.MaxMatched
	}
	return &Classifier{store: store, cfg: cfg}
}

// Neutral returns the zero-confidence neutral result used for empty input
// and degraded paths.
func Neutral(source string) Result {
	return Result{
		Primary:    lexicon.Neutral,
		Confidence: 0,
		Secondary:  []CategoryScore{},
		Matched:    []string{},
		Source:     source,
	}
}

// Classify produces the emotion result for normalized input. Empty input
// yields neutral with confidence 0.
func (c *Classifier) Classify(nt text.Normalized, sent sentiment.Score) Result {
	if nt.Empty() {
		return Neutral(SourceDefault)
	}

	scores := c.categoryScores(nt)
	if c.cfg.SentimentAlign {
		c.alignWithSentiment(scores, sent.Compound)
	}

	primary, top := c.pickPrimary(scores)
	if top < c.cfg.MinScore {
		return Neutral(SourceRuleBased)
	}

	return Result{
		Primary:    primary,
		Confidence: math.Min(1.0, top/c.cfg.ConfidenceNorm),
		Secondary:  c.rankSecondary(scores, primary, top),
		Matched:    c.matchedKeywords(nt, primary),
		Source:     SourceRuleBased,
	}
}

// categoryScores computes raw match scores: Σ(keyword weight) plus boosted
// phrase hits, multiplied once per matched intensifier.
func (c *Classifier) categoryScores(nt text.Normalized) map[lexicon.Category]float64 {
	scores := make(map[lexicon.Category]float64, len(lexicon.Priority))

	for _, cat := range lexicon.Priority {
		pat, ok := c.store.Pattern(cat)
		if !ok {
			continue
		}

		var score float64
		for _, kw := range pat.Keywords {
			if containsTerm(nt.Clean, kw) {
				score += pat.Weight
			}
		}
		for _, ph := range pat.Phrases {
			if containsTerm(nt.Clean, ph) {
				score += pat.Weight * c.cfg.PhraseBonus
			}
		}
		if score > 0 {
			for _, intens := range pat.Intensifiers {
				if containsTerm(nt.Clean, intens) {
					score *= c.cfg.IntensifierBoost
				}
			}
		}
		scores[cat] = score
	}
	return scores
}

// alignWithSentiment boosts categories whose declared valence agrees with
// the compound polarity.
func (c *Classifier) alignWithSentiment(scores map[lexicon.Category]float64, compound float64) {
	switch {
	case compound < -0.1:
		for _, cat := range lexicon.Priority {
			if pat, ok := c.store.Pattern(cat); ok && pat.Valence == lexicon.ValenceNegative {
				scores[cat] *= 1 + math.Abs(compound)
			}
		}
	case compound > 0.1:
		for _, cat := range lexicon.Priority {
			if pat, ok := c.store.Pattern(cat); ok && pat.Valence == lexicon.ValencePositive {
				scores[cat] *= 1 + compound
			}
		}
	}
}

// pickPrimary walks categories in priority order with a strict comparison,
// so the earlier-declared category wins ties.
func (c *Classifier) pickPrimary(scores map[lexicon.Category]float64) (lexicon.Category, float64) {
	primary := lexicon.Neutral
	top := 0.0
	for _, cat := range lexicon.Priority {
		if s := scores[cat]; s > top {
			primary, top = cat, s
		}
	}
	return primary, top
}

// rankSecondary returns the remaining categories scoring above 0.2,
// normalized against the winner, capped and deterministically ordered.
func (c *Classifier) rankSecondary(scores map[lexicon.Category]float64, primary lexicon.Category, top float64) []CategoryScore {
	secondary := make([]CategoryScore, 0, c.cfg.MaxSecondary)
	for _, cat := range lexicon.Priority {
		if cat == primary {
			continue
		}
		s := scores[cat]
		if s <= 0.2 {
			continue
		}
		secondary = append(secondary, CategoryScore{
			Category: cat,
			Score:    math.Min(0.9, s/top),
		})
	}

	// Insertion sort by score descending; equal scores keep priority order.
	for i := 1; i < len(secondary); i++ {
		for j := i; j > 0 && secondary[j].Score > secondary[j-1].Score; j-- {
			secondary[j], secondary[j-1] = secondary[j-1], secondary[j]
		}
	}
	if len(secondary) > c.cfg.MaxSecondary {
		secondary = secondary[:c.cfg.MaxSecondary]
	}
	return secondary
}

func (c *Classifier) matchedKeywords(nt text.Normalized, primary lexicon.Category) []string {
	pat, ok := c.store.Pattern(primary)
	if !ok {
		return []string{}
	}
	matched := make([]string, 0, c.cfg.MaxMatched)
	for _, kw := range pat.Keywords {
		if containsTerm(nt.Clean, kw) {
			matched = append(matched, kw)
			if len(matched) == c.cfg.MaxMatched {
				break
			}
		}
	}
	return matched
}

// containsTerm reports whether term occurs in clean text on word boundaries.
// Both sides are already lowercased and punctuation-free.
func containsTerm(clean, term string) bool {
	idx := 0
	for {
		i := strings.Index(clean[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		startOK := start == 0 || clean[start-1] == ' '
		endOK := end == len(clean) || clean[end] == ' '
		if startOK && endOK {
			return true
		}
		idx = start + 1
		if idx >= len(clean) {
			return false
		}
	}
}
