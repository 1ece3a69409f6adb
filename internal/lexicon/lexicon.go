// Package lexicon holds the static word tables the engine classifies with:
// the per-emotion keyword/phrase patterns, the signed valence lexicon used by
// the sentiment scorer, and the tiered crisis phrase set. All tables are
// embedded in the binary as YAML, parsed once, and immutable afterwards.
package lexicon

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/emotions.yaml
var emotionsYAML []byte

//go:embed data/valence.yaml
var valenceYAML []byte

//go:embed data/crisis.yaml
var crisisYAML []byte

// Category is one of the fixed emotion categories the classifier can produce.
type Category string

const (
	Stressed    Category = "stressed"
	Anxious     Category = "anxious"
	Sad         Category = "sad"
	Overwhelmed Category = "overwhelmed"
	Angry       Category = "angry"
	Excited     Category = "excited"
	Positive    Category = "positive"
	Neutral     Category = "neutral"
	Confused    Category = "confused"
	Grateful    Category = "grateful"
)

// Priority is the fixed tie-break ordering for category selection. When two
// categories score identically the earlier entry wins, so identical input
// always classifies identically.
var Priority = []Category{
	Stressed, Anxious, Sad, Overwhelmed, Angry,
	Excited, Positive, Neutral, Confused, Grateful,
}

// Valence groups categories by emotional polarity for sentiment alignment.
type Valence string

const (
	ValenceNegative Valence = "negative"
	ValencePositive Valence = "positive"
	ValenceNeutral  Valence = "neutral"
)

// Pattern describes how one emotion category is recognized in text.
type Pattern struct {
	Keywords     []string `yaml:"keywords"`
	Phrases      []string `yaml:"phrases"`
	Intensifiers []string `yaml:"intensifiers"`
	Weight       float64  `yaml:"weight"`
	Valence      Valence  `yaml:"valence"`
}

// CrisisTier partitions the crisis phrase set by severity.
type CrisisTier struct {
	Crisis   []string `yaml:"crisis"`
	Elevated []string `yaml:"elevated"`
}

// ValenceLexicon is the signed word-weight table for the sentiment scorer.
type ValenceLexicon struct {
	// Weights maps a token to its signed valence weight (roughly -4..+4).
	Weights map[string]float64 `yaml:"weights"`
	// Negators invert the sign of weighted tokens in the following window.
	Negators []string `yaml:"negators"`
	// Boosters scale the next weighted token up, dampeners scale it down.
	Boosters  []string `yaml:"boosters"`
	Dampeners []string `yaml:"dampeners"`
}

// Store is the loaded, immutable lexicon set.
type Store struct {
	emotions map[Category]Pattern
	valence  ValenceLexicon
	crisis   CrisisTier

	negators  map[string]bool
	boosters  map[string]bool
	dampeners map[string]bool
}

var (
	defaultStore *Store
	defaultErr   error
	loadOnce     sync.Once
)

// Default returns the process-wide store parsed from the embedded tables.
func Default() (*Store, error) {
	loadOnce.Do(func() {
		defaultStore, defaultErr = load()
	})
	return defaultStore, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded table as a
// programming error (tests, CLI startup).
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

func load() (*Store, error) {
	var emotions struct {
		Emotions map[Category]Pattern `yaml:"emotions"`
	}
	if err := yaml.Unmarshal(emotionsYAML, &emotions); err != nil {
		return nil, fmt.Errorf("parse emotion lexicon: %w", err)
	}

	var valence ValenceLexicon
	if err := yaml.Unmarshal(valenceYAML, &valence); err != nil {
		return nil, fmt.Errorf("parse valence lexicon: %w", err)
	}

	var crisis struct {
		Tiers CrisisTier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(crisisYAML, &crisis); err != nil {
		return nil, fmt.Errorf("parse crisis phrases: %w", err)
	}

	s := &Store{
		emotions:  emotions.Emotions,
		valence:   valence,
		crisis:    crisis.Tiers,
		negators:  toSet(valence.Negators),
		boosters:  toSet(valence.Boosters),
		dampeners: toSet(valence.Dampeners),
	}

	for _, cat := range Priority {
		if _, ok := s.emotions[cat]; !ok {
			return nil, fmt.Errorf("emotion lexicon missing category %q", cat)
		}
	}
	if len(s.valence.Weights) == 0 {
		return nil, fmt.Errorf("valence lexicon is empty")
	}
	if len(s.crisis.Crisis) == 0 {
		return nil, fmt.Errorf("crisis phrase set is empty")
	}
	return s, nil
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Pattern returns the recognition pattern for a category.
func (s *Store) Pattern(cat Category) (Pattern, bool) {
	p, ok := s.emotions[cat]
	return p, ok
}

// Weight returns the signed valence weight for a token, or 0.
func (s *Store) Weight(token string) float64 {
	return s.valence.Weights[token]
}

// IsNegator reports whether the token inverts following valence weights.
func (s *Store) IsNegator(token string) bool { return s.negators[token] }

// IsBooster reports whether the token amplifies the next weighted token.
func (s *Store) IsBooster(token string) bool { return s.boosters[token] }

// IsDampener reports whether the token attenuates the next weighted token.
func (s *Store) IsDampener(token string) bool { return s.dampeners[token] }

// CrisisPhrases returns the crisis-tier phrase list.
func (s *Store) CrisisPhrases() []string { return s.crisis.Crisis }

// ElevatedPhrases returns the elevated-tier phrase list.
func (s *Store) ElevatedPhrases() []string { return s.crisis.Elevated }

// ParseCategory maps a string to a known Category.
func ParseCategory(raw string) (Category, bool) {
	for _, cat := range Priority {
		if string(cat) == raw {
			return cat, true
		}
	}
	return Neutral, false
}
