// Package text provides input normalization for the classification pipeline.
package text

import (
	"strings"
	"unicode"
)

// contractions maps common contractions to their expanded forms so lexicon
// entries can be stored apostrophe-free. Applied after lowercasing, before
// punctuation stripping.
var contractions = map[string]string{
	"can't":     "cannot",
	"cant":      "cannot",
	"won't":     "will not",
	"wont":      "will not",
	"shan't":    "shall not",
	"i'm":       "i am",
	"i've":      "i have",
	"i'll":      "i will",
	"i'd":       "i would",
	"it's":      "it is",
	"that's":    "that is",
	"there's":   "there is",
	"what's":    "what is",
	"let's":     "let us",
	"don't":     "do not",
	"dont":      "do not",
	"doesn't":   "does not",
	"didn't":    "did not",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"haven't":   "have not",
	"hasn't":    "has not",
	"hadn't":    "had not",
	"wouldn't":  "would not",
	"couldn't":  "could not",
	"shouldn't": "should not",
	"ain't":     "am not",
	"you're":    "you are",
	"you've":    "you have",
	"they're":   "they are",
	"we're":     "we are",
}

// Normalized is the immutable normalized form of one input, created per
// request and discarded after processing.
type Normalized struct {
	// Original is the raw input as received.
	Original string
	// Clean is lowercased, contraction-expanded, punctuation-stripped, and
	// whitespace-collapsed. All lexicon matching runs against Clean.
	Clean string
	// Tokens is Clean split on whitespace.
	Tokens []string
}

// Empty reports whether the input normalized to nothing.
func (n Normalized) Empty() bool { return len(n.Tokens) == 0 }

// Normalize produces the canonical matching form of raw input. Pure function,
// no failure modes; empty input yields an empty Normalized.
func Normalize(raw string) Normalized {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var sb strings.Builder
	sb.Grow(len(lower))
	for _, word := range strings.Fields(lower) {
		if expanded, ok := contractions[strings.Trim(word, ".,!?;:\"")]; ok {
			word = expanded
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}

	clean := stripPunct(sb.String())
	tokens := strings.Fields(clean)

	return Normalized{
		Original: raw,
		Clean:    strings.Join(tokens, " "),
		Tokens:   tokens,
	}
}

// stripPunct replaces anything that is not a letter, digit, or space with a
// space, mirroring a `[^\w\s] -> " "` substitution.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return ' '
	}, s)
}
