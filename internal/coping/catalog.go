// Package coping holds the coping tool catalog and the recommender that
// picks tools for a classified emotion. The catalog is embedded YAML, loaded
// once, and immutable afterwards.
package coping

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/havenlabs/solace/internal/lexicon"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

// Type groups tools by technique family.
type Type string

const (
	TypeBreathing   Type = "breathing"
	TypeGrounding   Type = "grounding"
	TypeMindfulness Type = "mindfulness"
	TypeJournaling  Type = "journaling"
	TypePhysical    Type = "physical"
	TypeCognitive   Type = "cognitive"
)

// Difficulty is the effort level of a tool.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TargetGeneral marks a tool as applicable to any emotion.
const TargetGeneral = "general"

// Step is one timed step of a guided session.
type Step struct {
	Step        int    `yaml:"step" json:"step"`
	Action      string `yaml:"action" json:"action"`
	Duration    int    `yaml:"duration" json:"duration_seconds"`
	Instruction string `yaml:"instruction" json:"instruction"`
}

// Tool is one coping technique in the catalog.
type Tool struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	Type            Type       `yaml:"type" json:"type"`
	Description     string     `yaml:"description" json:"description"`
	Targets         []string   `yaml:"targets" json:"targets"`
	DurationMinutes int        `yaml:"duration_minutes" json:"duration_minutes"`
	Difficulty      Difficulty `yaml:"difficulty" json:"difficulty"`
	Instructions    []string   `yaml:"instructions" json:"instructions"`
	Benefits        []string   `yaml:"benefits" json:"benefits"`
	Requirements    []string   `yaml:"requirements" json:"requirements"`
	Interactive     bool       `yaml:"interactive" json:"interactive"`
	GuidedSteps     []Step     `yaml:"guided_steps,omitempty" json:"guided_steps,omitempty"`
}

// targetsCategory reports whether the tool directly targets the category.
func (t Tool) targetsCategory(cat lexicon.Category) bool {
	for _, target := range t.Targets {
		if target == string(cat) {
			return true
		}
	}
	return false
}

// general reports whether the tool applies to any emotion.
func (t Tool) general() bool {
	for _, target := range t.Targets {
		if target == TargetGeneral {
			return true
		}
	}
	return false
}

// Catalog is the loaded tool set.
type Catalog struct {
	tools []Tool
	byID  map[string]Tool
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	loadOnce       sync.Once
)

// Default returns the process-wide catalog parsed from the embedded YAML.
func Default() (*Catalog, error) {
	loadOnce.Do(func() {
		defaultCatalog, defaultErr = load()
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded catalog as
// a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func load() (*Catalog, error) {
	var doc struct {
		Tools []Tool `yaml:"tools"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse coping catalog: %w", err)
	}
	if len(doc.Tools) == 0 {
		return nil, fmt.Errorf("coping catalog is empty")
	}

	byID := make(map[string]Tool, len(doc.Tools))
	for _, t := range doc.Tools {
		if t.ID == "" {
			return nil, fmt.Errorf("coping tool %q has no id", t.Name)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate coping tool id %q", t.ID)
		}
		byID[t.ID] = t
	}
	return &Catalog{tools: doc.Tools, byID: byID}, nil
}

// All returns every tool in catalog order.
func (c *Catalog) All() []Tool {
	return append([]Tool(nil), c.tools...)
}

// ByID returns a single tool by identifier.
func (c *Catalog) ByID(id string) (Tool, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ByType returns every tool of the given technique family.
func (c *Catalog) ByType(tt Type) []Tool {
	var out []Tool
	for _, t := range c.tools {
		if t.Type == tt {
			out = append(out, t)
		}
	}
	return out
}

// Quick returns tools that finish within maxMinutes.
func (c *Catalog) Quick(maxMinutes int) []Tool {
	var out []Tool
	for _, t := range c.tools {
		if t.DurationMinutes <= maxMinutes {
			out = append(out, t)
		}
	}
	return out
}

// Recommendation pairs a tool with its relevance to the requested emotion.
type Recommendation struct {
	Tool      Tool    `json:"tool"`
	Relevance float64 `json:"relevance"`
}

// Options filter and bound a recommendation request. Zero values mean no
// constraint; Limit defaults to 3.
type Options struct {
	MaxDuration    int
	Difficulty     Difficulty
	PreferredTypes []Type
	Limit          int
}

// Recommend returns tools for the category, best first. Direct targets rank
// above general-purpose tools; ties break by shorter duration, then by id,
// so identical requests always produce identical recommendations.
func (c *Catalog) Recommend(cat lexicon.Category, opts Options) []Recommendation {
	limit := opts.Limit
	if limit <= 0 {
		limit = 3
	}

	var out []Recommendation
	for _, t := range c.tools {
		direct := t.targetsCategory(cat)
		if !direct && !t.general() {
			continue
		}
		if opts.MaxDuration > 0 && t.DurationMinutes > opts.MaxDuration {
			continue
		}
		if opts.Difficulty != "" && t.Difficulty != opts.Difficulty {
			continue
		}
		if len(opts.PreferredTypes) > 0 && !containsType(opts.PreferredTypes, t.Type) {
			continue
		}
		rel := 0.5
		if direct {
			rel = 1.0
		}
		out = append(out, Recommendation{Tool: t, Relevance: rel})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		if out[i].Tool.DurationMinutes != out[j].Tool.DurationMinutes {
			return out[i].Tool.DurationMinutes < out[j].Tool.DurationMinutes
		}
		return out[i].Tool.ID < out[j].Tool.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsType(types []Type, tt Type) bool {
	for _, t := range types {
		if t == tt {
			return true
		}
	}
	return false
}

// Session is a started guided run of an interactive tool.
type Session struct {
	ID                string    `json:"session_id"`
	ToolID            string    `json:"tool_id"`
	ToolName          string    `json:"tool_name"`
	TotalSteps        int       `json:"total_steps"`
	EstimatedDuration int       `json:"estimated_duration_minutes"`
	Steps             []Step    `json:"steps"`
	CreatedAt         time.Time `json:"created_at"`
}

// StartSession creates a guided session for an interactive tool with guided
// steps, or an error for tools that cannot be run interactively.
func (c *Catalog) StartSession(toolID string) (*Session, error) {
	t, ok := c.byID[toolID]
	if !ok {
		return nil, fmt.Errorf("unknown coping tool %q", toolID)
	}
	if !t.Interactive || len(t.GuidedSteps) == 0 {
		return nil, fmt.Errorf("coping tool %q has no guided session", toolID)
	}
	return &Session{
		ID:                uuid.NewString(),
		ToolID:            t.ID,
		ToolName:          t.Name,
		TotalSteps:        len(t.GuidedSteps),
		EstimatedDuration: t.DurationMinutes,
		Steps:             append([]Step(nil), t.GuidedSteps...),
		CreatedAt:         time.Now().UTC(),
	}, nil
}
