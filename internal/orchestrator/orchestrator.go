// Package orchestrator runs the full analysis pipeline: normalize, score
// sentiment, scan for crisis language, classify emotion, then produce a
// response through the configured backend chain with circuit-breaker
// failover. The template backend terminates every chain, so a request that
// reaches response generation always gets an answer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/havenlabs/solace/internal/backend"
	"github.com/havenlabs/solace/internal/coping"
	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/health"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/safety"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

// Strategy selects how response generation uses the backend chain.
type Strategy string

const (
	// StrategyRuleOnly answers from the template backend alone.
	StrategyRuleOnly Strategy = "rule_only"
	// StrategyGenerativeFirst tries generative backends in order and falls
	// back to the template backend when they are all down.
	StrategyGenerativeFirst Strategy = "generative_first"
	// StrategyGenerativeOnly expects a generative answer; the template
	// backend still terminates the chain, but reaching it is reported as a
	// configuration problem.
	StrategyGenerativeOnly Strategy = "generative_only"
)

// ResolveStrategy parses a strategy name.
func ResolveStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyRuleOnly, StrategyGenerativeFirst, StrategyGenerativeOnly:
		return Strategy(raw), nil
	case "":
		return StrategyGenerativeFirst, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", raw)
	}
}

// ErrAllBackendsExhausted signals that even the template backend produced no
// response. The template backend has no failure modes, so this error is
// unreachable outside of a broken build and is logged as fatal configuration.
var ErrAllBackendsExhausted = errors.New("all backends exhausted")

// Config holds the orchestrator tunables.
type Config struct {
	// Strategy selects the backend chain behavior.
	Strategy Strategy `mapstructure:"strategy" yaml:"strategy"`
	// AttemptTimeout bounds a single backend attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	// MaxTools caps the coping tool recommendations per response.
	MaxTools int `mapstructure:"max_tools" yaml:"max_tools"`
	// MaxInputLen truncates oversized input before analysis.
	MaxInputLen int `mapstructure:"max_input_len" yaml:"max_input_len"`
}

// DefaultConfig returns the stock orchestrator tuning.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyGenerativeFirst,
		AttemptTimeout: 10 * time.Second,
		MaxTools:       3,
		MaxInputLen:    4000,
	}
}

// ToolRef is the compact coping tool summary attached to a result.
type ToolRef struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Difficulty      string  `json:"difficulty"`
	Relevance       float64 `json:"relevance"`
}

// SafetyReport is the safety section of a result.
type SafetyReport struct {
	Severity              safety.Severity   `json:"severity"`
	InterventionTriggered bool              `json:"intervention_triggered"`
	Resources             []safety.Resource `json:"resources,omitempty"`
}

// Result is the full analysis outcome for one input.
type Result struct {
	RequestID         string                  `json:"request_id"`
	PrimaryEmotion    lexicon.Category        `json:"primary_emotion"`
	Confidence        float64                 `json:"confidence"`
	SecondaryEmotions []emotion.CategoryScore `json:"secondary_emotions,omitempty"`
	MatchedKeywords   []string                `json:"matched_keywords,omitempty"`
	SentimentScore    float64                 `json:"sentiment_score"`
	Intensity         sentiment.Intensity     `json:"intensity"`
	ResponseMessage   string                  `json:"response_message"`
	ResponseType      backend.ResponseType    `json:"response_type"`
	SourceBackend     string                  `json:"source_backend"`
	Model             string                  `json:"model,omitempty"`
	CopingTools       []ToolRef               `json:"coping_tools,omitempty"`
	CopingSuggestions []string                `json:"coping_suggestions,omitempty"`
	FollowUpQuestions []string                `json:"follow_up_questions,omitempty"`
	Safety            SafetyReport            `json:"safety"`
	BackendsAttempted []string                `json:"backends_attempted"`
	ProcessingTimeMS  int64                   `json:"processing_time_ms"`
}

// Engine wires the pipeline stages together. Safe for concurrent use.
type Engine struct {
	cfg Config

	scorer     *sentiment.Scorer
	classifier *emotion.Classifier
	detector   *safety.Detector
	validator  *safety.Validator
	monitor    *health.Monitor
	catalog    *coping.Catalog
	template   *backend.Template
	backends   []backend.Backend
}

// New builds an engine over the embedded lexicons with the given generative
// backend chain. The chain order is the failover order; the template backend
// is owned by the engine and always terminates the chain.
func New(cfg Config, backends []backend.Backend, monitor *health.Monitor) (*Engine, error) {
	return NewTuned(cfg, sentiment.DefaultConfig(), emotion.DefaultConfig(), backends, monitor)
}

// NewTuned is New with explicit sentiment and classifier tuning. Zero-valued
// tuning fields fall back to their defaults.
func NewTuned(cfg Config, sentCfg sentiment.Config, emoCfg emotion.Config, backends []backend.Backend, monitor *health.Monitor) (*Engine, error) {
	def := DefaultConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = def.AttemptTimeout
	}
	if cfg.MaxTools <= 0 {
		cfg.MaxTools = def.MaxTools
	}
	if cfg.MaxInputLen <= 0 {
		cfg.MaxInputLen = def.MaxInputLen
	}

	store, err := lexicon.Default()
	if err != nil {
		return nil, fmt.Errorf("load lexicons: %w", err)
	}
	catalog, err := coping.Default()
	if err != nil {
		return nil, fmt.Errorf("load coping catalog: %w", err)
	}
	if monitor == nil {
		monitor = health.NewMonitor(health.DefaultConfig())
	}

	return &Engine{
		cfg:        cfg,
		scorer:     sentiment.NewScorer(store, sentCfg),
		classifier: emotion.New(store, emoCfg),
		detector:   safety.NewDetector(store),
		validator:  safety.NewValidator(),
		monitor:    monitor,
		catalog:    catalog,
		template:   backend.NewTemplate(),
		backends:   backends,
	}, nil
}

// Monitor exposes the circuit breaker state for observability endpoints.
func (e *Engine) Monitor() *health.Monitor { return e.monitor }

// Catalog exposes the coping tool catalog.
func (e *Engine) Catalog() *coping.Catalog { return e.catalog }

// Process analyzes one input and produces the full result. Crisis inputs
// short-circuit to the fixed intervention response and never reach a
// generative backend.
func (e *Engine) Process(ctx context.Context, input string, reqCtx backend.Context) (*Result, error) {
	start := time.Now()

	input = clampInput(input, e.cfg.MaxInputLen)

	nt := text.Normalize(input)
	score := e.scorer.Score(nt)
	flag := e.detector.Scan(nt)
	res := e.classifier.Classify(nt, score)
	flag = e.detector.Assess(flag, &res, score)

	req := &backend.Request{
		Text:       input,
		Normalized: nt,
		Emotion:    &res,
		Sentiment:  score,
		Context:    reqCtx,
	}

	out := &Result{
		RequestID:         uuid.NewString(),
		PrimaryEmotion:    res.Primary,
		Confidence:        res.Confidence,
		SecondaryEmotions: res.Secondary,
		MatchedKeywords:   res.Matched,
		SentimentScore:    score.Compound,
		Intensity:         score.Intensity,
		BackendsAttempted: []string{},
		Safety: SafetyReport{
			Severity:              flag.Severity,
			InterventionTriggered: flag.Triggered,
			Resources:             safety.ResourcesFor(flag.Severity, res.Primary),
		},
	}

	if flag.Severity == safety.SeverityCrisis {
		cand := e.template.Crisis(req)
		out.ResponseMessage = cand.Message
		out.ResponseType = cand.Type
		out.SourceBackend = cand.Source
		out.FollowUpQuestions = e.template.CrisisFollowUps()
		out.ProcessingTimeMS = msSince(start)
		log.Warn().
			Str("request_id", out.RequestID).
			Msg("crisis language detected, intervention response issued")
		return out, nil
	}

	cand, attempted, err := e.respond(ctx, req)
	if err != nil {
		return nil, err
	}
	out.BackendsAttempted = attempted
	out.ResponseMessage = cand.Message
	out.ResponseType = cand.Type
	out.SourceBackend = cand.Source
	out.Model = cand.Model

	out.CopingTools = e.recommendTools(res.Primary)
	out.CopingSuggestions = e.template.Suggestions(res.Primary, score.Intensity, nt.Clean)
	out.FollowUpQuestions = e.template.FollowUps(res.Primary)
	out.ProcessingTimeMS = msSince(start)

	log.Debug().
		Str("request_id", out.RequestID).
		Str("emotion", string(res.Primary)).
		Str("source", out.SourceBackend).
		Int64("ms", out.ProcessingTimeMS).
		Msg("request processed")
	return out, nil
}

// respond walks the backend chain per the configured strategy. A backend
// whose breaker is open is skipped, not attempted; a rejected or failed
// attempt counts against its breaker.
func (e *Engine) respond(ctx context.Context, req *backend.Request) (*backend.Candidate, []string, error) {
	attempted := []string{}

	if e.cfg.Strategy != StrategyRuleOnly {
		for _, b := range e.orderedBackends(req.Context.PreferredBackend) {
			name := b.Name()
			if !b.Available() {
				continue
			}
			if !e.monitor.Allow(name) {
				log.Debug().Str("backend", name).Msg("circuit open, skipping backend")
				continue
			}
			attempted = append(attempted, name)

			cand, err := e.attempt(ctx, b, req)
			if err != nil {
				e.monitor.RecordFailure(name)
				log.Warn().Str("backend", name).Err(err).Msg("backend attempt failed")
				continue
			}
			if err := e.validator.Validate(cand.Message); err != nil {
				// A generated response that fails validation is a backend
				// failure for breaker purposes.
				e.monitor.RecordFailure(name)
				log.Warn().Str("backend", name).Err(err).Msg("generated response rejected")
				continue
			}
			e.monitor.RecordSuccess(name)
			return cand, attempted, nil
		}
	}

	if e.cfg.Strategy == StrategyGenerativeOnly {
		log.Error().Msg("generative_only strategy fell through to the template backend, check backend configuration")
	}

	attempted = append(attempted, e.template.Name())
	cand, err := e.template.Attempt(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("fatal configuration: template backend produced no response")
		return nil, attempted, fmt.Errorf("%w: template backend: %v", ErrAllBackendsExhausted, err)
	}
	return cand, attempted, nil
}

// attempt runs one backend under the per-attempt deadline. The call runs in
// its own goroutine with a buffered channel, so a result arriving after the
// deadline is discarded instead of leaking the goroutine.
func (e *Engine) attempt(ctx context.Context, b backend.Backend, req *backend.Request) (*backend.Candidate, error) {
	actx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	type outcome struct {
		cand *backend.Candidate
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		cand, err := b.Attempt(actx, req)
		ch <- outcome{cand, err}
	}()

	select {
	case <-actx.Done():
		return nil, fmt.Errorf("%w: %s exceeded %s", backend.ErrTimeout, b.Name(), e.cfg.AttemptTimeout)
	case o := <-ch:
		return o.cand, o.err
	}
}

func (e *Engine) orderedBackends(preferred string) []backend.Backend {
	if preferred == "" {
		return e.backends
	}
	ordered := make([]backend.Backend, 0, len(e.backends))
	for _, b := range e.backends {
		if b.Name() == preferred {
			ordered = append(ordered, b)
		}
	}
	for _, b := range e.backends {
		if b.Name() != preferred {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

func (e *Engine) recommendTools(cat lexicon.Category) []ToolRef {
	recs := e.catalog.Recommend(cat, coping.Options{Limit: e.cfg.MaxTools})
	out := make([]ToolRef, 0, len(recs))
	for _, r := range recs {
		out = append(out, ToolRef{
			ID:              r.Tool.ID,
			Name:            r.Tool.Name,
			Type:            string(r.Tool.Type),
			Description:     r.Tool.Description,
			DurationMinutes: r.Tool.DurationMinutes,
			Difficulty:      string(r.Tool.Difficulty),
			Relevance:       r.Relevance,
		})
	}
	return out
}

// clampInput truncates oversized input without splitting a multi-byte rune,
// so clamped text stays valid UTF-8 for the generative prompts.
func clampInput(input string, max int) string {
	if len(input) <= max {
		return input
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}

func msSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
