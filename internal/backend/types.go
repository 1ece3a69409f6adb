// Package backend defines the response backends the orchestrator fails over
// between: generative adapters for Gemini, OpenAI, and Ollama, plus the
// deterministic template backend that always succeeds. Adapters share one
// interface so the orchestrator treats them uniformly.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

// ResponseType labels how a response was produced.
type ResponseType string

const (
	TypeAISupportive       ResponseType = "ai_supportive"
	TypeTemplateSupportive ResponseType = "template_supportive"
	TypeCrisisIntervention ResponseType = "crisis_intervention"
)

// Context carries optional request metadata a backend may use to shape its
// response. All fields are optional.
type Context struct {
	TimeOfDay        string `json:"time_of_day,omitempty"`
	PriorSessions    int    `json:"prior_sessions,omitempty"`
	PreferredBackend string `json:"preferred_backend,omitempty"`
}

// Request is the classified input handed to a backend.
type Request struct {
	Text       string
	Normalized text.Normalized
	Emotion    *emotion.Result
	Sentiment  sentiment.Score
	Context    Context
}

// Candidate is one backend's proposed response.
type Candidate struct {
	Message string
	Type    ResponseType
	Source  string
	Model   string
	Latency time.Duration
}

// Backend produces a supportive response for a classified request.
type Backend interface {
	// Attempt generates a response candidate. It must respect ctx
	// cancellation and return quickly once the deadline passes.
	Attempt(ctx context.Context, req *Request) (*Candidate, error)

	// Name returns the backend identifier used in config and breaker state.
	Name() string

	// Available reports whether the backend is configured to run at all.
	Available() bool
}

// Sentinel errors shared by the adapters.
var (
	// ErrUnavailable means the backend is not configured (missing key,
	// unset endpoint) and cannot attempt the request.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout means the backend did not answer within the deadline.
	ErrTimeout = errors.New("backend timed out")

	// ErrTransport wraps network and protocol failures.
	ErrTransport = errors.New("backend transport error")

	// ErrEmptyResponse means the backend answered with no usable text.
	ErrEmptyResponse = errors.New("backend returned empty response")
)
