// Package rewrite is the boundary to the generative rewrite backend. The
// backend is an opaque text-completion service expected to answer with JSON
// {"optimized_content": string, "improvements_done": [string]}.
package rewrite

import (
	"fmt"

	"seopipe/internal/model"
)

// Result is the structured output of a rewrite call.
type Result struct {
	OptimizedContent string   `json:"optimized_content"`
	Improvements     []string `json:"improvements_done"`
}

// PostAnalysisRequest carries the original content plus the metrics computed
// by the analyze stage.
type PostAnalysisRequest struct {
	Content           string
	Keyword           string
	WordCount         int
	KeywordDensity    float64
	AvgSentenceLength float64
	ReadabilityScore  float64
	Issues            map[model.IssueCode]model.Issue
}

// DirectRequest rewrites content to a target tone and length without a prior
// analysis step.
type DirectRequest struct {
	Content      string
	Keyword      string
	Tone         string
	TargetLength int
}

// Reason distinguishes rewrite failure sub-cases in diagnostics. All of them
// are retryable; the pipeline does not treat them differently.
type Reason string

const (
	ReasonTransport   Reason = "transport"
	ReasonUnparseable Reason = "unparseable"
	ReasonIncomplete  Reason = "incomplete"
)

// Error is a rewrite failure with its sub-case.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rewrite (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
