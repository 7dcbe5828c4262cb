package rewrite

import (
	"context"
	"fmt"
	"strings"
)

// StubClient returns canned rewrite results (for development/testing).
type StubClient struct{}

func (s *StubClient) PostAnalysisOptimize(_ context.Context, req PostAnalysisRequest) (*Result, error) {
	return &Result{
		OptimizedContent: stubContent(req.Content, req.Keyword),
		Improvements: []string{
			"Raised keyword density into the 1-3% range",
			"Shortened long sentences to improve readability",
			"Added semantically related terms around the keyword",
		},
	}, nil
}

func (s *StubClient) Optimize(_ context.Context, req DirectRequest) (*Result, error) {
	return &Result{
		OptimizedContent: stubContent(req.Content, req.Keyword),
		Improvements: []string{
			fmt.Sprintf("Rewrote content in a %s tone", req.Tone),
			fmt.Sprintf("Adjusted length toward %d words", req.TargetLength),
		},
	}, nil
}

func stubContent(content, keyword string) string {
	return strings.TrimSpace(content) + " " + keyword + " matters, and this rewrite keeps " + keyword + " front and center."
}
