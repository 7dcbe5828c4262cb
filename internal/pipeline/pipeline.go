// Package pipeline is the orchestrator: it owns the record lifecycle
// (processing → completed | failed), the two task chains, and the retry
// policy applied around every stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seopipe/internal/metrics"
	"seopipe/internal/model"
	"seopipe/internal/queue"
	"seopipe/internal/rewrite"
	"seopipe/internal/seo"
	"seopipe/internal/store"
)

// Stage names. Stage B of the analysis chain is enqueued by stage A only
// after the analysis write is durable.
const (
	StageAnalyze               = "analyze"
	StageOptimizeAfterAnalysis = "optimize_after_analysis"
	StageOptimize              = "optimize"
)

// Fetcher resolves a URL into analyzable content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Rewriter is the generative rewrite backend.
type Rewriter interface {
	PostAnalysisOptimize(ctx context.Context, req rewrite.PostAnalysisRequest) (*rewrite.Result, error)
	Optimize(ctx context.Context, req rewrite.DirectRequest) (*rewrite.Result, error)
}

// RecordStore provides the record operations the pipeline needs.
type RecordStore interface {
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	AtomicUpdate(ctx context.Context, id string, mutate func(*model.Record) error) (*model.Record, error)
}

// Pipeline executes stage messages against records.
type Pipeline struct {
	records  RecordStore
	fetcher  Fetcher
	rewriter Rewriter
	tasks    queue.Enqueuer
	retry    RetryPolicy
}

// New creates a pipeline with the given dependencies.
func New(records RecordStore, fetcher Fetcher, rewriter Rewriter, tasks queue.Enqueuer, retry RetryPolicy) *Pipeline {
	return &Pipeline{
		records:  records,
		fetcher:  fetcher,
		rewriter: rewriter,
		tasks:    tasks,
		retry:    retry,
	}
}

// Handle runs the stage named by msg with retry and failure conversion.
// Stage outcomes never propagate to the caller; the only observable effect
// of failure is the record's terminal status. An error is returned only for
// a message naming an unknown stage.
func (p *Pipeline) Handle(ctx context.Context, msg queue.Message) error {
	var handler func(ctx context.Context, id string) error
	switch msg.Stage {
	case StageAnalyze:
		handler = p.runAnalyze
	case StageOptimizeAfterAnalysis:
		handler = p.runOptimizeAfterAnalysis
	case StageOptimize:
		handler = p.runOptimize
	default:
		return fmt.Errorf("unknown stage %q", msg.Stage)
	}

	timer := prometheus.NewTimer(metrics.StageDuration.WithLabelValues(msg.Stage))
	defer timer.ObserveDuration()

	p.execute(ctx, msg.Stage, msg.RecordID, handler)
	return nil
}

// execute retries handler per the retry policy. A permanent failure or an
// exhausted retry budget converts the record to failed; nothing is re-raised.
func (p *Pipeline) execute(ctx context.Context, stage, id string, handler func(ctx context.Context, id string) error) {
	var lastErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.StageRetries.WithLabelValues(stage).Inc()
			if !sleep(ctx, p.retry.Backoff(attempt)) {
				return
			}
		}

		err := handler(ctx, id)
		if err == nil {
			metrics.StagesCompleted.WithLabelValues(stage).Inc()
			return
		}
		lastErr = err
		slog.Error("stage attempt failed",
			"stage", stage, "record_id", id,
			"attempt", attempt+1, "max_attempts", p.retry.MaxRetries+1,
			"error", err)

		if isPermanent(err) {
			break
		}
		if ctx.Err() != nil {
			// Shutdown mid-stage: leave the record as is, re-delivery will
			// finish the work.
			return
		}
	}

	metrics.StagesFailed.WithLabelValues(stage).Inc()
	slog.Error("stage failed, marking record failed", "stage", stage, "record_id", id, "error", lastErr)
	p.markFailed(ctx, id)
}

// isPermanent reports whether err must not be retried. Scoring-input
// violations cannot succeed on a later attempt; fetch and rewrite failures
// can.
func isPermanent(err error) bool {
	var invalid *seo.InvalidInputError
	return errors.As(err, &invalid)
}

func (p *Pipeline) markFailed(ctx context.Context, id string) {
	_, err := p.records.AtomicUpdate(ctx, id, func(r *model.Record) error {
		if r.IsTerminal() {
			return nil
		}
		r.MarkFailed()
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to mark record failed", "record_id", id, "error", err)
	}
}

// sleep waits for d or until ctx is done; returns false when interrupted.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// ---------------------------------------------------------------------------
// Stage A: analyze
// ---------------------------------------------------------------------------

func (p *Pipeline) runAnalyze(ctx context.Context, id string) error {
	rec, ok, err := p.loadFor(ctx, StageAnalyze, id, model.KindAnalysis)
	if !ok {
		return err
	}

	start := time.Now()

	content := rec.Analysis.InputContent
	kind := seo.InputPlain
	if rec.Analysis.InputURL != "" {
		kind = seo.InputHTML
		content, err = p.fetcher.Fetch(ctx, rec.Analysis.InputURL)
		if err != nil {
			return err
		}
	}

	result, err := seo.Analyze(content, rec.TargetKeyword, kind)
	if err != nil {
		return err
	}

	elapsed := time.Since(start).Milliseconds()
	if _, err := p.records.AtomicUpdate(ctx, id, func(r *model.Record) error {
		if r.IsTerminal() || r.Analysis == nil {
			return nil
		}
		r.Analysis.InputContent = content
		r.Analysis.WordCount = &result.WordCount
		r.Analysis.KeywordDensity = &result.KeywordDensity
		r.Analysis.AvgSentenceLength = &result.AvgSentenceLength
		r.Analysis.ReadabilityScore = &result.ReadabilityScore
		r.Analysis.SEOScore = &result.SEOScore
		r.Analysis.Issues = result.Issues
		r.ProcessingTimeMs = &elapsed
		return nil
	}); err != nil {
		return err
	}

	slog.Info("analysis persisted, chaining optimization",
		"record_id", id, "seo_score", result.SEOScore, "issues", len(result.Issues))
	return p.tasks.Enqueue(ctx, StageOptimizeAfterAnalysis, id)
}

// ---------------------------------------------------------------------------
// Stage B: optimize after analysis
// ---------------------------------------------------------------------------

func (p *Pipeline) runOptimizeAfterAnalysis(ctx context.Context, id string) error {
	rec, ok, err := p.loadFor(ctx, StageOptimizeAfterAnalysis, id, model.KindAnalysis)
	if !ok {
		return err
	}

	a := rec.Analysis
	req := rewrite.PostAnalysisRequest{
		Content: a.InputContent,
		Keyword: rec.TargetKeyword,
		Issues:  a.Issues,
	}
	if a.WordCount != nil {
		req.WordCount = *a.WordCount
	}
	if a.KeywordDensity != nil {
		req.KeywordDensity = *a.KeywordDensity
	}
	if a.AvgSentenceLength != nil {
		req.AvgSentenceLength = *a.AvgSentenceLength
	}
	if a.ReadabilityScore != nil {
		req.ReadabilityScore = *a.ReadabilityScore
	}

	res, err := p.rewriter.PostAnalysisOptimize(ctx, req)
	if err != nil {
		return err
	}
	if err := checkRewriteOutput(res); err != nil {
		return err
	}

	_, err = p.records.AtomicUpdate(ctx, id, func(r *model.Record) error {
		if r.IsTerminal() {
			return nil
		}
		r.OptimizedContent = &res.OptimizedContent
		r.OptimizedImprovements = res.Improvements
		r.MarkCompleted()
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("record completed", "record_id", id, "stage", StageOptimizeAfterAnalysis)
	return nil
}

// ---------------------------------------------------------------------------
// Direct-optimize chain (single stage)
// ---------------------------------------------------------------------------

func (p *Pipeline) runOptimize(ctx context.Context, id string) error {
	rec, ok, err := p.loadFor(ctx, StageOptimize, id, model.KindOptimization)
	if !ok {
		return err
	}

	start := time.Now()

	o := rec.Optimization
	res, err := p.rewriter.Optimize(ctx, rewrite.DirectRequest{
		Content:      o.InputContent,
		Keyword:      rec.TargetKeyword,
		Tone:         o.Tone,
		TargetLength: o.TargetLength,
	})
	if err != nil {
		return err
	}
	if err := checkRewriteOutput(res); err != nil {
		return err
	}

	density := seo.KeywordDensity(res.OptimizedContent, rec.TargetKeyword)
	elapsed := time.Since(start).Milliseconds()

	_, err = p.records.AtomicUpdate(ctx, id, func(r *model.Record) error {
		if r.IsTerminal() || r.Optimization == nil {
			return nil
		}
		r.OptimizedContent = &res.OptimizedContent
		r.OptimizedImprovements = res.Improvements
		r.Optimization.OptimizedKeywordDensity = &density
		r.ProcessingTimeMs = &elapsed
		r.MarkCompleted()
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("record completed", "record_id", id, "stage", StageOptimize)
	return nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// loadFor fetches the record and applies the shared stage guards: a missing
// record and a terminal record are both silent no-ops (at-least-once delivery
// makes duplicate messages normal), as is a message pointing at a record of
// the wrong kind. ok is false when the stage should stop; err is then nil for
// the no-op cases and non-nil for retryable store errors.
func (p *Pipeline) loadFor(ctx context.Context, stage, id, wantKind string) (*model.Record, bool, error) {
	rec, err := p.records.GetRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("record not found, skipping stage", "stage", stage, "record_id", id)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if rec.Kind != wantKind {
		slog.Warn("record kind mismatch, skipping stage", "stage", stage, "record_id", id, "kind", rec.Kind)
		return nil, false, nil
	}
	if rec.IsTerminal() {
		slog.Info("record already terminal, skipping stage", "stage", stage, "record_id", id, "status", rec.Status)
		return nil, false, nil
	}
	return rec, true, nil
}

// checkRewriteOutput rejects a structurally valid response whose content is
// empty: scoring empty text would fail its non-empty precondition, so this is
// treated as one more incomplete-response rewrite failure.
func checkRewriteOutput(res *rewrite.Result) error {
	if strings.TrimSpace(res.OptimizedContent) == "" {
		return &rewrite.Error{Reason: rewrite.ReasonIncomplete, Err: errors.New("optimized content is empty")}
	}
	return nil
}
