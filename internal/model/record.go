package model

import "time"

// Record kind constants
const (
	KindAnalysis     = "analysis"
	KindOptimization = "optimization"
)

// Record status constants. Status only moves forward: a record starts in
// processing and ends in exactly one of completed or failed.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Tones accepted for optimization records.
var ValidTones = []string{
	"professional",
	"casual",
	"persuasive",
	"informative",
	"authoritative",
	"friendly",
	"formal",
	"conversational",
}

// IsValidTone reports whether tone is one of the accepted tone values.
func IsValidTone(tone string) bool {
	for _, t := range ValidTones {
		if t == tone {
			return true
		}
	}
	return false
}

// Record is a unit of work tracked through the pipeline. The common header is
// shared by both variants; exactly one of Analysis or Optimization is set,
// matching Kind.
type Record struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	TargetKeyword string `json:"target_keyword"`

	OptimizedContent      *string  `json:"optimized_content,omitempty"`
	OptimizedImprovements []string `json:"optimized_improvements,omitempty"`

	ProcessingTimeMs *int64  `json:"processing_time_ms,omitempty"`
	CreatedAt        string  `json:"created_at"`
	CompletedAt      *string `json:"completed_at,omitempty"`

	Analysis     *AnalysisPayload     `json:"analysis,omitempty"`
	Optimization *OptimizationPayload `json:"optimization,omitempty"`
}

// AnalysisPayload holds the analysis-variant fields. At creation exactly one
// of InputContent/InputURL is non-empty; after the analyze stage resolves the
// URL, InputContent always holds the analyzable text. Metric fields stay nil
// until the scoring engine has run.
type AnalysisPayload struct {
	InputContent string `json:"input_content,omitempty"`
	InputURL     string `json:"input_url,omitempty"`

	WordCount         *int               `json:"word_count,omitempty"`
	KeywordDensity    *float64           `json:"keyword_density,omitempty"`
	AvgSentenceLength *float64           `json:"avg_sentence_length,omitempty"`
	ReadabilityScore  *float64           `json:"readability_score,omitempty"`
	SEOScore          *float64           `json:"seo_score,omitempty"`
	Issues            map[IssueCode]Issue `json:"issues,omitempty"`
}

// OptimizationPayload holds the optimization-variant fields.
type OptimizationPayload struct {
	InputContent string `json:"input_content"`
	TargetLength int    `json:"target_length"`
	Tone         string `json:"tone"`

	OptimizedKeywordDensity *float64 `json:"optimized_keyword_density,omitempty"`
}

// IsTerminal reports whether the record reached a final state.
func (r *Record) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// MarkCompleted transitions the record to completed and stamps CompletedAt.
func (r *Record) MarkCompleted() {
	r.Status = StatusCompleted
	now := Now()
	r.CompletedAt = &now
}

// MarkFailed transitions the record to failed and stamps CompletedAt.
func (r *Record) MarkFailed() {
	r.Status = StatusFailed
	now := Now()
	r.CompletedAt = &now
}

// Now returns the current UTC time in the canonical timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewAnalysisRecord creates an analysis record in processing state. Exactly
// one of url/content should be non-empty; the API boundary enforces that
// before the record exists.
func NewAnalysisRecord(id, url, content, targetKeyword string) Record {
	return Record{
		ID:            id,
		Kind:          KindAnalysis,
		Status:        StatusProcessing,
		TargetKeyword: targetKeyword,
		CreatedAt:     Now(),
		Analysis: &AnalysisPayload{
			InputContent: content,
			InputURL:     url,
		},
	}
}

// NewOptimizationRecord creates an optimization record in processing state.
func NewOptimizationRecord(id, content, targetKeyword string, targetLength int, tone string) Record {
	return Record{
		ID:            id,
		Kind:          KindOptimization,
		Status:        StatusProcessing,
		TargetKeyword: targetKeyword,
		CreatedAt:     Now(),
		Optimization: &OptimizationPayload{
			InputContent: content,
			TargetLength: targetLength,
			Tone:         tone,
		},
	}
}
