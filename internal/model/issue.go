package model

// IssueCode identifies a rule-detected content deficiency.
type IssueCode string

// Issue codes emitted by the scoring engine.
const (
	IssueNoH1Tag                IssueCode = "no_h1_tag"
	IssueMissingMetaDescription IssueCode = "missing_meta_description"
	IssueKeywordDensityLow      IssueCode = "keyword_density_low"
	IssueKeywordDensityHigh     IssueCode = "keyword_density_high"
	IssueMissingSubheadings     IssueCode = "missing_subheadings"
	IssueReadabilityPoor        IssueCode = "readability_poor"
)

// Severity levels for issues.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Issue describes a single detected deficiency.
type Issue struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}
