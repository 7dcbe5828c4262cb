package seo

import (
	"math"

	"seopipe/internal/model"
)

// issueCatalog maps every issue code to its fixed severity, message and
// suggestion.
var issueCatalog = map[model.IssueCode]model.Issue{
	model.IssueNoH1Tag: {
		Severity:   model.SeverityHigh,
		Message:    "Missing H1 tag.",
		Suggestion: "Add an H1 tag containing the target keyword.",
	},
	model.IssueMissingMetaDescription: {
		Severity:   model.SeverityMedium,
		Message:    "Meta description is missing.",
		Suggestion: "Add a meta description of 150-160 characters containing the target keyword.",
	},
	model.IssueKeywordDensityLow: {
		Severity:   model.SeverityMedium,
		Message:    "Keyword density is too low.",
		Suggestion: "Add the target keyword naturally a few more times.",
	},
	model.IssueKeywordDensityHigh: {
		Severity:   model.SeverityMedium,
		Message:    "Keyword density is too high.",
		Suggestion: "Reduce keyword usage to avoid keyword stuffing.",
	},
	model.IssueMissingSubheadings: {
		Severity:   model.SeverityLow,
		Message:    "No subheadings detected.",
		Suggestion: "Break content into sections using H2/H3 tags.",
	},
	model.IssueReadabilityPoor: {
		Severity:   model.SeverityMedium,
		Message:    "Content readability is poor.",
		Suggestion: "Shorten sentences and simplify language.",
	},
}

// severityPenalties is the per-issue score deduction by severity.
var severityPenalties = map[string]float64{
	model.SeverityLow:    3,
	model.SeverityMedium: 7,
	model.SeverityHigh:   15,
}

// generateIssues evaluates the rule set against the computed metrics. The
// density checks are mutually exclusive; all other rules are independent.
func generateIssues(kind InputKind, density, readability float64, headings map[string][]string, hasMeta *bool) map[model.IssueCode]model.Issue {
	issues := map[model.IssueCode]model.Issue{}

	if density < 0.5 {
		issues[model.IssueKeywordDensityLow] = issueCatalog[model.IssueKeywordDensityLow]
	} else if density > 5 {
		issues[model.IssueKeywordDensityHigh] = issueCatalog[model.IssueKeywordDensityHigh]
	}

	if kind == InputHTML {
		if len(headings["h1"]) == 0 {
			issues[model.IssueNoH1Tag] = issueCatalog[model.IssueNoH1Tag]
		}
		if hasMeta == nil || !*hasMeta {
			issues[model.IssueMissingMetaDescription] = issueCatalog[model.IssueMissingMetaDescription]
		}
		if len(headings["h2"]) == 0 && len(headings["h3"]) == 0 {
			issues[model.IssueMissingSubheadings] = issueCatalog[model.IssueMissingSubheadings]
		}
	}

	if readability < 50 {
		issues[model.IssueReadabilityPoor] = issueCatalog[model.IssueReadabilityPoor]
	}

	return issues
}

// CalculateScore starts at 100, subtracts the severity penalty for every
// detected issue and clamps the result to [0, 100].
func CalculateScore(issues map[model.IssueCode]model.Issue) float64 {
	score := 100.0
	for _, issue := range issues {
		score -= severityPenalties[issue.Severity]
	}
	return math.Max(0, math.Min(100, score))
}
