// Package seo implements the deterministic scoring engine: word count,
// keyword density, sentence length, readability, structural issue detection
// and the composite score. All functions are pure; no I/O happens here.
package seo

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"seopipe/internal/model"
)

// InputKind selects how the content is interpreted before metrics run.
type InputKind string

const (
	InputHTML  InputKind = "html"
	InputPlain InputKind = "plain"
)

// InvalidInputError reports a precondition violation naming the offending
// field. It is a permanent failure: the pipeline never retries it.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Result holds everything Analyze computes.
type Result struct {
	InputKind          InputKind                       `json:"input_kind"`
	WordCount          int                             `json:"word_count"`
	KeywordDensity     float64                         `json:"keyword_density"`
	Headings           map[string][]string             `json:"headings"`
	HasMetaDescription *bool                           `json:"has_meta_description,omitempty"`
	ReadabilityScore   float64                         `json:"readability_score"`
	AvgSentenceLength  float64                         `json:"avg_sentence_length"`
	SEOScore           float64                         `json:"seo_score"`
	Issues             map[model.IssueCode]model.Issue `json:"issues"`
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Analyze computes all metrics for the given content and keyword. The keyword
// comparison is case-insensitive; for HTML input the markup is stripped and
// whitespace collapsed before any metric runs.
func Analyze(content, keyword string, kind InputKind) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &InvalidInputError{Field: "content", Reason: "must be non-empty"}
	}
	if strings.TrimSpace(keyword) == "" {
		return nil, &InvalidInputError{Field: "keyword", Reason: "must be non-empty"}
	}
	if kind != InputHTML && kind != InputPlain {
		return nil, &InvalidInputError{Field: "input_kind", Reason: fmt.Sprintf("must be %q or %q", InputHTML, InputPlain)}
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	text := content
	headings := map[string][]string{}
	var hasMeta *bool

	if kind == InputHTML {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return nil, &InvalidInputError{Field: "content", Reason: "not parseable as HTML"}
		}
		headings = extractHeadings(doc)
		meta := hasMetaDescription(doc)
		hasMeta = &meta
		text = extractText(doc)
	}

	density := KeywordDensity(text, keyword)
	readability := round2(fleschReadingEase(text))

	issues := generateIssues(kind, density, readability, headings, hasMeta)

	return &Result{
		InputKind:          kind,
		WordCount:          len(strings.Fields(text)),
		KeywordDensity:     density,
		Headings:           headings,
		HasMetaDescription: hasMeta,
		ReadabilityScore:   readability,
		AvgSentenceLength:  avgSentenceLength(text),
		SEOScore:           CalculateScore(issues),
		Issues:             issues,
	}, nil
}

// KeywordDensity returns the percentage of tokens in text that exactly equal
// the lowercased keyword, rounded to 2 decimals. Tokens are whitespace
// delimited; substring occurrences do not count.
func KeywordDensity(text, keyword string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	count := 0
	for _, w := range words {
		if w == keyword {
			count++
		}
	}
	return round2(float64(count) / float64(len(words)) * 100)
}

// avgSentenceLength splits text on runs of sentence terminators, drops
// whitespace-only fragments and returns the mean token count per fragment.
func avgSentenceLength(text string) float64 {
	fragments := sentenceSplit.Split(text, -1)
	total, n := 0, 0
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		total += len(strings.Fields(f))
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(float64(total) / float64(n))
}

// extractText strips all markup from the document and collapses whitespace.
// Script, style and noscript contents are not analyzable text and are skipped.
func extractText(doc *goquery.Document) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// extractHeadings returns the ordered text content of H1/H2/H3 elements,
// grouped by level. All three keys are always present.
func extractHeadings(doc *goquery.Document) map[string][]string {
	headings := map[string][]string{"h1": {}, "h2": {}, "h3": {}}
	for _, level := range []string{"h1", "h2", "h3"} {
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			headings[level] = append(headings[level], strings.TrimSpace(s.Text()))
		})
	}
	return headings
}

// hasMetaDescription reports whether a non-empty meta description tag exists.
func hasMetaDescription(doc *goquery.Document) bool {
	content, exists := doc.Find(`meta[name="description"]`).Attr("content")
	return exists && strings.TrimSpace(content) != ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
