package seo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seopipe/internal/model"
)

func TestKeywordDensity(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    float64
	}{
		{"two of three", "go go rust", "go", 66.67},
		{"three of five", "go go go rust java", "go", 60.0},
		{"case insensitive", "Go GO go", "go", 100.0},
		{"punctuation sticks to token", "go, go", "go", 50.0},
		{"no match", "rust java python", "go", 0.0},
		{"empty text", "", "go", 0.0},
		{"multi word keyword never matches tokens", "machine learning is machine learning", "machine learning", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordDensity(tt.text, tt.keyword))
		})
	}
}

func TestAvgSentenceLength(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"two sentences", "One two three. Four five.", 2.5},
		{"no terminator is one sentence", "one two three", 3.0},
		{"trailing terminators ignored", "One two!!! Three four?", 2.0},
		{"blank fragments dropped", "One. . Two.", 1.0},
		{"only terminators", "...", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, avgSentenceLength(tt.text))
		})
	}
}

func TestAnalyze_Plain(t *testing.T) {
	res, err := Analyze("go is fun and fast", "go", InputPlain)
	require.NoError(t, err)

	assert.Equal(t, InputPlain, res.InputKind)
	assert.Equal(t, 5, res.WordCount)
	assert.Equal(t, 20.0, res.KeywordDensity)
	assert.Nil(t, res.HasMetaDescription)
	assert.Empty(t, res.Headings["h1"])

	// Plain input never triggers structural rules.
	assert.NotContains(t, res.Issues, model.IssueNoH1Tag)
	assert.NotContains(t, res.Issues, model.IssueMissingMetaDescription)
	assert.NotContains(t, res.Issues, model.IssueMissingSubheadings)
}

func TestAnalyze_HTML(t *testing.T) {
	page := `<html><head><meta name="description" content="A page about go."></head><body>
<h1>Go</h1><h2>Why go</h2><p>go is fun and go is fast.</p>
<script>var x = 1;</script>
</body></html>`

	res, err := Analyze(page, "go", InputHTML)
	require.NoError(t, err)

	assert.Equal(t, InputHTML, res.InputKind)
	// "Go" + "Why go" + the paragraph; script text is excluded.
	assert.Equal(t, 10, res.WordCount)
	assert.Equal(t, 40.0, res.KeywordDensity)
	assert.Equal(t, []string{"Go"}, res.Headings["h1"])
	assert.Equal(t, []string{"Why go"}, res.Headings["h2"])
	assert.Empty(t, res.Headings["h3"])
	require.NotNil(t, res.HasMetaDescription)
	assert.True(t, *res.HasMetaDescription)

	assert.Contains(t, res.Issues, model.IssueKeywordDensityHigh)
	assert.NotContains(t, res.Issues, model.IssueKeywordDensityLow)
	assert.NotContains(t, res.Issues, model.IssueNoH1Tag)
	assert.Equal(t, 93.0, res.SEOScore)
}

func TestAnalyze_HTMLStructuralIssues(t *testing.T) {
	res, err := Analyze("<p>hello world</p>", "absent", InputHTML)
	require.NoError(t, err)

	assert.Contains(t, res.Issues, model.IssueNoH1Tag)
	assert.Contains(t, res.Issues, model.IssueMissingMetaDescription)
	assert.Contains(t, res.Issues, model.IssueMissingSubheadings)
	assert.Contains(t, res.Issues, model.IssueKeywordDensityLow)
	// 100 - 15 (high) - 7 - 7 (medium) - 3 (low)
	assert.Equal(t, 68.0, res.SEOScore)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		keyword   string
		kind      InputKind
		wantField string
	}{
		{"empty content", "", "go", InputPlain, "content"},
		{"whitespace content", "   ", "go", InputPlain, "content"},
		{"empty keyword", "some text", "", InputPlain, "keyword"},
		{"bad kind", "some text", "go", InputKind("xml"), "input_kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.content, tt.keyword, tt.kind)
			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.wantField, invalid.Field)
		})
	}
}

func TestGenerateIssues_DensityMutuallyExclusive(t *testing.T) {
	low := generateIssues(InputPlain, 0.3, 80, nil, nil)
	assert.Contains(t, low, model.IssueKeywordDensityLow)
	assert.NotContains(t, low, model.IssueKeywordDensityHigh)

	high := generateIssues(InputPlain, 6.2, 80, nil, nil)
	assert.Contains(t, high, model.IssueKeywordDensityHigh)
	assert.NotContains(t, high, model.IssueKeywordDensityLow)

	ok := generateIssues(InputPlain, 2.0, 80, nil, nil)
	assert.NotContains(t, ok, model.IssueKeywordDensityLow)
	assert.NotContains(t, ok, model.IssueKeywordDensityHigh)
}

func TestGenerateIssues_Boundaries(t *testing.T) {
	// 0.5 and 5 are inside the acceptable band.
	assert.NotContains(t, generateIssues(InputPlain, 0.5, 80, nil, nil), model.IssueKeywordDensityLow)
	assert.NotContains(t, generateIssues(InputPlain, 5.0, 80, nil, nil), model.IssueKeywordDensityHigh)
	// 50 is acceptable readability.
	assert.NotContains(t, generateIssues(InputPlain, 2.0, 50, nil, nil), model.IssueReadabilityPoor)
	assert.Contains(t, generateIssues(InputPlain, 2.0, 49.99, nil, nil), model.IssueReadabilityPoor)
}

func TestCalculateScore(t *testing.T) {
	assert.Equal(t, 100.0, CalculateScore(nil))

	twoMedium := map[model.IssueCode]model.Issue{
		model.IssueKeywordDensityLow:      issueCatalog[model.IssueKeywordDensityLow],
		model.IssueMissingMetaDescription: issueCatalog[model.IssueMissingMetaDescription],
	}
	assert.Equal(t, 86.0, CalculateScore(twoMedium))
}

func TestCalculateScore_ClampsAtZero(t *testing.T) {
	issues := map[model.IssueCode]model.Issue{}
	for i := 0; i < 8; i++ {
		issues[model.IssueCode(string(rune('a'+i)))] = model.Issue{Severity: model.SeverityHigh}
	}
	assert.Equal(t, 0.0, CalculateScore(issues))
}
