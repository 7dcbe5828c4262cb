package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"
)

func buildPostAnalysisPrompt(req PostAnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimize this content for SEO with keyword %q:\n", req.Keyword)
	b.WriteString("- Maintain natural keyword density (1-3%)\n")
	b.WriteString("- Improve readability\n")
	b.WriteString("- Add relevant semantic keywords\n")
	b.WriteString("- Keep the same tone and style\n")
	fmt.Fprintf(&b, "- Current readability score: %.2f\n", req.ReadabilityScore)
	fmt.Fprintf(&b, "- Current keyword density: %.2f%%\n", req.KeywordDensity)
	fmt.Fprintf(&b, "- Current average sentence length: %.2f\n", req.AvgSentenceLength)
	fmt.Fprintf(&b, "- Current word count: %d\n", req.WordCount)
	if len(req.Issues) > 0 {
		issuesJSON, _ := json.Marshal(req.Issues)
		fmt.Fprintf(&b, "- Issues found during analysis: %s\n", issuesJSON)
	}
	b.WriteString(resultContract)
	fmt.Fprintf(&b, "\nContent:\n%s\n", req.Content)
	return b.String()
}

func buildDirectPrompt(req DirectRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimize this content for SEO with keyword %q:\n", req.Keyword)
	b.WriteString("- Maintain natural keyword density (1-3%)\n")
	b.WriteString("- Improve readability\n")
	b.WriteString("- Add relevant semantic keywords\n")
	fmt.Fprintf(&b, "- Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "- Target length: %d words\n", req.TargetLength)
	b.WriteString(resultContract)
	fmt.Fprintf(&b, "\nContent:\n%s\n", req.Content)
	return b.String()
}

const resultContract = `Return ONLY valid JSON like this:
{
    "optimized_content": "string",
    "improvements_done": ["string", "string"]
}
`
