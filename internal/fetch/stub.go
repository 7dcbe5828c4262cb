package fetch

import "context"

// StubFetcher returns canned page content (for development/testing).
type StubFetcher struct{}

func (f *StubFetcher) Fetch(_ context.Context, url string) (string, error) {
	return "<h1>Stub page for " + url + "</h1>" +
		"<h2>What this page covers</h2>" +
		"<p>This is stub page text. It talks about software engineering, system design, and writing content that reads well.</p>" +
		"<p>Short sentences help. So do concrete examples. Readers skim, so the keyword should appear early and naturally.</p>", nil
}
