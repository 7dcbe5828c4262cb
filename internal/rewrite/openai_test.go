package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseResult(t *testing.T) {
	raw := `{"optimized_content":"Better text.","improvements_done":["Added keyword","Shortened sentences"]}`
	res, err := ParseResult(raw)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.OptimizedContent != "Better text." {
		t.Errorf("OptimizedContent = %q", res.OptimizedContent)
	}
	if len(res.Improvements) != 2 {
		t.Errorf("Improvements = %d, want 2", len(res.Improvements))
	}
}

func TestParseResult_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"optimized_content\":\"Text.\",\"improvements_done\":[]}\n```"
	res, err := ParseResult(raw)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.OptimizedContent != "Text." {
		t.Errorf("OptimizedContent = %q", res.OptimizedContent)
	}
}

func TestParseResult_Failures(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantReason Reason
	}{
		{"not JSON", "I improved your article!", ReasonUnparseable},
		{"missing improvements", `{"optimized_content":"Text."}`, ReasonIncomplete},
		{"missing content", `{"improvements_done":["x"]}`, ReasonIncomplete},
		{"empty content", `{"optimized_content":"  ","improvements_done":["x"]}`, ReasonIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(tt.raw)
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("error is %T, want *Error", err)
			}
			if re.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", re.Reason, tt.wantReason)
			}
		})
	}
}

// fakeCompletions serves a canned Chat Completions response.
func fakeCompletions(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClient_Optimize(t *testing.T) {
	srv := fakeCompletions(t, `{"optimized_content":"Rewritten.","improvements_done":["Adjusted tone"]}`)
	defer srv.Close()

	c := NewOpenAIClient("test-key", WithBaseURL(srv.URL))
	res, err := c.Optimize(context.Background(), DirectRequest{
		Content: "original text", Keyword: "go", Tone: "casual", TargetLength: 100,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.OptimizedContent != "Rewritten." {
		t.Errorf("OptimizedContent = %q", res.OptimizedContent)
	}
}

func TestOpenAIClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", WithBaseURL(srv.URL))
	_, err := c.PostAnalysisOptimize(context.Background(), PostAnalysisRequest{Content: "x", Keyword: "go"})

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if re.Reason != ReasonTransport {
		t.Errorf("Reason = %q, want %q", re.Reason, ReasonTransport)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Optimize(context.Background(), DirectRequest{Content: "x", Keyword: "go", Tone: "formal", TargetLength: 100})

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if re.Reason != ReasonIncomplete {
		t.Errorf("Reason = %q, want %q", re.Reason, ReasonIncomplete)
	}
}

func TestStubClient(t *testing.T) {
	c := &StubClient{}
	res, err := c.Optimize(context.Background(), DirectRequest{Content: "x", Keyword: "go", Tone: "casual", TargetLength: 100})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.OptimizedContent == "" {
		t.Error("stub returned empty content")
	}
	if len(res.Improvements) == 0 {
		t.Error("stub returned no improvements")
	}
}
