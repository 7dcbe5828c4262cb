package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are an expert SEO content optimizer. " +
	"Always respond in valid JSON format with exactly these keys: " +
	"`optimized_content` (string) and `improvements_done` (list of strings)."

// OpenAIClient calls the rewrite backend through the OpenAI Chat Completions
// API. It also works with any OpenAI-compatible service by setting a custom
// base URL.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the model name (default: gpt-4o-mini).
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) { c.model = model }
}

// WithBaseURL overrides the API endpoint (default: https://api.openai.com/v1).
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout overrides the HTTP client timeout (default: 60s).
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) { c.httpClient.Timeout = d }
}

// NewOpenAIClient creates a new rewrite client.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-4o-mini",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostAnalysisOptimize rewrites content using the analyze-stage metrics as
// prompt context.
func (c *OpenAIClient) PostAnalysisOptimize(ctx context.Context, req PostAnalysisRequest) (*Result, error) {
	return c.complete(ctx, buildPostAnalysisPrompt(req))
}

// Optimize rewrites content to the requested tone and target length.
func (c *OpenAIClient) Optimize(ctx context.Context, req DirectRequest) (*Result, error) {
	return c.complete(ctx, buildDirectPrompt(req))
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (*Result, error) {
	raw, err := c.send(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResult(raw)
}

func (c *OpenAIClient) send(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &Error{Reason: ReasonUnparseable, Err: fmt.Errorf("unmarshal envelope: %w", err)}
	}
	if chatResp.Error != nil {
		return "", &Error{Reason: ReasonTransport, Err: fmt.Errorf("api error: %s", chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &Error{Reason: ReasonIncomplete, Err: fmt.Errorf("no choices in response")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ParseResult validates the model's raw output against the rewrite contract:
// parseable JSON carrying a non-empty optimized_content and an
// improvements_done list.
func ParseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	// Models occasionally wrap the JSON in a markdown fence.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload struct {
		OptimizedContent *string   `json:"optimized_content"`
		Improvements     *[]string `json:"improvements_done"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &Error{Reason: ReasonUnparseable, Err: fmt.Errorf("invalid JSON from model: %w", err)}
	}
	if payload.OptimizedContent == nil || payload.Improvements == nil {
		return nil, &Error{Reason: ReasonIncomplete, Err: fmt.Errorf("response missing optimized_content or improvements_done")}
	}
	if strings.TrimSpace(*payload.OptimizedContent) == "" {
		return nil, &Error{Reason: ReasonIncomplete, Err: fmt.Errorf("optimized_content is empty")}
	}

	return &Result{
		OptimizedContent: *payload.OptimizedContent,
		Improvements:     *payload.Improvements,
	}, nil
}
