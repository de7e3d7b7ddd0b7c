package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jusconsultus/lexsearch/provider"
)

// client implements provider.CompletionProvider against any
// OpenAI-compatible chat-completions API (OpenAI, DeepSeek, local gateways).
type client struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client
}

// request represents a request to the chat-completions API.
type request struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

// response represents a response from the chat-completions API.
type response struct {
	Choices []struct {
		Message struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a chat-completions client. baseURL should not include
// the /v1 suffix.
func NewClient(apiKey, baseURL, model string, maxRetries int, timeout time.Duration) provider.CompletionProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var thinkBlockRe = regexp.MustCompile(`(?is)<think>.*?</think>`)

// stripThinkingBlocks removes <think>...</think> sections that reasoner
// models sometimes leave in the content field.
func stripThinkingBlocks(s string) string {
	return strings.TrimSpace(thinkBlockRe.ReplaceAllString(s, ""))
}

// isReasonerModel reports whether the model routes through a reasoning
// pipeline with a fixed sampling temperature.
func isReasonerModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "reasoner")
}

// Complete sends the message list and returns the assistant's plain text.
func (c *client) Complete(ctx context.Context, messages []provider.Message, opts provider.Options) (string, error) {
	if c.apiKey == "" {
		return "", provider.ErrNotConfigured
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	// Reasoner-family models reject custom temperatures.
	if isReasonerModel(model) {
		temperature = 1
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body, err := json.Marshal(request{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}

	msg := parsed.Choices[0].Message
	content := msg.Content
	// Reasoner models occasionally leave content empty and put the answer
	// in reasoning_content.
	if content == "" {
		content = msg.ReasoningContent
	}
	content = stripThinkingBlocks(content)
	if content == "" {
		return "", fmt.Errorf("API returned empty content")
	}
	return content, nil
}
