package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jusconsultus/lexsearch/provider"
)

func completionResponse(content, reasoning string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content, "reasoning_content": reasoning}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestCompleteReturnsContent(t *testing.T) {
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionResponse("the answer", "")))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "gpt-4o-mini", 0, 5*time.Second)
	out, err := c.Complete(context.Background(), []provider.Message{
		{Role: "user", Content: "hello"},
	}, provider.Options{Temperature: 0.7, MaxTokens: 100})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "the answer" {
		t.Fatalf("out = %q", out)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", gotReq.Model)
	}
	if gotReq.Temperature != 0.7 {
		t.Fatalf("temperature = %v", gotReq.Temperature)
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	c := NewClient("", "http://unused", "m", 0, time.Second)
	if _, err := c.Complete(context.Background(), nil, provider.Options{}); err != provider.ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCompleteReasonerForcesTemperature(t *testing.T) {
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(completionResponse("ok", "")))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "deepseek-reasoner", 0, 5*time.Second)
	if _, err := c.Complete(context.Background(), nil, provider.Options{Temperature: 0.2}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if gotReq.Temperature != 1 {
		t.Fatalf("temperature = %v, reasoner models require 1", gotReq.Temperature)
	}
}

func TestCompleteReasoningContentFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse("", "fallback text")))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "deepseek-reasoner", 0, 5*time.Second)
	out, err := c.Complete(context.Background(), nil, provider.Options{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "fallback text" {
		t.Fatalf("out = %q", out)
	}
}

func TestCompleteRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(completionResponse("recovered", "")))
	}))
	defer srv.Close()

	c := NewClient("sk-test", srv.URL, "m", 2, 5*time.Second)
	out, err := c.Complete(context.Background(), nil, provider.Options{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("out = %q", out)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestStripThinkingBlocks(t *testing.T) {
	in := "<think>internal\nmonologue</think>\n\nThe visible answer."
	if got := stripThinkingBlocks(in); got != "The visible answer." {
		t.Fatalf("got %q", got)
	}
	if got := stripThinkingBlocks("no blocks"); got != "no blocks" {
		t.Fatalf("got %q", got)
	}
}
