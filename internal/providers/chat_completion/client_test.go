package chat_completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zozabot/internal/providers"
)

func TestBuildPayloadJoinsHistory(t *testing.T) {
	c := New(Config{URL: "https://api.openai.com/v1/chat/completions"})

	body, err := c.buildPayload(providers.CompletionRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "You are concise",
		Temperature:  0.4,
		History: []providers.Turn{
			{Role: providers.RoleUser, Text: "hello"},
			{Role: providers.RoleAssistant, Text: "hi"},
			{Role: providers.RoleUser, Text: "how are you"},
		},
	})
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}

	var payload struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Model != "gpt-4o-mini" {
		t.Fatalf("expected model gpt-4o-mini, got %q", payload.Model)
	}
	if len(payload.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(payload.Messages))
	}
	if payload.Messages[0].Role != "system" || payload.Messages[0].Content != "You are concise" {
		t.Fatalf("unexpected system message %+v", payload.Messages[0])
	}
	if payload.Messages[1].Content != "hello hi how are you" {
		t.Fatalf("expected space-joined history, got %q", payload.Messages[1].Content)
	}
}

func TestCompleteReadsChoiceContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "sk-test"})
	resp, err := c.Complete(context.Background(), providers.CompletionRequest{
		Model:   "gpt-4o-mini",
		History: []providers.Turn{{Role: providers.RoleUser, Text: "hello"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "hi there" {
		t.Fatalf("expected provider text, got %q", resp.Text)
	}
}

func TestCompleteFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL})
	if _, err := c.Complete(context.Background(), providers.CompletionRequest{
		History: []providers.Turn{{Role: providers.RoleUser, Text: "hello"}},
	}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestParseChatCompletionMissingContent(t *testing.T) {
	if _, err := parseChatCompletion([]byte(`{"choices":[]}`)); err == nil {
		t.Fatal("expected error for empty choices")
	}
	if _, err := parseChatCompletion([]byte(`{"choices":[{"message":{}}]}`)); err == nil {
		t.Fatal("expected error for missing content")
	}
	if _, err := parseChatCompletion([]byte(`not json`)); err == nil {
		t.Fatal("expected error for undecodable body")
	}
}
