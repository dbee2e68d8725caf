package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chat-relay/internal/config"
	"chat-relay/internal/model/chat"
	"chat-relay/internal/service/llm"
)

func newTestClient(serverURL, apiKey string, timeout time.Duration) *llm.Client {
	return llm.New(config.UpstreamConfig{
		APIKey:  apiKey,
		Model:   "test-model",
		BaseURL: serverURL + "/v1",
		Timeout: timeout,
	}, "You are a test assistant.")
}

func completionResponse(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` +
		mustMarshal(content) + `}}]}`
}

func mustMarshal(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionResponse("  hello there  "))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key", 2*time.Second)
	history := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hey"},
		{Role: chat.RoleUser, Content: "how are you?"},
	}

	reply, err := client.Complete(context.Background(), history)
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode upstream payload: %v", err)
	}
	if payload.Model != "test-model" {
		t.Fatalf("unexpected model: %q", payload.Model)
	}
	if len(payload.Messages) != 4 {
		t.Fatalf("expected system preamble plus 3 turns, got %d messages", len(payload.Messages))
	}
	if payload.Messages[0].Role != "system" || payload.Messages[0].Content != "You are a test assistant." {
		t.Fatalf("system preamble not first: %+v", payload.Messages[0])
	}
	if payload.Messages[3].Content != "how are you?" {
		t.Fatalf("history order lost: %+v", payload.Messages[3])
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, completionResponse("should never be reached"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "", 2*time.Second)

	_, err := client.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("client must not call upstream without a credential, saw %d requests", calls.Load())
	}
}

func TestCompleteUpstreamHTTPError(t *testing.T) {
	longMessage := strings.Repeat("x", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":`+mustMarshal(longMessage)+`,"type":"rate_limit"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key", 2*time.Second)

	_, err := client.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	var upstreamErr *llm.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", upstreamErr.StatusCode)
	}
	if len(upstreamErr.Body) > 300 {
		t.Fatalf("error body not truncated: %d chars", len(upstreamErr.Body))
	}
	if !strings.HasPrefix(upstreamErr.Body, "xxx") {
		t.Fatalf("error body lost: %q", upstreamErr.Body)
	}
}

func TestCompleteEmptyReply(t *testing.T) {
	cases := map[string]string{
		"no choices":         `{"choices":[]}`,
		"whitespace content": completionResponse("   "),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			}))
			defer server.Close()

			client := newTestClient(server.URL, "test-key", 2*time.Second)
			_, err := client.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
			if !errors.Is(err, llm.ErrEmptyReply) {
				t.Fatalf("expected ErrEmptyReply, got %v", err)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL, "test-key", 50*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), []chat.Turn{{Role: chat.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	// A timeout is a transport failure, not an upstream status failure.
	var upstreamErr *llm.UpstreamError
	if errors.As(err, &upstreamErr) {
		t.Fatalf("timeout should not surface as UpstreamError: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, call took %v", elapsed)
	}
}
