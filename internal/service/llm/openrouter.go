package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"chat-relay/internal/config"
	"chat-relay/internal/model/chat"
)

// Client talks to an OpenRouter-compatible chat completion endpoint.
type Client struct {
	api          *openai.Client
	model        string
	systemPrompt string
	callTimeout  time.Duration
	configured   bool
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone so the original request is never mutated.
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

// New builds a client from upstream config. A missing API key is legal; every
// Complete call then fails with ErrNotConfigured before any request is made.
func New(upstream config.UpstreamConfig, systemPrompt string) *Client {
	cfg := openai.DefaultConfig(upstream.APIKey)
	if upstream.BaseURL != "" {
		cfg.BaseURL = upstream.BaseURL
	}

	// OpenRouter uses these attribution headers for app ranking.
	if upstream.Referrer != "" || upstream.Title != "" {
		h := http.Header{}
		if upstream.Referrer != "" {
			h.Set("HTTP-Referer", upstream.Referrer)
		}
		if upstream.Title != "" {
			h.Set("X-Title", upstream.Title)
		}
		cfg.HTTPClient = &http.Client{
			Transport: headerTransport{rt: http.DefaultTransport, headers: h},
		}
	}

	return &Client{
		api:          openai.NewClientWithConfig(cfg),
		model:        upstream.Model,
		systemPrompt: systemPrompt,
		configured:   upstream.Configured(),
		callTimeout:  upstream.Timeout,
	}
}

// Complete sends the system preamble plus the capped history upstream and
// returns the assistant's text. One attempt only; the caller decides what to
// do with a failure. A timeout cancels the in-flight call and surfaces as a
// transport error like any other.
func (c *Client) Complete(ctx context.Context, history []chat.Turn) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				StatusCode: apiErr.HTTPStatusCode,
				Body:       truncate(apiErr.Message, maxErrorBody),
			}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &UpstreamError{
				StatusCode: reqErr.HTTPStatusCode,
				Body:       truncate(reqErr.Error(), maxErrorBody),
			}
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
