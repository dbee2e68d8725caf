package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"chat-relay/internal/model/chat"
	"chat-relay/internal/service/fallback"
)

// Status is the UI-visible connectivity state.
type Status string

const (
	StatusReady      Status = "READY"
	StatusConnecting Status = "CONNECTING..."
	StatusOnline     Status = "ONLINE"
	StatusMock       Status = "MOCK MODE"
)

// ErrEmptyMessage is returned when Send is given nothing to say.
var ErrEmptyMessage = errors.New("message is empty")

const (
	defaultHTTPTimeout = 8 * time.Second

	// defaultTypingMin keeps the reply from appearing instantly; purely
	// cosmetic, so fallback and live replies feel the same.
	defaultTypingMin = 350 * time.Millisecond
)

// Options configures a Controller.
type Options struct {
	APIURL      string
	StateDir    string
	HTTPTimeout time.Duration // defaults to 8s
	TypingMin   time.Duration // minimum user-visible reply delay; <0 disables
}

// Controller owns the client side of a conversation: the persisted transcript,
// the session id, and the request/fallback cycle. Both front-ends drive the
// same controller; only presentation differs. Not safe for concurrent use —
// one controller serves one user.
type Controller struct {
	apiURL    string
	http      *http.Client
	state     *State
	messages  []chat.Message
	sessionID string
	status    Status
	typingMin time.Duration
}

// NewController restores any persisted transcript and session id from the
// state directory.
func NewController(opts Options) (*Controller, error) {
	state, err := NewState(opts.StateDir)
	if err != nil {
		return nil, err
	}

	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	typingMin := opts.TypingMin
	if typingMin == 0 {
		typingMin = defaultTypingMin
	} else if typingMin < 0 {
		typingMin = 0
	}

	return &Controller{
		apiURL:    opts.APIURL,
		http:      &http.Client{Timeout: timeout},
		state:     state,
		messages:  state.LoadMessages(),
		sessionID: state.SessionID(),
		status:    StatusReady,
		typingMin: typingMin,
	}, nil
}

// Messages returns the visible transcript.
func (c *Controller) Messages() []chat.Message {
	return c.messages
}

// Status returns the current connectivity state.
func (c *Controller) Status() Status {
	return c.status
}

// SessionID returns the conversation's session id.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Send records the user message, asks the relay for a reply, and degrades to
// a locally generated one on any failure. The returned message is the bot
// reply that was appended to the transcript; raw errors never reach it.
func (c *Controller) Send(ctx context.Context, text string) (chat.Message, error) {
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	c.append(newMessage(chat.SenderUser, text))

	c.status = StatusConnecting
	start := time.Now()

	reply, err := c.fetchReply(ctx, text)
	if err != nil {
		// Unreachable, timed out, or non-2xx: the cause does not matter,
		// the recovery is always a local canned reply.
		reply = fallback.Generate(text)
		c.status = StatusMock
	} else {
		c.status = StatusOnline
	}

	if err := c.waitTypingMin(ctx, start); err != nil {
		return chat.Message{}, err
	}

	botMessage := newMessage(chat.SenderBot, reply)
	c.append(botMessage)
	return botMessage, nil
}

// Clear wipes the local transcript and asks the relay to forget the session.
// The server call is best effort; local state is cleared regardless.
func (c *Controller) Clear(ctx context.Context) {
	c.messages = nil
	_ = c.state.SaveMessages(nil)

	payload, _ := json.Marshal(map[string]string{"sessionId": c.sessionID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/clear", bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if resp, err := c.http.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (c *Controller) fetchReply(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"message":   text,
		"sessionId": c.sessionID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("relay returned " + resp.Status)
	}

	var out struct {
		Reply     string `json:"reply"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Reply == "" {
		return "", errors.New("relay returned an empty reply")
	}

	// Adopt the relay's session id when it mints one.
	if out.SessionID != "" && out.SessionID != c.sessionID {
		c.sessionID = out.SessionID
		c.state.SetSessionID(out.SessionID)
	}

	return out.Reply, nil
}

// waitTypingMin holds the reply until the minimum typing duration has passed.
func (c *Controller) waitTypingMin(ctx context.Context, start time.Time) error {
	remaining := c.typingMin - time.Since(start)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) append(message chat.Message) {
	c.messages = append(c.messages, message)
	_ = c.state.SaveMessages(c.messages)
}

func newMessage(sender, text string) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}
