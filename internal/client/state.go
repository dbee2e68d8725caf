package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"chat-relay/internal/model/chat"
)

const (
	historyFile = "history.json"
	sessionFile = "session"
)

// State persists the transcript and session id across runs, the terminal
// equivalent of the browser front-ends' localStorage.
type State struct {
	dir string
}

// NewState prepares the state directory.
func NewState(dir string) (*State, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &State{dir: dir}, nil
}

// LoadMessages returns the stored transcript. Missing or corrupt files yield
// an empty transcript rather than an error, matching how the browser clients
// recover from unreadable storage.
func (s *State) LoadMessages() []chat.Message {
	data, err := os.ReadFile(filepath.Join(s.dir, historyFile))
	if err != nil {
		return nil
	}

	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}

// SaveMessages writes the transcript back to disk.
func (s *State) SaveMessages(messages []chat.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, historyFile), data, 0o644)
}

// SessionID returns the persisted session id, minting and storing a fresh one
// on first use.
func (s *State) SessionID() string {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	id := uuid.NewString()
	s.SetSessionID(id)
	return id
}

// SetSessionID persists a session id, typically one the relay minted.
func (s *State) SetSessionID(id string) {
	_ = os.WriteFile(filepath.Join(s.dir, sessionFile), []byte(id), 0o644)
}
