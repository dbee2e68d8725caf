package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chat-relay/internal/model/chat"
	"chat-relay/internal/service/llm"
	"chat-relay/internal/service/session"
	"chat-relay/pkg/utils"
)

const (
	// Greeting answers an empty message without touching history.
	Greeting = "Hello! I'm ready to chat. What would you like to know?"

	// Apology is the generic reply returned whenever the upstream call fails.
	Apology = "I'm having trouble connecting to the AI service right now. Please check your API key and try again."
)

// Handler serves the chat relay endpoints.
type Handler struct {
	sessions   *session.Store
	completer  llm.Completer
	model      string
	keyPresent bool
}

// New creates the relay handler. The session store and completer are explicit
// dependencies so tests can substitute both.
func New(sessions *session.Store, completer llm.Completer, model string, keyPresent bool) *Handler {
	return &Handler{
		sessions:   sessions,
		completer:  completer,
		model:      model,
		keyPresent: keyPresent,
	}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/clear", h.handleClear)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
	Error     string `json:"error,omitempty"`
}

// handleChat appends the user turn, asks the upstream model for a reply, and
// appends the assistant turn only when the model actually produced one.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sanitized := strings.TrimSpace(payload.Message)

	// Client-supplied session ids are trusted verbatim; sessions carry no
	// privilege, only conversation context.
	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if sanitized == "" {
		utils.RespondJSON(w, http.StatusOK, chatResponse{Reply: Greeting, SessionID: sessionID})
		return
	}

	h.sessions.Append(sessionID, chat.RoleUser, sanitized)

	reply, err := h.completer.Complete(r.Context(), h.sessions.History(sessionID))
	if err != nil {
		log.Printf("[chat] completion failed for session=%s: %v", sessionID, err)
		utils.RespondJSON(w, http.StatusBadGateway, chatResponse{
			Reply:     Apology,
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return
	}

	h.sessions.Append(sessionID, chat.RoleAssistant, reply)
	utils.RespondJSON(w, http.StatusOK, chatResponse{Reply: reply, SessionID: sessionID})
}

// handleClear drops the session's history. Always succeeds, even for unknown
// sessions or bodies that fail to decode.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.SessionID != "" {
		h.sessions.Clear(payload.SessionID)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleHealth reports liveness plus enough detail for a front-end to decide
// whether live replies are even possible.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":               true,
		"model":            h.model,
		"apiKeyConfigured": h.keyPresent,
		"activeSessions":   h.sessions.Len(),
	})
}
