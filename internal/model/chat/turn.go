package chat

// Turn roles as sent to the completion API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a session's upstream context window.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
