package chat

import "time"

// Message sender labels used by front-ends.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is the client-side display model. It is richer than Turn (id and
// timestamp exist for rendering only) and is never sent upstream as-is.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
