package chat

import "time"

// Role identifies which side of the conversation produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single immutable conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the render projection of a conversation: the merged message
// list plus the typing-indicator flag.
type Snapshot struct {
	Messages     []Message `json:"messages"`
	IsResponding bool      `json:"isResponding"`
}
