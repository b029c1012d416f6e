package convModel

import (
	"context"
	"time"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted turn of a conversation. Citations and actions are
// only present on assistant messages.
type Message struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Citations []manualModel.Citation `json:"citations,omitempty"`
	Actions   []manualModel.Action   `json:"actions,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ConversationStore owns persisted messages. The RAG core only produces them;
// a single conversation is expected to serialize its own queries.
type ConversationStore interface {
	InitConversation(ctx context.Context, id string) error
	ValidateConversation(ctx context.Context, id string) bool
	AppendMessage(ctx context.Context, conversationID string, msg Message) error
	History(ctx context.Context, conversationID string, limit int) ([]Message, error)
}
