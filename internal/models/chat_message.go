package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole is the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one message in a project's conversation, append-only
type ChatMessage struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage creates a chat message for a project
func NewChatMessage(projectID string, role ChatRole, content string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
