package repositories

import (
	"database/sql"

	"github.com/codelenshq/codelens/internal/models"
)

// ChatMessageRepository handles database operations for chat messages
type ChatMessageRepository struct {
	db *sql.DB
}

// NewChatMessageRepository creates a new ChatMessageRepository
func NewChatMessageRepository(db *sql.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create appends a chat message
func (r *ChatMessageRepository) Create(message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, project_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		message.ID,
		message.ProjectID,
		message.Role,
		message.Content,
		message.CreatedAt,
	)
	return err
}

// GetByProjectID retrieves the full conversation of a project, oldest first
func (r *ChatMessageRepository) GetByProjectID(projectID string) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, project_id, role, content, created_at
		FROM chat_messages
		WHERE project_id = ?
		ORDER BY created_at ASC
	`

	return r.queryMessages(query, projectID)
}

// GetRecent retrieves the latest n messages of a project, oldest first
func (r *ChatMessageRepository) GetRecent(projectID string, n int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, project_id, role, content, created_at
		FROM (
			SELECT id, project_id, role, content, created_at
			FROM chat_messages
			WHERE project_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC
	`

	return r.queryMessages(query, projectID, n)
}

func (r *ChatMessageRepository) queryMessages(query string, args ...interface{}) ([]*models.ChatMessage, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		message := &models.ChatMessage{}
		if err := rows.Scan(
			&message.ID,
			&message.ProjectID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
