package models

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a bounded slice of a source file's text, the unit of
// embedding and retrieval. Read-only once written.
type Chunk struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FilePath  string    `json:"file_path"`
	Ordinal   int       `json:"ordinal"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChunk creates a chunk row for a project file
func NewChunk(projectID, filePath string, ordinal int, content string, embedding []float32) *Chunk {
	return &Chunk{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		FilePath:  filePath,
		Ordinal:   ordinal,
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
}

// ScoredChunk is a chunk with its similarity to a query vector
type ScoredChunk struct {
	Chunk      *Chunk  `json:"chunk"`
	Similarity float64 `json:"similarity"`
}
