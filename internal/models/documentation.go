package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentationSections are the named section slots extracted from the
// generated markdown. A slot missing from the provider output stays empty.
var DocumentationSections = []string{"overview", "setup", "architecture", "api", "usage"}

// Documentation is the generated markdown for a project, one row per
// project, latest version wins.
type Documentation struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id"`
	Content   string            `json:"content"`
	Sections  map[string]string `json:"sections"`
	WordCount int               `json:"word_count"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewDocumentation creates documentation for a project
func NewDocumentation(projectID, content string, sections map[string]string) *Documentation {
	now := time.Now()
	return &Documentation{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Content:   content,
		Sections:  sections,
		WordCount: len(strings.Fields(content)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
