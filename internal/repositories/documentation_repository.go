package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/codelenshq/codelens/internal/models"
)

// DocumentationRepository handles database operations for documentation
type DocumentationRepository struct {
	db *sql.DB
}

// NewDocumentationRepository creates a new DocumentationRepository
func NewDocumentationRepository(db *sql.DB) *DocumentationRepository {
	return &DocumentationRepository{db: db}
}

// Upsert writes documentation for a project, overwriting any previous
// version. The project-existence check shares the transaction so a
// delete racing the pipeline turns the write into a no-op.
func (r *DocumentationRepository) Upsert(doc *models.Documentation) error {
	sectionsJSON, err := json.Marshal(doc.Sections)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM projects WHERE id = ?`, doc.ProjectID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return nil // project deleted mid-run
	}

	query := `
		INSERT INTO documentation (id, project_id, content, sections, word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id)
		DO UPDATE SET content = excluded.content, sections = excluded.sections,
		              word_count = excluded.word_count, updated_at = excluded.updated_at
	`

	if _, err := tx.Exec(query,
		doc.ID,
		doc.ProjectID,
		doc.Content,
		string(sectionsJSON),
		doc.WordCount,
		doc.CreatedAt,
		doc.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByProjectID retrieves documentation for a project, nil when missing
func (r *DocumentationRepository) GetByProjectID(projectID string) (*models.Documentation, error) {
	query := `
		SELECT id, project_id, content, sections, word_count, created_at, updated_at
		FROM documentation WHERE project_id = ?
	`

	doc := &models.Documentation{}
	var sectionsJSON string
	err := r.db.QueryRow(query, projectID).Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.Content,
		&sectionsJSON,
		&doc.WordCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sectionsJSON), &doc.Sections); err != nil {
		return nil, err
	}

	return doc, nil
}

// UpdateContent overwrites the markdown content and re-extracted sections
func (r *DocumentationRepository) UpdateContent(projectID, content string, sections map[string]string, wordCount int) error {
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return err
	}

	query := `
		UPDATE documentation
		SET content = ?, sections = ?, word_count = ?, updated_at = ?
		WHERE project_id = ?
	`

	_, err = r.db.Exec(query, content, string(sectionsJSON), wordCount, time.Now(), projectID)
	return err
}
