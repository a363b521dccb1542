package repositories

import (
	"database/sql"

	"github.com/codelenshq/codelens/internal/models"
)

// CodeImprovementRepository handles database operations for quality suggestions
type CodeImprovementRepository struct {
	db *sql.DB
}

// NewCodeImprovementRepository creates a new CodeImprovementRepository
func NewCodeImprovementRepository(db *sql.DB) *CodeImprovementRepository {
	return &CodeImprovementRepository{db: db}
}

// CreateBatch persists the full suggestion set of one quality stage run
// in a single transaction: either every row is written or none. If the
// project row is gone, the batch becomes a no-op.
func (r *CodeImprovementRepository) CreateBatch(projectID string, improvements []*models.CodeImprovement) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM projects WHERE id = ?`, projectID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return nil // project deleted mid-run
	}

	query := `
		INSERT INTO code_improvements (id, project_id, category, title, description, file_path,
			line_number, code_snippet, suggestion, impact_level, estimated_effort, status,
			needs_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, improvement := range improvements {
		if _, err := stmt.Exec(
			improvement.ID,
			improvement.ProjectID,
			improvement.Category,
			improvement.Title,
			improvement.Description,
			improvement.FilePath,
			improvement.LineNumber,
			improvement.CodeSnippet,
			improvement.Suggestion,
			improvement.ImpactLevel,
			improvement.EstimatedEffort,
			improvement.Status,
			improvement.NeedsReview,
			improvement.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const improvementColumns = `id, project_id, category, title, description, file_path, line_number,
	code_snippet, suggestion, impact_level, estimated_effort, status, needs_review, created_at`

func scanImprovement(row interface {
	Scan(dest ...interface{}) error
}) (*models.CodeImprovement, error) {
	improvement := &models.CodeImprovement{}
	err := row.Scan(
		&improvement.ID,
		&improvement.ProjectID,
		&improvement.Category,
		&improvement.Title,
		&improvement.Description,
		&improvement.FilePath,
		&improvement.LineNumber,
		&improvement.CodeSnippet,
		&improvement.Suggestion,
		&improvement.ImpactLevel,
		&improvement.EstimatedEffort,
		&improvement.Status,
		&improvement.NeedsReview,
		&improvement.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return improvement, nil
}

// GetByProjectID retrieves all suggestions for a project ordered by
// impact, high first
func (r *CodeImprovementRepository) GetByProjectID(projectID string) ([]*models.CodeImprovement, error) {
	query := `
		SELECT ` + improvementColumns + `
		FROM code_improvements
		WHERE project_id = ?
		ORDER BY CASE impact_level
			WHEN 'high' THEN 0
			WHEN 'medium' THEN 1
			ELSE 2
		END, created_at ASC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	improvements := make([]*models.CodeImprovement, 0)
	for rows.Next() {
		improvement, err := scanImprovement(rows)
		if err != nil {
			return nil, err
		}
		improvements = append(improvements, improvement)
	}

	return improvements, rows.Err()
}

// GetByID retrieves a suggestion by ID, nil when missing
func (r *CodeImprovementRepository) GetByID(id string) (*models.CodeImprovement, error) {
	query := `SELECT ` + improvementColumns + ` FROM code_improvements WHERE id = ?`

	improvement, err := scanImprovement(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return improvement, nil
}

// UpdateStatus applies a user triage transition to a suggestion
func (r *CodeImprovementRepository) UpdateStatus(id string, status models.ImprovementStatus) error {
	query := `UPDATE code_improvements SET status = ? WHERE id = ?`
	_, err := r.db.Exec(query, status, id)
	return err
}
