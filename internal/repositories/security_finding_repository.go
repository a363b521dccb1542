package repositories

import (
	"database/sql"
	"time"

	"github.com/codelenshq/codelens/internal/models"
)

// SecurityFindingRepository handles database operations for security findings
type SecurityFindingRepository struct {
	db *sql.DB
}

// NewSecurityFindingRepository creates a new SecurityFindingRepository
func NewSecurityFindingRepository(db *sql.DB) *SecurityFindingRepository {
	return &SecurityFindingRepository{db: db}
}

// CreateBatch persists the full finding set of one security stage run in
// a single transaction: either every row is written or none. If the
// project row is gone, the batch becomes a no-op.
func (r *SecurityFindingRepository) CreateBatch(projectID string, findings []*models.SecurityFinding) error {
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
		INSERT INTO security_findings (id, project_id, severity, category, title, description,
			file_path, line_number, code_snippet, recommendation, status, notes, needs_review,
			resolved_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, finding := range findings {
		if _, err := stmt.Exec(
			finding.ID,
			finding.ProjectID,
			finding.Severity,
			finding.Category,
			finding.Title,
			finding.Description,
			finding.FilePath,
			finding.LineNumber,
			finding.CodeSnippet,
			finding.Recommendation,
			finding.Status,
			finding.Notes,
			finding.NeedsReview,
			finding.ResolvedAt,
			finding.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const findingColumns = `id, project_id, severity, category, title, description, file_path,
	line_number, code_snippet, recommendation, status, notes, needs_review, resolved_at, created_at`

func scanFinding(row interface {
	Scan(dest ...interface{}) error
}) (*models.SecurityFinding, error) {
	finding := &models.SecurityFinding{}
	err := row.Scan(
		&finding.ID,
		&finding.ProjectID,
		&finding.Severity,
		&finding.Category,
		&finding.Title,
		&finding.Description,
		&finding.FilePath,
		&finding.LineNumber,
		&finding.CodeSnippet,
		&finding.Recommendation,
		&finding.Status,
		&finding.Notes,
		&finding.NeedsReview,
		&finding.ResolvedAt,
		&finding.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return finding, nil
}

// GetByProjectID retrieves all findings for a project ordered by
// severity, critical first
func (r *SecurityFindingRepository) GetByProjectID(projectID string) ([]*models.SecurityFinding, error) {
	query := `
		SELECT ` + findingColumns + `
		FROM security_findings
		WHERE project_id = ?
		ORDER BY CASE severity
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
			ELSE 4
		END, created_at ASC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	findings := make([]*models.SecurityFinding, 0)
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)
	}

	return findings, rows.Err()
}

// GetByID retrieves a finding by ID, nil when missing
func (r *SecurityFindingRepository) GetByID(id string) (*models.SecurityFinding, error) {
	query := `SELECT ` + findingColumns + ` FROM security_findings WHERE id = ?`

	finding, err := scanFinding(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return finding, nil
}

// UpdateStatus applies a user triage transition to a finding
func (r *SecurityFindingRepository) UpdateStatus(id string, status models.FindingStatus, notes *string) error {
	var resolvedAt *time.Time
	if status == models.FindingStatusFixed || status == models.FindingStatusFalsePositive || status == models.FindingStatusWontFix {
		now := time.Now()
		resolvedAt = &now
	}

	query := `
		UPDATE security_findings
		SET status = ?, notes = COALESCE(?, notes), resolved_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, status, notes, resolvedAt, id)
	return err
}
