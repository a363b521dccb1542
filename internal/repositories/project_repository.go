package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/codelenshq/codelens/internal/models"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, user_id, name, source_type, github_url, github_branch, storage_prefix,
	primary_language, total_files, total_lines, status, progress_percentage, progress_stage,
	current_step, documentation_status, security_status, quality_status, index_status,
	error_message, created_at, updated_at`

// Create creates a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		project.ID.String(),
		project.UserID.String(),
		project.Name,
		project.SourceType,
		project.GithubURL,
		project.GithubBranch,
		project.StoragePrefix,
		project.PrimaryLanguage,
		project.TotalFiles,
		project.TotalLines,
		project.Status,
		project.ProgressPercentage,
		project.ProgressStage,
		project.CurrentStep,
		project.DocumentationStatus,
		project.SecurityStatus,
		project.QualityStatus,
		project.IndexStatus,
		project.ErrorMessage,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

func (r *ProjectRepository) scanProject(row interface {
	Scan(dest ...interface{}) error
}) (*models.Project, error) {
	project := &models.Project{}
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.SourceType,
		&project.GithubURL,
		&project.GithubBranch,
		&project.StoragePrefix,
		&project.PrimaryLanguage,
		&project.TotalFiles,
		&project.TotalLines,
		&project.Status,
		&project.ProgressPercentage,
		&project.ProgressStage,
		&project.CurrentStep,
		&project.DocumentationStatus,
		&project.SecurityStatus,
		&project.QualityStatus,
		&project.IndexStatus,
		&project.ErrorMessage,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetByID retrieves a project by ID, nil when missing
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := r.scanProject(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetByUserID retrieves all projects owned by a user, newest first
func (r *ProjectRepository) GetByUserID(userID string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// UpdateAnalysis stores structure analysis results on the project row
func (r *ProjectRepository) UpdateAnalysis(id, primaryLanguage string, totalFiles, totalLines int) error {
	query := `
		UPDATE projects
		SET primary_language = ?, total_files = ?, total_lines = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, primaryLanguage, totalFiles, totalLines, time.Now(), id)
	return err
}

// UpdateProgress advances the pipeline progress of a project. The
// percentage is guarded in SQL so concurrent stage completions can never
// move it backwards. A deleted project makes this a no-op.
func (r *ProjectRepository) UpdateProgress(id string, stage models.PipelineStage, percentage int, step string) error {
	query := `
		UPDATE projects
		SET progress_stage = ?,
		    progress_percentage = CASE WHEN progress_percentage > ? THEN progress_percentage ELSE ? END,
		    current_step = ?,
		    updated_at = ?
		WHERE id = ? AND status = ?
	`

	_, err := r.db.Exec(query, stage, percentage, percentage, step, time.Now(), id, models.ProjectStatusProcessing)
	return err
}

// SetStatus moves the project to a terminal or processing status
func (r *ProjectRepository) SetStatus(id string, status models.ProjectStatus, errorMessage *string) error {
	query := `
		UPDATE projects
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, status, errorMessage, time.Now(), id)
	return err
}

// SetStageStatus updates the independent status column of one analysis stage
func (r *ProjectRepository) SetStageStatus(id string, stage models.PipelineStage, status models.StageStatus) error {
	var column string
	switch stage {
	case models.StageDocumentation:
		column = "documentation_status"
	case models.StageSecurity:
		column = "security_status"
	case models.StageQuality:
		column = "quality_status"
	case models.StageIndexing:
		column = "index_status"
	default:
		return fmt.Errorf("stage %s has no status column", stage)
	}

	query := fmt.Sprintf(`UPDATE projects SET %s = ?, updated_at = ? WHERE id = ?`, column)
	_, err := r.db.Exec(query, status, time.Now(), id)
	return err
}

// Exists reports whether a project row is still present
func (r *ProjectRepository) Exists(id string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM projects WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a project; dependent rows cascade via foreign keys
func (r *ProjectRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}
