package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/codelenshq/codelens/internal/models"
)

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO jobs (id, project_id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID,
		job.ProjectID,
		job.JobType,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, project_id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at
		FROM jobs WHERE id = ?
	`

	job := &models.Job{}
	err := r.db.QueryRow(query, id).Scan(
		&job.ID,
		&job.ProjectID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.WorkerID,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return job, nil
}

// HasActiveJob reports whether a pending or in-progress job of the given
// type exists for a project. Used to reject concurrent re-submission.
func (r *JobRepository) HasActiveJob(projectID string, jobType models.JobType) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT COUNT(1) FROM jobs
		WHERE project_id = ? AND job_type = ? AND status IN (?, ?)
	`

	var count int
	err := r.db.QueryRow(query, projectID, jobType, models.JobStatusPending, models.JobStatusInProgress).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// GetNextPendingJob retrieves the next pending job of a specific type (FIFO)
// and atomically marks it in-progress for the claiming worker.
func (r *JobRepository) GetNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT id, project_id, job_type, status, error_message, worker_id, started_at, completed_at, created_at, updated_at
		FROM jobs
		WHERE status = ? AND job_type = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	job := &models.Job{}
	err = tx.QueryRow(query, models.JobStatusPending, jobType).Scan(
		&job.ID,
		&job.ProjectID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.WorkerID,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No pending jobs found
		}
		return nil, err
	}

	job.MarkStarted()
	job.WorkerID = &workerID

	updateQuery := `
		UPDATE jobs
		SET status = ?, worker_id = ?, started_at = ?, updated_at = ?
		WHERE id = ?
	`

	if _, err = tx.Exec(updateQuery, job.Status, workerID, job.StartedAt, time.Now(), job.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}

// Update updates a job
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, worker_id = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ErrorMessage,
		job.WorkerID,
		job.StartedAt,
		job.CompletedAt,
		time.Now(),
		job.ID,
	)
	return err
}

// DeleteByProjectID deletes all jobs for a project
func (r *JobRepository) DeleteByProjectID(projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM jobs WHERE project_id = ?`, projectID)
	return err
}
