package repositories

import (
	"database/sql"
	"time"

	"github.com/codelenshq/codelens/internal/models"
)

// UserQuotaRepository handles database operations for daily user quotas
type UserQuotaRepository struct {
	db *sql.DB
}

// NewUserQuotaRepository creates a new UserQuotaRepository
func NewUserQuotaRepository(db *sql.DB) *UserQuotaRepository {
	return &UserQuotaRepository{db: db}
}

// GetForDay retrieves the quota row for a user and day, or zero counters
// if none exists yet
func (r *UserQuotaRepository) GetForDay(userID string, day time.Time) (*models.UserQuota, error) {
	query := `
		SELECT id, user_id, quota_date, projects_created, messages_sent, updated_at
		FROM user_quotas WHERE user_id = ? AND quota_date = ?
	`

	quota := &models.UserQuota{}
	err := r.db.QueryRow(query, userID, day.Format("2006-01-02")).Scan(
		&quota.ID,
		&quota.UserID,
		&quota.QuotaDate,
		&quota.ProjectsCreated,
		&quota.MessagesSent,
		&quota.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.NewUserQuota(userID, day), nil
	}
	if err != nil {
		return nil, err
	}

	return quota, nil
}

// IncrementProjects adds one to the user's project counter for the day
func (r *UserQuotaRepository) IncrementProjects(userID string, day time.Time) error {
	return r.increment(userID, day, "projects_created")
}

// IncrementMessages adds one to the user's chat message counter for the day
func (r *UserQuotaRepository) IncrementMessages(userID string, day time.Time) error {
	return r.increment(userID, day, "messages_sent")
}

func (r *UserQuotaRepository) increment(userID string, day time.Time, column string) error {
	var query string
	switch column {
	case "projects_created":
		query = `
			INSERT INTO user_quotas (id, user_id, quota_date, projects_created, messages_sent, updated_at)
			VALUES (?, ?, ?, 1, 0, ?)
			ON CONFLICT(user_id, quota_date)
			DO UPDATE SET projects_created = projects_created + 1, updated_at = excluded.updated_at
		`
	case "messages_sent":
		query = `
			INSERT INTO user_quotas (id, user_id, quota_date, projects_created, messages_sent, updated_at)
			VALUES (?, ?, ?, 0, 1, ?)
			ON CONFLICT(user_id, quota_date)
			DO UPDATE SET messages_sent = messages_sent + 1, updated_at = excluded.updated_at
		`
	}

	quota := models.NewUserQuota(userID, day)
	_, err := r.db.Exec(query, quota.ID, userID, quota.QuotaDate, time.Now())
	return err
}
