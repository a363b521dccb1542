package models

import (
	"time"

	"github.com/google/uuid"
)

// UserQuota tracks daily usage counters for a single user and day.
type UserQuota struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	QuotaDate       string    `json:"quota_date"` // YYYY-MM-DD
	ProjectsCreated int       `json:"projects_created"`
	MessagesSent    int       `json:"messages_sent"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUserQuota creates a quota row for the given user and day
func NewUserQuota(userID string, day time.Time) *UserQuota {
	return &UserQuota{
		ID:        uuid.New().String(),
		UserID:    userID,
		QuotaDate: day.Format("2006-01-02"),
		UpdatedAt: time.Now(),
	}
}

// QuotaResetTime returns the start of the next day, when daily counters reset
func QuotaResetTime(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
}
