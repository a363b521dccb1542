package services

import (
	"time"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/config"
)

// QuotaService enforces the per-user daily limits on project creation
// and chat messages. Days roll over at local midnight.
type QuotaService struct {
	quotaRepo *repositories.UserQuotaRepository
	limits    config.QuotaConfig
}

// NewQuotaService creates a new quota service
func NewQuotaService(quotaRepo *repositories.UserQuotaRepository, limits config.QuotaConfig) *QuotaService {
	return &QuotaService{
		quotaRepo: quotaRepo,
		limits:    limits,
	}
}

// QuotaStatus is the current day's usage and limits for a user
type QuotaStatus struct {
	ProjectsUsed  int       `json:"projects_used"`
	ProjectsLimit int       `json:"projects_limit"`
	MessagesUsed  int       `json:"messages_used"`
	MessagesLimit int       `json:"messages_limit"`
	ResetsAt      time.Time `json:"resets_at"`
}

// Status returns today's usage for a user
func (s *QuotaService) Status(userID string) (*QuotaStatus, error) {
	now := time.Now()
	quota, err := s.quotaRepo.GetForDay(userID, now)
	if err != nil {
		return nil, err
	}
	return &QuotaStatus{
		ProjectsUsed:  quota.ProjectsCreated,
		ProjectsLimit: s.limits.ProjectsPerDay,
		MessagesUsed:  quota.MessagesSent,
		MessagesLimit: s.limits.MessagesPerDay,
		ResetsAt:      models.QuotaResetTime(now),
	}, nil
}

// CheckProjectCreation returns a QuotaExceededError when the user has
// already created today's allowance of projects
func (s *QuotaService) CheckProjectCreation(userID string) error {
	now := time.Now()
	quota, err := s.quotaRepo.GetForDay(userID, now)
	if err != nil {
		return err
	}
	if quota.ProjectsCreated >= s.limits.ProjectsPerDay {
		return &models.QuotaExceededError{
			Kind:    "project",
			Limit:   s.limits.ProjectsPerDay,
			ResetAt: models.QuotaResetTime(now),
		}
	}
	return nil
}

// RecordProjectCreation counts one project against today's quota
func (s *QuotaService) RecordProjectCreation(userID string) error {
	return s.quotaRepo.IncrementProjects(userID, time.Now())
}

// CheckMessage returns a QuotaExceededError when the user has already
// sent today's allowance of chat messages
func (s *QuotaService) CheckMessage(userID string) error {
	now := time.Now()
	quota, err := s.quotaRepo.GetForDay(userID, now)
	if err != nil {
		return err
	}
	if quota.MessagesSent >= s.limits.MessagesPerDay {
		return &models.QuotaExceededError{
			Kind:    "message",
			Limit:   s.limits.MessagesPerDay,
			ResetAt: models.QuotaResetTime(now),
		}
	}
	return nil
}

// RecordMessage counts one chat message against today's quota
func (s *QuotaService) RecordMessage(userID string) error {
	return s.quotaRepo.IncrementMessages(userID, time.Now())
}
