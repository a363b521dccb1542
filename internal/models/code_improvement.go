package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImprovementCategory is the closed category set for quality suggestions
type ImprovementCategory string

const (
	CategoryPerformance     ImprovementCategory = "performance"
	CategoryReadability     ImprovementCategory = "readability"
	CategoryBestPractice    ImprovementCategory = "best_practice"
	CategoryMaintainability ImprovementCategory = "maintainability"
	CategorySecurity        ImprovementCategory = "security"
	CategoryErrorHandling   ImprovementCategory = "error_handling"
)

var improvementCategories = map[ImprovementCategory]bool{
	CategoryPerformance:     true,
	CategoryReadability:     true,
	CategoryBestPractice:    true,
	CategoryMaintainability: true,
	CategorySecurity:        true,
	CategoryErrorHandling:   true,
}

// NormalizeCategory maps a raw provider category onto the closed enum.
// Unrecognized values coerce to maintainability and are flagged for
// review rather than rejected.
func NormalizeCategory(raw string) (ImprovementCategory, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	// Common provider spellings
	switch cleaned {
	case "best_practices":
		cleaned = string(CategoryBestPractice)
	case "error_handing", "errors":
		cleaned = string(CategoryErrorHandling)
	}
	c := ImprovementCategory(cleaned)
	if improvementCategories[c] {
		return c, false
	}
	return CategoryMaintainability, true
}

// ImpactLevel grades how much a suggestion matters
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// NormalizeImpact maps a raw provider impact level onto the closed enum,
// defaulting to low on unrecognized values.
func NormalizeImpact(raw string) (ImpactLevel, bool) {
	switch ImpactLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case ImpactHigh:
		return ImpactHigh, false
	case ImpactMedium:
		return ImpactMedium, false
	case ImpactLow:
		return ImpactLow, false
	}
	return ImpactLow, true
}

// ImprovementStatus tracks user-driven triage of a suggestion
type ImprovementStatus string

const (
	ImprovementStatusPending     ImprovementStatus = "pending"
	ImprovementStatusImplemented ImprovementStatus = "implemented"
	ImprovementStatusDismissed   ImprovementStatus = "dismissed"
)

// ValidImprovementStatus checks a user-supplied status transition target
func ValidImprovementStatus(raw string) (ImprovementStatus, bool) {
	switch ImprovementStatus(raw) {
	case ImprovementStatusPending, ImprovementStatusImplemented, ImprovementStatusDismissed:
		return ImprovementStatus(raw), true
	}
	return "", false
}

// CodeImprovement is one quality suggestion reported by the quality stage
type CodeImprovement struct {
	ID              string              `json:"id"`
	ProjectID       string              `json:"project_id"`
	Category        ImprovementCategory `json:"category"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	FilePath        string              `json:"file_path"`
	LineNumber      *int                `json:"line_number,omitempty"`
	CodeSnippet     *string             `json:"code_snippet,omitempty"`
	Suggestion      string              `json:"suggestion"`
	ImpactLevel     ImpactLevel         `json:"impact_level"`
	EstimatedEffort *string             `json:"estimated_effort,omitempty"`
	Status          ImprovementStatus   `json:"status"`
	NeedsReview     bool                `json:"needs_review"`
	CreatedAt       time.Time           `json:"created_at"`
}

// NewCodeImprovement creates a pending improvement for a project
func NewCodeImprovement(projectID string) *CodeImprovement {
	return &CodeImprovement{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Status:    ImprovementStatusPending,
		CreatedAt: time.Now(),
	}
}

// DedupKey identifies near-identical suggestions: same file, line and
// category. The first occurrence wins.
func (i *CodeImprovement) DedupKey() string {
	line := ""
	if i.LineNumber != nil {
		line = strconv.Itoa(*i.LineNumber)
	}
	return i.FilePath + "\x00" + line + "\x00" + string(i.Category)
}
