package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the closed severity scale for security findings
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities for sorting, critical first
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// NormalizeSeverity maps a raw provider severity string onto the closed
// enum. Unrecognized values coerce to info and are flagged for manual
// review, never dropped.
func NormalizeSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := severityRank[s]; ok {
		return s, false
	}
	return SeverityInfo, true
}

// Rank returns the sort position of the severity, critical first
func (s Severity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return len(severityRank)
}

// FindingStatus tracks user-driven triage of a finding
type FindingStatus string

const (
	FindingStatusOpen          FindingStatus = "open"
	FindingStatusAcknowledged  FindingStatus = "acknowledged"
	FindingStatusFixed         FindingStatus = "fixed"
	FindingStatusFalsePositive FindingStatus = "false_positive"
	FindingStatusWontFix       FindingStatus = "wont_fix"
)

// ValidFindingStatus checks a user-supplied status transition target
func ValidFindingStatus(raw string) (FindingStatus, bool) {
	switch FindingStatus(raw) {
	case FindingStatusOpen, FindingStatusAcknowledged, FindingStatusFixed,
		FindingStatusFalsePositive, FindingStatusWontFix:
		return FindingStatus(raw), true
	}
	return "", false
}

// SecurityFinding is one vulnerability reported by the security stage
type SecurityFinding struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"project_id"`
	Severity       Severity      `json:"severity"`
	Category       string        `json:"category"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	FilePath       string        `json:"file_path"`
	LineNumber     *int          `json:"line_number,omitempty"`
	CodeSnippet    *string       `json:"code_snippet,omitempty"`
	Recommendation string        `json:"recommendation"`
	Status         FindingStatus `json:"status"`
	Notes          *string       `json:"notes,omitempty"`
	NeedsReview    bool          `json:"needs_review"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewSecurityFinding creates an open finding for a project
func NewSecurityFinding(projectID string) *SecurityFinding {
	return &SecurityFinding{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Status:    FindingStatusOpen,
		CreatedAt: time.Now(),
	}
}

// DedupKey identifies near-identical findings: same file, line and
// category. The first occurrence wins.
func (f *SecurityFinding) DedupKey() string {
	line := ""
	if f.LineNumber != nil {
		line = strconv.Itoa(*f.LineNumber)
	}
	return f.FilePath + "\x00" + line + "\x00" + strings.ToLower(f.Category)
}
