package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the overall lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// SourceType represents how the project's code was submitted
type SourceType string

const (
	SourceTypeUpload SourceType = "upload"
	SourceTypeGitHub SourceType = "github"
)

// PipelineStage is one discrete step of the processing pipeline.
// Stage order is fixed; a stage never reports complete before its
// prerequisites.
type PipelineStage string

const (
	StageQueued        PipelineStage = "queued"
	StageStoring       PipelineStage = "storing"
	StageAnalyzing     PipelineStage = "analyzing_structure"
	StageDocumentation PipelineStage = "generating_documentation"
	StageSecurity      PipelineStage = "security_running"
	StageQuality       PipelineStage = "quality_running"
	StageIndexing      PipelineStage = "indexing_embeddings"
	StageCompleted     PipelineStage = "completed"
)

// StagePercentage is the progress ladder for the pipeline. Percentages
// only ever move forward within a run.
var StagePercentage = map[PipelineStage]int{
	StageQueued:        0,
	StageStoring:       10,
	StageAnalyzing:     20,
	StageDocumentation: 40,
	StageSecurity:      60,
	StageQuality:       75,
	StageIndexing:      90,
	StageCompleted:     100,
}

// StageStatus tracks one analysis stage independently of the project
// status, so "stage not reached" and "completed with zero results" are
// distinguishable.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

type Project struct {
	ID                  uuid.UUID     `json:"id"`
	UserID              uuid.UUID     `json:"user_id"`
	Name                string        `json:"name"`
	SourceType          SourceType    `json:"source_type"`
	GithubURL           *string       `json:"github_url,omitempty"`
	GithubBranch        *string       `json:"github_branch,omitempty"`
	StoragePrefix       string        `json:"-"`
	PrimaryLanguage     *string       `json:"primary_language,omitempty"`
	TotalFiles          int           `json:"total_files"`
	TotalLines          int           `json:"total_lines"`
	Status              ProjectStatus `json:"status"`
	ProgressPercentage  int           `json:"progress_percentage"`
	ProgressStage       PipelineStage `json:"progress_stage"`
	CurrentStep         string        `json:"current_step"`
	DocumentationStatus StageStatus   `json:"documentation_status"`
	SecurityStatus      StageStatus   `json:"security_status"`
	QualityStatus       StageStatus   `json:"quality_status"`
	IndexStatus         StageStatus   `json:"index_status"`
	ErrorMessage        *string       `json:"error_message,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// NewProject creates a new Project in its initial queued state
func NewProject(userID uuid.UUID, name string, sourceType SourceType) *Project {
	now := time.Now()
	id := uuid.New()
	return &Project{
		ID:                  id,
		UserID:              userID,
		Name:                strings.TrimSpace(name),
		SourceType:          sourceType,
		StoragePrefix:       fmt.Sprintf("projects/%s/code", id),
		Status:              ProjectStatusProcessing,
		ProgressPercentage:  0,
		ProgressStage:       StageQueued,
		DocumentationStatus: StageStatusPending,
		SecurityStatus:      StageStatusPending,
		QualityStatus:       StageStatusPending,
		IndexStatus:         StageStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "Project name is required")
	}
	if len(p.Name) < 2 {
		return NewValidationError("name", "Project name must be at least 2 characters")
	}
	if len(p.Name) > 255 {
		return NewValidationError("name", "Project name must be less than 255 characters")
	}
	if p.SourceType != SourceTypeUpload && p.SourceType != SourceTypeGitHub {
		return NewValidationError("source_type", "Unknown source type")
	}
	return nil
}

// IsProcessing checks if the pipeline is still running
func (p *Project) IsProcessing() bool {
	return p.Status == ProjectStatusProcessing
}

// IsTerminal checks if the project reached a terminal state
func (p *Project) IsTerminal() bool {
	return p.Status == ProjectStatusCompleted || p.Status == ProjectStatusFailed
}
