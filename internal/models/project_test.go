package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStagePercentages(t *testing.T) {
	t.Run("Ladder is strictly increasing", func(t *testing.T) {
		order := []PipelineStage{
			StageQueued, StageStoring, StageAnalyzing, StageDocumentation,
			StageSecurity, StageQuality, StageIndexing, StageCompleted,
		}

		for i := 1; i < len(order); i++ {
			assert.Greater(t, StagePercentage[order[i]], StagePercentage[order[i-1]],
				"stage %s must advance past %s", order[i], order[i-1])
		}
	})

	t.Run("Endpoints", func(t *testing.T) {
		assert.Equal(t, 0, StagePercentage[StageQueued])
		assert.Equal(t, 100, StagePercentage[StageCompleted])
	})
}

func TestNewProject(t *testing.T) {
	userID := uuid.New()
	project := NewProject(userID, "  My Project  ", SourceTypeUpload)

	assert.Equal(t, "My Project", project.Name)
	assert.Equal(t, userID, project.UserID)
	assert.Equal(t, ProjectStatusProcessing, project.Status)
	assert.Equal(t, StageQueued, project.ProgressStage)
	assert.Equal(t, 0, project.ProgressPercentage)
	assert.Equal(t, StageStatusPending, project.DocumentationStatus)
	assert.Equal(t, StageStatusPending, project.SecurityStatus)
	assert.Equal(t, StageStatusPending, project.QualityStatus)
	assert.Equal(t, StageStatusPending, project.IndexStatus)
	assert.True(t, strings.HasPrefix(project.StoragePrefix, "projects/"))
	assert.True(t, project.IsProcessing())
	assert.False(t, project.IsTerminal())
}

func TestProjectValidate(t *testing.T) {
	testCases := []struct {
		name    string
		project *Project
		wantErr bool
	}{
		{name: "Valid upload project", project: NewProject(uuid.New(), "Sample", SourceTypeUpload)},
		{name: "Valid github project", project: NewProject(uuid.New(), "Sample", SourceTypeGitHub)},
		{name: "Empty name", project: NewProject(uuid.New(), "   ", SourceTypeUpload), wantErr: true},
		{name: "Single character name", project: NewProject(uuid.New(), "x", SourceTypeUpload), wantErr: true},
		{name: "Overlong name", project: NewProject(uuid.New(), strings.Repeat("n", 256), SourceTypeUpload), wantErr: true},
		{name: "Unknown source type", project: NewProject(uuid.New(), "Sample", SourceType("svn")), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.project.Validate()
			if tc.wantErr {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuotaResetTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 12, 0, time.UTC)

	reset := QuotaResetTime(now)

	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), reset)
	assert.True(t, reset.After(now))
}
