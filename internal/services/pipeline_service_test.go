package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
)

type stubCompleter struct {
	fn func(system, prompt string) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.fn(system, prompt)
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

const testDocumentation = `# Overview
A small HTTP service.

# Setup
Build and run the binary.

# Architecture
One package.

# API
None exposed.

# Usage
Run it.`

const testFindings = `[{"severity": "high", "category": "injection", "title": "Unsanitized input", "description": "Input flows into a query.", "file_path": "main.go", "line_number": 3, "recommendation": "Use parameters."}]`

const testImprovements = `[{"category": "readability", "title": "Split main", "description": "main does too much.", "file_path": "main.go", "line_number": 1, "suggestion": "Extract a run function.", "impact_level": "low"}]`

// answerBySystemPrompt routes each analysis stage's completion request
// to its canned response, so single stages can be failed in isolation.
func answerBySystemPrompt(responses map[string]string, failures map[string]error) *stubCompleter {
	return &stubCompleter{fn: func(system, prompt string) (string, error) {
		if err, ok := failures[system]; ok {
			return "", err
		}
		if response, ok := responses[system]; ok {
			return response, nil
		}
		return "", fmt.Errorf("unexpected system prompt: %.40s", system)
	}}
}

func allStageResponses() map[string]string {
	return map[string]string{
		documentationSystemPrompt: testDocumentation,
		securitySystemPrompt:      testFindings,
		qualitySystemPrompt:       testImprovements,
	}
}

type pipelineFixture struct {
	projectRepo *repositories.ProjectRepository
	docRepo     *repositories.DocumentationRepository
	findingRepo *repositories.SecurityFindingRepository
	chunkRepo   *repositories.ChunkRepository
	storage     *StorageService
	pipeline    *PipelineService
	project     *models.Project
	job         *models.Job
}

func newPipelineFixture(t *testing.T, completer Completer, embedder Embedder) *pipelineFixture {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=ON")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	user := models.NewUser("owner@example.com", "Owner")
	user.PasswordHash = "hash"
	require.NoError(t, repositories.NewUserRepository(db).Create(user))

	projectRepo := repositories.NewProjectRepository(db)
	project := models.NewProject(user.ID, "Fixture Project", models.SourceTypeUpload)
	require.NoError(t, projectRepo.Create(project))

	job := models.NewJob(project.ID.String(), models.JobTypePipeline)
	require.NoError(t, repositories.NewJobRepository(db).Create(job))

	docRepo := repositories.NewDocumentationRepository(db)
	findingRepo := repositories.NewSecurityFindingRepository(db)
	improvementRepo := repositories.NewCodeImprovementRepository(db)
	chunkRepo := repositories.NewChunkRepository(db)
	storage := NewStorageService(t.TempDir())

	pipeline := NewPipelineService(
		projectRepo,
		docRepo,
		storage,
		NewAnalyzerService(),
		NewDocumentationService(completer, docRepo),
		NewSecurityService(completer, findingRepo),
		NewQualityService(completer, improvementRepo),
		NewIndexerService(embedder, chunkRepo),
	)

	return &pipelineFixture{
		projectRepo: projectRepo,
		docRepo:     docRepo,
		findingRepo: findingRepo,
		chunkRepo:   chunkRepo,
		storage:     storage,
		pipeline:    pipeline,
		project:     project,
		job:         job,
	}
}

func (f *pipelineFixture) storeCode(t *testing.T) {
	t.Helper()
	require.NoError(t, f.storage.SaveFiles(f.project.StoragePrefix, []models.ProjectFile{
		{Path: "main.go", Content: "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"},
		{Path: "README.md", Content: "# Fixture\n\nA test project.\n"},
	}))
}

func TestPipelineRunCompletes(t *testing.T) {
	f := newPipelineFixture(t, answerBySystemPrompt(allStageResponses(), nil), &stubEmbedder{})
	f.storeCode(t)

	assert.NoError(t, f.pipeline.Run(context.Background(), f.job))

	got, err := f.projectRepo.GetByID(f.project.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ProjectStatusCompleted, got.Status)
	assert.Equal(t, 100, got.ProgressPercentage)
	assert.Equal(t, models.StageCompleted, got.ProgressStage)
	assert.Equal(t, models.StageStatusCompleted, got.DocumentationStatus)
	assert.Equal(t, models.StageStatusCompleted, got.SecurityStatus)
	assert.Equal(t, models.StageStatusCompleted, got.QualityStatus)
	assert.Equal(t, models.StageStatusCompleted, got.IndexStatus)

	doc, err := f.docRepo.GetByProjectID(f.project.ID.String())
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "# Overview")

	count, err := f.chunkRepo.CountByProjectID(f.project.ID.String())
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestPipelineStageFailureDoesNotBlockOthers(t *testing.T) {
	failures := map[string]error{securitySystemPrompt: errors.New("provider down")}
	f := newPipelineFixture(t, answerBySystemPrompt(allStageResponses(), failures), &stubEmbedder{})
	f.storeCode(t)

	assert.NoError(t, f.pipeline.Run(context.Background(), f.job))

	got, err := f.projectRepo.GetByID(f.project.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ProjectStatusCompleted, got.Status)
	assert.Equal(t, models.StageStatusFailed, got.SecurityStatus)
	assert.Equal(t, models.StageStatusCompleted, got.DocumentationStatus)
	assert.Equal(t, models.StageStatusCompleted, got.QualityStatus)
	assert.Equal(t, models.StageStatusCompleted, got.IndexStatus)

	findings, err := f.findingRepo.GetByProjectID(f.project.ID.String())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestPipelineFoundationalFailureAborts(t *testing.T) {
	// No stored files at all: loading is a foundational stage, its
	// failure ends the run before any analysis starts
	f := newPipelineFixture(t, answerBySystemPrompt(allStageResponses(), nil), &stubEmbedder{})

	assert.Error(t, f.pipeline.Run(context.Background(), f.job))

	got, err := f.projectRepo.GetByID(f.project.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ProjectStatusFailed, got.Status)
	assert.NotNil(t, got.ErrorMessage)
	assert.Equal(t, models.StageStatusPending, got.DocumentationStatus)
	assert.Equal(t, models.StageStatusPending, got.SecurityStatus)
	assert.Equal(t, models.StageStatusPending, got.QualityStatus)
	assert.Equal(t, models.StageStatusPending, got.IndexStatus)
}

func TestPipelineFailsWhenEveryStageFails(t *testing.T) {
	providerDown := errors.New("provider down")
	failures := map[string]error{
		documentationSystemPrompt: providerDown,
		securitySystemPrompt:      providerDown,
		qualitySystemPrompt:       providerDown,
	}
	f := newPipelineFixture(t, answerBySystemPrompt(nil, failures), &stubEmbedder{err: providerDown})
	f.storeCode(t)

	assert.Error(t, f.pipeline.Run(context.Background(), f.job))

	got, err := f.projectRepo.GetByID(f.project.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ProjectStatusFailed, got.Status)
	assert.Equal(t, models.StageStatusFailed, got.DocumentationStatus)
	assert.Equal(t, models.StageStatusFailed, got.SecurityStatus)
	assert.Equal(t, models.StageStatusFailed, got.QualityStatus)
	assert.Equal(t, models.StageStatusFailed, got.IndexStatus)
}

func TestPipelineDropsJobForDeletedProject(t *testing.T) {
	f := newPipelineFixture(t, answerBySystemPrompt(allStageResponses(), nil), &stubEmbedder{})
	require.NoError(t, f.projectRepo.Delete(f.project.ID.String()))

	assert.NoError(t, f.pipeline.Run(context.Background(), f.job))
}

func TestPipelineDeleteMidRunLeavesNothingBehind(t *testing.T) {
	var f *pipelineFixture
	var deleteOnce sync.Once

	// The project disappears while the analysis stages are in flight;
	// every write after that point must be a no-op.
	completer := &stubCompleter{fn: func(system, prompt string) (string, error) {
		deleteOnce.Do(func() {
			assert.NoError(t, f.projectRepo.Delete(f.project.ID.String()))
		})
		return allStageResponses()[system], nil
	}}
	f = newPipelineFixture(t, completer, &stubEmbedder{})
	f.storeCode(t)

	assert.NoError(t, f.pipeline.Run(context.Background(), f.job))

	got, err := f.projectRepo.GetByID(f.project.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got)

	doc, err := f.docRepo.GetByProjectID(f.project.ID.String())
	require.NoError(t, err)
	assert.Nil(t, doc)

	count, err := f.chunkRepo.CountByProjectID(f.project.ID.String())
	require.NoError(t, err)
	assert.Zero(t, count)
}
