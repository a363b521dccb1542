package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

// PipelineService runs the full analysis pipeline for one project:
// load the stored code, analyze its structure, then documentation,
// security and quality concurrently, then build the vector index.
//
// The first two stages are foundational: their failure aborts the run.
// The analysis stages fail independently; one stage's failure never
// blocks the others or the overall completion.
type PipelineService struct {
	projectRepo *repositories.ProjectRepository
	docRepo     *repositories.DocumentationRepository
	storage     *StorageService
	analyzer    *AnalyzerService
	docs        *DocumentationService
	security    *SecurityService
	quality     *QualityService
	indexer     *IndexerService
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	projectRepo *repositories.ProjectRepository,
	docRepo *repositories.DocumentationRepository,
	storage *StorageService,
	analyzer *AnalyzerService,
	docs *DocumentationService,
	security *SecurityService,
	quality *QualityService,
	indexer *IndexerService,
) *PipelineService {
	return &PipelineService{
		projectRepo: projectRepo,
		docRepo:     docRepo,
		storage:     storage,
		analyzer:    analyzer,
		docs:        docs,
		security:    security,
		quality:     quality,
		indexer:     indexer,
	}
}

// Run executes the pipeline for the job's project. Returning an error
// marks the job failed; a project deleted mid-run ends the job without
// error.
func (s *PipelineService) Run(ctx context.Context, job *models.Job) error {
	project, err := s.projectRepo.GetByID(job.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Infof("Project %s deleted before pipeline started, dropping job", job.ProjectID)
		return nil
	}

	log := logger.WithField("project_id", project.ID.String())
	log.Info("Pipeline started")

	// Stage 1: load the stored code. Foundational.
	s.advance(project.ID.String(), models.StageStoring, "Loading project files")
	files, err := s.storage.LoadFiles(project.StoragePrefix)
	if err != nil {
		return s.abort(project.ID.String(), fmt.Errorf("loading project files: %w", err))
	}
	if len(files) == 0 {
		return s.abort(project.ID.String(), fmt.Errorf("project has no stored files"))
	}

	// Stage 2: structure analysis. Foundational.
	s.advance(project.ID.String(), models.StageAnalyzing, "Analyzing project structure")
	analysis := s.analyzer.Analyze(files)
	if err := s.projectRepo.UpdateAnalysis(project.ID.String(), analysis.PrimaryLanguage, analysis.FileCount, analysis.TotalLines); err != nil {
		return s.abort(project.ID.String(), fmt.Errorf("recording structure analysis: %w", err))
	}

	promptCtx := s.analyzer.BuildPromptContext(files, analysis)

	// Stages 3-5 run concurrently. Each publishes its own stage status
	// and bumps progress to its ladder value when done; the progress
	// update is monotonic so completion order cannot move it backwards.
	var wg sync.WaitGroup
	results := struct {
		sync.Mutex
		completed int
		doc       *models.Documentation
	}{}

	run := func(stage models.PipelineStage, step string, fn func() error) {
		defer wg.Done()
		id := project.ID.String()
		s.setStageStatus(id, stage, models.StageStatusRunning)
		if err := fn(); err != nil {
			log.WithError(err).Errorf("Stage %s failed", stage)
			s.setStageStatus(id, stage, models.StageStatusFailed)
			return
		}
		s.setStageStatus(id, stage, models.StageStatusCompleted)
		s.advance(id, stage, step+" completed")
		results.Lock()
		results.completed++
		results.Unlock()
	}

	wg.Add(3)
	go run(models.StageDocumentation, "Documentation", func() error {
		doc, err := s.docs.Generate(ctx, project.ID.String(), promptCtx, analysis)
		if err == nil {
			results.Lock()
			results.doc = doc
			results.Unlock()
		}
		return err
	})
	go run(models.StageSecurity, "Security analysis", func() error {
		_, err := s.security.Analyze(ctx, project.ID.String(), promptCtx)
		return err
	})
	go run(models.StageQuality, "Quality analysis", func() error {
		_, err := s.quality.Analyze(ctx, project.ID.String(), promptCtx)
		return err
	})
	wg.Wait()

	// Stage 6: vector index. Independent like the analysis stages.
	wg.Add(1)
	run(models.StageIndexing, "Indexing", func() error {
		_, err := s.indexer.Index(ctx, project.ID.String(), files, results.doc)
		return err
	})

	if exists, err := s.projectRepo.Exists(project.ID.String()); err == nil && !exists {
		log.Info("Project deleted during pipeline, dropping job")
		return nil
	}

	if results.completed == 0 {
		return s.abort(project.ID.String(), fmt.Errorf("all analysis stages failed"))
	}

	s.advance(project.ID.String(), models.StageCompleted, "Analysis complete")
	if err := s.projectRepo.SetStatus(project.ID.String(), models.ProjectStatusCompleted, nil); err != nil {
		return err
	}

	log.Info("Pipeline completed")
	return nil
}

// advance moves the project to a stage's ladder percentage. Progress
// never moves backwards within a run.
func (s *PipelineService) advance(projectID string, stage models.PipelineStage, step string) {
	if err := s.projectRepo.UpdateProgress(projectID, stage, models.StagePercentage[stage], step); err != nil {
		logger.WithError(err).Warnf("Failed to update progress for project %s", projectID)
	}
}

func (s *PipelineService) setStageStatus(projectID string, stage models.PipelineStage, status models.StageStatus) {
	if err := s.projectRepo.SetStageStatus(projectID, stage, status); err != nil {
		logger.WithError(err).Warnf("Failed to update %s status for project %s", stage, projectID)
	}
}

// abort fails the whole run: a foundational stage broke, no partial
// results exist.
func (s *PipelineService) abort(projectID string, cause error) error {
	message := cause.Error()
	if err := s.projectRepo.SetStatus(projectID, models.ProjectStatusFailed, &message); err != nil {
		logger.WithError(err).Errorf("Failed to mark project %s failed", projectID)
	}
	logger.WithField("project_id", projectID).WithError(cause).Error("Pipeline aborted")
	return cause
}
