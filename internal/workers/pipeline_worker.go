package workers

import (
	"context"
	"time"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/internal/services"
	"github.com/codelenshq/codelens/pkg/logger"
)

const (
	// pollInterval is how long a worker sleeps when no job is pending
	pollInterval = 5 * time.Second

	// errorBackoff is how long a worker sleeps after a polling error
	errorBackoff = 10 * time.Second
)

// PipelineWorker claims pending pipeline jobs and runs the full
// analysis pipeline for each
type PipelineWorker struct {
	*BaseWorker
	jobRepo  *repositories.JobRepository
	pipeline *services.PipelineService
}

// NewPipelineWorker creates a new pipeline worker
func NewPipelineWorker(workerID string, jobRepo *repositories.JobRepository, pipeline *services.PipelineService) *PipelineWorker {
	return &PipelineWorker{
		BaseWorker: NewBaseWorker(workerID, models.JobTypePipeline),
		jobRepo:    jobRepo,
		pipeline:   pipeline,
	}
}

// Start begins the pipeline worker's poll loop
func (w *PipelineWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("Pipeline worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Pipeline worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Pipeline worker %s stopping", w.WorkerID)
			return nil
		default:
			job, err := w.jobRepo.GetNextPendingJob(models.JobTypePipeline, w.WorkerID)
			if err != nil {
				logger.WithError(err).Errorf("Pipeline worker %s failed to claim a job", w.WorkerID)
				sleepOrDone(ctx, w.StopChan, errorBackoff)
				continue
			}
			if job == nil {
				sleepOrDone(ctx, w.StopChan, pollInterval)
				continue
			}

			w.processJob(ctx, job)
		}
	}
}

// processJob runs one claimed job to completion and records its outcome
func (w *PipelineWorker) processJob(ctx context.Context, job *models.Job) {
	logger.Infof("Pipeline worker %s processing job %s", w.WorkerID, job.ID)

	job.MarkStarted()
	if err := w.jobRepo.Update(job); err != nil {
		logger.WithError(err).Errorf("Pipeline worker %s failed to update job %s", w.WorkerID, job.ID)
		return
	}

	if err := w.pipeline.Run(ctx, job); err != nil {
		job.SetError(err.Error())
		job.MarkFailed()
		logger.WithError(err).Errorf("Pipeline worker %s failed job %s", w.WorkerID, job.ID)
	} else {
		job.MarkCompleted()
		logger.Infof("Pipeline worker %s completed job %s", w.WorkerID, job.ID)
	}

	if err := w.jobRepo.Update(job); err != nil {
		logger.WithError(err).Errorf("Pipeline worker %s failed to update job %s", w.WorkerID, job.ID)
	}
}

// sleepOrDone waits out the delay unless the worker is told to stop
func sleepOrDone(ctx context.Context, stop chan struct{}, delay time.Duration) {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	case <-stop:
	}
}
