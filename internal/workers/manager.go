package workers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/internal/services"
	"github.com/codelenshq/codelens/pkg/logger"
)

// WorkerManager owns the background worker pool
type WorkerManager struct {
	workers  []Worker
	jobRepo  *repositories.JobRepository
	pipeline *services.PipelineService
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobRepo *repositories.JobRepository, pipeline *services.PipelineService) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:  make([]Worker, 0),
		jobRepo:  jobRepo,
		pipeline: pipeline,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartAll starts the worker pool based on environment configuration
func (wm *WorkerManager) StartAll() error {
	pipelineWorkers := wm.getWorkerCount("PIPELINE_WORKERS", 2)

	logger.Infof("Starting %d pipeline workers", pipelineWorkers)

	for i := 0; i < pipelineWorkers; i++ {
		worker := NewPipelineWorker(fmt.Sprintf("pipeline-%d", i+1), wm.jobRepo, wm.pipeline)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Infof("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("Error stopping worker %s", worker.GetWorkerID())
		}
	}

	wm.wg.Wait()

	logger.Infof("All workers stopped")
	return nil
}

// getWorkerCount reads a worker count from an environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		logger.Warnf("Invalid value for %s, using default: %d", envVar, defaultValue)
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Errorf("Worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}
