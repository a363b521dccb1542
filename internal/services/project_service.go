package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

const (
	// maxProjectFiles bounds one submission
	maxProjectFiles = 1000

	// maxProjectBytes bounds the total submitted content
	maxProjectBytes = 50 << 20
)

// ProjectService owns the project lifecycle: submission, listing,
// status and deletion. Submission validates and stores the code first,
// then creates the project row and enqueues the pipeline job, so a
// rejected submission leaves no trace.
type ProjectService struct {
	projectRepo *repositories.ProjectRepository
	jobRepo     *repositories.JobRepository
	storage     *StorageService
	github      *GitHubService
	quotas      *QuotaService
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo *repositories.ProjectRepository,
	jobRepo *repositories.JobRepository,
	storage *StorageService,
	github *GitHubService,
	quotas *QuotaService,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
		storage:     storage,
		github:      github,
		quotas:      quotas,
	}
}

// SubmitUpload creates a project from an uploaded file set and
// enqueues its pipeline run
func (s *ProjectService) SubmitUpload(userID uuid.UUID, name string, files []models.ProjectFile) (*models.Project, error) {
	if err := validateFileSet(files); err != nil {
		return nil, err
	}
	return s.submit(userID, name, models.SourceTypeUpload, files, nil, nil)
}

// SubmitGitHub creates a project from a GitHub repository and enqueues
// its pipeline run. The access token is used once for the fetch and is
// never persisted.
func (s *ProjectService) SubmitGitHub(ctx context.Context, userID uuid.UUID, name, url, branch, accessToken string) (*models.Project, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, models.NewValidationError("github_url", "Repository URL is required")
	}
	if branch == "" {
		branch = "main"
	}

	files, err := s.github.FetchRepository(ctx, url, branch, accessToken)
	if err != nil {
		return nil, err
	}
	if err := validateFileSet(files); err != nil {
		return nil, err
	}
	return s.submit(userID, name, models.SourceTypeGitHub, files, &url, &branch)
}

func (s *ProjectService) submit(userID uuid.UUID, name string, source models.SourceType, files []models.ProjectFile, url, branch *string) (*models.Project, error) {
	if err := s.quotas.CheckProjectCreation(userID.String()); err != nil {
		return nil, err
	}

	project := models.NewProject(userID, name, source)
	project.GithubURL = url
	project.GithubBranch = branch
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.SaveFiles(project.StoragePrefix, files); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(project); err != nil {
		s.cleanupStorage(project.StoragePrefix)
		return nil, err
	}

	job := models.NewJob(project.ID.String(), models.JobTypePipeline)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	if err := s.quotas.RecordProjectCreation(userID.String()); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"project_id": project.ID.String(),
		"source":     source,
		"files":      len(files),
	}).Info("Project submitted")

	return project, nil
}

// List returns the user's projects, newest first
func (s *ProjectService) List(userID uuid.UUID) ([]*models.Project, error) {
	return s.projectRepo.GetByUserID(userID.String())
}

// Get returns one project, enforcing ownership
func (s *ProjectService) Get(userID uuid.UUID, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &models.NotFoundError{Resource: "project", ID: projectID}
	}
	if project.UserID != userID {
		return nil, &models.ForbiddenError{Resource: "project"}
	}
	return project, nil
}

// Reprocess enqueues a fresh pipeline run for an existing project. A
// project with a run already pending or in flight is rejected.
func (s *ProjectService) Reprocess(userID uuid.UUID, projectID string) (*models.Job, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}

	active, err := s.jobRepo.HasActiveJob(project.ID.String(), models.JobTypePipeline)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, &models.ConflictError{Message: "A pipeline run is already in progress for this project"}
	}

	if err := s.projectRepo.SetStatus(project.ID.String(), models.ProjectStatusProcessing, nil); err != nil {
		return nil, err
	}

	job := models.NewJob(project.ID.String(), models.JobTypePipeline)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a project and everything derived from it. Safe while
// a pipeline run is in flight: subsequent stage writes become no-ops.
func (s *ProjectService) Delete(userID uuid.UUID, projectID string) error {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(project.ID.String()); err != nil {
		return err
	}
	s.cleanupStorage(project.StoragePrefix)

	logger.WithField("project_id", project.ID.String()).Info("Project deleted")
	return nil
}

func (s *ProjectService) cleanupStorage(prefix string) {
	if err := s.storage.DeletePrefix(prefix); err != nil {
		logger.WithError(err).Warnf("Failed to delete stored files under %s", prefix)
	}
}

// validateFileSet rejects empty, oversized or path-escaping
// submissions before any project row exists
func validateFileSet(files []models.ProjectFile) error {
	if len(files) == 0 {
		return models.NewValidationError("files", "At least one file is required")
	}
	if len(files) > maxProjectFiles {
		return models.NewValidationError("files", "Too many files in submission")
	}
	total := 0
	for _, file := range files {
		if strings.TrimSpace(file.Path) == "" {
			return models.NewValidationError("files", "Every file needs a path")
		}
		rel := strings.TrimLeft(strings.ReplaceAll(file.Path, "\\", "/"), "/")
		if !filepath.IsLocal(filepath.Clean(filepath.FromSlash(rel))) {
			return models.NewValidationError("files", fmt.Sprintf("Path %q is not project-relative", file.Path))
		}
		total += len(file.Content)
	}
	if total > maxProjectBytes {
		return models.NewValidationError("files", "Submission exceeds the size limit")
	}
	return nil
}
