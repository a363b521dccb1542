package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codelenshq/codelens/internal/middleware"
	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Upload creates a project from a multipart folder upload. An optional
// file_paths array, parallel to files, carries each file's path
// relative to the uploaded root; without it the part filename is used.
func (h *ProjectHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart form with files is required"})
		return
	}

	name := c.PostForm("project_name")
	paths := form.Value["file_paths"]
	var files []models.ProjectFile
	for i, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file " + fh.Filename})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file " + fh.Filename})
			return
		}
		path := fh.Filename
		if i < len(paths) && paths[i] != "" {
			path = paths[i]
		}
		files = append(files, models.ProjectFile{Path: path, Content: string(content)})
	}

	project, err := h.projectService.SubmitUpload(userID, name, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

type githubRequest struct {
	Name        string `json:"project_name" binding:"required"`
	GithubURL   string `json:"github_url" binding:"required"`
	Branch      string `json:"branch"`
	AccessToken string `json:"github_pat"`
}

// FromGitHub creates a project from a GitHub repository
func (h *ProjectHandler) FromGitHub(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req githubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_name and github_url are required"})
		return
	}

	project, err := h.projectService.SubmitGitHub(c.Request.Context(), userID, req.Name, req.GithubURL, req.Branch, req.AccessToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// List returns the user's projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	projects, err := h.projectService.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Get returns one project
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, err := h.projectService.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Status returns the project's pipeline progress, built for polling
func (h *ProjectHandler) Status(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, err := h.projectService.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               project.Status,
		"progress_percentage":  project.ProgressPercentage,
		"progress_stage":       project.ProgressStage,
		"current_step":         project.CurrentStep,
		"documentation_status": project.DocumentationStatus,
		"security_status":      project.SecurityStatus,
		"quality_status":       project.QualityStatus,
		"index_status":         project.IndexStatus,
		"error_message":        project.ErrorMessage,
	})
}

// Reprocess enqueues a fresh pipeline run
func (h *ProjectHandler) Reprocess(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	job, err := h.projectService.Reprocess(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// Delete removes a project and all derived results
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.projectService.Delete(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
