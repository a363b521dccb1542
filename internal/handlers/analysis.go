package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codelenshq/codelens/internal/middleware"
	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/internal/services"
)

// AnalysisHandler serves the per-project analysis results:
// documentation, security findings, quality improvements and their
// spreadsheet exports. Every route checks project ownership first.
type AnalysisHandler struct {
	projectService  *services.ProjectService
	exportService   *services.ExportService
	docRepo         *repositories.DocumentationRepository
	findingRepo     *repositories.SecurityFindingRepository
	improvementRepo *repositories.CodeImprovementRepository
}

func NewAnalysisHandler(
	projectService *services.ProjectService,
	exportService *services.ExportService,
	docRepo *repositories.DocumentationRepository,
	findingRepo *repositories.SecurityFindingRepository,
	improvementRepo *repositories.CodeImprovementRepository,
) *AnalysisHandler {
	return &AnalysisHandler{
		projectService:  projectService,
		exportService:   exportService,
		docRepo:         docRepo,
		findingRepo:     findingRepo,
		improvementRepo: improvementRepo,
	}
}

// authorize loads the project and enforces ownership
func (h *AnalysisHandler) authorize(c *gin.Context) (*models.Project, bool) {
	userID, _ := middleware.GetUserID(c)
	project, err := h.projectService.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return project, true
}

// GetDocumentation returns the project's generated documentation
func (h *AnalysisHandler) GetDocumentation(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	doc, err := h.docRepo.GetByProjectID(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, gin.H{
			"documentation": nil,
			"stage_status":  project.DocumentationStatus,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentation": doc,
		"stage_status":  project.DocumentationStatus,
	})
}

type documentationUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateDocumentation replaces the documentation content with a manual
// edit; sections and word count are re-derived from the new content
func (h *AnalysisHandler) UpdateDocumentation(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	var req documentationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	existing, err := h.docRepo.GetByProjectID(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}
	if existing == nil {
		respondError(c, &models.NotFoundError{Resource: "documentation", ID: project.ID.String()})
		return
	}

	sections := services.ParseSections(req.Content)
	wordCount := len(strings.Fields(req.Content))
	if err := h.docRepo.UpdateContent(project.ID.String(), req.Content, sections, wordCount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"word_count": wordCount})
}

// ListFindings returns the project's security findings, worst first
func (h *AnalysisHandler) ListFindings(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	findings, err := h.findingRepo.GetByProjectID(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"findings":     findings,
		"stage_status": project.SecurityStatus,
	})
}

type findingStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// UpdateFindingStatus moves one finding through triage
func (h *AnalysisHandler) UpdateFindingStatus(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	var req findingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	status, valid := models.ValidFindingStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown finding status"})
		return
	}

	finding, err := h.findingRepo.GetByID(c.Param("findingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if finding == nil || finding.ProjectID != project.ID.String() {
		respondError(c, &models.NotFoundError{Resource: "finding", ID: c.Param("findingId")})
		return
	}

	if err := h.findingRepo.UpdateStatus(finding.ID, status, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ListImprovements returns the project's quality suggestions
func (h *AnalysisHandler) ListImprovements(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	improvements, err := h.improvementRepo.GetByProjectID(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"improvements": improvements,
		"stage_status": project.QualityStatus,
	})
}

type improvementStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateImprovementStatus moves one suggestion through triage
func (h *AnalysisHandler) UpdateImprovementStatus(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	var req improvementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	status, valid := models.ValidImprovementStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown improvement status"})
		return
	}

	improvement, err := h.improvementRepo.GetByID(c.Param("improvementId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if improvement == nil || improvement.ProjectID != project.ID.String() {
		respondError(c, &models.NotFoundError{Resource: "improvement", ID: c.Param("improvementId")})
		return
	}

	if err := h.improvementRepo.UpdateStatus(improvement.ID, status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Summary returns result counts per severity and impact
func (h *AnalysisHandler) Summary(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	summary, err := h.exportService.Summarize(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ExportFindings downloads the findings as a spreadsheet
func (h *AnalysisHandler) ExportFindings(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportFindings(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("%s-security-findings.xlsx", project.Name), data)
}

// ExportImprovements downloads the suggestions as a spreadsheet
func (h *AnalysisHandler) ExportImprovements(c *gin.Context) {
	project, ok := h.authorize(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportImprovements(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	sendWorkbook(c, fmt.Sprintf("%s-code-improvements.xlsx", project.Name), data)
}

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
