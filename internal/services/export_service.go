package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
)

// ExportService renders analysis results as downloadable spreadsheets
type ExportService struct {
	findingRepo     *repositories.SecurityFindingRepository
	improvementRepo *repositories.CodeImprovementRepository
}

// NewExportService creates a new export service
func NewExportService(findingRepo *repositories.SecurityFindingRepository, improvementRepo *repositories.CodeImprovementRepository) *ExportService {
	return &ExportService{
		findingRepo:     findingRepo,
		improvementRepo: improvementRepo,
	}
}

// ExportFindings writes the project's security findings to an xlsx
// workbook, ordered by severity
func (s *ExportService) ExportFindings(projectID string) ([]byte, error) {
	findings, err := s.findingRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Severity", "Category", "Title", "Description", "File", "Line", "Recommendation", "Status"}
	rows := make([][]interface{}, 0, len(findings))
	for _, f := range findings {
		line := ""
		if f.LineNumber != nil {
			line = fmt.Sprintf("%d", *f.LineNumber)
		}
		rows = append(rows, []interface{}{
			string(f.Severity), f.Category, f.Title, f.Description,
			f.FilePath, line, f.Recommendation, string(f.Status),
		})
	}

	return buildWorkbook("Security Findings", headers, rows)
}

// ExportImprovements writes the project's quality suggestions to an
// xlsx workbook, ordered by impact
func (s *ExportService) ExportImprovements(projectID string) ([]byte, error) {
	improvements, err := s.improvementRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Category", "Impact", "Title", "Description", "File", "Line", "Suggestion", "Effort", "Status"}
	rows := make([][]interface{}, 0, len(improvements))
	for _, imp := range improvements {
		line := ""
		if imp.LineNumber != nil {
			line = fmt.Sprintf("%d", *imp.LineNumber)
		}
		effort := ""
		if imp.EstimatedEffort != nil {
			effort = *imp.EstimatedEffort
		}
		rows = append(rows, []interface{}{
			string(imp.Category), string(imp.ImpactLevel), imp.Title, imp.Description,
			imp.FilePath, line, imp.Suggestion, effort, string(imp.Status),
		})
	}

	return buildWorkbook("Code Improvements", headers, rows)
}

func buildWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResultsSummary is the aggregate view of a project's analysis results
type ResultsSummary struct {
	Findings     map[models.Severity]int    `json:"findings"`
	Improvements map[models.ImpactLevel]int `json:"improvements"`
}

// Summarize counts findings by severity and improvements by impact
func (s *ExportService) Summarize(projectID string) (*ResultsSummary, error) {
	findings, err := s.findingRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	improvements, err := s.improvementRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, err
	}

	summary := &ResultsSummary{
		Findings:     make(map[models.Severity]int),
		Improvements: make(map[models.ImpactLevel]int),
	}
	for _, f := range findings {
		summary.Findings[f.Severity]++
	}
	for _, imp := range improvements {
		summary.Improvements[imp.ImpactLevel]++
	}
	return summary, nil
}
