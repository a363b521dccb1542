package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

const securitySystemPrompt = `You are an application security reviewer. You report concrete, verifiable vulnerabilities in the provided source code. You respond with a JSON array only, no prose.`

// securityItem is the wire shape of one finding in the provider response
type securityItem struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	FilePath       string `json:"file_path"`
	LineNumber     *int   `json:"line_number"`
	CodeSnippet    string `json:"code_snippet"`
	Recommendation string `json:"recommendation"`
}

// SecurityService runs the security analysis stage: prompt the
// provider, parse the structured response, normalize severities and
// persist the findings atomically.
type SecurityService struct {
	completer   Completer
	findingRepo *repositories.SecurityFindingRepository
}

// NewSecurityService creates a new security service
func NewSecurityService(completer Completer, findingRepo *repositories.SecurityFindingRepository) *SecurityService {
	return &SecurityService{
		completer:   completer,
		findingRepo: findingRepo,
	}
}

// Analyze scans the project for vulnerabilities and stores the result.
// An empty array is a valid outcome and completes the stage.
func (s *SecurityService) Analyze(ctx context.Context, projectID string, promptCtx *PromptContext) ([]*models.SecurityFinding, error) {
	response, err := s.completer.Complete(ctx, securitySystemPrompt, s.buildPrompt(promptCtx))
	if err != nil {
		return nil, fmt.Errorf("security analysis failed: %w", err)
	}

	findings, err := s.parseFindings(projectID, response)
	if err != nil {
		return nil, err
	}

	if err := s.findingRepo.CreateBatch(projectID, findings); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"findings":   len(findings),
	}).Info("Security analysis completed")

	return findings, nil
}

func (s *SecurityService) buildPrompt(promptCtx *PromptContext) string {
	var sb strings.Builder
	sb.WriteString("Review the following source code for security vulnerabilities.\n\n")
	sb.WriteString("Project summary:\n")
	sb.WriteString(promptCtx.Summary)
	sb.WriteString("\nRespond with a JSON array. Each element:\n")
	sb.WriteString(`{"severity": "critical|high|medium|low|info", "category": "...", "title": "...", "description": "...", "file_path": "...", "line_number": 1, "code_snippet": "...", "recommendation": "..."}`)
	sb.WriteString("\n\nReturn [] if no issues are found. Do not invent issues.\n\n")
	sb.WriteString("Source files:\n")
	for _, file := range promptCtx.Files {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", file.Path, file.Content)
	}
	return sb.String()
}

// parseFindings decodes the provider response into findings. Every
// reported item survives: unknown severities coerce to info and are
// flagged for review, duplicates (same file, line, category) collapse
// to their first occurrence.
func (s *SecurityService) parseFindings(projectID, response string) ([]*models.SecurityFinding, error) {
	raw, err := extractJSONArray(response)
	if err != nil {
		return nil, &models.ProviderParseError{Err: err}
	}

	var items []securityItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &models.ProviderParseError{Err: err}
	}

	seen := make(map[string]bool, len(items))
	findings := make([]*models.SecurityFinding, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		finding := models.NewSecurityFinding(projectID)
		finding.Category = item.Category
		finding.Title = item.Title
		finding.Description = item.Description
		finding.FilePath = item.FilePath
		finding.LineNumber = item.LineNumber
		finding.Recommendation = item.Recommendation
		if item.CodeSnippet != "" {
			snippet := item.CodeSnippet
			finding.CodeSnippet = &snippet
		}

		severity, coerced := models.NormalizeSeverity(item.Severity)
		finding.Severity = severity
		finding.NeedsReview = coerced
		if coerced {
			logger.Warnf("Unknown severity %q coerced to info for finding %q", item.Severity, item.Title)
		}

		key := finding.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		findings = append(findings, finding)
	}

	return findings, nil
}
