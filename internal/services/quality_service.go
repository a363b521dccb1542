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

const qualitySystemPrompt = `You are a pragmatic senior code reviewer. You suggest concrete, actionable improvements to the provided source code. You respond with a JSON array only, no prose.`

// qualityItem is the wire shape of one suggestion in the provider response
type qualityItem struct {
	Category        string `json:"category"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	FilePath        string `json:"file_path"`
	LineNumber      *int   `json:"line_number"`
	CodeSnippet     string `json:"code_snippet"`
	Suggestion      string `json:"suggestion"`
	ImpactLevel     string `json:"impact_level"`
	EstimatedEffort string `json:"estimated_effort"`
}

// QualityService runs the code quality stage: prompt the provider,
// parse the structured response, normalize categories and impact
// levels and persist the suggestions atomically.
type QualityService struct {
	completer       Completer
	improvementRepo *repositories.CodeImprovementRepository
}

// NewQualityService creates a new quality service
func NewQualityService(completer Completer, improvementRepo *repositories.CodeImprovementRepository) *QualityService {
	return &QualityService{
		completer:       completer,
		improvementRepo: improvementRepo,
	}
}

// Analyze reviews the project for quality improvements and stores the
// result. An empty array is a valid outcome and completes the stage.
func (s *QualityService) Analyze(ctx context.Context, projectID string, promptCtx *PromptContext) ([]*models.CodeImprovement, error) {
	response, err := s.completer.Complete(ctx, qualitySystemPrompt, s.buildPrompt(promptCtx))
	if err != nil {
		return nil, fmt.Errorf("quality analysis failed: %w", err)
	}

	improvements, err := s.parseImprovements(projectID, response)
	if err != nil {
		return nil, err
	}

	if err := s.improvementRepo.CreateBatch(projectID, improvements); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"project_id":   projectID,
		"improvements": len(improvements),
	}).Info("Quality analysis completed")

	return improvements, nil
}

func (s *QualityService) buildPrompt(promptCtx *PromptContext) string {
	var sb strings.Builder
	sb.WriteString("Review the following source code and suggest improvements.\n\n")
	sb.WriteString("Project summary:\n")
	sb.WriteString(promptCtx.Summary)
	sb.WriteString("\nRespond with a JSON array. Each element:\n")
	sb.WriteString(`{"category": "performance|readability|best_practice|maintainability|security|error_handling", "title": "...", "description": "...", "file_path": "...", "line_number": 1, "code_snippet": "...", "suggestion": "...", "impact_level": "high|medium|low", "estimated_effort": "..."}`)
	sb.WriteString("\n\nReturn [] if the code needs no changes.\n\n")
	sb.WriteString("Source files:\n")
	for _, file := range promptCtx.Files {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", file.Path, file.Content)
	}
	return sb.String()
}

// parseImprovements decodes the provider response into suggestions.
// Unknown categories coerce to maintainability, unknown impact levels
// to low; either coercion flags the row for review instead of dropping
// it. Duplicates collapse to their first occurrence.
func (s *QualityService) parseImprovements(projectID, response string) ([]*models.CodeImprovement, error) {
	raw, err := extractJSONArray(response)
	if err != nil {
		return nil, &models.ProviderParseError{Err: err}
	}

	var items []qualityItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &models.ProviderParseError{Err: err}
	}

	seen := make(map[string]bool, len(items))
	improvements := make([]*models.CodeImprovement, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		improvement := models.NewCodeImprovement(projectID)
		improvement.Title = item.Title
		improvement.Description = item.Description
		improvement.FilePath = item.FilePath
		improvement.LineNumber = item.LineNumber
		improvement.Suggestion = item.Suggestion
		if item.CodeSnippet != "" {
			snippet := item.CodeSnippet
			improvement.CodeSnippet = &snippet
		}
		if item.EstimatedEffort != "" {
			effort := item.EstimatedEffort
			improvement.EstimatedEffort = &effort
		}

		category, coercedCategory := models.NormalizeCategory(item.Category)
		impact, coercedImpact := models.NormalizeImpact(item.ImpactLevel)
		improvement.Category = category
		improvement.ImpactLevel = impact
		improvement.NeedsReview = coercedCategory || coercedImpact
		if coercedCategory {
			logger.Warnf("Unknown category %q coerced to maintainability for suggestion %q", item.Category, item.Title)
		}

		key := improvement.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		improvements = append(improvements, improvement)
	}

	return improvements, nil
}
