package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

const documentationSystemPrompt = `You are a senior technical writer. You produce clear, accurate markdown documentation for software projects. Base everything strictly on the provided source code; never invent features.`

// DocumentationService generates project documentation from source code
// through the completion provider.
type DocumentationService struct {
	completer Completer
	docRepo   *repositories.DocumentationRepository
}

// NewDocumentationService creates a new documentation service
func NewDocumentationService(completer Completer, docRepo *repositories.DocumentationRepository) *DocumentationService {
	return &DocumentationService{
		completer: completer,
		docRepo:   docRepo,
	}
}

// Generate produces documentation for a project and persists it. One
// documentation row per project, regeneration replaces the previous one.
func (s *DocumentationService) Generate(ctx context.Context, projectID string, promptCtx *PromptContext, analysis *models.StructureAnalysis) (*models.Documentation, error) {
	prompt := s.buildPrompt(promptCtx)

	response, err := s.completer.Complete(ctx, documentationSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("documentation generation failed: %w", err)
	}

	content := stripMarkdownFence(response)
	content += s.statsFooter(analysis)

	sections := ParseSections(content)
	doc := models.NewDocumentation(projectID, content, sections)

	if err := s.docRepo.Upsert(doc); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"word_count": doc.WordCount,
	}).Info("Documentation generated")

	return doc, nil
}

func (s *DocumentationService) buildPrompt(promptCtx *PromptContext) string {
	var sb strings.Builder
	sb.WriteString("Write complete markdown documentation for the following project.\n\n")
	sb.WriteString("Project summary:\n")
	sb.WriteString(promptCtx.Summary)
	sb.WriteString("\nUse exactly these top-level headings, in this order:\n")
	sb.WriteString("# Overview\n# Setup\n# Architecture\n# API\n# Usage\n\n")
	sb.WriteString("If a section does not apply, keep the heading and state that briefly.\n\n")
	sb.WriteString("Source files:\n")
	for _, file := range promptCtx.Files {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", file.Path, file.Content)
	}
	return sb.String()
}

// statsFooter appends deterministic project statistics so the numbers
// never depend on the provider
func (s *DocumentationService) statsFooter(analysis *models.StructureAnalysis) string {
	var sb strings.Builder
	sb.WriteString("\n\n# Statistics\n\n")
	fmt.Fprintf(&sb, "- Files: %d\n", analysis.FileCount)
	fmt.Fprintf(&sb, "- Lines of code: %d\n", analysis.TotalLines)
	fmt.Fprintf(&sb, "- Primary language: %s\n", analysis.PrimaryLanguage)
	return sb.String()
}

// ParseSections splits generated markdown into the named section slots
// by top-level heading. Headings are matched case-insensitively; a slot
// with no matching heading stays absent from the map.
func ParseSections(content string) map[string]string {
	sections := make(map[string]string)
	lines := strings.Split(content, "\n")

	current := ""
	var body []string
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			flush()
			current = sectionSlot(strings.TrimSpace(line[2:]))
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// sectionSlot maps a heading title to a section slot name, or "" when
// the heading is not one of the known slots
func sectionSlot(title string) string {
	lowered := strings.ToLower(title)
	for _, slot := range models.DocumentationSections {
		if strings.HasPrefix(lowered, slot) {
			return slot
		}
	}
	return ""
}

// stripMarkdownFence removes a wrapping code fence the provider
// sometimes adds around the whole document
func stripMarkdownFence(response string) string {
	cleaned := strings.TrimSpace(response)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if nl := strings.Index(cleaned, "\n"); nl != -1 {
		cleaned = cleaned[nl+1:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
