package services

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/codelenshq/codelens/internal/models"
)

const (
	// maxImportantFiles caps the ranked subset of flagged files
	maxImportantFiles = 10

	// promptCharBudget bounds the total file content handed to a prompt
	promptCharBudget = 48000

	// perFileCharCap truncates any single file inside a prompt
	perFileCharCap = 6000
)

var manifestNames = map[string]bool{
	"package.json":     true,
	"requirements.txt": true,
	"setup.py":         true,
	"pyproject.toml":   true,
	"cargo.toml":       true,
	"pom.xml":          true,
	"build.gradle":     true,
	"composer.json":    true,
	"go.mod":           true,
	"gemfile":          true,
	"makefile":         true,
	"dockerfile":       true,
}

var entrypointNames = map[string]bool{
	"main.py":   true,
	"main.go":   true,
	"main.rs":   true,
	"app.py":    true,
	"app.js":    true,
	"index.js":  true,
	"index.ts":  true,
	"server.js": true,
	"server.go": true,
}

// AnalyzerService computes structural statistics over a submitted file
// set. All methods are pure functions of their input.
type AnalyzerService struct{}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService() *AnalyzerService {
	return &AnalyzerService{}
}

// Analyze walks the file set and produces file/line counts, a
// per-language line histogram, the dominant language and the ranked
// important files. Deterministic for a given input.
func (s *AnalyzerService) Analyze(files []models.ProjectFile) *models.StructureAnalysis {
	analysis := &models.StructureAnalysis{
		FileCount:       len(files),
		PrimaryLanguage: "Unknown",
	}

	stats := make(map[string]*models.LanguageStat)

	for _, file := range files {
		if enry.IsBinary([]byte(file.Content)) {
			analysis.BinaryFiles = append(analysis.BinaryFiles, file.Path)
			continue
		}

		lines := countLines(file.Content)
		analysis.TotalLines += lines

		language := enry.GetLanguage(path.Base(file.Path), []byte(file.Content))
		if language == "" {
			continue
		}
		stat, ok := stats[language]
		if !ok {
			stat = &models.LanguageStat{Language: language, FirstPath: file.Path}
			stats[language] = stat
		}
		stat.Lines += lines
		stat.Files++
	}

	for _, stat := range stats {
		analysis.Languages = append(analysis.Languages, stat)
	}

	// Dominant language: most lines, ties broken by file count, then by
	// the lexicographically smallest first-seen path for determinism.
	sort.Slice(analysis.Languages, func(i, j int) bool {
		a, b := analysis.Languages[i], analysis.Languages[j]
		if a.Lines != b.Lines {
			return a.Lines > b.Lines
		}
		if a.Files != b.Files {
			return a.Files > b.Files
		}
		return a.FirstPath < b.FirstPath
	})
	if len(analysis.Languages) > 0 {
		analysis.PrimaryLanguage = analysis.Languages[0].Language
	}

	analysis.ImportantFiles = s.identifyImportantFiles(files)

	return analysis
}

// identifyImportantFiles flags readme, manifest and entrypoint files by
// filename pattern, ranked readmes first, capped at maxImportantFiles
func (s *AnalyzerService) identifyImportantFiles(files []models.ProjectFile) []string {
	var readmes, manifests, entrypoints []string

	for _, file := range files {
		name := strings.ToLower(path.Base(file.Path))
		switch {
		case strings.Contains(name, "readme"):
			readmes = append(readmes, file.Path)
		case manifestNames[name]:
			manifests = append(manifests, file.Path)
		case entrypointNames[name]:
			entrypoints = append(entrypoints, file.Path)
		}
	}

	sort.Strings(readmes)
	sort.Strings(manifests)
	sort.Strings(entrypoints)

	important := append(append(readmes, manifests...), entrypoints...)
	if len(important) > maxImportantFiles {
		important = important[:maxImportantFiles]
	}
	return important
}

// PromptContext is the token-budget-constrained project view handed to
// the prompted analysis clients.
type PromptContext struct {
	Summary string
	Files   []models.ProjectFile
}

// BuildPromptContext selects file contents for a prompt: important
// files first, then the largest remaining text files, until the
// character budget is exhausted.
func (s *AnalyzerService) BuildPromptContext(files []models.ProjectFile, analysis *models.StructureAnalysis) *PromptContext {
	important := make(map[string]bool, len(analysis.ImportantFiles))
	for _, p := range analysis.ImportantFiles {
		important[p] = true
	}
	binary := make(map[string]bool, len(analysis.BinaryFiles))
	for _, p := range analysis.BinaryFiles {
		binary[p] = true
	}

	byPath := make(map[string]models.ProjectFile, len(files))
	var rest []models.ProjectFile
	for _, file := range files {
		if binary[file.Path] || strings.TrimSpace(file.Content) == "" {
			continue
		}
		if important[file.Path] {
			byPath[file.Path] = file
		} else {
			rest = append(rest, file)
		}
	}

	// Important files keep their importance ranking, readmes first
	ordered := make([]models.ProjectFile, 0, len(files))
	for _, p := range analysis.ImportantFiles {
		if file, ok := byPath[p]; ok {
			ordered = append(ordered, file)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if len(rest[i].Content) != len(rest[j].Content) {
			return len(rest[i].Content) > len(rest[j].Content)
		}
		return rest[i].Path < rest[j].Path
	})
	ordered = append(ordered, rest...)

	ctx := &PromptContext{Summary: s.summarize(analysis)}
	budget := promptCharBudget
	for _, file := range ordered {
		if budget <= 0 {
			break
		}
		content := file.Content
		if len(content) > perFileCharCap {
			content = content[:perFileCharCap]
		}
		if len(content) > budget {
			content = content[:budget]
		}
		ctx.Files = append(ctx.Files, models.ProjectFile{Path: file.Path, Content: content})
		budget -= len(content)
	}

	return ctx
}

func (s *AnalyzerService) summarize(analysis *models.StructureAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Files: %d, Lines: %d, Primary language: %s\n",
		analysis.FileCount, analysis.TotalLines, analysis.PrimaryLanguage)
	for i, stat := range analysis.Languages {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s: %d lines in %d files\n", stat.Language, stat.Lines, stat.Files)
	}
	if len(analysis.ImportantFiles) > 0 {
		fmt.Fprintf(&sb, "Key files: %s\n", strings.Join(analysis.ImportantFiles, ", "))
	}
	return sb.String()
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
