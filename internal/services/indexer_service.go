package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

const (
	// maxChunkChars bounds one embedded chunk
	maxChunkChars = 2000

	// embedBatchSize is how many chunks go to the provider per request
	embedBatchSize = 64
)

// IndexerService builds the vector index for a project: chunk the
// source files and documentation sections, embed the chunks in batches
// and persist them for retrieval.
type IndexerService struct {
	embedder  Embedder
	chunkRepo *repositories.ChunkRepository
}

// NewIndexerService creates a new indexer service
func NewIndexerService(embedder Embedder, chunkRepo *repositories.ChunkRepository) *IndexerService {
	return &IndexerService{
		embedder:  embedder,
		chunkRepo: chunkRepo,
	}
}

// Index chunks and embeds the project's files plus its documentation
// sections, then persists the chunks. A batch whose embedding request
// keeps failing is skipped, not fatal; the stage only fails when
// nothing could be indexed at all.
func (s *IndexerService) Index(ctx context.Context, projectID string, files []models.ProjectFile, doc *models.Documentation) (int, error) {
	var chunks []*models.Chunk

	for _, file := range files {
		if enry.IsBinary([]byte(file.Content)) || strings.TrimSpace(file.Content) == "" {
			continue
		}
		for i, piece := range ChunkText(file.Content, maxChunkChars) {
			chunks = append(chunks, models.NewChunk(projectID, file.Path, i, piece, nil))
		}
	}

	if doc != nil {
		for _, slot := range models.DocumentationSections {
			section := doc.Sections[slot]
			if strings.TrimSpace(section) == "" {
				continue
			}
			path := "docs/" + slot
			for i, piece := range ChunkText(section, maxChunkChars) {
				chunks = append(chunks, models.NewChunk(projectID, path, i, piece, nil))
			}
		}
	}

	if len(chunks) == 0 {
		return 0, nil
	}

	var indexed []*models.Chunk
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			logger.WithError(err).Warnf("Skipping embedding batch of %d chunks for project %s", len(batch), projectID)
			continue
		}
		for i, chunk := range batch {
			chunk.Embedding = vectors[i]
		}
		indexed = append(indexed, batch...)
	}

	if len(indexed) == 0 {
		return 0, fmt.Errorf("no chunks could be embedded")
	}

	if err := s.chunkRepo.CreateBatch(projectID, indexed); err != nil {
		return 0, err
	}

	logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"chunks":     len(indexed),
	}).Info("Vector index built")

	return len(indexed), nil
}

// ChunkText splits text into pieces of at most maxChars, preferring to
// break at a blank line, then at a line boundary, so chunks keep whole
// declarations together where possible.
func ChunkText(text string, maxChars int) []string {
	var chunks []string

	remaining := text
	for len(remaining) > 0 {
		if len(remaining) <= maxChars {
			if piece := strings.TrimSpace(remaining); piece != "" {
				chunks = append(chunks, piece)
			}
			break
		}

		window := remaining[:maxChars]
		cut := strings.LastIndex(window, "\n\n")
		// A break point in the first half of the window wastes too much
		// of the budget; fall back to a plain line break.
		if cut < maxChars/2 {
			cut = strings.LastIndex(window, "\n")
		}
		if cut < maxChars/2 {
			cut = maxChars
		}

		if piece := strings.TrimSpace(remaining[:cut]); piece != "" {
			chunks = append(chunks, piece)
		}
		remaining = remaining[cut:]
	}

	return chunks
}
