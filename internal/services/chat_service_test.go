package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelenshq/codelens/internal/models"
)

func TestSourcePaths(t *testing.T) {
	chunk := func(path string) *models.Chunk {
		return &models.Chunk{FilePath: path}
	}

	t.Run("Best match first, duplicates removed", func(t *testing.T) {
		scored := []*models.ScoredChunk{
			{Chunk: chunk("b.go"), Similarity: 0.7},
			{Chunk: chunk("a.go"), Similarity: 0.9},
			{Chunk: chunk("b.go"), Similarity: 0.5},
			{Chunk: chunk("c.go"), Similarity: 0.8},
		}

		paths := sourcePaths(scored)

		assert.Equal(t, []string{"a.go", "c.go", "b.go"}, paths)
	})

	t.Run("Empty retrieval", func(t *testing.T) {
		assert.Empty(t, sourcePaths(nil))
	})
}

func TestChatPromptAssembly(t *testing.T) {
	service := NewChatService(nil, nil, nil, nil, nil)

	scored := []*models.ScoredChunk{
		{Chunk: &models.Chunk{FilePath: "auth.go", Content: "func Login() {}"}, Similarity: 0.9},
	}
	history := []*models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "What does this project do?"},
		{Role: models.ChatRoleAssistant, Content: "It serves an API."},
	}

	prompt := service.buildPrompt("How does login work?", scored, history)

	assert.Contains(t, prompt, "auth.go")
	assert.Contains(t, prompt, "func Login() {}")
	assert.Contains(t, prompt, "What does this project do?")
	assert.Contains(t, prompt, "It serves an API.")
	assert.Contains(t, prompt, "Question: How does login work?")
}
