package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/codelenshq/codelens/internal/models"
	"github.com/codelenshq/codelens/internal/repositories"
	"github.com/codelenshq/codelens/pkg/logger"
)

const (
	// retrievalTopK is how many chunks ground one answer
	retrievalTopK = 5

	// historyExchanges is how many prior question/answer pairs ride
	// along in the prompt
	historyExchanges = 3

	// notReadyReply is returned before the project's index exists
	notReadyReply = "This project is still being indexed. Please try again once processing has finished."
)

const chatSystemPrompt = `You are a codebase assistant. Answer questions about the project using only the provided code excerpts and conversation history. When the excerpts do not contain the answer, say so; never guess.`

// ChatAnswer is one assistant reply with the source files it drew from
type ChatAnswer struct {
	Message *models.ChatMessage `json:"message"`
	Sources []string            `json:"sources"`
}

// ChatService answers questions about a project, grounded on the
// project's own vector index. Retrieval is always scoped to the one
// project; chunks from any other project must never appear.
type ChatService struct {
	completer Completer
	embedder  Embedder
	chunkRepo *repositories.ChunkRepository
	chatRepo  *repositories.ChatMessageRepository
	quotas    *QuotaService
}

// NewChatService creates a new chat service
func NewChatService(completer Completer, embedder Embedder, chunkRepo *repositories.ChunkRepository, chatRepo *repositories.ChatMessageRepository, quotas *QuotaService) *ChatService {
	return &ChatService{
		completer: completer,
		embedder:  embedder,
		chunkRepo: chunkRepo,
		chatRepo:  chatRepo,
		quotas:    quotas,
	}
}

// Ask answers a question about a project. The question and the reply
// are both appended to the conversation; the question counts against
// the user's daily message quota before any provider call is made.
func (s *ChatService) Ask(ctx context.Context, userID, projectID, question string) (*ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, models.NewValidationError("message", "Message is required")
	}
	if len(question) > 4000 {
		return nil, models.NewValidationError("message", "Message must be less than 4000 characters")
	}

	if err := s.quotas.CheckMessage(userID); err != nil {
		return nil, err
	}

	indexed, err := s.chunkRepo.CountByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if indexed == 0 {
		return s.record(userID, projectID, question, notReadyReply, nil)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, err
	}

	scored, err := s.chunkRepo.SearchSimilar(projectID, vectors[0], retrievalTopK)
	if err != nil {
		return nil, err
	}

	history, err := s.chatRepo.GetRecent(projectID, historyExchanges*2)
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, chatSystemPrompt, s.buildPrompt(question, scored, history))
	if err != nil {
		return nil, err
	}

	return s.record(userID, projectID, question, strings.TrimSpace(reply), sourcePaths(scored))
}

// record appends the exchange, charges the quota and returns the reply
func (s *ChatService) record(userID, projectID, question, reply string, sources []string) (*ChatAnswer, error) {
	if err := s.chatRepo.Create(models.NewChatMessage(projectID, models.ChatRoleUser, question)); err != nil {
		return nil, err
	}
	assistant := models.NewChatMessage(projectID, models.ChatRoleAssistant, reply)
	if err := s.chatRepo.Create(assistant); err != nil {
		return nil, err
	}
	if err := s.quotas.RecordMessage(userID); err != nil {
		return nil, err
	}

	logger.WithField("project_id", projectID).Debug("Chat exchange recorded")

	return &ChatAnswer{Message: assistant, Sources: sources}, nil
}

func (s *ChatService) buildPrompt(question string, scored []*models.ScoredChunk, history []*models.ChatMessage) string {
	var sb strings.Builder

	sb.WriteString("Relevant code excerpts:\n")
	for _, sc := range scored {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", sc.Chunk.FilePath, sc.Chunk.Content)
	}

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}

// sourcePaths returns the distinct file paths behind the retrieved
// chunks, best match first
func sourcePaths(scored []*models.ScoredChunk) []string {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	seen := make(map[string]bool, len(scored))
	var paths []string
	for _, sc := range scored {
		if seen[sc.Chunk.FilePath] {
			continue
		}
		seen[sc.Chunk.FilePath] = true
		paths = append(paths, sc.Chunk.FilePath)
	}
	return paths
}

// History returns the full conversation for a project, oldest first
func (s *ChatService) History(projectID string) ([]*models.ChatMessage, error) {
	return s.chatRepo.GetByProjectID(projectID)
}
