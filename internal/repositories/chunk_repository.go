package repositories

import (
	"database/sql"
	"encoding/json"
	"math"
	"sort"

	"github.com/codelenshq/codelens/internal/models"
)

// ChunkRepository handles database operations for embedding chunks
type ChunkRepository struct {
	db *sql.DB
}

// NewChunkRepository creates a new ChunkRepository
func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch persists a set of chunks for a project in one transaction.
// If the project row is gone, the batch becomes a no-op.
func (r *ChunkRepository) CreateBatch(projectID string, chunks []*models.Chunk) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM projects WHERE id = ?`, projectID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return nil // project deleted mid-run
	}

	query := `
		INSERT INTO chunks (id, project_id, file_path, ordinal, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(
			chunk.ID,
			chunk.ProjectID,
			chunk.FilePath,
			chunk.Ordinal,
			chunk.Content,
			embeddingJSON,
			chunk.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountByProjectID returns the number of indexed chunks for a project
func (r *ChunkRepository) CountByProjectID(projectID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM chunks WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// SearchSimilar returns the top-k chunks of one project ranked by cosine
// similarity to the query vector. The project filter is part of the SQL
// query itself so rows of other projects are never even read.
func (r *ChunkRepository) SearchSimilar(projectID string, query []float32, k int) ([]*models.ScoredChunk, error) {
	rows, err := r.db.Query(`
		SELECT id, project_id, file_path, ordinal, content, embedding, created_at
		FROM chunks
		WHERE project_id = ?
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []*models.ScoredChunk
	for rows.Next() {
		chunk := &models.Chunk{}
		var embeddingJSON []byte
		if err := rows.Scan(
			&chunk.ID,
			&chunk.ProjectID,
			&chunk.FilePath,
			&chunk.Ordinal,
			&chunk.Content,
			&embeddingJSON,
			&chunk.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(embeddingJSON, &chunk.Embedding); err != nil {
			return nil, err
		}
		scored = append(scored, &models.ScoredChunk{
			Chunk:      chunk,
			Similarity: CosineSimilarity(query, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// DeleteByProjectID removes all chunks of a project
func (r *ChunkRepository) DeleteByProjectID(projectID string) error {
	_, err := r.db.Exec(`DELETE FROM chunks WHERE project_id = ?`, projectID)
	return err
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
