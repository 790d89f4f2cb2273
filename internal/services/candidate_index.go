package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/resume-shortlister/internal/models"
)

const (
	defaultSearchLimit = 5
	excerptRunes       = 280
)

// ScoredDocument pairs a parsed result with the text it was scored from.
type ScoredDocument struct {
	Result models.EvaluationResult
	Text   string
}

// CandidateIndex keeps embedded resumes so earlier candidates can be found
// again by free-text search.
type CandidateIndex interface {
	Index(ctx context.Context, batchID, role string, docs []ScoredDocument) error
	Search(ctx context.Context, query, role string, limit int) ([]models.CandidateMatch, error)
}

type candidateIndex struct {
	store    CandidateVectorStore
	embedder Embedder
	chunker  TextChuncker
}

func NewCandidateIndex(store CandidateVectorStore, embedder Embedder) CandidateIndex {
	return &candidateIndex{
		store:    store,
		embedder: embedder,
		chunker:  NewTextChunker(),
	}
}

func (ci *candidateIndex) Index(ctx context.Context, batchID, role string, docs []ScoredDocument) error {
	var points []CandidatePoint

	for _, doc := range docs {
		chunks := ci.chunker.ChunkText(doc.Text, defaultChunkSize, defaultChunkOverlap)
		for i, chunk := range chunks {
			vector, err := ci.embedder.GenerateEmbedding(ctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d of %s: %w", i, doc.Result.Name, err)
			}

			points = append(points, CandidatePoint{
				BatchID: batchID,
				Role:    role,
				Name:    doc.Result.Name,
				Score:   doc.Result.Score,
				Chunk:   i,
				Text:    chunk,
				Vector:  vector,
			})
		}
	}

	// Re-indexing a batch replaces its points instead of duplicating them.
	if err := ci.store.DeleteBatch(ctx, batchID); err != nil {
		return fmt.Errorf("failed to clear batch %s: %w", batchID, err)
	}

	if err := ci.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("failed to index batch %s: %w", batchID, err)
	}
	return nil
}

// Search returns the best-matching chunk per candidate, most similar first.
func (ci *candidateIndex) Search(ctx context.Context, query, role string, limit int) ([]models.CandidateMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := ci.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Several chunks of one resume can match, so over-fetch before collapsing.
	hits, err := ci.store.Search(ctx, vector, role, limit*4)
	if err != nil {
		return nil, err
	}

	matches := []models.CandidateMatch{}
	seen := map[string]bool{}
	for _, hit := range hits {
		key := hit.BatchID + "/" + hit.Name
		if seen[key] {
			continue
		}
		seen[key] = true

		matches = append(matches, models.CandidateMatch{
			BatchID:    hit.BatchID,
			Role:       hit.Role,
			Name:       hit.Name,
			Score:      hit.Score,
			Similarity: hit.Similarity,
			Excerpt:    excerpt(hit.Text, excerptRunes),
		})
		if len(matches) == limit {
			break
		}
	}

	return matches, nil
}

func excerpt(text string, n int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
