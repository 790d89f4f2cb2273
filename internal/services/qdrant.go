package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// CandidatePoint is one embedded chunk of a scored resume.
type CandidatePoint struct {
	BatchID string
	Role    string
	Name    string
	Score   int
	Chunk   int
	Text    string
	Vector  []float32
}

type CandidateHit struct {
	BatchID    string
	Role       string
	Name       string
	Score      int
	Text       string
	Similarity float32
}

type CandidateVectorStore interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []CandidatePoint) error
	Search(ctx context.Context, vector []float32, role string, limit int) ([]CandidateHit, error)
	DeleteBatch(ctx context.Context, batchID string) error
	Close() error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (CandidateVectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// The REST port in QDRANT_URL is ignored unless it is already the gRPC one.
	port := 6334
	if p := parsed.Port(); p != "" && p != "6333" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

func (q *qdrantService) Upsert(ctx context.Context, points []CandidatePoint) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload, err := qdrant.TryValueMap(map[string]any{
			"batch_id": p.BatchID,
			"role":     p.Role,
			"name":     strings.ToValidUTF8(p.Name, ""),
			"score":    p.Score,
			"chunk":    p.Chunk,
			"text":     strings.ToValidUTF8(p.Text, ""),
		})
		if err != nil {
			return fmt.Errorf("failed to build payload for %s: %w", p.Name, err)
		}

		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

func (q *qdrantService) Search(ctx context.Context, vector []float32, role string, limit int) ([]CandidateHit, error) {
	var filter *qdrant.Filter
	if role != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("role", role),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]CandidateHit, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		hits = append(hits, CandidateHit{
			BatchID:    payload["batch_id"].GetStringValue(),
			Role:       payload["role"].GetStringValue(),
			Name:       payload["name"].GetStringValue(),
			Score:      int(payload["score"].GetIntegerValue()),
			Text:       payload["text"].GetStringValue(),
			Similarity: point.Score,
		})
	}

	return hits, nil
}

func (q *qdrantService) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("batch_id", batchID),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}

	return nil
}

func (q *qdrantService) Close() error {
	return q.client.Close()
}
