package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"alfredoptarigan/resume-shortlister/internal/models"
)

// ErrBatchNotFound is returned for unknown or evicted batches.
var ErrBatchNotFound = errors.New("screening batch not found")

// BatchStore keeps recent batches so the dashboard can serve exports and
// JSON views after the page has rendered.
type BatchStore interface {
	Save(ctx context.Context, batch *models.ScreeningBatch) error
	Get(ctx context.Context, id uuid.UUID) (*models.ScreeningBatch, error)
	Close() error
}

type memoryBatchStore struct {
	mu       sync.RWMutex
	capacity int
	order    []uuid.UUID
	batches  map[uuid.UUID]*models.ScreeningBatch
}

// NewMemoryBatchStore keeps at most capacity batches, evicting the oldest.
func NewMemoryBatchStore(capacity int) BatchStore {
	if capacity <= 0 {
		capacity = 50
	}
	return &memoryBatchStore{
		capacity: capacity,
		batches:  make(map[uuid.UUID]*models.ScreeningBatch, capacity),
	}
}

func (s *memoryBatchStore) Save(_ context.Context, batch *models.ScreeningBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[batch.ID]; !ok {
		s.order = append(s.order, batch.ID)
	}
	s.batches[batch.ID] = batch

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.batches, oldest)
	}
	return nil
}

func (s *memoryBatchStore) Get(_ context.Context, id uuid.UUID) (*models.ScreeningBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}

func (s *memoryBatchStore) Close() error {
	return nil
}

type redisBatchStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBatchStore connects to redisURL and keeps each batch for ttl.
func NewRedisBatchStore(ctx context.Context, redisURL string, ttl time.Duration) (BatchStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse redis connection string: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisBatchStoreWithClient(client, ttl), nil
}

func NewRedisBatchStoreWithClient(client *redis.Client, ttl time.Duration) BatchStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisBatchStore{client: client, ttl: ttl}
}

func batchKey(id uuid.UUID) string {
	return "screening:batch:" + id.String()
}

func (s *redisBatchStore) Save(ctx context.Context, batch *models.ScreeningBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if err := s.client.Set(ctx, batchKey(batch.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store batch %s: %w", batch.ID, err)
	}
	return nil
}

func (s *redisBatchStore) Get(ctx context.Context, id uuid.UUID) (*models.ScreeningBatch, error) {
	data, err := s.client.Get(ctx, batchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load batch %s: %w", id, err)
	}

	var batch models.ScreeningBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode batch %s: %w", id, err)
	}
	return &batch, nil
}

func (s *redisBatchStore) Close() error {
	return s.client.Close()
}
