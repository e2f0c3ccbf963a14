package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// memoryStore keeps every store table in process memory
// It is used when no database is configured, state is lost on restart
type memoryStore struct {
	mu        sync.RWMutex
	cursors   map[string]uint64
	positions map[string]domain.Position
	sagas     map[string]*schema.SyncSaga // by id
	byPrint   map[string]string           // fingerprint -> id
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		cursors:   make(map[string]uint64),
		positions: make(map[string]domain.Position),
		sagas:     make(map[string]*schema.SyncSaga),
		byPrint:   make(map[string]string),
	}
}

func (s *memoryStore) GetBlockCursor(_ context.Context, cursor string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[cursorKey(cursor)], nil
}

func (s *memoryStore) SetBlockCursor(_ context.Context, cursor string, blockNumber uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursorKey(cursor)] = blockNumber
	return nil
}

func (s *memoryStore) GetTokenPosition(_ context.Context, token string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, ok := s.positions[positionKey(token)]
	if !ok {
		return nil, nil
	}
	return &position, nil
}

func (s *memoryStore) SetTokenPosition(_ context.Context, token string, position domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[positionKey(token)] = position
	return nil
}

func (s *memoryStore) CreateSaga(_ context.Context, saga *schema.SyncSaga) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byPrint[saga.Fingerprint]; ok {
		return false, nil
	}
	if _, ok := s.sagas[saga.ID]; ok {
		return false, fmt.Errorf("failed to create saga: duplicate id %s", saga.ID)
	}

	now := time.Now()
	if saga.CreatedAt.IsZero() {
		saga.CreatedAt = now
	}
	saga.UpdatedAt = now

	stored := *saga
	s.sagas[saga.ID] = &stored
	s.byPrint[saga.Fingerprint] = saga.ID
	return true, nil
}

func (s *memoryStore) GetSagaByFingerprint(_ context.Context, fingerprint string) (*schema.SyncSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPrint[fingerprint]
	if !ok {
		return nil, nil
	}
	saga := *s.sagas[id]
	return &saga, nil
}

func (s *memoryStore) GetSaga(_ context.Context, id string) (*schema.SyncSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sagas[id]
	if !ok {
		return nil, nil
	}
	saga := *stored
	return &saga, nil
}

func (s *memoryStore) UpdateSaga(_ context.Context, saga *schema.SyncSaga) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sagas[saga.ID]
	if !ok {
		return fmt.Errorf("failed to update saga: %s not found", saga.ID)
	}

	saga.UpdatedAt = time.Now()
	stored.Event = saga.Event
	stored.NFTID = saga.NFTID
	stored.NextStep = saga.NextStep
	stored.Status = saga.Status
	stored.Attempts = saga.Attempts
	stored.LastError = saga.LastError
	stored.RollbackHints = saga.RollbackHints
	stored.UpdatedAt = saga.UpdatedAt
	return nil
}

func (s *memoryStore) GetResumableSagas(_ context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error) {
	return s.failedSagas(func(saga *schema.SyncSaga) bool { return saga.Attempts < maxAttempts }, limit), nil
}

func (s *memoryStore) GetExhaustedSagas(_ context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error) {
	return s.failedSagas(func(saga *schema.SyncSaga) bool { return saga.Attempts >= maxAttempts }, limit), nil
}

func (s *memoryStore) failedSagas(match func(*schema.SyncSaga) bool, limit int) []schema.SyncSaga {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sagas []schema.SyncSaga
	for _, saga := range s.sagas {
		if saga.Status == schema.SagaStatusFailed && match(saga) {
			sagas = append(sagas, *saga)
		}
	}

	sort.Slice(sagas, func(i, j int) bool {
		if sagas[i].CreatedAt.Equal(sagas[j].CreatedAt) {
			return sagas[i].ID < sagas[j].ID
		}
		return sagas[i].CreatedAt.Before(sagas[j].CreatedAt)
	})

	if limit > 0 && len(sagas) > limit {
		sagas = sagas[:limit]
	}
	return sagas
}
