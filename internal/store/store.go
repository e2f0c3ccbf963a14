package store

import (
	"context"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetBlockCursor retrieves the last processed block number of a cursor, 0 when absent
	GetBlockCursor(ctx context.Context, cursor string) (uint64, error)
	// SetBlockCursor stores the last processed block number of a cursor
	SetBlockCursor(ctx context.Context, cursor string, blockNumber uint64) error

	// GetTokenPosition retrieves the position of the last event applied to a token, nil when absent
	GetTokenPosition(ctx context.Context, token string) (*domain.Position, error)
	// SetTokenPosition stores the position of the last event applied to a token
	SetTokenPosition(ctx context.Context, token string, position domain.Position) error

	// CreateSaga inserts a saga and reports whether it was inserted
	// A saga with the same fingerprint is left untouched
	CreateSaga(ctx context.Context, saga *schema.SyncSaga) (bool, error)
	// GetSagaByFingerprint retrieves a saga by its event fingerprint, nil when absent
	GetSagaByFingerprint(ctx context.Context, fingerprint string) (*schema.SyncSaga, error)
	// GetSaga retrieves a saga by id, nil when absent
	GetSaga(ctx context.Context, id string) (*schema.SyncSaga, error)
	// UpdateSaga persists the progress fields of a saga
	UpdateSaga(ctx context.Context, saga *schema.SyncSaga) error
	// GetResumableSagas retrieves failed sagas with fewer than maxAttempts attempts, oldest first
	GetResumableSagas(ctx context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error)
	// GetExhaustedSagas retrieves failed sagas with at least maxAttempts attempts, oldest first
	GetExhaustedSagas(ctx context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error)
}
