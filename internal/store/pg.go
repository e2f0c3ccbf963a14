package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

type pgStore struct {
	CursorStore
	PositionStore
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		CursorStore:   NewCursorStore(db),
		PositionStore: NewPositionStore(db),
		db:            db,
	}
}

// AutoMigrate creates or updates the tables of the store
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schema.KeyValueStore{}, &schema.SyncSaga{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 10 (if 0)
//   - MaxIdleConns: 2 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// CreateSaga inserts a saga unless its fingerprint is already journaled
func (s *pgStore) CreateSaga(ctx context.Context, saga *schema.SyncSaga) (bool, error) {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoNothing: true,
	}).Create(saga)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create saga: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetSagaByFingerprint retrieves a saga by its event fingerprint
func (s *pgStore) GetSagaByFingerprint(ctx context.Context, fingerprint string) (*schema.SyncSaga, error) {
	var saga schema.SyncSaga
	err := s.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&saga).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saga by fingerprint: %w", err)
	}
	return &saga, nil
}

// GetSaga retrieves a saga by id
func (s *pgStore) GetSaga(ctx context.Context, id string) (*schema.SyncSaga, error) {
	var saga schema.SyncSaga
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&saga).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get saga: %w", err)
	}
	return &saga, nil
}

// UpdateSaga persists the progress fields of a saga
func (s *pgStore) UpdateSaga(ctx context.Context, saga *schema.SyncSaga) error {
	saga.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).
		Model(&schema.SyncSaga{}).
		Where("id = ?", saga.ID).
		Updates(map[string]interface{}{
			"event":          saga.Event,
			"nft_id":         saga.NFTID,
			"next_step":      saga.NextStep,
			"status":         saga.Status,
			"attempts":       saga.Attempts,
			"last_error":     saga.LastError,
			"rollback_hints": saga.RollbackHints,
			"updated_at":     saga.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update saga: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update saga: %s not found", saga.ID)
	}
	return nil
}

// GetResumableSagas retrieves failed sagas that can still be retried
func (s *pgStore) GetResumableSagas(ctx context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error) {
	var sagas []schema.SyncSaga
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", schema.SagaStatusFailed, maxAttempts).
		Order("created_at ASC").
		Scopes(limitScope(limit)).
		Find(&sagas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get resumable sagas: %w", err)
	}
	return sagas, nil
}

// GetExhaustedSagas retrieves failed sagas that ran out of attempts
func (s *pgStore) GetExhaustedSagas(ctx context.Context, maxAttempts int, limit int) ([]schema.SyncSaga, error) {
	var sagas []schema.SyncSaga
	err := s.db.WithContext(ctx).
		Where("status = ? AND attempts >= ?", schema.SagaStatusFailed, maxAttempts).
		Order("created_at ASC").
		Scopes(limitScope(limit)).
		Find(&sagas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get exhausted sagas: %w", err)
	}
	return sagas, nil
}

// limitScope applies a limit when it is positive
func limitScope(limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	}
}
