package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// CursorStore defines the interface for storing and retrieving block cursors
type CursorStore interface {
	// GetBlockCursor retrieves the last processed block number of a cursor
	GetBlockCursor(ctx context.Context, cursor string) (uint64, error)
	// SetBlockCursor stores the last processed block number of a cursor
	SetBlockCursor(ctx context.Context, cursor string, blockNumber uint64) error
}

// CursorName returns the cursor of a tracked NFT contract on a chain
func CursorName(chain domain.Chain, nftAddress string) string {
	return fmt.Sprintf("%s:%s", chain, strings.ToLower(nftAddress))
}

func cursorKey(cursor string) string {
	return fmt.Sprintf("block_cursor:%s", cursor)
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

// GetBlockCursor retrieves the last processed block number of a cursor
func (s *cursorStore) GetBlockCursor(ctx context.Context, cursor string) (uint64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", cursorKey(cursor)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // Return 0 if no cursor exists
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor stores the last processed block number of a cursor
func (s *cursorStore) SetBlockCursor(ctx context.Context, cursor string, blockNumber uint64) error {
	kv := schema.KeyValueStore{
		Key:   cursorKey(cursor),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	err := s.db.WithContext(ctx).Save(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}
