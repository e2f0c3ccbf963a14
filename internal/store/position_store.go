package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// PositionStore tracks the chain position of the last event applied to each token
type PositionStore interface {
	// GetTokenPosition retrieves the position of the last event applied to a token, nil when absent
	GetTokenPosition(ctx context.Context, token string) (*domain.Position, error)
	// SetTokenPosition stores the position of the last event applied to a token
	SetTokenPosition(ctx context.Context, token string, position domain.Position) error
}

// TokenName returns the position key of a token of an NFT contract
func TokenName(nftAddress, tokenID string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(nftAddress), tokenID)
}

func positionKey(token string) string {
	return fmt.Sprintf("token_position:%s", token)
}

type positionStore struct {
	db *gorm.DB
}

// NewPositionStore creates a new token position store
func NewPositionStore(db *gorm.DB) PositionStore {
	return &positionStore{db: db}
}

func (s *positionStore) GetTokenPosition(ctx context.Context, token string) (*domain.Position, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", positionKey(token)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token position: %w", err)
	}

	position, err := domain.ParsePosition(kv.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token position: %w", err)
	}
	return &position, nil
}

func (s *positionStore) SetTokenPosition(ctx context.Context, token string, position domain.Position) error {
	kv := schema.KeyValueStore{
		Key:   positionKey(token),
		Value: position.String(),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set token position: %w", err)
	}
	return nil
}
