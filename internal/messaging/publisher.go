package messaging

import (
	"context"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// Publisher defines the interface for publishing sync notifications to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a chain event applied to the data store
	PublishEvent(ctx context.Context, event *domain.ChainEvent) error
	// Close closes the connection
	Close()
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEvent(context.Context, *domain.ChainEvent) error { return nil }

func (nopPublisher) Close() {}
