package messaging

import (
	"context"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/normalizer"
)

// Handler handles raw events received from the message broker
//
//go:generate mockgen -source=handler.go -destination=../mocks/handler.go -package=mocks -mock_names=Handler=MockHandler
type Handler interface {
	// Handle processes a raw event and blocks until it is done
	// Errors wrapping domain.ErrTransient ask for a redelivery
	Handle(ctx context.Context, raw normalizer.RawEvent, source domain.EventSource) error
}
