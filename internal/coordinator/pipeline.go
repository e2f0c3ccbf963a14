package coordinator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/dedup"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/normalizer"
	syncengine "github.com/xampe11/nft-marketplace-project/internal/sync"
)

// pipeline runs a raw event through the normalizer, the ledger and the engine
type pipeline struct {
	normalizer normalizer.Normalizer
	ledger     *dedup.Ledger
	engine     syncengine.Engine
}

// process handles one raw event
// Normalization failures drop the event, transient engine errors release the ledger entry and are returned
func (p *pipeline) process(ctx context.Context, raw normalizer.RawEvent, source domain.EventSource) error {
	event, err := p.normalizer.Normalize(ctx, raw)
	if err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.String("event", raw.EventName()),
			zap.Uint64("block", raw.Block()),
			zap.String("source", string(source)),
		}
		switch {
		case errors.Is(err, domain.ErrRemovedLog), errors.Is(err, domain.ErrForeignContract):
			logger.DebugCtx(ctx, "Ignoring event", fields...)
		default:
			logger.WarnCtx(ctx, "Failed to normalize event, dropping", fields...)
		}
		return nil
	}
	event.Source = source

	identity := dedup.Identity(event, event.BlockNumber)
	if !p.ledger.TryAcquire(identity) {
		logger.DebugCtx(ctx, "Duplicate event delivery", zap.String("identity", identity), zap.String("source", string(source)))
		return nil
	}

	outcome, err := p.engine.Process(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrTransient) {
			p.ledger.Release(identity)
			return err
		}
		// Partial failures are owned by the saga journal from here on
		p.ledger.MarkProcessed(identity)
		return err
	}

	p.ledger.MarkProcessed(identity)
	logger.DebugCtx(ctx, "Event processed",
		zap.String("identity", identity),
		zap.String("outcome", string(outcome)),
		zap.String("source", string(source)))
	return nil
}
