package jetstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/messaging"
	"github.com/xampe11/nft-marketplace-project/internal/normalizer"
)

// ConsumerConfig holds the configuration of the decoded event consumer
type ConsumerConfig struct {
	Config
	StreamName     string
	ConsumerName   string
	Subject        string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	Workers        int
}

// Consumer consumes decoded marketplace events from a durable JetStream consumer
type Consumer interface {
	// Run consumes messages until the context is done
	Run(ctx context.Context) error
	// Close closes the connection
	Close()
}

type consumer struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	handler messaging.Handler
	config  ConsumerConfig
}

// NewConsumer creates a new JetStream consumer feeding handler
func NewConsumer(cfg ConsumerConfig, natsJS adapter.NatsJetStream, handler messaging.Handler) (Consumer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}

	nc, js, err := connect(cfg.Config, natsJS)
	if err != nil {
		return nil, err
	}

	return &consumer{
		nc:      nc,
		js:      js,
		handler: handler,
		config:  cfg,
	}, nil
}

func (c *consumer) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting event consumer",
		zap.String("stream", c.config.StreamName),
		zap.String("consumer", c.config.ConsumerName),
		zap.String("subject", c.config.Subject))

	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.config.StreamName, jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.config.AckWaitTimeout,
		MaxDeliver:    c.config.MaxDeliver,
		FilterSubject: c.config.Subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	pool := pond.NewPool(c.config.Workers, pond.WithQueueSize(c.config.Workers*4))
	defer pool.StopAndWait()

	msgChan := make(chan adapter.Message, 100)
	sub, err := cons.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Shutting down event consumer")
			return ctx.Err()
		case msg := <-msgChan:
			pool.Submit(func() {
				c.handleMessage(ctx, msg)
			})
		}
	}
}

// handleMessage processes a single NATS message
// Unparseable payloads are terminated, transient failures are redelivered
func (c *consumer) handleMessage(ctx context.Context, msg adapter.Message) {
	var deliveries uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		deliveries = metadata.NumDelivered
	}

	raw, err := normalizer.ParseModernLog(msg.Data())
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to parse event"), zap.String("subject", msg.Subject()))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	logger.DebugCtx(ctx, "Received event",
		zap.String("event", raw.Event),
		zap.Uint64("block", raw.Block()),
		zap.String("subject", msg.Subject()),
		zap.Uint64("deliveryCount", deliveries))

	if err := c.handler.Handle(ctx, raw, domain.EventSourceJetStream); err != nil {
		if errors.Is(err, domain.ErrTransient) {
			logger.WarnCtx(ctx, "Transient failure, requesting redelivery", zap.Error(err), zap.Uint64("deliveryCount", deliveries))
			if err := msg.Nak(); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
			}
			return
		}
		// Partial failures are resumed from the saga journal, not by redelivery
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to handle event"), zap.String("event", raw.Event))
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}
}

// Close closes the NATS connection
func (c *consumer) Close() {
	if c.nc == nil {
		return
	}

	c.nc.Close()
}
