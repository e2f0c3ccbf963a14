package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
)

// LogHandler is called for every log delivered by a subscription
type LogHandler func(vLog types.Log) error

// ReadyFunc is called once the logs mined before a subscription was established are delivered
// head is the last block covered by that catch-up
type ReadyFunc func(head uint64)

// Subscriber delivers the logs matching a filter query from query.FromBlock onwards
//
//go:generate mockgen -source=subscriber.go -destination=../../mocks/ethereum_subscriber.go -package=mocks -mock_names=Subscriber=MockLogSubscriber
type Subscriber interface {
	// Subscribe blocks delivering logs to handler until the context is done or the subscription fails
	// The logs of [query.FromBlock, head] are fetched by range once the live subscription is established,
	// so a log may be delivered twice. Handler errors are logged and never end the subscription
	Subscribe(ctx context.Context, query ethereum.FilterQuery, handler LogHandler, ready ReadyFunc) error
}

type ethSubscriber struct {
	client EthereumClient
}

// NewSubscriber creates a new Ethereum log subscriber
func NewSubscriber(client EthereumClient) Subscriber {
	return &ethSubscriber{client: client}
}

func (s *ethSubscriber) Subscribe(ctx context.Context, query ethereum.FilterQuery, handler LogHandler, ready ReadyFunc) error {
	// Log subscriptions only push logs mined after they are established
	live := query
	live.FromBlock = nil
	live.ToBlock = nil

	logs := make(chan types.Log)
	sub, err := s.client.SubscribeFilterLogs(ctx, live, logs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSubscriptionFailed, err)
	}
	defer func() {
		sub.Unsubscribe()
		logger.DebugCtx(ctx, "Unsubscribed from ethereum logs")
	}()

	head, err := s.catchUp(ctx, query, handler)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSubscriptionFailed, err)
	}
	if ready != nil {
		ready(head)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("%w: %w", domain.ErrSubscriptionFailed, err)
		case vLog := <-logs:
			s.deliver(ctx, handler, vLog)
		}
	}
}

// catchUp delivers the logs of [query.FromBlock, head] in chain order and returns head
func (s *ethSubscriber) catchUp(ctx context.Context, query ethereum.FilterQuery, handler LogHandler) (uint64, error) {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	if query.FromBlock == nil || query.FromBlock.Uint64() > head {
		return head, nil
	}

	query.ToBlock = new(big.Int).SetUint64(head)
	logs, err := s.client.FilterLogs(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch logs of blocks %d-%d: %w", query.FromBlock.Uint64(), head, err)
	}
	SortLogs(logs)

	logger.InfoCtx(ctx, "Caught up subscription",
		zap.Uint64("fromBlock", query.FromBlock.Uint64()),
		zap.Uint64("toBlock", head),
		zap.Int("logs", len(logs)))

	for _, vLog := range logs {
		s.deliver(ctx, handler, vLog)
	}
	return head, nil
}

func (s *ethSubscriber) deliver(ctx context.Context, handler LogHandler, vLog types.Log) {
	if err := handler(vLog); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Error handling log"),
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint64("block", vLog.BlockNumber))
	}
}

// SortLogs sorts logs in chain order
func SortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.Index < b.Index
	})
}
