package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/dedup"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/normalizer"
	ethprovider "github.com/xampe11/nft-marketplace-project/internal/providers/ethereum"
	"github.com/xampe11/nft-marketplace-project/internal/store"
	syncengine "github.com/xampe11/nft-marketplace-project/internal/sync"
)

// Config holds the configuration for the coordinator
type Config struct {
	Chain              domain.Chain
	NFTAddress         common.Address
	MarketplaceAddress common.Address
	StartBlock         uint64        // 0 resumes from the cursor or the chain head
	QueueSize          int           // Pending events per stream
	CursorSaveFreq     uint64        // Save cursor every N blocks
	CursorSaveDelay    time.Duration // Or save cursor every N seconds
	ResubscribeMaxWait time.Duration // Upper bound of the resubscribe backoff
	TransientMaxWait   time.Duration // How long a transiently failing event is retried
}

// Coordinator drives the backfill and the live subscriptions
type Coordinator interface {
	// Run backfills from the resume block to the chain head then follows live events until the context is done
	Run(ctx context.Context) error

	// ResumeBlock returns the first block to process
	ResumeBlock(ctx context.Context) (uint64, error)

	// Handle processes a raw event from an external source on its stream queue and waits for the result
	Handle(ctx context.Context, raw normalizer.RawEvent, source domain.EventSource) error

	// Close drains the worker queues
	Close()
}

type coordinator struct {
	config     Config
	client     ethprovider.EthereumClient
	subscriber ethprovider.Subscriber
	store      store.Store
	clock      adapter.Clock
	pipeline   *pipeline
	queues     *queues
	cursorName string
	closeOnce  sync.Once

	cursorMu       sync.Mutex
	lastSavedBlock uint64
	lastSaveTime   time.Time
	inFlight       map[uint64]int    // live logs queued or running, by block
	holds          map[Stream]uint64 // first block a stream may not have delivered yet
	doneBlock      uint64            // highest block of a finished live log
	pinnedBlock    uint64            // lowest block of an event that kept failing, 0 when none
}

// NewCoordinator creates a new coordinator
// The ledger is shared by the backfill, the live subscriptions and Handle
func NewCoordinator(
	config Config,
	client ethprovider.EthereumClient,
	subscriber ethprovider.Subscriber,
	norm normalizer.Normalizer,
	engine syncengine.Engine,
	st store.Store,
	clock adapter.Clock,
) Coordinator {
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.CursorSaveFreq == 0 {
		config.CursorSaveFreq = 1
	}
	if config.CursorSaveDelay <= 0 {
		config.CursorSaveDelay = 30 * time.Second
	}
	if config.ResubscribeMaxWait <= 0 {
		config.ResubscribeMaxWait = time.Minute
	}
	if config.TransientMaxWait <= 0 {
		config.TransientMaxWait = 30 * time.Second
	}

	return &coordinator{
		config:     config,
		client:     client,
		subscriber: subscriber,
		store:      st,
		clock:      clock,
		pipeline: &pipeline{
			normalizer: norm,
			ledger:     dedup.NewLedger(),
			engine:     engine,
		},
		queues:       newQueues(config.QueueSize),
		cursorName:   store.CursorName(config.Chain, config.NFTAddress.Hex()),
		lastSaveTime: clock.Now(),
		inFlight:     make(map[uint64]int),
		holds:        make(map[Stream]uint64),
	}
}

func (c *coordinator) ResumeBlock(ctx context.Context) (uint64, error) {
	if c.config.StartBlock > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", string(c.config.Chain)), zap.Uint64("block", c.config.StartBlock))
		return c.config.StartBlock, nil
	}

	lastBlock, err := c.store.GetBlockCursor(ctx, c.cursorName)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if lastBlock > 0 {
		logger.InfoCtx(ctx, "Resuming from last processed block", zap.String("chain", string(c.config.Chain)), zap.Uint64("block", lastBlock+1))
		return lastBlock + 1, nil
	}

	latestBlock, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	logger.InfoCtx(ctx, "Starting from latest block", zap.String("chain", string(c.config.Chain)), zap.Uint64("block", latestBlock))
	return latestBlock, nil
}

func (c *coordinator) Run(ctx context.Context) error {
	fromBlock, err := c.ResumeBlock(ctx)
	if err != nil {
		return err
	}

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}

	if fromBlock <= head {
		if err := c.backfill(ctx, fromBlock, head); err != nil {
			return err
		}
	}

	return c.live(ctx, head+1)
}

func (c *coordinator) Handle(ctx context.Context, raw normalizer.RawEvent, source domain.EventSource) error {
	stream, ok := StreamOf(raw.EventName())
	if !ok {
		// Unknown events are rejected by the normalizer
		return c.pipeline.process(ctx, raw, source)
	}

	task := c.queues.submit(stream, func() error {
		return c.pipeline.process(ctx, raw, source)
	})
	return task.Wait()
}

func (c *coordinator) Close() {
	c.closeOnce.Do(c.queues.stopAndWait)
}

// query returns the filter of the given streams
func (c *coordinator) query(streams ...Stream) ethereum.FilterQuery {
	var addresses []common.Address
	var topics []common.Hash
	seen := make(map[common.Address]bool)

	for _, stream := range streams {
		var address common.Address
		switch stream {
		case StreamTransfer:
			address = c.config.NFTAddress
			topics = append(topics, ethprovider.TransferEventSignature)
		case StreamListed:
			address = c.config.MarketplaceAddress
			topics = append(topics, ethprovider.ItemListedEventSignature)
		case StreamSold:
			address = c.config.MarketplaceAddress
			topics = append(topics, ethprovider.ItemBoughtEventSignature, ethprovider.ItemSoldEventSignature)
		case StreamCanceled:
			address = c.config.MarketplaceAddress
			topics = append(topics, ethprovider.ItemCanceledEventSignature)
		}
		if !seen[address] {
			seen[address] = true
			addresses = append(addresses, address)
		}
	}

	return ethereum.FilterQuery{
		Addresses: addresses,
		Topics:    [][]common.Hash{topics},
	}
}

// backfill processes the logs of [fromBlock, toBlock] strictly in chain order
func (c *coordinator) backfill(ctx context.Context, fromBlock, toBlock uint64) error {
	logger.InfoCtx(ctx, "Starting backfill", zap.Uint64("fromBlock", fromBlock), zap.Uint64("toBlock", toBlock))

	query := c.query(Streams...)
	query.FromBlock = new(big.Int).SetUint64(fromBlock)
	query.ToBlock = new(big.Int).SetUint64(toBlock)

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to backfill blocks %d-%d: %w", fromBlock, toBlock, err)
	}
	ethprovider.SortLogs(logs)

	for i, vLog := range logs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.processLog(ctx, vLog, domain.EventSourceBackfill); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("message", "Error handling backfilled log"),
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Uint64("block", vLog.BlockNumber))
		}

		// Block fully processed
		if i == len(logs)-1 || logs[i+1].BlockNumber != vLog.BlockNumber {
			c.saveCursor(ctx, vLog.BlockNumber)
		}
	}
	c.saveCursor(ctx, toBlock)

	logger.InfoCtx(ctx, "Backfill completed", zap.Int("logs", len(logs)), zap.Uint64("toBlock", toBlock))
	return nil
}

// processLog runs a log through the pipeline, retrying transient failures
// A log that still fails keeps the cursor below its block until restart
func (c *coordinator) processLog(ctx context.Context, vLog types.Log, source domain.EventSource) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(100*time.Millisecond, c.config.TransientMaxWait/4)
	b.MaxElapsedTime = c.config.TransientMaxWait

	operation := func() error {
		err := c.pipeline.process(ctx, &normalizer.LegacyLog{Log: vLog}, source)
		if err != nil && !errors.Is(err, domain.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	if err != nil && (errors.Is(err, domain.ErrTransient) || ctx.Err() != nil) {
		c.pin(ctx, vLog)
	}
	return err
}

// live subscribes every stream from fromBlock until the context is done
func (c *coordinator) live(ctx context.Context, fromBlock uint64) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, stream := range Streams {
		g.Go(func() error {
			return c.follow(gctx, stream, fromBlock)
		})
	}
	return g.Wait()
}

// follow keeps a subscription of one stream alive
// A failed subscription is re-established from the last block not known to be complete with exponential backoff
func (c *coordinator) follow(ctx context.Context, stream Stream, fromBlock uint64) error {
	logger.InfoCtx(ctx, "Starting event subscription", zap.String("stream", string(stream)), zap.Uint64("fromBlock", fromBlock))

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(time.Second, c.config.ResubscribeMaxWait)
	b.MaxInterval = c.config.ResubscribeMaxWait
	b.MaxElapsedTime = 0 // Retry until the context is done

	lastBlock := fromBlock
	handler := func(vLog types.Log) error {
		b.Reset()
		if vLog.BlockNumber > lastBlock {
			lastBlock = vLog.BlockNumber
		}

		c.track(vLog.BlockNumber)
		c.queues.submit(stream, func() error {
			err := c.processLog(ctx, vLog, domain.EventSourceLive)
			if err != nil {
				logger.ErrorCtx(ctx, err,
					zap.String("message", "Error handling live log"),
					zap.String("stream", string(stream)),
					zap.String("txHash", vLog.TxHash.Hex()),
					zap.Uint64("block", vLog.BlockNumber))
			}
			c.done(ctx, vLog.BlockNumber)
			return err
		})
		return nil
	}

	ready := func(head uint64) {
		if head+1 > lastBlock {
			lastBlock = head + 1
		}
		c.release(ctx, stream)
	}

	operation := func() error {
		c.hold(stream, lastBlock)

		query := c.query(stream)
		query.FromBlock = new(big.Int).SetUint64(lastBlock)

		err := c.subscriber.Subscribe(ctx, query, handler, ready)
		c.hold(stream, lastBlock)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errors.New("subscription ended")
		}
		return err
	}

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "Subscription failed, resubscribing",
			zap.Error(err),
			zap.String("stream", string(stream)),
			zap.Uint64("fromBlock", lastBlock),
			zap.Duration("retryIn", d))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}

// track registers a live log queued for processing
func (c *coordinator) track(blockNumber uint64) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()
	c.inFlight[blockNumber]++
}

// done releases a processed live log
func (c *coordinator) done(ctx context.Context, blockNumber uint64) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()

	if c.inFlight[blockNumber]--; c.inFlight[blockNumber] <= 0 {
		delete(c.inFlight, blockNumber)
	}
	if blockNumber > c.doneBlock {
		c.doneBlock = blockNumber
	}
	c.observe(ctx)
}

// observe saves the live cursor every N blocks or N seconds
// The caller holds cursorMu
func (c *coordinator) observe(ctx context.Context) {
	safe := c.safeBlock()
	if safe > c.lastSavedBlock &&
		(safe-c.lastSavedBlock >= c.config.CursorSaveFreq || c.clock.Since(c.lastSaveTime) >= c.config.CursorSaveDelay) {
		c.storeCursor(ctx, safe)
	}
}

// safeBlock returns the highest block whose live logs are all processed
// The last finished block is excluded since other streams may still be delivering its logs
// The caller holds cursorMu
func (c *coordinator) safeBlock() uint64 {
	safe := previous(c.doneBlock)
	for blockNumber := range c.inFlight {
		safe = min(safe, previous(blockNumber))
	}
	for _, blockNumber := range c.holds {
		safe = min(safe, previous(blockNumber))
	}
	return safe
}

func previous(blockNumber uint64) uint64 {
	if blockNumber == 0 {
		return 0
	}
	return blockNumber - 1
}

// hold keeps the cursor below the first block a stream may have missed
func (c *coordinator) hold(stream Stream, blockNumber uint64) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()
	c.holds[stream] = blockNumber
}

// release drops the hold of a stream whose missed logs are queued
func (c *coordinator) release(ctx context.Context, stream Stream) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()

	delete(c.holds, stream)
	if c.doneBlock > 0 {
		c.observe(ctx)
	}
}

// pin keeps the cursor below the block of a log that could not be processed
func (c *coordinator) pin(ctx context.Context, vLog types.Log) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()

	if c.pinnedBlock == 0 || vLog.BlockNumber < c.pinnedBlock {
		c.pinnedBlock = vLog.BlockNumber
		logger.WarnCtx(ctx, "Event could not be processed, holding block cursor until restart",
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint64("block", vLog.BlockNumber),
			zap.Uint64("cursorLimit", previous(vLog.BlockNumber)))
	}
}

func (c *coordinator) saveCursor(ctx context.Context, blockNumber uint64) {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()
	c.storeCursor(ctx, blockNumber)
}

// storeCursor persists an advancing cursor, capped below the pinned block
// The caller holds cursorMu
func (c *coordinator) storeCursor(ctx context.Context, blockNumber uint64) {
	if c.pinnedBlock > 0 {
		blockNumber = min(blockNumber, previous(c.pinnedBlock))
	}
	if blockNumber <= c.lastSavedBlock {
		return
	}
	if err := c.store.SetBlockCursor(ctx, c.cursorName, blockNumber); err != nil {
		logger.WarnCtx(ctx, "Failed to save block cursor", zap.Error(err), zap.Uint64("block", blockNumber))
		return
	}
	c.lastSavedBlock = blockNumber
	c.lastSaveTime = c.clock.Now()
}
