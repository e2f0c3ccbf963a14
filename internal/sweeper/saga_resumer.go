package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/store"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
	syncengine "github.com/xampe11/nft-marketplace-project/internal/sync"
)

// SagaResumerConfig holds configuration for the saga resumer
type SagaResumerConfig struct {
	Interval       time.Duration // Time to sleep between cycles
	MaxAttempts    int           // Sagas resumed this many times are abandoned
	BatchSize      int           // Sagas loaded per cycle
	WorkerPoolSize int           // Concurrent resumptions
}

// sagaResumer resumes failed sync sagas from their next step
type sagaResumer struct {
	config    SagaResumerConfig
	store     store.Store
	engine    syncengine.Engine
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSagaResumer creates a new saga resumer
func NewSagaResumer(config SagaResumerConfig, st store.Store, engine syncengine.Engine, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}
	return &sagaResumer{
		config:    config,
		store:     st,
		engine:    engine,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *sagaResumer) Name() string {
	return "saga-resumer"
}

// Start runs resume cycles until the context is canceled or Stop is called
func (s *sagaResumer) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting saga resumer",
		zap.Duration("interval", s.config.Interval),
		zap.Int("max_attempts", s.config.MaxAttempts),
		zap.Int("batch_size", s.config.BatchSize),
	)

	for {
		if err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Saga resumer stopping")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *sagaResumer) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping saga resumer")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Saga resumer stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Saga resumer stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunCycle abandons exhausted sagas and resumes the failed ones
func (s *sagaResumer) RunCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	exhausted, err := s.loadWithRetry(ctx, func() ([]schema.SyncSaga, error) {
		return s.store.GetExhaustedSagas(ctx, s.config.MaxAttempts, s.config.BatchSize)
	})
	if err != nil {
		return fmt.Errorf("failed to get exhausted sagas: %w", err)
	}
	for i := range exhausted {
		s.abandon(ctx, &exhausted[i])
	}

	sagas, err := s.loadWithRetry(ctx, func() ([]schema.SyncSaga, error) {
		return s.store.GetResumableSagas(ctx, s.config.MaxAttempts, s.config.BatchSize)
	})
	if err != nil {
		return fmt.Errorf("failed to get resumable sagas: %w", err)
	}
	if len(sagas) == 0 {
		logger.DebugCtx(ctx, "No sagas to resume")
		return nil
	}

	logger.InfoCtx(ctx, "Found sagas to resume", zap.Int("count", len(sagas)))

	var resumed, failed atomic.Int32
	pool := pond.NewPool(s.config.WorkerPoolSize, pond.WithContext(ctx))
	for i := range sagas {
		saga := &sagas[i]
		pool.Submit(func() {
			if err := s.engine.Resume(ctx, saga); err != nil {
				failed.Add(1)
				logger.WarnCtx(ctx, "Saga resume failed",
					zap.Error(err),
					zap.String("saga_id", saga.ID),
					zap.Int("attempts", saga.Attempts),
				)
				return
			}
			resumed.Add(1)
		})
	}
	pool.StopAndWait()

	logger.InfoCtx(ctx, "Saga resume cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("abandoned", len(exhausted)),
		zap.Int32("resumed", resumed.Load()),
		zap.Int32("failed", failed.Load()),
	)

	return nil
}

// abandon gives up on a saga, its mutations stay applied
func (s *sagaResumer) abandon(ctx context.Context, saga *schema.SyncSaga) {
	saga.Status = schema.SagaStatusAbandoned
	if err := s.store.UpdateSaga(ctx, saga); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("saga_id", saga.ID))
		return
	}

	logger.ErrorCtx(ctx, fmt.Errorf("%w: saga %s abandoned after %d attempts", domain.ErrMutationFailed, saga.ID, saga.Attempts),
		zap.String("plan", saga.Plan),
		zap.Int("next_step", saga.NextStep),
		zap.Stringp("last_error", saga.LastError),
		zap.Stringp("nft_id", saga.NFTID),
		zap.ByteString("rollback_hints", saga.RollbackHints),
	)
}

// loadWithRetry reads from the journal with exponential backoff
func (s *sagaResumer) loadWithRetry(ctx context.Context, load func() ([]schema.SyncSaga, error)) ([]schema.SyncSaga, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = s.config.Interval

	var sagas []schema.SyncSaga
	operation := func() error {
		var err error
		sagas, err = load()
		return err
	}

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "Saga journal read failed, retrying",
			zap.Error(err),
			zap.Duration("next_retry_in", d),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return sagas, nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (s *sagaResumer) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
