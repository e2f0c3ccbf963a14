package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/config"
	"github.com/xampe11/nft-marketplace-project/internal/coordinator"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/messaging"
	"github.com/xampe11/nft-marketplace-project/internal/metadata"
	"github.com/xampe11/nft-marketplace-project/internal/normalizer"
	"github.com/xampe11/nft-marketplace-project/internal/providers/dataapi"
	ethprovider "github.com/xampe11/nft-marketplace-project/internal/providers/ethereum"
	jsprovider "github.com/xampe11/nft-marketplace-project/internal/providers/jetstream"
	"github.com/xampe11/nft-marketplace-project/internal/store"
	"github.com/xampe11/nft-marketplace-project/internal/sweeper"
	syncengine "github.com/xampe11/nft-marketplace-project/internal/sync"
	"github.com/xampe11/nft-marketplace-project/internal/uri"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadBlockchainSyncConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "blockchain-sync",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting blockchain sync")

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Initialize ethereum client
	ethereumClient, err := ethprovider.Dial(ctx, adapter.NewEthClientDialer(), cfg.Ethereum.WebSocketURL, ethprovider.ClientConfig{
		RequestTimeout: cfg.Ethereum.RequestTimeout,
		LogPageSize:    cfg.Ethereum.LogPageSize,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.WebSocketURL))
	}
	defer ethereumClient.Close()

	chainID, err := ethereumClient.ChainID(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to get chain id", zap.Error(err))
	}
	chain := domain.ChainFromID(chainID)

	// Resolve the contract addresses of the connected network
	mapping, err := config.LoadNetworkMapping(cfg.NetworkMappingPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load network mapping", zap.Error(err), zap.String("path", cfg.NetworkMappingPath))
	}
	contracts, err := mapping.Contracts(chain.ChainID())
	if err != nil {
		logger.FatalCtx(ctx, "No contracts deployed on the connected network", zap.Error(err), zap.String("chain", string(chain)))
	}
	logger.InfoCtx(ctx, "Resolved contracts",
		zap.String("chain", string(chain)),
		zap.String("nft", contracts.NFT.Hex()),
		zap.String("marketplace", contracts.Marketplace.Hex()),
	)

	// Initialize store
	var dataStore store.Store
	if cfg.DatabaseEnabled() {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
		}
		if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			if err := store.AutoMigrate(db); err != nil {
				logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
			}
		}
		dataStore = store.NewPGStore(db)
		logger.InfoCtx(ctx, "Connected to database")
	} else {
		dataStore = store.NewMemoryStore()
		logger.WarnCtx(ctx, "No database configured, cursor and sagas are kept in memory")
	}

	// Initialize NATS publisher
	natsJS := adapter.NewNatsJetStream()
	natsConfig := jsprovider.Config{
		URL:            cfg.NATS.URL,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}
	publisher := messaging.NewNopPublisher()
	if cfg.NATSEnabled() {
		publisher, err = jsprovider.NewPublisher(jsprovider.PublisherConfig{
			Config:        natsConfig,
			SubjectPrefix: cfg.NATS.NotifySubjectPrefix,
		}, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream")
	}
	defer publisher.Close()

	// Initialize data API client
	apiClient, err := dataapi.NewClient(dataapi.Config{
		URL:               cfg.DataAPI.URL,
		Timeout:           cfg.DataAPI.Timeout,
		RequestsPerSecond: cfg.DataAPI.RequestsPerSecond,
	}, adapter.NewHTTPClient(cfg.DataAPI.Timeout), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create data API client", zap.Error(err), zap.String("url", cfg.DataAPI.URL))
	}

	// Initialize metadata fetcher
	uriResolver := uri.NewResolver(&uri.Config{IPFSGateway: cfg.IPFS.Gateway})
	metadataFetcher := metadata.NewFetcher(
		ethereumClient,
		adapter.NewHTTPClient(cfg.Metadata.Timeout),
		uriResolver,
		jsonAdapter,
		cfg.Metadata.Timeout,
	)

	eventNormalizer := normalizer.New(normalizer.Config{
		NFTAddress:         contracts.NFT,
		MarketplaceAddress: contracts.Marketplace,
	}, ethereumClient, clockAdapter)

	engine := syncengine.NewEngine(
		syncengine.Config{NFTAddress: contracts.NFT.Hex()},
		apiClient,
		metadataFetcher,
		ethereumClient,
		dataStore,
		publisher,
		jsonAdapter,
	)

	syncCoordinator := coordinator.NewCoordinator(
		coordinator.Config{
			Chain:              chain,
			NFTAddress:         contracts.NFT,
			MarketplaceAddress: contracts.Marketplace,
			StartBlock:         cfg.Ethereum.StartBlock,
			QueueSize:          cfg.Worker.QueueSize,
			CursorSaveFreq:     cfg.Cursor.SaveEveryBlocks,
			CursorSaveDelay:    cfg.Cursor.SaveInterval,
			TransientMaxWait:   cfg.Worker.RetryTransient,
		},
		ethereumClient,
		ethprovider.NewSubscriber(ethereumClient),
		eventNormalizer,
		engine,
		dataStore,
		clockAdapter,
	)
	defer syncCoordinator.Close()

	resumer := sweeper.NewSagaResumer(sweeper.SagaResumerConfig{
		Interval:    cfg.Saga.ResumeInterval,
		MaxAttempts: cfg.Saga.MaxAttempts,
		BatchSize:   cfg.Saga.BatchSize,
	}, dataStore, engine, clockAdapter)

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	// Decoded events relayed through JetStream share the coordinator queues
	if cfg.NATSEnabled() {
		consumer, err := jsprovider.NewConsumer(jsprovider.ConsumerConfig{
			Config:         natsConfig,
			StreamName:     cfg.NATS.StreamName,
			ConsumerName:   cfg.NATS.ConsumerName,
			Subject:        cfg.NATS.Subject,
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
		}, natsJS, syncCoordinator)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS consumer", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("consumer: %w", err)
			}
		}()
	}

	go func() {
		if err := resumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", resumer.Name()))
		}
	}()

	go func() {
		if err := syncCoordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("coordinator: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
		exitCode = 1
	}
	cancel()

	if err := resumer.Stop(context.Background()); err != nil {
		logger.Warn("Failed to stop saga resumer", zap.Error(err))
	}

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Blockchain sync stopped")

	return exitCode
}
