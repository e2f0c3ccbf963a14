package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/messaging"
	"github.com/xampe11/nft-marketplace-project/internal/metadata"
	"github.com/xampe11/nft-marketplace-project/internal/providers/dataapi"
	"github.com/xampe11/nft-marketplace-project/internal/store"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// Outcome is the result of processing an event
type Outcome string

const (
	// OutcomeApplied indicates every mutation of the event plan succeeded
	OutcomeApplied Outcome = "applied"
	// OutcomeDropped indicates the event concerns a token without record
	OutcomeDropped Outcome = "dropped"
	// OutcomeDuplicate indicates the event was already applied or is being applied
	OutcomeDuplicate Outcome = "duplicate"
)

// SellerResolver resolves the seller of a sale from its transaction receipt
type SellerResolver interface {
	TransferSender(ctx context.Context, txHash string, contractAddress string, tokenID string) (string, error)
}

// Config holds the engine configuration
type Config struct {
	// NFTAddress is the tracked NFT contract
	NFTAddress string
}

// Engine applies chain events to the data API
//
//go:generate mockgen -source=engine.go -destination=../mocks/sync_engine.go -package=mocks -mock_names=Engine=MockSyncEngine
type Engine interface {
	// Process applies an event
	// Errors wrap domain.ErrTransient when nothing was mutated, domain.ErrMutationFailed otherwise
	Process(ctx context.Context, event *domain.ChainEvent) (Outcome, error)

	// Resume continues a failed saga from its next step
	Resume(ctx context.Context, saga *schema.SyncSaga) error
}

type engine struct {
	config    Config
	api       dataapi.Client
	fetcher   metadata.Fetcher
	sellers   SellerResolver
	store     store.Store
	publisher messaging.Publisher
	json      adapter.JSON

	mu      gosync.Mutex
	running map[string]struct{}      // saga ids being executed
	tokens  map[string]*gosync.Mutex // serializes the mutations of a token
}

// NewEngine creates a new sync engine
func NewEngine(
	config Config,
	api dataapi.Client,
	fetcher metadata.Fetcher,
	sellers SellerResolver,
	store store.Store,
	publisher messaging.Publisher,
	json adapter.JSON,
) Engine {
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}
	return &engine{
		config:    config,
		api:       api,
		fetcher:   fetcher,
		sellers:   sellers,
		store:     store,
		publisher: publisher,
		json:      json,
		running:   make(map[string]struct{}),
		tokens:    make(map[string]*gosync.Mutex),
	}
}

// execution carries the state shared by the steps of a saga
type execution struct {
	saga  *schema.SyncSaga
	plan  Plan
	event *domain.ChainEvent
	nft   *dataapi.NFT // record read before the first mutation, nil when absent
	nftID string
	hints RollbackHints
}

func (e *engine) Process(ctx context.Context, event *domain.ChainEvent) (Outcome, error) {
	fingerprint, err := Fingerprint(event)
	if err != nil {
		return "", err
	}

	existing, err := e.store.GetSagaByFingerprint(ctx, fingerprint)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read saga journal", zap.Error(err), zap.String("fingerprint", fingerprint))
	}
	if existing != nil {
		switch existing.Status {
		case schema.SagaStatusCompleted, schema.SagaStatusAbandoned:
			logger.DebugCtx(ctx, "Event already journaled",
				zap.String("sagaId", existing.ID),
				zap.String("status", string(existing.Status)))
			return OutcomeDuplicate, nil
		default:
			// Interrupted or failed earlier, continue where it stopped
			if err := e.Resume(ctx, existing); err != nil {
				return "", err
			}
			return OutcomeApplied, nil
		}
	}

	nft, err := e.api.NFTByTokenID(ctx, event.TokenID)
	if err != nil {
		return "", fmt.Errorf("%w: failed to look up token %s: %w", domain.ErrTransient, event.TokenID, err)
	}

	plan, ok := SelectPlan(event.Kind, nft != nil)
	if !ok {
		logger.InfoCtx(ctx, "Token not in data store, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.String("tokenId", event.TokenID),
			zap.String("txHash", event.TransactionHash))
		return OutcomeDropped, nil
	}

	event = e.resolveSeller(ctx, event, nft)

	eventJSON, err := e.json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	x := &execution{
		plan:  plan,
		event: event,
		nft:   nft,
	}
	if nft != nil {
		x.nftID = nft.ID
		x.hints = RollbackHints{
			PrevOwner:    domain.StringPtr(nft.Owner),
			PrevIsListed: &nft.IsListed,
		}
		if nft.Price != nil {
			x.hints.PrevPrice = domain.StringPtr(nft.Price.String())
		}
	}

	x.saga = &schema.SyncSaga{
		ID:          ulid.Make().String(),
		Fingerprint: fingerprint,
		Plan:        plan.Name,
		Event:       datatypes.JSON(eventJSON),
		Status:      schema.SagaStatusRunning,
	}
	if x.nftID != "" {
		x.saga.NFTID = domain.StringPtr(x.nftID)
	}
	x.saga.RollbackHints = e.marshalHints(ctx, x.hints)

	created, err := e.store.CreateSaga(ctx, x.saga)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to journal saga, continuing without journal", zap.Error(err), zap.String("sagaId", x.saga.ID))
	} else if !created {
		return OutcomeDuplicate, nil
	}

	if !e.acquire(x.saga.ID) {
		return OutcomeDuplicate, nil
	}
	defer e.release(x.saga.ID)

	if err := e.run(ctx, x); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

func (e *engine) Resume(ctx context.Context, saga *schema.SyncSaga) error {
	plan, ok := PlanByName(saga.Plan)
	if !ok {
		return fmt.Errorf("unknown plan %q of saga %s", saga.Plan, saga.ID)
	}

	var event domain.ChainEvent
	if err := e.json.Unmarshal(saga.Event, &event); err != nil {
		return fmt.Errorf("failed to decode event of saga %s: %w", saga.ID, err)
	}

	x := &execution{
		saga:  saga,
		plan:  plan,
		event: &event,
		nftID: domain.SafeString(saga.NFTID),
	}
	if len(saga.RollbackHints) > 0 {
		if err := e.json.Unmarshal(saga.RollbackHints, &x.hints); err != nil {
			logger.WarnCtx(ctx, "Failed to decode rollback hints", zap.Error(err), zap.String("sagaId", saga.ID))
		}
	}

	if !e.acquire(saga.ID) {
		logger.InfoCtx(ctx, "Saga already running", zap.String("sagaId", saga.ID))
		return nil
	}
	defer e.release(saga.ID)

	saga.Attempts++
	saga.Status = schema.SagaStatusRunning
	logger.InfoCtx(ctx, "Resuming saga",
		zap.String("sagaId", saga.ID),
		zap.String("plan", saga.Plan),
		zap.Int("nextStep", saga.NextStep),
		zap.Int("attempts", saga.Attempts))

	return e.run(ctx, x)
}

// run applies the remaining steps of a saga in order
func (e *engine) run(ctx context.Context, x *execution) error {
	saga := x.saga
	resumed := saga.Attempts > 0

	for i := saga.NextStep; i < len(x.plan.Steps); i++ {
		step := x.plan.Steps[i]

		if err := e.apply(ctx, x, step, resumed && i == saga.NextStep); err != nil {
			saga.Status = schema.SagaStatusFailed
			saga.LastError = domain.StringPtr(err.Error())
			e.save(ctx, x)

			fields := []zap.Field{
				zap.String("sagaId", saga.ID),
				zap.String("plan", x.plan.Name),
				zap.String("step", string(step)),
				zap.String("tokenId", x.event.TokenID),
				zap.String("txHash", x.event.TransactionHash),
			}
			var apiErr *dataapi.Error
			if errors.As(err, &apiErr) {
				fields = append(fields, apiErr.Fields()...)
			}
			logger.ErrorCtx(ctx, fmt.Errorf("saga step failed: %w", err), fields...)

			return fmt.Errorf("%w: %s step %d (%s) of token %s: %w", domain.ErrMutationFailed, x.plan.Name, i, step, x.event.TokenID, err)
		}

		saga.NextStep = i + 1
		e.save(ctx, x)
	}

	saga.Status = schema.SagaStatusCompleted
	saga.LastError = nil
	e.save(ctx, x)

	logger.InfoCtx(ctx, "Event applied",
		zap.String("kind", string(x.event.Kind)),
		zap.String("tokenId", x.event.TokenID),
		zap.String("plan", x.plan.Name),
		zap.String("txHash", x.event.TransactionHash))

	if err := e.publisher.PublishEvent(ctx, x.event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish sync notification", zap.Error(err), zap.String("tokenId", x.event.TokenID))
	}

	return nil
}

func (e *engine) apply(ctx context.Context, x *execution, step Step, retried bool) error {
	switch step {
	case StepCreate:
		return e.create(ctx, x, retried)
	case StepUpdate:
		return e.update(ctx, x)
	case StepRecord:
		return e.record(ctx, x)
	default:
		return fmt.Errorf("unknown step %q", step)
	}
}

// create creates the NFT record
// A retried create adopts a record created by an earlier attempt whose response was lost
func (e *engine) create(ctx context.Context, x *execution, retried bool) error {
	event := x.event

	if retried {
		nft, err := e.api.NFTByTokenID(ctx, event.TokenID)
		if err != nil {
			return err
		}
		if nft != nil {
			x.nftID = nft.ID
			x.hints.CreatedNFTID = domain.StringPtr(nft.ID)
			return nil
		}
	}

	owner := domain.SafeString(event.To)
	if event.Kind == domain.EventKindListed {
		owner = domain.SafeString(event.Seller)
	}

	m := e.fetcher.Fetch(ctx, e.config.NFTAddress, event.TokenID)
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("NFT #%s", event.TokenID)
	}

	nft, err := e.api.CreateNFT(ctx, dataapi.CreateNFTInput{
		TokenID:     event.TokenID,
		Name:        name,
		Description: m.Description,
		Image:       m.Image,
		Owner:       owner,
		Creator:     owner,
		Metadata:    m.Document(),
	})
	if err != nil {
		return err
	}

	x.nftID = nft.ID
	x.hints.CreatedNFTID = domain.StringPtr(nft.ID)

	token := store.TokenName(e.config.NFTAddress, event.TokenID)
	unlock := e.lockToken(token)
	defer unlock()
	if e.latest(ctx, token, event) {
		e.advance(ctx, token, event)
	}
	return nil
}

// update applies the event to the NFT record
// An event older than the last one applied to the token leaves the record untouched
func (e *engine) update(ctx context.Context, x *execution) error {
	event := x.event
	input := dataapi.UpdateNFTInput{ID: x.nftID}
	notListed := false
	listed := true

	switch event.Kind {
	case domain.EventKindMint, domain.EventKindTransfer:
		input.Owner = event.To
		input.IsListed = &notListed
	case domain.EventKindListed:
		input.Price = event.Price
		input.IsListed = &listed
	case domain.EventKindSold:
		input.Owner = event.Buyer
		input.IsListed = &notListed
	case domain.EventKindCanceled:
		input.IsListed = &notListed
	default:
		return fmt.Errorf("no update for %s events", event.Kind)
	}

	token := store.TokenName(e.config.NFTAddress, event.TokenID)
	unlock := e.lockToken(token)
	defer unlock()

	if !e.latest(ctx, token, event) {
		logger.InfoCtx(ctx, "Newer event already applied to token, skipping update",
			zap.String("kind", string(event.Kind)),
			zap.String("tokenId", event.TokenID),
			zap.String("position", event.Position().String()),
			zap.String("txHash", event.TransactionHash))
		x.hints.SkippedUpdate = true
		return nil
	}

	if _, err := e.api.UpdateNFT(ctx, input); err != nil {
		return err
	}
	e.advance(ctx, token, event)
	return nil
}

// latest reports whether no later event was applied to the token
func (e *engine) latest(ctx context.Context, token string, event *domain.ChainEvent) bool {
	last, err := e.store.GetTokenPosition(ctx, token)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read token position", zap.Error(err), zap.String("tokenId", event.TokenID))
		return true
	}
	return last == nil || !event.Position().Before(*last)
}

func (e *engine) advance(ctx context.Context, token string, event *domain.ChainEvent) {
	if err := e.store.SetTokenPosition(ctx, token, event.Position()); err != nil {
		logger.WarnCtx(ctx, "Failed to save token position",
			zap.Error(err),
			zap.String("tokenId", event.TokenID),
			zap.String("position", event.Position().String()))
	}
}

func (e *engine) record(ctx context.Context, x *execution) error {
	event := x.event
	input := dataapi.TransactionInput{
		NFTID:           x.nftID,
		TransactionHash: event.TransactionHash,
	}
	currency := domain.StringPtr(domain.NATIVE_CURRENCY)

	switch event.Kind {
	case domain.EventKindMint:
		input.From = domain.ETHEREUM_ZERO_ADDRESS
		input.To = domain.SafeString(event.To)
		input.TransactionType = domain.TransactionTypeMint
	case domain.EventKindTransfer:
		input.From = domain.SafeString(event.From)
		input.To = domain.SafeString(event.To)
		input.TransactionType = domain.TransactionTypeTransfer
	case domain.EventKindListed:
		input.From = domain.SafeString(event.Seller)
		input.To = domain.SafeString(event.Seller)
		input.Price = event.Price
		input.Currency = currency
		input.TransactionType = domain.TransactionTypeList
	case domain.EventKindSold:
		input.From = domain.SafeString(event.Seller)
		input.To = domain.SafeString(event.Buyer)
		input.Price = event.Price
		input.Currency = currency
		input.TransactionType = domain.TransactionTypeSale
	case domain.EventKindCanceled:
		input.From = domain.SafeString(event.Seller)
		input.To = domain.SafeString(event.Seller)
		input.TransactionType = domain.TransactionTypeUnlist
	default:
		return fmt.Errorf("no transaction for %s events", event.Kind)
	}

	id, err := e.api.RecordTransaction(ctx, input)
	if err != nil {
		return err
	}
	x.hints.TransactionID = domain.StringPtr(id)
	return nil
}

// resolveSeller fills the seller of sales and cancellations that do not carry one
// The returned event is a copy when the seller was resolved
func (e *engine) resolveSeller(ctx context.Context, event *domain.ChainEvent, nft *dataapi.NFT) *domain.ChainEvent {
	if event.Seller != nil || nft == nil {
		return event
	}
	if event.Kind != domain.EventKindSold && event.Kind != domain.EventKindCanceled {
		return event
	}

	resolved := *event
	if event.Kind == domain.EventKindSold && !event.SyntheticHash() && e.sellers != nil {
		seller, err := e.sellers.TransferSender(ctx, event.TransactionHash, e.config.NFTAddress, event.TokenID)
		if err == nil {
			resolved.Seller = domain.StringPtr(seller)
			return &resolved
		}
		logger.WarnCtx(ctx, "Failed to resolve seller from receipt, using current owner",
			zap.Error(err),
			zap.String("tokenId", event.TokenID),
			zap.String("txHash", event.TransactionHash))
	}

	resolved.Seller = domain.StringPtr(nft.Owner)
	return &resolved
}

// save persists the saga progress, journal failures do not stop the saga
func (e *engine) save(ctx context.Context, x *execution) {
	if x.nftID != "" {
		x.saga.NFTID = domain.StringPtr(x.nftID)
	}
	x.saga.RollbackHints = e.marshalHints(ctx, x.hints)

	if err := e.store.UpdateSaga(ctx, x.saga); err != nil {
		logger.WarnCtx(ctx, "Failed to update saga journal",
			zap.Error(err),
			zap.String("sagaId", x.saga.ID),
			zap.Int("nextStep", x.saga.NextStep),
			zap.String("status", string(x.saga.Status)))
	}
}

func (e *engine) marshalHints(ctx context.Context, hints RollbackHints) datatypes.JSON {
	data, err := e.json.Marshal(hints)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to marshal rollback hints", zap.Error(err))
		return nil
	}
	return datatypes.JSON(data)
}

func (e *engine) acquire(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.running[id]; ok {
		return false
	}
	e.running[id] = struct{}{}
	return true
}

func (e *engine) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, id)
}

func (e *engine) lockToken(token string) func() {
	e.mu.Lock()
	l, ok := e.tokens[token]
	if !ok {
		l = &gosync.Mutex{}
		e.tokens[token] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}
