package sync_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/metadata"
	"github.com/xampe11/nft-marketplace-project/internal/mocks"
	"github.com/xampe11/nft-marketplace-project/internal/providers/dataapi"
	"github.com/xampe11/nft-marketplace-project/internal/store"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
	syncengine "github.com/xampe11/nft-marketplace-project/internal/sync"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

const (
	nftAddress = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	alice      = "0x00000000000000000000000000000000000000A1"
	bob        = "0x00000000000000000000000000000000000000B2"
	carol      = "0x00000000000000000000000000000000000000c3"
)

type testEngine struct {
	api       *fakeDataAPI
	store     store.Store
	fetcher   *mocks.MockMetadataFetcher
	sellers   *mocks.MockSellerResolver
	publisher *mocks.MockPublisher
	engine    syncengine.Engine
}

func setupTestEngine(t *testing.T) *testEngine {
	ctrl := gomock.NewController(t)
	te := &testEngine{
		api:       newFakeDataAPI(),
		store:     store.NewMemoryStore(),
		fetcher:   mocks.NewMockMetadataFetcher(ctrl),
		sellers:   mocks.NewMockSellerResolver(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}
	te.engine = syncengine.NewEngine(
		syncengine.Config{NFTAddress: nftAddress},
		te.api,
		te.fetcher,
		te.sellers,
		te.store,
		te.publisher,
		adapter.NewJSON(),
	)
	return te
}

func mintEvent(tokenID, to string, block uint64) *domain.ChainEvent {
	return &domain.ChainEvent{
		Kind:            domain.EventKindMint,
		TokenID:         tokenID,
		ContractAddress: nftAddress,
		From:            domain.StringPtr(domain.ETHEREUM_ZERO_ADDRESS),
		To:              domain.StringPtr(to),
		BlockNumber:     block,
		TransactionHash: "0xmint" + tokenID,
		HashSource:      domain.HashSourceEvent,
	}
}

func transferEvent(tokenID, from, to string, block uint64) *domain.ChainEvent {
	return &domain.ChainEvent{
		Kind:            domain.EventKindTransfer,
		TokenID:         tokenID,
		From:            domain.StringPtr(from),
		To:              domain.StringPtr(to),
		BlockNumber:     block,
		TransactionHash: "0xtransfer" + tokenID,
		HashSource:      domain.HashSourceEvent,
	}
}

func listedEvent(tokenID, seller, price string, block uint64) *domain.ChainEvent {
	return &domain.ChainEvent{
		Kind:            domain.EventKindListed,
		TokenID:         tokenID,
		Seller:          domain.StringPtr(seller),
		Price:           domain.StringPtr(price),
		BlockNumber:     block,
		TransactionHash: "0xlist" + tokenID,
		HashSource:      domain.HashSourceEvent,
	}
}

func soldEvent(tokenID string, seller *string, buyer, price string, block uint64) *domain.ChainEvent {
	return &domain.ChainEvent{
		Kind:            domain.EventKindSold,
		TokenID:         tokenID,
		Seller:          seller,
		Buyer:           domain.StringPtr(buyer),
		Price:           domain.StringPtr(price),
		BlockNumber:     block,
		TransactionHash: "0xsale" + tokenID,
		HashSource:      domain.HashSourceEvent,
	}
}

func canceledEvent(tokenID string, seller *string, block uint64) *domain.ChainEvent {
	return &domain.ChainEvent{
		Kind:            domain.EventKindCanceled,
		TokenID:         tokenID,
		Seller:          seller,
		BlockNumber:     block,
		TransactionHash: "0xcancel" + tokenID,
		HashSource:      domain.HashSourceEvent,
	}
}

func expectMetadata(te *testEngine, tokenID string, m *metadata.Metadata) {
	te.fetcher.EXPECT().Fetch(gomock.Any(), nftAddress, tokenID).Return(m)
}

func TestEngine_MintListSell(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()

	expectMetadata(te, "1", &metadata.Metadata{Name: "Pug", Image: "ipfs://pug", Raw: map[string]interface{}{"name": "Pug", "image": "ipfs://pug"}})
	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	outcome, err := te.engine.Process(ctx, mintEvent("1", alice, 10))
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)

	outcome, err = te.engine.Process(ctx, listedEvent("1", alice, "1.0", 11))
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)

	nft := te.api.nft("1")
	require.NotNil(t, nft)
	assert.True(t, nft.IsListed)
	assert.Equal(t, "1.0", nft.Price.String())

	outcome, err = te.engine.Process(ctx, soldEvent("1", domain.StringPtr(alice), bob, "1.0", 12))
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)

	nft = te.api.nft("1")
	assert.Equal(t, bob, nft.Owner)
	assert.Equal(t, alice, nft.Creator)
	assert.False(t, nft.IsListed)
	assert.Equal(t, []string{"MINT", "LIST", "SALE"}, te.api.transactionTypes())
	assert.Equal(t, "Pug", te.api.names["1"])

	sale := te.api.transactions[2]
	assert.Equal(t, alice, sale.From)
	assert.Equal(t, bob, sale.To)
	assert.Equal(t, "1.0", domain.SafeString(sale.Price))
	assert.Equal(t, domain.NATIVE_CURRENCY, domain.SafeString(sale.Currency))
	assert.Equal(t, "0xsale1", sale.TransactionHash)

	mint := te.api.transactions[0]
	assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, mint.From)
	assert.Equal(t, alice, mint.To)
	assert.Nil(t, mint.Price)
}

func TestEngine_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*testEngine)
		event    *domain.ChainEvent
		expected syncengine.Outcome
		validate func(*testing.T, *testEngine)
	}{
		{
			name:     "transfer of unknown token is dropped",
			event:    transferEvent("5", alice, bob, 3),
			expected: syncengine.OutcomeDropped,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, 0, te.api.callCount("UpdateNFT"))
				assert.Empty(t, te.api.transactions)
			},
		},
		{
			name:     "sale of unknown token is dropped",
			event:    soldEvent("5", nil, bob, "1.0", 3),
			expected: syncengine.OutcomeDropped,
		},
		{
			name:     "cancel of unknown token is dropped",
			event:    canceledEvent("5", domain.StringPtr(alice), 3),
			expected: syncengine.OutcomeDropped,
		},
		{
			name: "transfer updates owner and unlists",
			setup: func(te *testEngine) {
				nft := te.api.seed("5", alice)
				nft.IsListed = true
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    transferEvent("5", alice, bob, 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				nft := te.api.nft("5")
				assert.Equal(t, bob, nft.Owner)
				assert.False(t, nft.IsListed)
				assert.Equal(t, []string{"TRANSFER"}, te.api.transactionTypes())
			},
		},
		{
			name: "mint of existing token updates owner",
			setup: func(te *testEngine) {
				te.api.seed("6", carol)
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    mintEvent("6", alice, 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, alice, te.api.nft("6").Owner)
				assert.Equal(t, 0, te.api.callCount("CreateNFT"))
				assert.Equal(t, []string{"MINT"}, te.api.transactionTypes())
			},
		},
		{
			name: "listing of unknown token creates the record",
			setup: func(te *testEngine) {
				expectMetadata(te, "7", metadata.Placeholder())
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    listedEvent("7", alice, "2.5", 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				nft := te.api.nft("7")
				require.NotNil(t, nft)
				assert.Equal(t, alice, nft.Owner)
				assert.Equal(t, alice, nft.Creator)
				assert.True(t, nft.IsListed)
				assert.Equal(t, "2.5", nft.Price.String())
				assert.Equal(t, metadata.PLACEHOLDER_NAME, te.api.names["7"])
				assert.Equal(t, []string{"LIST"}, te.api.transactionTypes())
				list := te.api.transactions[0]
				assert.Equal(t, alice, list.From)
				assert.Equal(t, alice, list.To)
			},
		},
		{
			name: "mint without metadata name",
			setup: func(te *testEngine) {
				expectMetadata(te, "8", &metadata.Metadata{Description: "no name"})
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    mintEvent("8", alice, 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, "NFT #8", te.api.names["8"])
			},
		},
		{
			name: "sale without seller uses the receipt",
			setup: func(te *testEngine) {
				te.api.seed("9", alice)
				te.sellers.EXPECT().TransferSender(gomock.Any(), "0xsale9", nftAddress, "9").Return(carol, nil)
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    soldEvent("9", nil, bob, "1.0", 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, carol, te.api.transactions[0].From)
				assert.Equal(t, bob, te.api.nft("9").Owner)
			},
		},
		{
			name: "sale without seller falls back to current owner",
			setup: func(te *testEngine) {
				te.api.seed("9", alice)
				te.sellers.EXPECT().TransferSender(gomock.Any(), "0xsale9", nftAddress, "9").Return("", errors.New("receipt not found"))
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    soldEvent("9", nil, bob, "1.0", 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, alice, te.api.transactions[0].From)
			},
		},
		{
			name: "sale with synthetic hash skips the receipt",
			setup: func(te *testEngine) {
				te.api.seed("9", alice)
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event: func() *domain.ChainEvent {
				e := soldEvent("9", nil, bob, "1.0", 3)
				e.TransactionHash = domain.SYNTHETIC_HASH_PREFIX + "1-abc"
				e.HashSource = domain.HashSourceSynthetic
				return e
			}(),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.Equal(t, alice, te.api.transactions[0].From)
				assert.Equal(t, domain.SYNTHETIC_HASH_PREFIX+"1-abc", te.api.transactions[0].TransactionHash)
			},
		},
		{
			name: "cancel without seller uses current owner",
			setup: func(te *testEngine) {
				nft := te.api.seed("10", alice)
				nft.IsListed = true
				te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			event:    canceledEvent("10", nil, 3),
			expected: syncengine.OutcomeApplied,
			validate: func(t *testing.T, te *testEngine) {
				assert.False(t, te.api.nft("10").IsListed)
				tx := te.api.transactions[0]
				assert.Equal(t, "UNLIST", string(tx.TransactionType))
				assert.Equal(t, alice, tx.From)
				assert.Equal(t, alice, tx.To)
				assert.Nil(t, tx.Price)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := setupTestEngine(t)
			if tt.setup != nil {
				tt.setup(te)
			}

			outcome, err := te.engine.Process(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, outcome)
			if tt.validate != nil {
				tt.validate(t, te)
			}
		})
	}
}

func TestEngine_LookupErrorIsTransient(t *testing.T) {
	te := setupTestEngine(t)
	te.api.lookupErr = &dataapi.Error{Operation: "GetNFTByTokenId", StatusCode: 503}

	event := transferEvent("1", alice, bob, 3)
	_, err := te.engine.Process(context.Background(), event)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransient))

	fingerprint, err := syncengine.Fingerprint(event)
	require.NoError(t, err)
	saga, err := te.store.GetSagaByFingerprint(context.Background(), fingerprint)
	require.NoError(t, err)
	assert.Nil(t, saga, "nothing is journaled before the first mutation")
}

func TestEngine_ReplayIsDuplicate(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()
	te.api.seed("1", alice)
	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	event := transferEvent("1", alice, bob, 3)
	outcome, err := te.engine.Process(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)

	// Same event observed on another pipeline
	replay := *event
	replay.Source = domain.EventSourceJetStream
	outcome, err = te.engine.Process(ctx, &replay)
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeDuplicate, outcome)

	assert.Equal(t, 1, te.api.callCount("UpdateNFT"))
	assert.Equal(t, []string{"TRANSFER"}, te.api.transactionTypes())
}

func TestEngine_FailedStepIsResumed(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()
	te.api.seed("1", alice)
	te.api.failures["RecordTransaction"] = &dataapi.Error{Operation: "RecordTransaction", StatusCode: 400}

	event := soldEvent("1", domain.StringPtr(alice), bob, "1.0", 3)
	_, err := te.engine.Process(ctx, event)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMutationFailed))

	// The owner update is not rolled back
	assert.Equal(t, bob, te.api.nft("1").Owner)

	sagas, err := te.store.GetResumableSagas(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, sagas, 1)
	saga := sagas[0]
	assert.Equal(t, "sale", saga.Plan)
	assert.Equal(t, 1, saga.NextStep)
	assert.Equal(t, schema.SagaStatusFailed, saga.Status)
	assert.Contains(t, domain.SafeString(saga.LastError), "RecordTransaction")
	assert.Contains(t, string(saga.RollbackHints), `"prev_owner":"`+alice+`"`)

	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, te.engine.Resume(ctx, &saga))

	assert.Equal(t, 1, te.api.callCount("UpdateNFT"), "completed steps are not repeated")
	assert.Equal(t, []string{"SALE"}, te.api.transactionTypes())

	resumed, err := te.store.GetSaga(ctx, saga.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.SagaStatusCompleted, resumed.Status)
	assert.Equal(t, 2, resumed.NextStep)
	assert.Equal(t, 1, resumed.Attempts)
}

func TestEngine_RedeliveryResumesFailedSaga(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()
	te.api.seed("1", alice)
	te.api.failures["UpdateNFT"] = &dataapi.Error{Operation: "UpdateNFT", StatusCode: 400}

	event := canceledEvent("1", domain.StringPtr(alice), 3)
	_, err := te.engine.Process(ctx, event)
	require.Error(t, err)

	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
	outcome, err := te.engine.Process(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)
	assert.Equal(t, 2, te.api.callCount("UpdateNFT"))
	assert.Equal(t, []string{"UNLIST"}, te.api.transactionTypes())
}

func TestEngine_ResumedSagaDoesNotOverwriteNewerEvent(t *testing.T) {
	tests := []struct {
		name     string
		stale    *domain.ChainEvent
		newer    *domain.ChainEvent
		txs      []string
		validate func(*testing.T, *dataapi.NFT)
	}{
		{
			name:  "transfer resumed after a sale",
			stale: transferEvent("7", alice, bob, 10),
			newer: soldEvent("7", domain.StringPtr(bob), carol, "1.0", 11),
			txs:   []string{"SALE", "TRANSFER"},
			validate: func(t *testing.T, nft *dataapi.NFT) {
				assert.Equal(t, carol, nft.Owner)
			},
		},
		{
			name:  "listing resumed after a cancel",
			stale: listedEvent("7", alice, "2.0", 10),
			newer: canceledEvent("7", domain.StringPtr(alice), 11),
			txs:   []string{"UNLIST", "LIST"},
			validate: func(t *testing.T, nft *dataapi.NFT) {
				assert.False(t, nft.IsListed)
				assert.Equal(t, alice, nft.Owner)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := setupTestEngine(t)
			ctx := context.Background()
			te.api.seed("7", alice)
			te.api.failures["UpdateNFT"] = &dataapi.Error{Operation: "UpdateNFT", StatusCode: 502}
			te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(2)

			_, err := te.engine.Process(ctx, tt.stale)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMutationFailed))

			outcome, err := te.engine.Process(ctx, tt.newer)
			require.NoError(t, err)
			assert.Equal(t, syncengine.OutcomeApplied, outcome)

			sagas, err := te.store.GetResumableSagas(ctx, 5, 10)
			require.NoError(t, err)
			require.Len(t, sagas, 1)
			require.NoError(t, te.engine.Resume(ctx, &sagas[0]))

			tt.validate(t, te.api.nft("7"))
			assert.Equal(t, tt.txs, te.api.transactionTypes(), "the history keeps the older transaction")
			assert.Equal(t, 2, te.api.callCount("UpdateNFT"))

			resumed, err := te.store.GetSaga(ctx, sagas[0].ID)
			require.NoError(t, err)
			assert.Equal(t, schema.SagaStatusCompleted, resumed.Status)
			assert.Contains(t, string(resumed.RollbackHints), `"skipped_update":true`)

			position, err := te.store.GetTokenPosition(ctx, store.TokenName(nftAddress, "7"))
			require.NoError(t, err)
			require.NotNil(t, position)
			assert.Equal(t, uint64(11), position.BlockNumber)
		})
	}
}

func TestEngine_SameBlockEventsApplyInLogOrder(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()
	te.api.seed("7", alice)
	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	// Sale and its transfer share a transaction, the transfer log comes first
	transfer := transferEvent("7", alice, bob, 20)
	transfer.TxIndex, transfer.LogIndex = 3, 1
	sale := soldEvent("7", domain.StringPtr(alice), bob, "1.0", 20)
	sale.TxIndex, sale.LogIndex = 3, 2

	_, err := te.engine.Process(ctx, sale)
	require.NoError(t, err)
	_, err = te.engine.Process(ctx, transfer)
	require.NoError(t, err)

	nft := te.api.nft("7")
	assert.Equal(t, bob, nft.Owner)
	assert.Equal(t, 1, te.api.callCount("UpdateNFT"), "the earlier log does not update the record again")
	assert.Equal(t, []string{"SALE", "TRANSFER"}, te.api.transactionTypes())
}

func TestEngine_TokenPositionReadFailureStillApplies(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := newFakeDataAPI()
	api.seed("7", alice)
	st := mocks.NewMockStore(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	engine := syncengine.NewEngine(syncengine.Config{NFTAddress: nftAddress}, api, nil, nil, st, publisher, adapter.NewJSON())

	token := store.TokenName(nftAddress, "7")
	st.EXPECT().GetSagaByFingerprint(gomock.Any(), gomock.Any()).Return(nil, nil)
	st.EXPECT().CreateSaga(gomock.Any(), gomock.Any()).Return(true, nil)
	st.EXPECT().UpdateSaga(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	st.EXPECT().GetTokenPosition(gomock.Any(), token).Return(nil, errors.New("connection refused"))
	st.EXPECT().SetTokenPosition(gomock.Any(), token, domain.Position{BlockNumber: 3}).Return(errors.New("connection refused"))
	publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := engine.Process(context.Background(), transferEvent("7", alice, bob, 3))
	require.NoError(t, err)
	assert.Equal(t, syncengine.OutcomeApplied, outcome)
	assert.Equal(t, bob, api.nft("7").Owner)
}

func TestEngine_DataAPIFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*mocks.MockDataAPIClient, *mocks.MockMetadataFetcher)
		expectErr error
		journaled bool
	}{
		{
			name: "lookup times out",
			setup: func(api *mocks.MockDataAPIClient, _ *mocks.MockMetadataFetcher) {
				api.EXPECT().NFTByTokenID(gomock.Any(), "9").Return(nil, context.DeadlineExceeded)
			},
			expectErr: domain.ErrTransient,
		},
		{
			name: "create rejected",
			setup: func(api *mocks.MockDataAPIClient, fetcher *mocks.MockMetadataFetcher) {
				api.EXPECT().NFTByTokenID(gomock.Any(), "9").Return(nil, nil)
				fetcher.EXPECT().Fetch(gomock.Any(), nftAddress, "9").Return(metadata.Placeholder())
				api.EXPECT().CreateNFT(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, input dataapi.CreateNFTInput) (*dataapi.NFT, error) {
						assert.Equal(t, metadata.PLACEHOLDER_NAME, input.Name)
						assert.Equal(t, alice, input.Owner)
						return nil, &dataapi.Error{Operation: "CreateNFT", StatusCode: 400}
					})
			},
			expectErr: domain.ErrMutationFailed,
			journaled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockDataAPIClient(ctrl)
			fetcher := mocks.NewMockMetadataFetcher(ctrl)
			st := store.NewMemoryStore()
			engine := syncengine.NewEngine(syncengine.Config{NFTAddress: nftAddress}, api, fetcher, nil, st, mocks.NewMockPublisher(ctrl), adapter.NewJSON())
			tt.setup(api, fetcher)

			event := mintEvent("9", alice, 4)
			_, err := engine.Process(context.Background(), event)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectErr))

			fingerprint, err := syncengine.Fingerprint(event)
			require.NoError(t, err)
			saga, err := st.GetSagaByFingerprint(context.Background(), fingerprint)
			require.NoError(t, err)
			if !tt.journaled {
				assert.Nil(t, saga)
				return
			}
			require.NotNil(t, saga)
			assert.Equal(t, schema.SagaStatusFailed, saga.Status)
			assert.Equal(t, 0, saga.NextStep)
		})
	}
}

func TestEngine_RetriedCreateAdoptsRecord(t *testing.T) {
	te := setupTestEngine(t)
	ctx := context.Background()
	te.api.lostResponses["CreateNFT"] = true
	expectMetadata(te, "1", metadata.Placeholder())

	_, err := te.engine.Process(ctx, mintEvent("1", alice, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMutationFailed))

	sagas, err := te.store.GetResumableSagas(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, sagas, 1)
	assert.Equal(t, 0, sagas[0].NextStep)

	te.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, te.engine.Resume(ctx, &sagas[0]))

	assert.Equal(t, 1, te.api.callCount("CreateNFT"), "record created by the lost call is adopted")
	assert.Equal(t, []string{"MINT"}, te.api.transactionTypes())
	assert.Equal(t, te.api.nft("1").ID, te.api.transactions[0].NFTID)
}

func TestFingerprint(t *testing.T) {
	a := transferEvent("1", alice, bob, 3)
	b := *a
	b.Source = domain.EventSourceLive

	fa, err := syncengine.Fingerprint(a)
	require.NoError(t, err)
	fb, err := syncengine.Fingerprint(&b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb, "source is not part of the fingerprint")
	assert.Len(t, fa, 64)

	c := *a
	c.BlockNumber = 4
	fc, err := syncengine.Fingerprint(&c)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}

func TestSelectPlan(t *testing.T) {
	tests := []struct {
		kind     domain.EventKind
		present  bool
		plan     string
		steps    []syncengine.Step
		accepted bool
	}{
		{domain.EventKindMint, false, "mint_create", []syncengine.Step{syncengine.StepCreate, syncengine.StepRecord}, true},
		{domain.EventKindMint, true, "mint_update", []syncengine.Step{syncengine.StepUpdate, syncengine.StepRecord}, true},
		{domain.EventKindListed, false, "list_create", []syncengine.Step{syncengine.StepCreate, syncengine.StepUpdate, syncengine.StepRecord}, true},
		{domain.EventKindListed, true, "list_existing", []syncengine.Step{syncengine.StepUpdate, syncengine.StepRecord}, true},
		{domain.EventKindTransfer, true, "transfer", []syncengine.Step{syncengine.StepUpdate, syncengine.StepRecord}, true},
		{domain.EventKindTransfer, false, "", nil, false},
		{domain.EventKindSold, false, "", nil, false},
		{domain.EventKindCanceled, false, "", nil, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.plan, func(t *testing.T) {
			plan, ok := syncengine.SelectPlan(tt.kind, tt.present)
			assert.Equal(t, tt.accepted, ok)
			if !tt.accepted {
				return
			}
			assert.Equal(t, tt.plan, plan.Name)
			assert.Equal(t, tt.steps, plan.Steps)

			byName, ok := syncengine.PlanByName(tt.plan)
			assert.True(t, ok)
			assert.Equal(t, plan, byName)
		})
	}
}
