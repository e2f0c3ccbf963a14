package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestSaga creates a running saga
func buildTestSaga(id, fingerprint string, createdAt time.Time) *schema.SyncSaga {
	return &schema.SyncSaga{
		ID:          id,
		Fingerprint: fingerprint,
		Plan:        "transfer",
		Event:       datatypes.JSON(`{"kind":"transfer","token_id":"1"}`),
		Status:      schema.SagaStatusRunning,
		CreatedAt:   createdAt,
	}
}

func stringPtr(s string) *string {
	return &s
}

// =============================================================================
// Tests
// =============================================================================

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("get non-existent cursor returns 0", func(t *testing.T) {
		cursor, err := store.GetBlockCursor(ctx, "test_chain_nonexistent")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), cursor)
	})

	t.Run("set and get cursor", func(t *testing.T) {
		cursor := CursorName(domain.ChainHardhatLocal, "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
		blockNum := uint64(12345)

		err := store.SetBlockCursor(ctx, cursor, blockNum)
		require.NoError(t, err)

		got, err := store.GetBlockCursor(ctx, cursor)
		require.NoError(t, err)
		assert.Equal(t, blockNum, got)
	})

	t.Run("update existing cursor", func(t *testing.T) {
		cursor := "test_chain_update"

		err := store.SetBlockCursor(ctx, cursor, 100)
		require.NoError(t, err)

		err = store.SetBlockCursor(ctx, cursor, 200)
		require.NoError(t, err)

		got, err := store.GetBlockCursor(ctx, cursor)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), got)
	})

	t.Run("cursors of different contracts are independent", func(t *testing.T) {
		a := CursorName(domain.ChainHardhatLocal, "0x00000000000000000000000000000000000000a1")
		b := CursorName(domain.ChainHardhatLocal, "0x00000000000000000000000000000000000000b2")

		require.NoError(t, store.SetBlockCursor(ctx, a, 10))

		got, err := store.GetBlockCursor(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), got)
	})
}

func testTokenPosition(t *testing.T, store Store) {
	ctx := context.Background()
	token := TokenName("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0", "7")
	assert.Equal(t, "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0:7", token)

	t.Run("get non-existent position returns nil", func(t *testing.T) {
		position, err := store.GetTokenPosition(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, position)
	})

	t.Run("set and get position", func(t *testing.T) {
		require.NoError(t, store.SetTokenPosition(ctx, token, domain.Position{BlockNumber: 10, TxIndex: 3, LogIndex: 1}))
		require.NoError(t, store.SetTokenPosition(ctx, token, domain.Position{BlockNumber: 11, TxIndex: 0, LogIndex: 4}))

		position, err := store.GetTokenPosition(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, position)
		assert.Equal(t, domain.Position{BlockNumber: 11, TxIndex: 0, LogIndex: 4}, *position)
	})

	t.Run("positions and cursors do not collide", func(t *testing.T) {
		require.NoError(t, store.SetBlockCursor(ctx, token, 99))

		position, err := store.GetTokenPosition(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, position)
		assert.Equal(t, uint64(11), position.BlockNumber)
	})
}

func testCreateSaga(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("insert new saga", func(t *testing.T) {
		created, err := store.CreateSaga(ctx, buildTestSaga("01HSAGA000000000000000001", "fp-create-1", now))
		require.NoError(t, err)
		assert.True(t, created)

		saga, err := store.GetSagaByFingerprint(ctx, "fp-create-1")
		require.NoError(t, err)
		require.NotNil(t, saga)
		assert.Equal(t, "01HSAGA000000000000000001", saga.ID)
		assert.Equal(t, schema.SagaStatusRunning, saga.Status)
		assert.Equal(t, 0, saga.NextStep)
		assert.JSONEq(t, `{"kind":"transfer","token_id":"1"}`, string(saga.Event))
	})

	t.Run("same fingerprint is not inserted twice", func(t *testing.T) {
		created, err := store.CreateSaga(ctx, buildTestSaga("01HSAGA000000000000000002", "fp-create-2", now))
		require.NoError(t, err)
		require.True(t, created)

		created, err = store.CreateSaga(ctx, buildTestSaga("01HSAGA000000000000000003", "fp-create-2", now))
		require.NoError(t, err)
		assert.False(t, created)

		saga, err := store.GetSagaByFingerprint(ctx, "fp-create-2")
		require.NoError(t, err)
		assert.Equal(t, "01HSAGA000000000000000002", saga.ID)
	})

	t.Run("unknown fingerprint and id", func(t *testing.T) {
		saga, err := store.GetSagaByFingerprint(ctx, "fp-missing")
		require.NoError(t, err)
		assert.Nil(t, saga)

		saga, err = store.GetSaga(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, saga)
	})
}

func testUpdateSaga(t *testing.T, store Store) {
	ctx := context.Background()
	saga := buildTestSaga("01HSAGA000000000000000010", "fp-update", time.Now().UTC())

	_, err := store.CreateSaga(ctx, saga)
	require.NoError(t, err)

	saga.NextStep = 1
	saga.Status = schema.SagaStatusFailed
	saga.NFTID = stringPtr("nft-1")
	saga.LastError = stringPtr("data api UpdateNFT failed")
	saga.RollbackHints = datatypes.JSON(`{"prev_owner":"0xa1"}`)
	saga.Event = datatypes.JSON(`{"kind":"sold","token_id":"1","seller":"0xa1"}`)
	require.NoError(t, store.UpdateSaga(ctx, saga))

	got, err := store.GetSaga(ctx, saga.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.NextStep)
	assert.Equal(t, schema.SagaStatusFailed, got.Status)
	assert.Equal(t, "nft-1", domain.SafeString(got.NFTID))
	assert.Equal(t, "data api UpdateNFT failed", domain.SafeString(got.LastError))
	assert.JSONEq(t, `{"prev_owner":"0xa1"}`, string(got.RollbackHints))
	assert.JSONEq(t, `{"kind":"sold","token_id":"1","seller":"0xa1"}`, string(got.Event))
	assert.Equal(t, "fp-update", got.Fingerprint, "fingerprint is immutable")

	t.Run("update unknown saga fails", func(t *testing.T) {
		err := store.UpdateSaga(ctx, buildTestSaga("01HSAGAMISSING00000000000", "fp-missing", time.Now()))
		assert.Error(t, err)
	})
}

func testResumableSagas(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	fixtures := []struct {
		id       string
		status   schema.SagaStatus
		attempts int
		offset   time.Duration
	}{
		{"01HSAGA000000000000000021", schema.SagaStatusFailed, 0, 2 * time.Second},
		{"01HSAGA000000000000000022", schema.SagaStatusFailed, 4, 1 * time.Second},
		{"01HSAGA000000000000000023", schema.SagaStatusFailed, 5, 3 * time.Second},
		{"01HSAGA000000000000000024", schema.SagaStatusCompleted, 0, 4 * time.Second},
		{"01HSAGA000000000000000025", schema.SagaStatusRunning, 0, 5 * time.Second},
		{"01HSAGA000000000000000026", schema.SagaStatusAbandoned, 5, 6 * time.Second},
	}
	for _, f := range fixtures {
		saga := buildTestSaga(f.id, "fp-"+f.id, base.Add(f.offset))
		_, err := store.CreateSaga(ctx, saga)
		require.NoError(t, err)

		saga.Status = f.status
		saga.Attempts = f.attempts
		require.NoError(t, store.UpdateSaga(ctx, saga))
	}

	t.Run("failed sagas below max attempts oldest first", func(t *testing.T) {
		sagas, err := store.GetResumableSagas(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, sagas, 2)
		assert.Equal(t, "01HSAGA000000000000000022", sagas[0].ID)
		assert.Equal(t, "01HSAGA000000000000000021", sagas[1].ID)
	})

	t.Run("limit", func(t *testing.T) {
		sagas, err := store.GetResumableSagas(ctx, 5, 1)
		require.NoError(t, err)
		require.Len(t, sagas, 1)
		assert.Equal(t, "01HSAGA000000000000000022", sagas[0].ID)
	})

	t.Run("exhausted sagas", func(t *testing.T) {
		sagas, err := store.GetExhaustedSagas(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, sagas, 1)
		assert.Equal(t, "01HSAGA000000000000000023", sagas[0].ID)
	})
}

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"BlockCursor", testBlockCursor},
		{"TokenPosition", testTokenPosition},
		{"CreateSaga", testCreateSaga},
		{"UpdateSaga", testUpdateSaga},
		{"ResumableSagas", testResumableSagas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
