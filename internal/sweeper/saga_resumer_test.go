package sweeper

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/mocks"
	"github.com/xampe11/nft-marketplace-project/internal/store/schema"
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

type resumerMocks struct {
	store  *mocks.MockStore
	engine *mocks.MockSyncEngine
	clock  *mocks.MockClock
}

func setupResumer(t *testing.T) (*sagaResumer, *resumerMocks) {
	ctrl := gomock.NewController(t)
	m := &resumerMocks{
		store:  mocks.NewMockStore(ctrl),
		engine: mocks.NewMockSyncEngine(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
	m.clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()
	m.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()

	s := NewSagaResumer(SagaResumerConfig{
		Interval:       time.Minute,
		MaxAttempts:    3,
		BatchSize:      10,
		WorkerPoolSize: 2,
	}, m.store, m.engine, m.clock)
	return s.(*sagaResumer), m
}

func failedSaga(id string, attempts int) schema.SyncSaga {
	return schema.SyncSaga{
		ID:        id,
		Plan:      "sale",
		NextStep:  1,
		Status:    schema.SagaStatusFailed,
		Attempts:  attempts,
		LastError: domain.StringPtr("data api RecordTransaction failed with status 400"),
	}
}

func TestSagaResumer_RunCycle(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*resumerMocks)
		expectError bool
	}{
		{
			name: "no sagas",
			setup: func(m *resumerMocks) {
				m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).Return(nil, nil)
				m.store.EXPECT().GetResumableSagas(gomock.Any(), 3, 10).Return(nil, nil)
			},
		},
		{
			name: "resumes failed sagas",
			setup: func(m *resumerMocks) {
				m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).Return(nil, nil)
				m.store.EXPECT().GetResumableSagas(gomock.Any(), 3, 10).
					Return([]schema.SyncSaga{failedSaga("a", 0), failedSaga("b", 2)}, nil)
				m.engine.EXPECT().Resume(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, saga *schema.SyncSaga) error {
						assert.Contains(t, []string{"a", "b"}, saga.ID)
						return nil
					}).Times(2)
			},
		},
		{
			name: "resume failure does not stop the cycle",
			setup: func(m *resumerMocks) {
				m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).Return(nil, nil)
				m.store.EXPECT().GetResumableSagas(gomock.Any(), 3, 10).
					Return([]schema.SyncSaga{failedSaga("a", 0), failedSaga("b", 1)}, nil)
				m.engine.EXPECT().Resume(gomock.Any(), gomock.Any()).Return(domain.ErrMutationFailed)
				m.engine.EXPECT().Resume(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "abandons exhausted sagas",
			setup: func(m *resumerMocks) {
				m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).
					Return([]schema.SyncSaga{failedSaga("x", 3)}, nil)
				m.store.EXPECT().UpdateSaga(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, saga *schema.SyncSaga) error {
						assert.Equal(t, "x", saga.ID)
						assert.Equal(t, schema.SagaStatusAbandoned, saga.Status)
						assert.Equal(t, 1, saga.NextStep)
						return nil
					})
				m.store.EXPECT().GetResumableSagas(gomock.Any(), 3, 10).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupResumer(t)
			tt.setup(m)

			err := s.RunCycle(context.Background())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSagaResumer_RunCycle_JournalUnavailable(t *testing.T) {
	s, m := setupResumer(t)
	s.config.Interval = 10 * time.Millisecond
	m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).Return(nil, errors.New("connection refused")).MinTimes(1)

	err := s.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSagaResumer_StartStop(t *testing.T) {
	s, m := setupResumer(t)
	m.store.EXPECT().GetExhaustedSagas(gomock.Any(), 3, 10).Return(nil, nil).MinTimes(1)
	m.store.EXPECT().GetResumableSagas(gomock.Any(), 3, 10).Return(nil, nil).MinTimes(1)

	cycled := make(chan struct{}, 1)
	m.clock.EXPECT().After(time.Minute).DoAndReturn(func(time.Duration) <-chan time.Time {
		select {
		case cycled <- struct{}{}:
		default:
		}
		return make(chan time.Time) // never fires
	}).MinTimes(1)

	done := make(chan error, 1)
	go func() {
		done <- s.Start(context.Background())
	}()

	select {
	case <-cycled:
	case <-time.After(5 * time.Second):
		t.Fatal("resume cycle did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, <-done)
	assert.Equal(t, "saga-resumer", s.Name())

	// Stopping twice is a no-op
	require.NoError(t, s.Stop(ctx))
}
