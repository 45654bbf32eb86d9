package mocks

import (
	"context"

	"github.com/ridloal/apparel-store/internal/notification"
	"github.com/stretchr/testify/mock"
)

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Enqueue(ctx context.Context, ev notification.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockOutboxRepository) BeginTx(ctx context.Context) (notification.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(notification.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, dbops notification.DBTX, limit, maxAttempts int) ([]notification.Event, error) {
	args := m.Called(ctx, dbops, limit, maxAttempts)
	if evs := args.Get(0); evs != nil {
		return evs.([]notification.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, dbops notification.DBTX, id int64) error {
	args := m.Called(ctx, dbops, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, dbops notification.DBTX, id int64, reason string) error {
	args := m.Called(ctx, dbops, id, reason)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}
