package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager records the call and runs fn directly so the function under
// test behaves as if its statements committed.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// PassthroughTxManager runs fn without transaction bookkeeping; convenient
// when a test does not care about transaction boundaries.
type PassthroughTxManager struct{}

func (PassthroughTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
