package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/domain"
	"github.com/stretchr/testify/mock"
)

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefundRepository) InsertRefund(ctx context.Context, dbops database.DBTX, refund *domain.Refund) error {
	args := m.Called(ctx, dbops, refund)
	if refund != nil && args.Error(0) == nil {
		refund.ID = "mock-refund-id"
	}
	return args.Error(0)
}

func (m *MockRefundRepository) ListRefundsByUserID(ctx context.Context, userID string) ([]domain.Refund, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]domain.Refund), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefundRepository) CreateRefundRequest(ctx context.Context, req *domain.RefundRequest) error {
	args := m.Called(ctx, req)
	if req != nil && args.Error(0) == nil {
		req.ID = "mock-request-id"
		req.Status = domain.RequestPending
	}
	return args.Error(0)
}

func (m *MockRefundRepository) ClaimPendingRequest(ctx context.Context, dbops database.DBTX, requestID string, decision domain.RefundRequestStatus, message string) (*domain.RefundRequest, error) {
	args := m.Called(ctx, dbops, requestID, decision, message)
	if r := args.Get(0); r != nil {
		return r.(*domain.RefundRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefundRepository) ListPendingRequests(ctx context.Context) ([]domain.RefundRequest, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]domain.RefundRequest), args.Error(1)
	}
	return nil, args.Error(1)
}
