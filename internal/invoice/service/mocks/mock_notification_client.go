package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockNotificationClient struct {
	mock.Mock
}

func (m *MockNotificationClient) SendInvoiceEmail(ctx context.Context, toEmail, orderID, invoiceHTML string) error {
	args := m.Called(ctx, toEmail, orderID, invoiceHTML)
	return args.Error(0)
}

func (m *MockNotificationClient) SendRefundDecisionEmail(ctx context.Context, toEmail, requestID, decision, message string) error {
	args := m.Called(ctx, toEmail, requestID, decision, message)
	return args.Error(0)
}
