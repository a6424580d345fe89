package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rentease/rent-ledger/internal/domain"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}

type MockPaymentApplier struct {
	mock.Mock
}

func (m *MockPaymentApplier) Apply(ctx context.Context, req *domain.ApplyPaymentRequest) (*domain.ApplyPaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplyPaymentResult), args.Error(1)
}
