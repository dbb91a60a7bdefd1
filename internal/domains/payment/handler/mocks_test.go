package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	ordermodel "eurd-payments/internal/domains/order/model"
	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/shared"
)

type mockReconciliation struct {
	mock.Mock
}

func (m *mockReconciliation) GetOrCreateRequest(ctx context.Context, order *ordermodel.Order, accountCode string) (*model.RequestResult, error) {
	args := m.Called(ctx, order, accountCode)
	res, _ := args.Get(0).(*model.RequestResult)
	return res, args.Error(1)
}

func (m *mockReconciliation) Confirm(ctx context.Context, trigger model.Trigger, orderID uuid.UUID, code, txCode string) (model.ConfirmResult, error) {
	args := m.Called(ctx, trigger, orderID, code, txCode)
	return args.Get(0).(model.ConfirmResult), args.Error(1)
}

func (m *mockReconciliation) StartPayment(ctx context.Context, orderID uuid.UUID) (*model.PaymentSession, error) {
	args := m.Called(ctx, orderID)
	session, _ := args.Get(0).(*model.PaymentSession)
	return session, args.Error(1)
}

func (m *mockReconciliation) ManualConfirm(ctx context.Context, orderID uuid.UUID, code string) (model.ConfirmResult, error) {
	args := m.Called(ctx, orderID, code)
	return args.Get(0).(model.ConfirmResult), args.Error(1)
}

func (m *mockReconciliation) OrderStatus(ctx context.Context, orderID uuid.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *mockReconciliation) CheckOrderStatus(ctx context.Context, orderID uuid.UUID, token string) (string, error) {
	args := m.Called(ctx, orderID, token)
	return args.String(0), args.Error(1)
}

func (m *mockReconciliation) FindOrderByRequestCode(ctx context.Context, code string) (uuid.UUID, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockReconciliation) ScheduleConfirm(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error {
	args := m.Called(ctx, payload, delay)
	return args.Error(0)
}

func (m *mockReconciliation) ReconcileAwaiting(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) GetSettings(ctx context.Context) (*model.SettingsResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*model.SettingsResponse)
	return resp, args.Error(1)
}

func (m *mockSettings) UpdateSettings(ctx context.Context, req model.UpdateSettingsRequest) (*model.SettingsResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.SettingsResponse)
	return resp, args.Error(1)
}

func (m *mockSettings) ListAccounts(ctx context.Context) ([]gateway.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]gateway.Account)
	return accounts, args.Error(1)
}

func (m *mockSettings) IsAvailable(ctx context.Context) (bool, string) {
	args := m.Called(ctx)
	return args.Bool(0), args.String(1)
}

func (m *mockSettings) AccountCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
