package service_test

import (
	"context"
	"time"

	"github.com/binance-dashboard/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetBalance(ctx context.Context) (models.Balance, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Balance), args.Error(1)
}

func (m *mockSource) GetAccountTrades(ctx context.Context, symbol string) ([]models.Trade, error) {
	args := m.Called(ctx, symbol)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *mockSource) GetIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error) {
	args := m.Called(ctx, since)
	records, _ := args.Get(0).([]models.IncomeRecord)
	return records, args.Error(1)
}

func (m *mockSource) GetOpenPositions(ctx context.Context) ([]models.OpenPosition, error) {
	args := m.Called(ctx)
	open, _ := args.Get(0).([]models.OpenPosition)
	return open, args.Error(1)
}

func (m *mockSource) GetOpenOrders(ctx context.Context) ([]models.OpenOrder, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]models.OpenOrder)
	return orders, args.Error(1)
}

func (m *mockSource) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

type mockTradeArchive struct {
	mock.Mock
}

func (m *mockTradeArchive) GetAllAccountTrades(ctx context.Context) ([]models.Trade, error) {
	args := m.Called(ctx)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *mockTradeArchive) SaveTrades(ctx context.Context, trades []models.Trade) (int64, error) {
	args := m.Called(ctx, trades)
	return args.Get(0).(int64), args.Error(1)
}

type mockIncomeArchive struct {
	mock.Mock
}

func (m *mockIncomeArchive) GetAllIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error) {
	args := m.Called(ctx, since)
	records, _ := args.Get(0).([]models.IncomeRecord)
	return records, args.Error(1)
}

func (m *mockIncomeArchive) SaveIncome(ctx context.Context, records []models.IncomeRecord) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

type mockSeries struct {
	mock.Mock
}

func (m *mockSeries) GetBalanceSnapshot(ctx context.Context) ([]models.BalanceSnapshot, error) {
	args := m.Called(ctx)
	snapshots, _ := args.Get(0).([]models.BalanceSnapshot)
	return snapshots, args.Error(1)
}

func (m *mockSeries) UpsertBalanceSnapshot(ctx context.Context, snapshot models.BalanceSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *mockSeries) GetDailyPNL(ctx context.Context) ([]models.DailyPNL, error) {
	args := m.Called(ctx)
	daily, _ := args.Get(0).([]models.DailyPNL)
	return daily, args.Error(1)
}

func (m *mockSeries) UpsertDailyPNL(ctx context.Context, entry models.DailyPNL) error {
	return m.Called(ctx, entry).Error(0)
}
