package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/binance-dashboard/internal/analytics"
	"github.com/binance-dashboard/internal/cache"
	"github.com/binance-dashboard/internal/config"
	"github.com/binance-dashboard/internal/models"
	"github.com/binance-dashboard/internal/positions"
	"github.com/binance-dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

type fixture struct {
	source *mockSource
	trades *mockTradeArchive
	income *mockIncomeArchive
	series *mockSeries
	svc    *service.DashboardService
}

func newFixture(symbols ...string) *fixture {
	f := &fixture{
		source: &mockSource{},
		trades: &mockTradeArchive{},
		income: &mockIncomeArchive{},
		series: &mockSeries{},
	}
	loader := cache.NewLoader(cache.NewMemoryStore(), 5*time.Minute)
	f.svc = service.NewDashboardService(f.source, f.trades, f.income, f.series, loader, config.BinanceConfig{
		Symbols:            symbols,
		IncomeLookbackDays: 7,
	}).WithClock(func() time.Time { return fixedNow })
	return f
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func tr(id int64, side models.OrderSide, qty, price, pnl float64, minute int) models.Trade {
	return models.Trade{
		Symbol:       "BTCUSDT",
		ID:           id,
		OrderID:      id,
		Side:         side,
		PositionSide: models.PositionSideLong,
		Price:        price,
		Quantity:     qty,
		RealizedPnl:  pnl,
		Time:         day(1).Add(time.Duration(minute) * time.Minute),
	}
}

func TestGetPositionHistory_LiveFailureSkipsArchive(t *testing.T) {
	f := newFixture("BTCUSDT")
	boom := errors.New("api down")
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return(nil, boom)

	got, err := f.svc.GetPositionHistory(context.Background())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	f.trades.AssertNotCalled(t, "GetAllAccountTrades", mock.Anything)
}

func TestGetPositionHistory_MergesLiveAndArchive(t *testing.T) {
	f := newFixture("BTCUSDT")
	open := tr(1, models.OrderSideBuy, 1, 100, 0, 0)
	closing := tr(2, models.OrderSideSell, 1, 110, 10, 5)
	stale := closing
	stale.Price = 0

	f.source.On("GetIncomeHistory", mock.Anything, fixedNow.Add(-7*24*time.Hour)).Return([]models.IncomeRecord{}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return([]models.Trade{closing}, nil)
	f.trades.On("GetAllAccountTrades", mock.Anything).Return([]models.Trade{open, stale}, nil)

	got, err := f.svc.GetPositionHistory(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].EntryPrice)
	assert.Equal(t, 110.0, got[0].AvgClosePrice, "live copy shadows the archived one")
	assert.Equal(t, 10.0, got[0].PNL)
}

func TestGetPositionHistory_ArchiveError(t *testing.T) {
	f := newFixture("BTCUSDT")
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return([]models.Trade{}, nil)
	f.trades.On("GetAllAccountTrades", mock.Anything).Return(nil, errors.New("db down"))

	_, err := f.svc.GetPositionHistory(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade archive")
}

func TestGetPositionHistory_InvalidTrade(t *testing.T) {
	f := newFixture("BTCUSDT")
	bad := tr(1, "HOLD", 1, 100, 0, 0)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return([]models.Trade{bad}, nil)
	f.trades.On("GetAllAccountTrades", mock.Anything).Return([]models.Trade{}, nil)

	_, err := f.svc.GetPositionHistory(context.Background())

	assert.ErrorIs(t, err, positions.ErrInvalidTradeData)
}

func TestGetAccountTrades_FetchesConfiguredAndIncomeSymbols(t *testing.T) {
	f := newFixture("ethusdt")
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeRealizedPnl},
		{Symbol: "", IncomeType: models.IncomeTypeTransfer},
	}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return([]models.Trade{{Symbol: "BTCUSDT", ID: 1}}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "ETHUSDT").Return([]models.Trade{{Symbol: "ETHUSDT", ID: 2}}, nil)

	got, err := f.svc.GetAccountTrades(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
	assert.Equal(t, "ETHUSDT", got[1].Symbol)
	f.source.AssertNumberOfCalls(t, "GetAccountTrades", 2)
}

func TestGetBalance_IsCached(t *testing.T) {
	f := newFixture()
	f.source.On("GetBalance", mock.Anything).Return(models.Balance{Balance: 1500}, nil).Once()

	first, err := f.svc.GetBalance(context.Background())
	require.NoError(t, err)
	second, err := f.svc.GetBalance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1500.0, first.Balance)
	assert.Equal(t, first, second)
	f.source.AssertNumberOfCalls(t, "GetBalance", 1)
}

func TestGetBalanceSnapshot_OverwritesLatest(t *testing.T) {
	f := newFixture()
	f.series.On("GetBalanceSnapshot", mock.Anything).Return([]models.BalanceSnapshot{
		{Date: day(1), Balance: 1000},
		{Date: day(2), Balance: 1100},
	}, nil)
	f.source.On("GetBalance", mock.Anything).Return(models.Balance{Balance: 1250}, nil)

	got, err := f.svc.GetBalanceSnapshot(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1000.0, got[0].Balance)
	assert.Equal(t, 1250.0, got[1].Balance)
}

func TestGetBalanceSnapshot_EmptySeriesSkipsBalance(t *testing.T) {
	f := newFixture()
	f.series.On("GetBalanceSnapshot", mock.Anything).Return([]models.BalanceSnapshot{}, nil)

	_, err := f.svc.GetBalanceSnapshot(context.Background())

	assert.ErrorIs(t, err, analytics.ErrEmptyUpstreamData)
	f.source.AssertNotCalled(t, "GetBalance", mock.Anything)
}

func TestGetDailyPNL(t *testing.T) {
	f := newFixture()
	f.series.On("GetDailyPNL", mock.Anything).Return([]models.DailyPNL{
		{Date: day(1), PNL: 100},
		{Date: day(2), PNL: 200},
	}, nil)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{
		{IncomeType: models.IncomeTypeRealizedPnl, Income: 500, Time: fixedNow.Add(-time.Hour)},
	}, nil)

	got, err := f.svc.GetDailyPNL(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].PNL)
	assert.Equal(t, 500.0, got[1].PNL)
	assert.Equal(t, fixedNow, got[1].LastUpdated)
}

func TestGetDailyPNL_IncomeErrorPropagates(t *testing.T) {
	f := newFixture()
	boom := errors.New("income unavailable")
	f.series.On("GetDailyPNL", mock.Anything).Return([]models.DailyPNL{{Date: day(2)}}, nil)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := f.svc.GetDailyPNL(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestGetDailyPNL_EmptySeries(t *testing.T) {
	f := newFixture()
	f.series.On("GetDailyPNL", mock.Anything).Return([]models.DailyPNL{}, nil)

	_, err := f.svc.GetDailyPNL(context.Background())

	assert.ErrorIs(t, err, analytics.ErrEmptyUpstreamData)
	f.source.AssertNotCalled(t, "GetIncomeHistory", mock.Anything, mock.Anything)
}

func TestWeeklyAndMonthlyUseDailySeries(t *testing.T) {
	f := newFixture()
	f.series.On("GetDailyPNL", mock.Anything).Return([]models.DailyPNL{
		{Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), PNL: 50},
		{Date: day(1), PNL: 100},
		{Date: day(2), PNL: 0},
	}, nil)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{
		{IncomeType: models.IncomeTypeRealizedPnl, Income: 40, Time: fixedNow},
	}, nil)

	weekly, err := f.svc.GetWeeklyPNL(context.Background())
	require.NoError(t, err)
	monthly, err := f.svc.GetMonthlySummary(context.Background())
	require.NoError(t, err)

	require.Len(t, weekly, 2)
	assert.Equal(t, 140.0, weekly[1].WeeklyPNL)
	assert.Equal(t, 2, weekly[1].ActualDays)
	require.Len(t, monthly, 2)
	assert.Equal(t, 140.0, monthly[1].PNL)
	assert.Equal(t, 70.0, monthly[1].DailyAverage)
}

func TestGetHistory(t *testing.T) {
	f := newFixture()
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{
		{IncomeType: models.IncomeTypeFundingFee, Income: 30, Time: fixedNow.AddDate(0, 0, -1)},
		{IncomeType: models.IncomeTypeCommission, Income: 20, Time: fixedNow.AddDate(0, 0, -1)},
		{IncomeType: models.IncomeTypeRealizedPnl, Income: 100, Time: fixedNow.AddDate(0, 0, -1)},
	}, nil)

	got, err := f.svc.GetHistory(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day(1), got[0].Date)
	assert.Equal(t, models.HistoryData{Commission: 50, PNL: 100, Income: 150, Multiplier: 1500}, got[0].Data)
}

func TestGetLastUpdatedTime_DefaultsToNow(t *testing.T) {
	f := newFixture()

	assert.Equal(t, fixedNow, f.svc.GetLastUpdatedTime(context.Background()))
}

func stubRefreshSources(f *fixture) {
	f.source.On("GetBalance", mock.Anything).Return(models.Balance{Balance: 2000, UpdateTime: fixedNow}, nil)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeRealizedPnl, Income: 10, Time: fixedNow, TranID: 1},
	}, nil)
	f.source.On("GetOpenPositions", mock.Anything).Return([]models.OpenPosition{{Symbol: "BTCUSDT"}}, nil)
	f.source.On("GetOpenOrders", mock.Anything).Return([]models.OpenOrder{}, nil)
	f.source.On("GetAccountTrades", mock.Anything, "BTCUSDT").Return([]models.Trade{tr(1, models.OrderSideBuy, 1, 100, 0, 0)}, nil)
}

func TestRefresh_PopulatesCacheAndArchive(t *testing.T) {
	f := newFixture()
	stubRefreshSources(f)
	f.trades.On("SaveTrades", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.income.On("SaveIncome", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.income.On("GetAllIncomeHistory", mock.Anything, time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC)).Return([]models.IncomeRecord{
		{IncomeType: models.IncomeTypeRealizedPnl, Income: 25, Time: day(1).Add(time.Hour)},
		{IncomeType: models.IncomeTypeRealizedPnl, Income: 10, Time: fixedNow},
	}, nil)
	f.series.On("UpsertBalanceSnapshot", mock.Anything, models.BalanceSnapshot{Date: day(2), Balance: 2000}).Return(nil)
	f.series.On("UpsertDailyPNL", mock.Anything, models.DailyPNL{Date: day(1), PNL: 25, LastUpdated: fixedNow}).Return(nil)
	f.series.On("UpsertDailyPNL", mock.Anything, models.DailyPNL{Date: day(2), PNL: 10, LastUpdated: fixedNow}).Return(nil)

	require.NoError(t, f.svc.Refresh(context.Background()))

	// Served from cache afterwards
	balance, err := f.svc.GetBalance(context.Background())
	require.NoError(t, err)
	trades, err := f.svc.GetAccountTrades(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2000.0, balance.Balance)
	assert.Len(t, trades, 1)
	f.source.AssertNumberOfCalls(t, "GetBalance", 1)
	f.source.AssertNumberOfCalls(t, "GetAccountTrades", 1)
	f.series.AssertNumberOfCalls(t, "UpsertDailyPNL", 2)
	f.series.AssertExpectations(t)
	assert.True(t, fixedNow.Equal(f.svc.GetLastUpdatedTime(context.Background())))
}

func TestRefresh_SourceFailureLeavesLastUpdatedUnset(t *testing.T) {
	f := newFixture()
	boom := errors.New("timeout")
	f.source.On("GetBalance", mock.Anything).Return(models.Balance{}, boom)
	f.source.On("GetIncomeHistory", mock.Anything, mock.Anything).Return([]models.IncomeRecord{}, nil)
	f.source.On("GetOpenPositions", mock.Anything).Return([]models.OpenPosition{}, nil)
	f.source.On("GetOpenOrders", mock.Anything).Return([]models.OpenOrder{}, nil)

	later := fixedNow.Add(time.Hour)
	f.svc.WithClock(func() time.Time { return later })
	err := f.svc.Refresh(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, later, f.svc.GetLastUpdatedTime(context.Background()), "nothing stored, falls back to now")
	f.trades.AssertNotCalled(t, "SaveTrades", mock.Anything, mock.Anything)
}

func TestRefresh_ArchiveErrorIsReported(t *testing.T) {
	f := newFixture()
	stubRefreshSources(f)
	f.trades.On("SaveTrades", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	err := f.svc.Refresh(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive trades")
	assert.True(t, fixedNow.Equal(f.svc.GetLastUpdatedTime(context.Background())), "cache refresh already happened")
}
