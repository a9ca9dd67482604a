// Package mock provides an offline account data source for local runs
package mock

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/binance-dashboard/internal/models"
)

// Source returns synthetic account data. The balance is random, everything
// else is a small fixed history anchored at the time of construction.
type Source struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	anchor time.Time
}

// NewSource creates a mock source
func NewSource() *Source {
	return &Source{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		anchor: time.Now().UTC().Truncate(time.Hour),
	}
}

// GetBalance returns a random balance between 1000 and 5000
func (s *Source) GetBalance(_ context.Context) (models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Balance{
		Balance:    1000 + s.rng.Float64()*4000,
		UpdateTime: s.now().UTC(),
	}, nil
}

// GetAccountTrades returns one closed long and one closed short round trip
func (s *Source) GetAccountTrades(_ context.Context, symbol string) ([]models.Trade, error) {
	symbol = strings.ToUpper(symbol)
	at := func(h int) time.Time { return s.anchor.Add(time.Duration(h-48) * time.Hour) }

	return []models.Trade{
		{Symbol: symbol, ID: 1, OrderID: 101, Side: models.OrderSideBuy, PositionSide: models.PositionSideLong, Price: 100, Quantity: 1, Time: at(0)},
		{Symbol: symbol, ID: 2, OrderID: 102, Side: models.OrderSideBuy, PositionSide: models.PositionSideLong, Price: 98, Quantity: 1, Time: at(2)},
		{Symbol: symbol, ID: 3, OrderID: 103, Side: models.OrderSideSell, PositionSide: models.PositionSideLong, Price: 104, Quantity: 2, RealizedPnl: 10, Time: at(5)},
		{Symbol: symbol, ID: 4, OrderID: 104, Side: models.OrderSideSell, PositionSide: models.PositionSideShort, Price: 105, Quantity: 1, Time: at(20)},
		{Symbol: symbol, ID: 5, OrderID: 105, Side: models.OrderSideBuy, PositionSide: models.PositionSideShort, Price: 101, Quantity: 1, RealizedPnl: 4, Time: at(30)},
	}, nil
}

// GetIncomeHistory returns the income matching the mock trades
func (s *Source) GetIncomeHistory(_ context.Context, since time.Time) ([]models.IncomeRecord, error) {
	all := []models.IncomeRecord{
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeRealizedPnl, Income: 10, Asset: "USDT", Time: s.anchor.Add(-43 * time.Hour), TranID: 1},
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeCommission, Income: -0.4, Asset: "USDT", Time: s.anchor.Add(-43 * time.Hour), TranID: 2},
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeFundingFee, Income: -0.1, Asset: "USDT", Time: s.anchor.Add(-24 * time.Hour), TranID: 3},
		{Symbol: "BTCUSDT", IncomeType: models.IncomeTypeRealizedPnl, Income: 4, Asset: "USDT", Time: s.anchor.Add(-18 * time.Hour), TranID: 4},
	}

	out := make([]models.IncomeRecord, 0, len(all))
	for _, r := range all {
		if !r.Time.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Source) GetOpenPositions(_ context.Context) ([]models.OpenPosition, error) {
	return []models.OpenPosition{}, nil
}

func (s *Source) GetOpenOrders(_ context.Context) ([]models.OpenOrder, error) {
	return []models.OpenOrder{}, nil
}

// GetTickerPrice returns a random price between 600 and 610
func (s *Source) GetTickerPrice(_ context.Context, _ string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 600 + s.rng.Float64()*10, nil
}
