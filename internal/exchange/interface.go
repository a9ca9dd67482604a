package exchange

import (
	"context"
	"time"

	"github.com/binance-dashboard/internal/models"
)

// PriceUpdate represents a real-time price update from an exchange
type PriceUpdate struct {
	Exchange  string  `json:"exchange"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// PriceSubscriber is an interface for components that receive price updates
type PriceSubscriber interface {
	OnPriceUpdate(update PriceUpdate)
}

// PriceProvider is an interface for exchange WebSocket price streams
type PriceProvider interface {
	// Connect establishes WebSocket connection to the exchange
	Connect(ctx context.Context) error

	// Subscribe subscribes to price updates for given symbols
	Subscribe(symbols []string) error

	// SetSubscriber sets the price update subscriber
	SetSubscriber(subscriber PriceSubscriber)

	// Close closes the WebSocket connection
	Close() error

	// IsConnected returns whether the WebSocket is connected
	IsConnected() bool
}

// AccountDataSource reads the futures account state. Implementations return
// parsed values; string magnitudes never leave the client.
type AccountDataSource interface {
	// GetBalance returns the USDT wallet balance
	GetBalance(ctx context.Context) (models.Balance, error)

	// GetAccountTrades returns recent fills for one symbol
	GetAccountTrades(ctx context.Context, symbol string) ([]models.Trade, error)

	// GetIncomeHistory returns ledger entries booked after since
	GetIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error)

	// GetOpenPositions returns positions with a non-zero size
	GetOpenPositions(ctx context.Context) ([]models.OpenPosition, error)

	// GetOpenOrders returns resting orders on all symbols
	GetOpenOrders(ctx context.Context) ([]models.OpenOrder, error)

	// GetTickerPrice returns the last traded price of symbol
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}
