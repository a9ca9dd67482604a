package positions

import (
	"errors"
	"fmt"

	"github.com/binance-dashboard/internal/models"
)

// ErrInvalidTradeData is returned when a fill cannot take part in position
// reconstruction. The whole batch is rejected.
var ErrInvalidTradeData = errors.New("invalid trade data")

func invalidTrade(t models.Trade, reason string) error {
	return fmt.Errorf("%w: trade %d (order %d, symbol %q): %s", ErrInvalidTradeData, t.ID, t.OrderID, t.Symbol, reason)
}
