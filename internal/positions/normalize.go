package positions

import (
	"math"

	"github.com/binance-dashboard/internal/models"
)

// Fill is a validated trade carrying a signed quantity: positive for BUY,
// negative for SELL. It is built from a copy of the trade and never written
// back.
type Fill struct {
	models.Trade
	SignedQty float64
}

// Normalize validates t and returns its signed fill
func Normalize(t models.Trade) (Fill, error) {
	if t.Symbol == "" {
		return Fill{}, invalidTrade(t, "empty symbol")
	}
	if !isFinite(t.Price) {
		return Fill{}, invalidTrade(t, "non-finite price")
	}
	if !isFinite(t.Quantity) {
		return Fill{}, invalidTrade(t, "non-finite quantity")
	}
	if !isFinite(t.RealizedPnl) {
		return Fill{}, invalidTrade(t, "non-finite realized pnl")
	}

	switch t.PositionSide {
	case models.PositionSideLong, models.PositionSideShort, models.PositionSideBoth:
	default:
		return Fill{}, invalidTrade(t, "unknown position side "+string(t.PositionSide))
	}

	qty := math.Abs(t.Quantity)
	switch t.Side {
	case models.OrderSideBuy:
		return Fill{Trade: t, SignedQty: qty}, nil
	case models.OrderSideSell:
		return Fill{Trade: t, SignedQty: -qty}, nil
	default:
		return Fill{}, invalidTrade(t, "unknown side "+string(t.Side))
	}
}

// NormalizeAll normalizes every trade, failing on the first invalid one
func NormalizeAll(trades []models.Trade) ([]Fill, error) {
	fills := make([]Fill, 0, len(trades))
	for _, t := range trades {
		f, err := Normalize(t)
		if err != nil {
			return nil, err
		}
		fills = append(fills, f)
	}
	return fills, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
