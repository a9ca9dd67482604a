package positions

import (
	"github.com/binance-dashboard/internal/models"
)

// tradeKey identifies a fill across sources. Numeric fields are not part of
// the identity.
type tradeKey struct {
	symbol       string
	id           int64
	orderID      int64
	side         models.OrderSide
	positionSide models.PositionSide
}

func keyOf(t models.Trade) tradeKey {
	return tradeKey{
		symbol:       t.Symbol,
		id:           t.ID,
		orderID:      t.OrderID,
		side:         t.Side,
		positionSide: t.PositionSide,
	}
}

// MergeTrades concatenates live and archived trades and drops duplicates.
// The first copy seen wins, so a live trade shadows its archived copy.
func MergeTrades(live, archive []models.Trade) []models.Trade {
	merged := make([]models.Trade, 0, len(live)+len(archive))
	seen := make(map[tradeKey]struct{}, len(live)+len(archive))

	for _, batch := range [][]models.Trade{live, archive} {
		for _, t := range batch {
			k := keyOf(t)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}
