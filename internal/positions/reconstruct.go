package positions

import (
	"sort"
	"time"

	"github.com/binance-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const (
	// positionScale is the number of decimals the running size is rounded
	// to before the close check
	positionScale = 8
	pnlScale      = 2
)

// closeTolerance absorbs float drift left over after partial closes
var closeTolerance = decimal.RequireFromString("0.0009")

// segment accumulates one round trip
type segment struct {
	symbol    string
	side      models.PositionSide
	position  float64
	entrySum  float64
	closeSum  float64
	pnlSum    float64
	opened    int
	closed    int
	openTime  time.Time
	closeTime time.Time
}

func isOpening(f Fill, side models.PositionSide) bool {
	if side == models.PositionSideShort {
		return f.SignedQty < 0
	}
	return f.SignedQty > 0
}

func (s *segment) apply(f Fill) {
	s.position += f.SignedQty
	if isOpening(f, s.side) {
		s.entrySum += f.Price
		s.opened++
	} else {
		s.pnlSum += f.RealizedPnl
		s.closeSum += f.Price
		s.closed++
	}
	s.closeTime = f.Time
}

func (s *segment) isClosed() bool {
	return decimal.NewFromFloat(s.position).RoundBank(positionScale).Abs().LessThan(closeTolerance)
}

func (s *segment) result() models.PositionHistory {
	p := models.PositionHistory{
		Symbol:       s.symbol,
		PositionSide: s.side,
		OpenTime:     s.openTime,
		CloseTime:    s.closeTime,
		PNL:          decimal.NewFromFloat(s.pnlSum).RoundBank(pnlScale).InexactFloat64(),
		TimesOpened:  s.opened,
		TimesClosed:  s.closed,
	}
	if s.opened > 0 {
		p.EntryPrice = s.entrySum / float64(s.opened)
	}
	if s.closed > 0 {
		p.AvgClosePrice = s.closeSum / float64(s.closed)
	}
	return p
}

// Reconstruct walks the fills of one symbol and one position side in time
// order and returns every closed round trip. Fills on other sides must be
// filtered out by the caller. A round trip still open after the last fill is
// not reported.
func Reconstruct(fills []Fill, side models.PositionSide) []models.PositionHistory {
	ordered := make([]Fill, len(fills))
	copy(ordered, fills)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	var (
		out []models.PositionHistory
		seg *segment
	)
	for _, f := range ordered {
		if seg == nil {
			if !isOpening(f, side) {
				// closing fill with nothing open
				continue
			}
			seg = &segment{symbol: f.Symbol, side: side, openTime: f.Time}
		}

		seg.apply(f)
		if seg.isClosed() {
			out = append(out, seg.result())
			seg = nil
		}
	}
	return out
}

// ReconstructAll validates and normalizes trades, reconstructs LONG and SHORT
// round trips per symbol independently and returns them ordered by close
// time. Trades on the one-way BOTH side are validated but not reconstructed.
func ReconstructAll(trades []models.Trade) ([]models.PositionHistory, error) {
	fills, err := NormalizeAll(trades)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string][]Fill)
	for _, f := range fills {
		bySymbol[f.Symbol] = append(bySymbol[f.Symbol], f)
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	positions := make([]models.PositionHistory, 0)
	for _, symbol := range symbols {
		for _, side := range []models.PositionSide{models.PositionSideLong, models.PositionSideShort} {
			positions = append(positions, Reconstruct(filterSide(bySymbol[symbol], side), side)...)
		}
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].CloseTime.Before(positions[j].CloseTime)
	})
	return positions, nil
}

func filterSide(fills []Fill, side models.PositionSide) []Fill {
	var out []Fill
	for _, f := range fills {
		if f.PositionSide == side {
			out = append(out, f)
		}
	}
	return out
}
