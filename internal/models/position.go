package models

import (
	"time"
)

// PositionSide represents the position side
type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
	PositionSideBoth  PositionSide = "BOTH" // For one-way mode
)

// PositionHistory is one closed round trip: flat, opened, accumulated and
// returned to flat on a single position side.
type PositionHistory struct {
	Symbol        string       `json:"symbol"`
	PositionSide  PositionSide `json:"position_side"`
	EntryPrice    float64      `json:"entry_price"`
	AvgClosePrice float64      `json:"avg_close_price"`
	OpenTime      time.Time    `json:"open_time"`
	CloseTime     time.Time    `json:"close_time"`
	PNL           float64      `json:"pnl"`
	TimesOpened   int          `json:"times_opened"`
	TimesClosed   int          `json:"times_closed"`
}

// OpenPosition is a live position reported by the exchange
type OpenPosition struct {
	Symbol           string       `json:"symbol"`
	PositionSide     PositionSide `json:"position_side"`
	EntryPrice       float64      `json:"entry_price"`
	UnRealizedProfit float64      `json:"unrealized_profit"`
	LiquidationPrice float64      `json:"liquidation_price"`
	Notional         float64      `json:"notional"`
}
