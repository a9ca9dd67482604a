package models

import (
	"time"
)

// OrderSide represents the order side
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Entry types reported for open orders
const (
	EntryTypeEntry = "ENTRY"
	EntryTypeExit  = "EXIT"
)

// OpenOrder is a resting order on the exchange as shown on the dashboard
type OpenOrder struct {
	Price     float64   `json:"price"`
	Symbol    string    `json:"symbol"`
	Time      time.Time `json:"time"`
	EntryType string    `json:"entry_type"`
	OrderType string    `json:"order_type"`
}
