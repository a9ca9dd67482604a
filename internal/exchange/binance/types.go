package binance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/binance-dashboard/internal/models"
)

// APIError is the error body returned with non-2xx responses
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Msg)
}

type balanceResponse struct {
	AccountAlias       string `json:"accountAlias"`
	Asset              string `json:"asset"`
	Balance            string `json:"balance"`
	CrossWalletBalance string `json:"crossWalletBalance"`
	CrossUnPnl         string `json:"crossUnPnl"`
	AvailableBalance   string `json:"availableBalance"`
	UpdateTime         int64  `json:"updateTime"`
}

type tradeResponse struct {
	Symbol       string `json:"symbol"`
	ID           int64  `json:"id"`
	OrderID      int64  `json:"orderId"`
	Side         string `json:"side"`
	PositionSide string `json:"positionSide"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	RealizedPnl  string `json:"realizedPnl"`
	QuoteQty     string `json:"quoteQty"`
	Commission   string `json:"commission"`
	Buyer        bool   `json:"buyer"`
	Maker        bool   `json:"maker"`
	Time         int64  `json:"time"`
}

type incomeResponse struct {
	Symbol     string `json:"symbol"`
	IncomeType string `json:"incomeType"`
	Income     string `json:"income"`
	Asset      string `json:"asset"`
	Info       string `json:"info"`
	Time       int64  `json:"time"`
	TranID     int64  `json:"tranId"`
	TradeID    string `json:"tradeId"`
}

// incomeKey identifies an income entry across overlapping pages
type incomeKey struct {
	incomeType string
	tranID     int64
	tradeID    string
	symbol     string
	time       int64
}

func (r incomeResponse) key() incomeKey {
	return incomeKey{r.IncomeType, r.TranID, r.TradeID, r.Symbol, r.Time}
}

type positionRiskResponse struct {
	Symbol           string `json:"symbol"`
	PositionSide     string `json:"positionSide"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	MarkPrice        string `json:"markPrice"`
	UnRealizedProfit string `json:"unRealizedProfit"`
	LiquidationPrice string `json:"liquidationPrice"`
	Notional         string `json:"notional"`
	UpdateTime       int64  `json:"updateTime"`
}

type openOrderResponse struct {
	OrderID       int64  `json:"orderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	PositionSide  string `json:"positionSide"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	StopPrice     string `json:"stopPrice"`
	ReduceOnly    bool   `json:"reduceOnly"`
	ClosePosition bool   `json:"closePosition"`
	Time          int64  `json:"time"`
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Time   int64  `json:"time"`
}

// parseDecimal converts a string magnitude. Binance sends "" for fields that
// do not apply, which reads as zero.
func parseDecimal(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse %s %q: %w", field, s, err)
	}
	return v, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func (r tradeResponse) toModel() (models.Trade, error) {
	t := models.Trade{
		Symbol:       r.Symbol,
		ID:           r.ID,
		OrderID:      r.OrderID,
		Side:         models.OrderSide(r.Side),
		PositionSide: models.PositionSide(r.PositionSide),
		Buyer:        r.Buyer,
		Maker:        r.Maker,
		Time:         fromMillis(r.Time),
	}

	var err error
	if t.Price, err = parseDecimal("price", r.Price); err != nil {
		return t, err
	}
	if t.Quantity, err = parseDecimal("qty", r.Qty); err != nil {
		return t, err
	}
	if t.RealizedPnl, err = parseDecimal("realizedPnl", r.RealizedPnl); err != nil {
		return t, err
	}
	if t.QuoteQuantity, err = parseDecimal("quoteQty", r.QuoteQty); err != nil {
		return t, err
	}
	if t.Commission, err = parseDecimal("commission", r.Commission); err != nil {
		return t, err
	}
	return t, nil
}

func (r incomeResponse) toModel() (models.IncomeRecord, error) {
	amount, err := parseDecimal("income", r.Income)
	if err != nil {
		return models.IncomeRecord{}, err
	}
	return models.IncomeRecord{
		Symbol:     r.Symbol,
		IncomeType: r.IncomeType,
		Income:     amount,
		Asset:      r.Asset,
		Info:       r.Info,
		Time:       fromMillis(r.Time),
		TranID:     r.TranID,
		TradeID:    r.TradeID,
	}, nil
}

// toModel reports false for flat entries, which positionRisk may include
func (r positionRiskResponse) toModel() (models.OpenPosition, bool, error) {
	amt, err := parseDecimal("positionAmt", r.PositionAmt)
	if err != nil || amt == 0 {
		return models.OpenPosition{}, false, err
	}

	p := models.OpenPosition{
		Symbol:       r.Symbol,
		PositionSide: models.PositionSide(r.PositionSide),
	}
	if p.EntryPrice, err = parseDecimal("entryPrice", r.EntryPrice); err != nil {
		return p, false, err
	}
	if p.UnRealizedProfit, err = parseDecimal("unRealizedProfit", r.UnRealizedProfit); err != nil {
		return p, false, err
	}
	if p.LiquidationPrice, err = parseDecimal("liquidationPrice", r.LiquidationPrice); err != nil {
		return p, false, err
	}
	if p.Notional, err = parseDecimal("notional", r.Notional); err != nil {
		return p, false, err
	}
	return p, true, nil
}

func (r openOrderResponse) toModel() (models.OpenOrder, error) {
	price, err := parseDecimal("price", r.Price)
	if err != nil {
		return models.OpenOrder{}, err
	}
	// stop and take-profit orders rest with price 0
	if price == 0 {
		if price, err = parseDecimal("stopPrice", r.StopPrice); err != nil {
			return models.OpenOrder{}, err
		}
	}

	entryType := models.EntryTypeEntry
	if r.ReduceOnly || r.ClosePosition {
		entryType = models.EntryTypeExit
	}

	return models.OpenOrder{
		Price:     price,
		Symbol:    r.Symbol,
		Time:      fromMillis(r.Time),
		EntryType: entryType,
		OrderType: r.Type,
	}, nil
}
