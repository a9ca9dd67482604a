package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultPriceSymbol is quoted when no symbol is requested
const DefaultPriceSymbol = "BNBUSDT"

// PriceReader returns current prices
type PriceReader interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// PriceHandler handles price-related API requests
type PriceHandler struct {
	prices  PriceReader
	timeout time.Duration
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(prices PriceReader, timeout time.Duration) *PriceHandler {
	return &PriceHandler{
		prices:  prices,
		timeout: timeout,
	}
}

// RegisterRoutes registers price routes
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Group("/Account").GET("/GetCurrentPrice", h.GetCurrentPrice)
}

// GetCurrentPrice returns the current price for a symbol
// GET /Account/GetCurrentPrice?symbol=BNBUSDT
func (h *PriceHandler) GetCurrentPrice(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("symbol", DefaultPriceSymbol)))
	if symbol == "" {
		symbol = DefaultPriceSymbol
	}

	serve(h.timeout, func(ctx context.Context) (gin.H, error) {
		price, err := h.prices.GetPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return gin.H{"symbol": symbol, "price": price}, nil
	})(c)
}
