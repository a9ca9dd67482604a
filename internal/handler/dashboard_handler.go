package handler

import (
	"context"
	"errors"
	"time"

	"github.com/binance-dashboard/internal/models"
	"github.com/binance-dashboard/internal/positions"
	"github.com/binance-dashboard/pkg/response"
	"github.com/gin-gonic/gin"
)

// DashboardReader is the read side of the dashboard service
type DashboardReader interface {
	GetBalance(ctx context.Context) (models.Balance, error)
	GetAccountTrades(ctx context.Context) ([]models.Trade, error)
	GetIncomeHistory(ctx context.Context) ([]models.IncomeRecord, error)
	GetOpenPositions(ctx context.Context) ([]models.OpenPosition, error)
	GetOpenOrders(ctx context.Context) ([]models.OpenOrder, error)
	GetPositionHistory(ctx context.Context) ([]models.PositionHistory, error)
	GetBalanceSnapshot(ctx context.Context) ([]models.BalanceSnapshot, error)
	GetDailyPNL(ctx context.Context) ([]models.DailyPNL, error)
	GetWeeklyPNL(ctx context.Context) ([]models.WeeklyPNL, error)
	GetMonthlySummary(ctx context.Context) ([]models.MonthlySummary, error)
	GetHistory(ctx context.Context) ([]models.History, error)
	GetLastUpdatedTime(ctx context.Context) time.Time
}

// DashboardHandler handles the account dashboard API requests
type DashboardHandler struct {
	dashboard DashboardReader
	timeout   time.Duration
}

// NewDashboardHandler creates a new DashboardHandler. Every request is
// bounded by timeout.
func NewDashboardHandler(dashboard DashboardReader, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		timeout:   timeout,
	}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	account := rg.Group("/Account")
	{
		account.GET("/GetBalance", serve(h.timeout, h.dashboard.GetBalance))
		account.GET("/GetAccountTrades", serve(h.timeout, h.dashboard.GetAccountTrades))
		account.GET("/GetIncomeHistory", serve(h.timeout, h.dashboard.GetIncomeHistory))
		account.GET("/GetOpenPositions", serve(h.timeout, h.dashboard.GetOpenPositions))
		account.GET("/GetOpenOrders", serve(h.timeout, h.dashboard.GetOpenOrders))
		account.GET("/GetPositionHistory", serve(h.timeout, h.dashboard.GetPositionHistory))
		account.GET("/GetBalanceSnapshot", serve(h.timeout, h.dashboard.GetBalanceSnapshot))
		account.GET("/GetDailyPNL", serve(h.timeout, h.dashboard.GetDailyPNL))
		account.GET("/GetWeeklyPNL", serve(h.timeout, h.dashboard.GetWeeklyPNL))
		account.GET("/GetMonthlySummary", serve(h.timeout, h.dashboard.GetMonthlySummary))
		account.GET("/GetHistory", serve(h.timeout, h.dashboard.GetHistory))
		account.GET("/GetLastUpdatedTime", h.GetLastUpdatedTime)
	}
}

// GetLastUpdatedTime returns when the cache was last refreshed
// GET /Account/GetLastUpdatedTime
func (h *DashboardHandler) GetLastUpdatedTime(c *gin.Context) {
	response.Success(c, h.dashboard.GetLastUpdatedTime(c.Request.Context()))
}

// serve runs load under the request timeout and writes its result
func serve[T any](timeout time.Duration, load func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		data, err := load(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, data)
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		response.GatewayTimeout(c, "request to exchange timed out")
	case errors.Is(err, positions.ErrInvalidTradeData):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
