package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/binance-dashboard/internal/analytics"
	"github.com/binance-dashboard/internal/cache"
	"github.com/binance-dashboard/internal/config"
	"github.com/binance-dashboard/internal/exchange"
	"github.com/binance-dashboard/internal/models"
	"github.com/binance-dashboard/internal/positions"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSymbolFetches bounds parallel userTrades requests
const maxConcurrentSymbolFetches = 4

// TradeArchive stores fills beyond the exchange's recent-trades window
type TradeArchive interface {
	GetAllAccountTrades(ctx context.Context) ([]models.Trade, error)
	SaveTrades(ctx context.Context, trades []models.Trade) (int64, error)
}

// IncomeArchive stores the income ledger
type IncomeArchive interface {
	GetAllIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error)
	SaveIncome(ctx context.Context, records []models.IncomeRecord) (int64, error)
}

// SeriesStore stores the per-day balance and PnL series
type SeriesStore interface {
	GetBalanceSnapshot(ctx context.Context) ([]models.BalanceSnapshot, error)
	UpsertBalanceSnapshot(ctx context.Context, snapshot models.BalanceSnapshot) error
	GetDailyPNL(ctx context.Context) ([]models.DailyPNL, error)
	UpsertDailyPNL(ctx context.Context, entry models.DailyPNL) error
}

// DashboardService serves the dashboard endpoints from the exchange, the
// response cache and the archive
type DashboardService struct {
	source   exchange.AccountDataSource
	trades   TradeArchive
	income   IncomeArchive
	series   SeriesStore
	cache    *cache.Loader
	symbols  []string
	lookback time.Duration
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	source exchange.AccountDataSource,
	trades TradeArchive,
	income IncomeArchive,
	series SeriesStore,
	loader *cache.Loader,
	cfg config.BinanceConfig,
) *DashboardService {
	lookbackDays := cfg.IncomeLookbackDays
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &DashboardService{
		source:   source,
		trades:   trades,
		income:   income,
		series:   series,
		cache:    loader,
		symbols:  cfg.Symbols,
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// WithClock replaces the time source
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// GetBalance returns the current USDT balance
func (s *DashboardService) GetBalance(ctx context.Context) (models.Balance, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyBalance, s.source.GetBalance)
}

// GetAccountTrades returns recent fills of every tracked symbol
func (s *DashboardService) GetAccountTrades(ctx context.Context) ([]models.Trade, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyAccountTrades, s.fetchAccountTrades)
}

// GetIncomeHistory returns the income ledger of the lookback window
func (s *DashboardService) GetIncomeHistory(ctx context.Context) ([]models.IncomeRecord, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyIncomeHistory, s.fetchIncomeHistory)
}

// GetOpenPositions returns live positions
func (s *DashboardService) GetOpenPositions(ctx context.Context) ([]models.OpenPosition, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyOpenPositions, s.source.GetOpenPositions)
}

// GetOpenOrders returns resting orders
func (s *DashboardService) GetOpenOrders(ctx context.Context) ([]models.OpenOrder, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.KeyOpenOrders, s.source.GetOpenOrders)
}

// GetPositionHistory rebuilds closed positions from live and archived fills.
// The archive is only read once the live fetch succeeded.
func (s *DashboardService) GetPositionHistory(ctx context.Context) ([]models.PositionHistory, error) {
	live, err := s.GetAccountTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch live trades: %w", err)
	}

	archived, err := s.trades.GetAllAccountTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("read trade archive: %w", err)
	}

	return positions.ReconstructAll(positions.MergeTrades(live, archived))
}

// GetBalanceSnapshot returns the daily balance series with today's entry
// set to the live balance
func (s *DashboardService) GetBalanceSnapshot(ctx context.Context) ([]models.BalanceSnapshot, error) {
	persisted, err := s.series.GetBalanceSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read balance snapshots: %w", err)
	}
	if len(persisted) == 0 {
		return nil, fmt.Errorf("balance snapshot: %w", analytics.ErrEmptyUpstreamData)
	}

	balance, err := s.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MergeBalanceSnapshots(persisted, balance)
}

// GetDailyPNL returns the daily PnL series with the latest entry recomputed
// from live income
func (s *DashboardService) GetDailyPNL(ctx context.Context) ([]models.DailyPNL, error) {
	persisted, err := s.series.GetDailyPNL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read daily pnl: %w", err)
	}
	if len(persisted) == 0 {
		return nil, fmt.Errorf("daily pnl: %w", analytics.ErrEmptyUpstreamData)
	}

	income, err := s.GetIncomeHistory(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MergeDailyPNL(persisted, income, s.now().UTC())
}

// GetWeeklyPNL groups the daily series into runs of consecutive days
func (s *DashboardService) GetWeeklyPNL(ctx context.Context) ([]models.WeeklyPNL, error) {
	daily, err := s.GetDailyPNL(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.WeeklySummaries(daily), nil
}

// GetMonthlySummary sums the daily series per month
func (s *DashboardService) GetMonthlySummary(ctx context.Context) ([]models.MonthlySummary, error) {
	daily, err := s.GetDailyPNL(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlySummaries(daily), nil
}

// GetHistory returns fees and realized PnL per day for the last days
func (s *DashboardService) GetHistory(ctx context.Context) ([]models.History, error) {
	income, err := s.GetIncomeHistory(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.History(income, s.now().UTC(), analytics.HistoryDays), nil
}

// GetLastUpdatedTime returns when the cache was last refreshed, or now if it
// never was. Reading does not store anything.
func (s *DashboardService) GetLastUpdatedTime(ctx context.Context) time.Time {
	if t, ok := cache.Lookup[time.Time](ctx, s.cache, cache.KeyLastUpdatedTime); ok {
		return t
	}
	return s.now().UTC()
}

// Refresh reloads every cached endpoint, archives the fetched fills and
// income, and records today's balance and PnL
func (s *DashboardService) Refresh(ctx context.Context) error {
	var (
		balance models.Balance
		income  []models.IncomeRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if balance, err = s.source.GetBalance(gctx); err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		return cache.Put(gctx, s.cache, cache.KeyBalance, balance)
	})
	g.Go(func() error {
		var err error
		if income, err = s.fetchIncomeHistory(gctx); err != nil {
			return fmt.Errorf("income: %w", err)
		}
		return cache.Put(gctx, s.cache, cache.KeyIncomeHistory, income)
	})
	g.Go(func() error {
		open, err := s.source.GetOpenPositions(gctx)
		if err != nil {
			return fmt.Errorf("open positions: %w", err)
		}
		return cache.Put(gctx, s.cache, cache.KeyOpenPositions, open)
	})
	g.Go(func() error {
		orders, err := s.source.GetOpenOrders(gctx)
		if err != nil {
			return fmt.Errorf("open orders: %w", err)
		}
		return cache.Put(gctx, s.cache, cache.KeyOpenOrders, orders)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	// Trade symbols depend on the income just fetched
	trades, err := s.fetchTradesFor(ctx, s.trackedSymbols(income))
	if err != nil {
		return fmt.Errorf("refresh: trades: %w", err)
	}
	if err := cache.Put(ctx, s.cache, cache.KeyAccountTrades, trades); err != nil {
		return fmt.Errorf("refresh: trades: %w", err)
	}

	now := s.now().UTC()
	if err := cache.Put(ctx, s.cache, cache.KeyLastUpdatedTime, now); err != nil {
		log.Printf("[DashboardService] failed to store last updated time: %v", err)
	}

	return s.archive(ctx, now, balance, trades, income)
}

// archive persists the refreshed data and rebuilds the daily series for the
// lookback window
func (s *DashboardService) archive(ctx context.Context, now time.Time, balance models.Balance, trades []models.Trade, income []models.IncomeRecord) error {
	added, err := s.trades.SaveTrades(ctx, trades)
	if err != nil {
		return fmt.Errorf("archive trades: %w", err)
	}
	addedIncome, err := s.income.SaveIncome(ctx, income)
	if err != nil {
		return fmt.Errorf("archive income: %w", err)
	}
	if added > 0 || addedIncome > 0 {
		log.Printf("[DashboardService] archived %d trades, %d income records", added, addedIncome)
	}

	today := analytics.DayOf(now)
	if err := s.series.UpsertBalanceSnapshot(ctx, models.BalanceSnapshot{Date: today, Balance: balance.Balance}); err != nil {
		return fmt.Errorf("archive balance snapshot: %w", err)
	}

	// The first day of the window may only be partly covered by the archive
	from := analytics.DayOf(now.Add(-s.lookback)).AddDate(0, 0, 1)
	archived, err := s.income.GetAllIncomeHistory(ctx, from)
	if err != nil {
		return fmt.Errorf("read income archive: %w", err)
	}

	byDay := analytics.RealizedByDay(archived)
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		pnl, ok := byDay[day]
		if !ok && !day.Equal(today) {
			continue
		}
		if err := s.series.UpsertDailyPNL(ctx, models.DailyPNL{Date: day, PNL: pnl, LastUpdated: now}); err != nil {
			return fmt.Errorf("archive daily pnl: %w", err)
		}
	}
	return nil
}

func (s *DashboardService) fetchIncomeHistory(ctx context.Context) ([]models.IncomeRecord, error) {
	return s.source.GetIncomeHistory(ctx, s.now().Add(-s.lookback))
}

func (s *DashboardService) fetchAccountTrades(ctx context.Context) ([]models.Trade, error) {
	income, err := s.GetIncomeHistory(ctx)
	if err != nil {
		return nil, err
	}
	return s.fetchTradesFor(ctx, s.trackedSymbols(income))
}

// trackedSymbols is the configured symbol list plus every symbol that
// booked income in the lookback window, sorted
func (s *DashboardService) trackedSymbols(income []models.IncomeRecord) []string {
	set := make(map[string]struct{})
	for _, sym := range s.symbols {
		set[strings.ToUpper(sym)] = struct{}{}
	}
	for _, r := range income {
		if r.Symbol != "" {
			set[r.Symbol] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(set))
	for sym := range set {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

func (s *DashboardService) fetchTradesFor(ctx context.Context, symbols []string) ([]models.Trade, error) {
	perSymbol := make([][]models.Trade, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSymbolFetches)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			trades, err := s.source.GetAccountTrades(gctx, sym)
			if err != nil {
				return fmt.Errorf("trades for %s: %w", sym, err)
			}
			perSymbol[i] = trades
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]models.Trade, 0)
	for _, trades := range perSymbol {
		all = append(all, trades...)
	}
	return all, nil
}
