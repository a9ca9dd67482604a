package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/binance-dashboard/internal/cache"
	"github.com/binance-dashboard/internal/exchange"
	"github.com/redis/go-redis/v9"
)

// priceTTL is how long a streamed mark price is considered current
const priceTTL = 5 * time.Second

// PriceService keeps mark prices streamed from the exchange and falls back
// to the REST ticker when no fresh price is known
type PriceService struct {
	redis    *redis.Client
	provider exchange.PriceProvider
	source   exchange.AccountDataSource
	cache    *cache.Loader
	symbols  []string

	prices    map[string]exchange.PriceUpdate
	pricesMux sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// NewPriceService creates a new PriceService. redisClient and provider may
// be nil, in which case only the REST fallback is used.
func NewPriceService(
	redisClient *redis.Client,
	provider exchange.PriceProvider,
	source exchange.AccountDataSource,
	loader *cache.Loader,
	symbols []string,
) *PriceService {
	return &PriceService{
		redis:    redisClient,
		provider: provider,
		source:   source,
		cache:    loader,
		symbols:  symbols,
		prices:   make(map[string]exchange.PriceUpdate),
		ctx:      context.Background(),
		now:      time.Now,
	}
}

// Start connects the price stream and subscribes to the configured symbols
func (s *PriceService) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	if s.provider == nil {
		return nil
	}

	s.provider.SetSubscriber(s)
	if err := s.provider.Connect(s.ctx); err != nil {
		return fmt.Errorf("connect price stream: %w", err)
	}
	if err := s.provider.Subscribe(s.symbols); err != nil {
		log.Printf("[PriceService] Failed to subscribe: %v", err)
	}

	log.Printf("[PriceService] Started with %d symbols", len(s.symbols))
	return nil
}

// OnPriceUpdate implements exchange.PriceSubscriber
func (s *PriceService) OnPriceUpdate(update exchange.PriceUpdate) {
	s.pricesMux.Lock()
	s.prices[update.Symbol] = update
	s.pricesMux.Unlock()

	if s.redis == nil {
		return
	}

	key := priceKey(update.Symbol)
	pipe := s.redis.TxPipeline()
	pipe.HSet(s.ctx, key, map[string]interface{}{
		"price":     update.Price,
		"timestamp": update.Timestamp,
	})
	pipe.Expire(s.ctx, key, priceTTL)
	if _, err := pipe.Exec(s.ctx); err != nil {
		log.Printf("[PriceService] Failed to store %s: %v", update.Symbol, err)
	}
}

// GetPrice returns the current price of symbol. Lookup order: streamed
// price in memory, Redis, then the cached REST ticker.
func (s *PriceService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)

	s.pricesMux.RLock()
	update, ok := s.prices[symbol]
	s.pricesMux.RUnlock()
	if ok && s.now().UnixMilli()-update.Timestamp < priceTTL.Milliseconds() {
		return update.Price, nil
	}

	if s.redis != nil {
		if price, err := s.redis.HGet(ctx, priceKey(symbol), "price").Float64(); err == nil {
			return price, nil
		}
	}

	return cache.GetOrLoad(ctx, s.cache, cache.KeyCurrentPrice+":"+symbol, func(ctx context.Context) (float64, error) {
		return s.source.GetTickerPrice(ctx, symbol)
	})
}

// IsStreaming reports whether the mark price stream is connected
func (s *PriceService) IsStreaming() bool {
	return s.provider != nil && s.provider.IsConnected()
}

// Stop stops the price stream
func (s *PriceService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			log.Printf("[PriceService] Error closing stream: %v", err)
		}
	}
	log.Printf("[PriceService] Stopped")
}

func priceKey(symbol string) string {
	return "price:binance:" + symbol
}
