package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/binance-dashboard/internal/config"
	"github.com/binance-dashboard/internal/models"
	"github.com/goccy/go-json"
)

const (
	balanceEndpoint       = "/fapi/v3/balance"
	userTradesEndpoint    = "/fapi/v1/userTrades"
	incomeEndpoint        = "/fapi/v1/income"
	positionRiskEndpoint  = "/fapi/v3/positionRisk"
	openOrdersEndpoint    = "/fapi/v1/openOrders"
	tickerPriceEndpoint   = "/fapi/v1/ticker/price"
	apiKeyHeader          = "X-MBX-APIKEY"
	quoteAsset            = "USDT"
	maxTradesPerRequest   = 1000
	maxIncomePerRequest   = 1000
	errorBodyPreviewBytes = 512
)

// Client is a signed REST client for the USDⓈ-M futures account endpoints
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	recvWindow int64
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a REST client from the binance config section
func NewClient(cfg config.BinanceConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		recvWindow: cfg.RecvWindow,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		now:        time.Now,
	}
}

// GetBalance returns the cross wallet balance of the USDT asset
func (c *Client) GetBalance(ctx context.Context) (models.Balance, error) {
	var assets []balanceResponse
	if err := c.signedGet(ctx, balanceEndpoint, url.Values{}, &assets); err != nil {
		return models.Balance{}, err
	}

	for _, a := range assets {
		if a.Asset != quoteAsset {
			continue
		}
		balance, err := parseDecimal("crossWalletBalance", a.CrossWalletBalance)
		if err != nil {
			return models.Balance{}, err
		}
		return models.Balance{Balance: balance, UpdateTime: c.now().UTC()}, nil
	}
	// no USDT wallet yet
	return models.Balance{Balance: 0, UpdateTime: c.now().UTC()}, nil
}

// GetAccountTrades returns the most recent fills of symbol
func (c *Client) GetAccountTrades(ctx context.Context, symbol string) ([]models.Trade, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("limit", strconv.Itoa(maxTradesPerRequest))

	var raw []tradeResponse
	if err := c.signedGet(ctx, userTradesEndpoint, params, &raw); err != nil {
		return nil, err
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, r := range raw {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// GetIncomeHistory returns all income entries since the given time. The
// endpoint returns the oldest entries first, so full pages are followed by a
// request starting at the last entry's time until a short page arrives.
func (c *Client) GetIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error) {
	var (
		records []models.IncomeRecord
		seen    = make(map[incomeKey]struct{})
		start   = since.UnixMilli()
	)
	for {
		params := url.Values{}
		params.Set("startTime", strconv.FormatInt(start, 10))
		params.Set("limit", strconv.Itoa(maxIncomePerRequest))

		var raw []incomeResponse
		if err := c.signedGet(ctx, incomeEndpoint, params, &raw); err != nil {
			return nil, err
		}

		added := 0
		for _, r := range raw {
			// entries at the page boundary are served again by the next request
			if _, dup := seen[r.key()]; dup {
				continue
			}
			seen[r.key()] = struct{}{}

			rec, err := r.toModel()
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			added++
		}

		if len(raw) < maxIncomePerRequest {
			break
		}
		last := raw[len(raw)-1].Time
		if added == 0 || last < start {
			// a full page of one millisecond
			last = start + 1
		}
		start = last
	}

	if records == nil {
		records = make([]models.IncomeRecord, 0)
	}
	return records, nil
}

// GetOpenPositions returns every position with a non-zero size
func (c *Client) GetOpenPositions(ctx context.Context) ([]models.OpenPosition, error) {
	var raw []positionRiskResponse
	if err := c.signedGet(ctx, positionRiskEndpoint, url.Values{}, &raw); err != nil {
		return nil, err
	}

	positions := make([]models.OpenPosition, 0, len(raw))
	for _, r := range raw {
		p, open, err := r.toModel()
		if err != nil {
			return nil, err
		}
		if open {
			positions = append(positions, p)
		}
	}
	return positions, nil
}

// GetOpenOrders returns resting orders on all symbols
func (c *Client) GetOpenOrders(ctx context.Context) ([]models.OpenOrder, error) {
	var raw []openOrderResponse
	if err := c.signedGet(ctx, openOrdersEndpoint, url.Values{}, &raw); err != nil {
		return nil, err
	}

	orders := make([]models.OpenOrder, 0, len(raw))
	for _, r := range raw {
		o, err := r.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetTickerPrice returns the latest price of symbol. The endpoint is public.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tickerPriceEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}

	var result tickerPriceResponse
	if err := c.do(req, &result); err != nil {
		return 0, err
	}
	return parseDecimal("price", result.Price)
}

func (c *Client) signedGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	if c.recvWindow > 0 {
		params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	}
	query := params.Encode()
	query += "&signature=" + Sign(query, c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("binance: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("binance: read %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Msg == "" {
			preview := string(body)
			if len(preview) > errorBodyPreviewBytes {
				preview = preview[:errorBodyPreviewBytes]
			}
			apiErr.Msg = preview
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("binance: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
