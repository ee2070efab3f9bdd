// internal/market/quote.go
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"finvest-api/internal/config"
)

// Quoter returns the current price for a symbol. For investment plans the
// quote is the plan's NAV per unit.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Client is a Finnhub-style quote API client.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient creates a quote client for the configured market data API.
func NewClient(cfg config.MarketConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(5 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{
		http:   httpClient,
		apiKey: cfg.APIKey,
	}
}

// quoteResponse mirrors the quote endpoint payload; "c" is the current price.
type quoteResponse struct {
	Current float64 `json:"c"`
	High    float64 `json:"h"`
	Low     float64 `json:"l"`
	Open    float64 `json:"o"`
	Prev    float64 `json:"pc"`
}

// Quote fetches the current price for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var out quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  c.apiKey,
		}).
		SetResult(&out).
		Get("/quote")
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote request for %s failed: %w", symbol, err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode())
	}
	if out.Current <= 0 {
		return decimal.Zero, fmt.Errorf("no quote available for %s", symbol)
	}
	return decimal.NewFromFloat(out.Current), nil
}
