// Package price quotes drop currencies in fiat for the mint preview.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// ErrUnknownSymbol is returned for currencies without a CoinGecko listing.
var ErrUnknownSymbol = errors.New("no price source for symbol")

// coinGeckoIDs maps currency symbols used by drops to CoinGecko coin IDs.
var coinGeckoIDs = map[string]string{
	"ETH":   "ethereum",
	"WETH":  "weth",
	"POL":   "polygon-ecosystem-token",
	"MATIC": "matic-network",
	"BNB":   "binancecoin",
	"AVAX":  "avalanche-2",
	"CELO":  "celo",
	"MNT":   "mantle",
	"XDAI":  "xdai",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
	"DEGEN": "degen-base",
	"APE":   "apecoin",
}

// Fetcher retrieves token prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another CoinGecko-compatible API.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a fetcher quoting in currency (default "usd").
func NewFetcher(currency string, opts ...Option) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	f := &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Currency returns the fiat currency quotes are in.
func (f *Fetcher) Currency() string { return f.currency }

// Quote returns the fiat price of one unit of symbol.
func (f *Fetcher) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := coinGeckoIDs[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	prices, err := f.fetch(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	p, ok := prices[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("price not available for: %s", id)
	}
	return p, nil
}

// Value converts amount of symbol to fiat, rounded to cents.
func (f *Fetcher) Value(ctx context.Context, amount decimal.Decimal, symbol string) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	p, err := f.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(p).Round(2), nil
}

func (f *Fetcher) fetch(ctx context.Context, ids ...string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, strings.Join(ids, ","), f.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned %d", resp.StatusCode)
	}

	// {"ethereum":{"usd":1234.56}, ...}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(raw))
	for id, currencies := range raw {
		if p, ok := currencies[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}
