package price

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedTransport replaces the HTTP client without needing a real server.
type fixedTransport struct {
	body string
	code int
	err  error
}

func (ft *fixedTransport) RoundTrip(_ *http.Request) (*http.Response, error) {
	if ft.err != nil {
		return nil, ft.err
	}
	return &http.Response{
		StatusCode: ft.code,
		Body:       io.NopCloser(strings.NewReader(ft.body)),
		Header:     make(http.Header),
	}, nil
}

func newMockFetcher(body string, code int) *Fetcher {
	return NewFetcher("usd", WithHTTPClient(&http.Client{Transport: &fixedTransport{body: body, code: code}}))
}

func TestNewFetcherCurrency(t *testing.T) {
	assert.Equal(t, "usd", NewFetcher("").Currency())
	assert.Equal(t, "eur", NewFetcher("EUR").Currency(), "currency must be lowercased")
}

func TestQuoteETH(t *testing.T) {
	f := newMockFetcher(`{"ethereum":{"usd":3000.50}}`, http.StatusOK)
	p, err := f.Quote(context.Background(), "eth")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("3000.50")), p.String())
}

func TestQuoteUnknownSymbol(t *testing.T) {
	f := newMockFetcher(`{}`, http.StatusOK)
	_, err := f.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestQuoteMissingFromResponse(t *testing.T) {
	f := newMockFetcher(`{"bitcoin":{"usd":1}}`, http.StatusOK)
	_, err := f.Quote(context.Background(), "ETH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price not available")
}

func TestQuoteOtherFiatIgnored(t *testing.T) {
	f := newMockFetcher(`{"ethereum":{"eur":2800}}`, http.StatusOK)
	_, err := f.Quote(context.Background(), "ETH")
	assert.Error(t, err)
}

func TestQuoteHTTPStatus(t *testing.T) {
	f := newMockFetcher(`{"status":{"error_code":429}}`, http.StatusTooManyRequests)
	_, err := f.Quote(context.Background(), "ETH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestQuoteBadJSON(t *testing.T) {
	f := newMockFetcher(`not json`, http.StatusOK)
	_, err := f.Quote(context.Background(), "ETH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing price response")
}

func TestQuoteTransportError(t *testing.T) {
	f := NewFetcher("usd", WithHTTPClient(&http.Client{Transport: &fixedTransport{err: errors.New("dial tcp: refused")}}))
	_, err := f.Quote(context.Background(), "ETH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching prices")
}

func TestValueRoundsToCents(t *testing.T) {
	f := newMockFetcher(`{"ethereum":{"usd":3333.333}}`, http.StatusOK)
	v, err := f.Value(context.Background(), decimal.RequireFromString("0.3"), "ETH")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", v.StringFixed(2))
}

func TestValueOfFreeSkipsNetwork(t *testing.T) {
	f := NewFetcher("usd", WithHTTPClient(&http.Client{Transport: &fixedTransport{err: errors.New("unreachable")}}))
	v, err := f.Value(context.Background(), decimal.Zero, "ETH")
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestRequestShape(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"usd-coin":{"usd":1.0001}}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher("usd", WithBaseURL(srv.URL+"/api/v3/"))
	p, err := f.Quote(context.Background(), "USDC")
	require.NoError(t, err)
	assert.Equal(t, "1.0001", p.String())
	assert.Equal(t, "/api/v3/simple/price", gotPath)
	assert.Equal(t, "ids=usd-coin&vs_currencies=usd", gotQuery)
}
