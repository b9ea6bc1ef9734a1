package rpc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Mohsinsiddi/w3mint/internal/rpc"
)

// evmRPCServer answers eth_blockNumber and eth_chainId.
func evmRPCServer(t *testing.T, blockNum uint64, chainID int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "eth_chainId":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":"0x%x"}`, chainID)
		default:
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":"0x%x"}`, blockNum)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeKeepsOrder(t *testing.T) {
	a := evmRPCServer(t, 100, 1)
	b := evmRPCServer(t, 101, 1)

	eps := rpc.Probe(context.Background(), []string{a.URL, "http://127.0.0.1:1", b.URL}, 0)
	require.Len(t, eps, 3)
	assert.Equal(t, a.URL, eps[0].URL)
	assert.True(t, eps[0].Healthy())
	assert.Equal(t, uint64(100), eps[0].BlockNumber)
	assert.False(t, eps[1].Healthy())
	assert.Equal(t, uint64(101), eps[2].BlockNumber)
}

func TestProbeRejectsWrongChain(t *testing.T) {
	base := evmRPCServer(t, 100, 8453)
	eth := evmRPCServer(t, 100, 1)

	eps := rpc.Probe(context.Background(), []string{base.URL, eth.URL}, 8453)
	assert.True(t, eps[0].Healthy())
	assert.Equal(t, int64(8453), eps[0].ChainID)
	assert.ErrorIs(t, eps[1].Err, rpc.ErrWrongChain)
	assert.ErrorContains(t, eps[1].Err, "got 1 (Ethereum), want 8453 (Base)")
}

func TestProbeWrongChainNamesTestnetsAndUnknownIDs(t *testing.T) {
	sepolia := evmRPCServer(t, 100, 84532)
	unknown := evmRPCServer(t, 100, 424242)

	eps := rpc.Probe(context.Background(), []string{sepolia.URL, unknown.URL}, 8453)
	assert.ErrorContains(t, eps[0].Err, "got 84532 (Base Sepolia)")
	assert.ErrorContains(t, eps[1].Err, "got 424242, want 8453 (Base)")
}

func TestProbeCancelledContext(t *testing.T) {
	srv := evmRPCServer(t, 100, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eps := rpc.Probe(ctx, []string{srv.URL}, 0)
	assert.False(t, eps[0].Healthy())
}

func TestSelectSingleURLSkipsProbe(t *testing.T) {
	url, err := rpc.Select(context.Background(), []string{"http://127.0.0.1:1"}, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1", url)
}

func TestSelectNoURLs(t *testing.T) {
	_, err := rpc.Select(context.Background(), nil, 1, nil, nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestSelectSkipsDeadAndForeignEndpoints(t *testing.T) {
	good := evmRPCServer(t, 100, 10)
	foreign := evmRPCServer(t, 100, 1)

	url, err := rpc.Select(context.Background(),
		[]string{"http://127.0.0.1:1", foreign.URL, good.URL}, 10,
		rpc.NewPicker(rpc.AlgorithmFailover), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, good.URL, url)
}

func TestSelectAllDead(t *testing.T) {
	_, err := rpc.Select(context.Background(),
		[]string{"http://127.0.0.1:1", "http://127.0.0.1:2"}, 0, nil, nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
