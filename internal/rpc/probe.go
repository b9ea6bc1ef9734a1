package rpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
)

// ErrWrongChain marks an endpoint that serves a different chain than asked for.
var ErrWrongChain = errors.New("endpoint serves a different chain")

const (
	probeTimeout     = 5 * time.Second
	probeParallelism = 8
)

// Probe pings every URL in parallel. When wantChainID is non-zero the
// endpoint's eth_chainId must match it. Results keep the order of urls.
func Probe(ctx context.Context, urls []string, wantChainID int64) []Endpoint {
	out := make([]Endpoint, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeParallelism)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			out[i] = probeOne(gctx, u, wantChainID)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func probeOne(ctx context.Context, url string, wantChainID int64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := chain.NewEVMClient(url)
	latency, block, err := c.Ping(ctx)
	ep := Endpoint{URL: url, Latency: latency, BlockNumber: block, Err: err}
	if err != nil || wantChainID == 0 {
		return ep
	}

	id, err := c.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.ChainID = id
	if id != wantChainID {
		ep.Err = fmt.Errorf("%w: got %s, want %s", ErrWrongChain, chainLabel(id), chainLabel(wantChainID))
	}
	return ep
}

// chainLabel names a chain ID when the registry knows it, e.g. "1 (Ethereum)".
func chainLabel(id int64) string {
	c, err := chain.NewRegistry().GetByChainID(id)
	if err != nil {
		return strconv.FormatInt(id, 10)
	}
	mode := chain.ModeMainnet
	if id == c.TestnetChainID {
		mode = chain.ModeTestnet
	}
	return fmt.Sprintf("%d (%s)", id, c.Label(mode))
}
