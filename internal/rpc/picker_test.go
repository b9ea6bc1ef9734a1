package rpc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mint/internal/rpc"
)

func ep(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func dead(url string) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Err: errors.New("connection refused")}
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]rpc.Algorithm{
		"":            rpc.AlgorithmFastest,
		"fastest":     rpc.AlgorithmFastest,
		"Round-Robin": rpc.AlgorithmRoundRobin,
		" failover ":  rpc.AlgorithmFailover,
	} {
		got, err := rpc.ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := rpc.ParseAlgorithm("random")
	assert.Error(t, err)
}

func TestPickerSelectsFastest(t *testing.T) {
	p := rpc.NewPicker(rpc.AlgorithmFastest)
	got, err := p.Pick([]rpc.Endpoint{
		ep("slow", 300*time.Millisecond, 100),
		ep("fast", 20*time.Millisecond, 100),
		ep("mid", 80*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "fast", got.URL)
}

func TestPickerFastestTieBreaksOnBlock(t *testing.T) {
	p := rpc.NewPicker("")
	got, err := p.Pick([]rpc.Endpoint{
		ep("a", 20*time.Millisecond, 99),
		ep("b", 20*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", got.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	p := rpc.NewPicker(rpc.AlgorithmFastest)
	got, err := p.Pick([]rpc.Endpoint{
		ep("stale-but-fast", 5*time.Millisecond, 90),
		ep("current", 50*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "current", got.URL)
}

func TestPickerIgnoresUnhealthyTip(t *testing.T) {
	// A failed probe's block number must not make healthy nodes look stale.
	bad := dead("bad")
	bad.BlockNumber = 10_000
	got, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick([]rpc.Endpoint{bad, ep("ok", time.Millisecond, 100)})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.URL)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	p := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	eps := []rpc.Endpoint{ep("a", 1, 100), dead("x"), ep("b", 1, 100), ep("c", 1, 100)}

	var seen []string
	for i := 0; i < 6; i++ {
		got, err := p.Pick(eps)
		require.NoError(t, err)
		seen = append(seen, got.URL)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, seen)
}

func TestPickerRoundRobinResumesFromSavedPosition(t *testing.T) {
	eps := []rpc.Endpoint{ep("a", 1, 100), ep("b", 1, 100), ep("c", 1, 100)}

	first := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	got, err := first.Pick(eps)
	require.NoError(t, err)
	assert.Equal(t, "a", got.URL)

	second := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	second.StartAt(first.Next())
	got, err = second.Pick(eps)
	require.NoError(t, err)
	assert.Equal(t, "b", got.URL, "a new process continues the rotation")

	third := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	third.StartAt(7)
	got, err = third.Pick(eps)
	require.NoError(t, err)
	assert.Equal(t, "b", got.URL, "positions wrap when endpoints were removed")
	assert.Equal(t, 2, third.Next())

	third.StartAt(-4)
	assert.Equal(t, 0, third.Next())
}

func TestPickerFailoverKeepsOrder(t *testing.T) {
	p := rpc.NewPicker(rpc.AlgorithmFailover)
	got, err := p.Pick([]rpc.Endpoint{dead("primary"), ep("secondary", 500*time.Millisecond, 100), ep("tertiary", time.Millisecond, 100)})
	require.NoError(t, err)
	assert.Equal(t, "secondary", got.URL)
}

func TestPickerErrorsWhenAllUnhealthy(t *testing.T) {
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		_, err := rpc.NewPicker(algo).Pick([]rpc.Endpoint{dead("a"), dead("b")})
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC, algo)
	}
}

func TestPickerEmptyEndpoints(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}
