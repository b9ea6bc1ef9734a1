package rpc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Nodes more than this many blocks behind the best are skipped.
	staleBlockThreshold = 3
)

// ParseAlgorithm validates a configured algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown rpc algorithm %q (want fastest, round-robin or failover)", s)
	}
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint according to its algorithm. Round-robin state
// survives between calls; to rotate across processes, persist Next and hand
// it back through StartAt.
type Picker struct {
	algo Algorithm

	mu   sync.Mutex
	next int
}

// NewPicker creates a Picker. An empty algorithm means fastest.
func NewPicker(algo Algorithm) *Picker {
	if algo == "" {
		algo = AlgorithmFastest
	}
	return &Picker{algo: algo}
}

// Algorithm returns the configured algorithm.
func (p *Picker) Algorithm() Algorithm { return p.algo }

// StartAt sets the round-robin position of the next Pick. Negative values
// start from the first endpoint.
func (p *Picker) StartAt(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next = max(0, n)
}

// Next returns the round-robin position the following Pick will use.
func (p *Picker) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Pick chooses one endpoint. Unhealthy endpoints and endpoints lagging the
// best healthy block are never chosen.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	live := usable(endpoints)
	if len(live) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		p.mu.Lock()
		defer p.mu.Unlock()
		e := live[p.next%len(live)]
		p.next = (p.next + 1) % len(live)
		return e, nil

	case AlgorithmFailover:
		return live[0], nil

	default:
		best := live[0]
		for _, e := range live[1:] {
			if e.Latency < best.Latency ||
				(e.Latency == best.Latency && e.BlockNumber > best.BlockNumber) {
				best = e
			}
		}
		return best, nil
	}
}

// usable keeps healthy, up-to-date endpoints in their original order.
func usable(endpoints []Endpoint) []Endpoint {
	var tip uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > tip {
			tip = e.BlockNumber
		}
	}

	out := make([]Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if tip-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
