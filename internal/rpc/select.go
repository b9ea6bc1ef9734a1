package rpc

import (
	"context"

	"go.uber.org/zap"
)

// Select picks the RPC URL the mint will be sent through. A single URL is
// returned without probing; otherwise all URLs are probed and picker decides.
func Select(ctx context.Context, urls []string, chainID int64, picker *Picker, log *zap.Logger) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	if picker == nil {
		picker = NewPicker(AlgorithmFastest)
	}
	if log == nil {
		log = zap.NewNop()
	}

	endpoints := Probe(ctx, urls, chainID)
	for _, e := range endpoints {
		log.Debug("rpc probe",
			zap.String("url", e.URL),
			zap.Duration("latency", e.Latency),
			zap.Uint64("block", e.BlockNumber),
			zap.Error(e.Err),
		)
	}

	winner, err := picker.Pick(endpoints)
	if err != nil {
		return "", err
	}
	log.Debug("rpc selected", zap.String("url", winner.URL), zap.String("algorithm", string(picker.Algorithm())))
	return winner.URL, nil
}
