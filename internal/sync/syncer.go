// Package sync pulls drop profiles from a remote manifest into the local
// drop registry.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3mint/internal/config"
)

// ErrNoSource is returned when no manifest URL is configured.
var ErrNoSource = errors.New("no drop source configured, run: w3mint drop sync --source <url>")

// Manifest is the structure of a drops manifest.
type Manifest struct {
	Drops []config.Drop `json:"drops"`
}

// Result summarises one sync.
type Result struct {
	Added   int
	Updated int
	Skipped int
}

// Syncer fetches a manifest and merges it into a drop registry.
type Syncer struct {
	cfg     *config.Config
	reg     *config.DropRegistry
	client  *http.Client
	log     *zap.Logger
	retries uint64
	now     func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Syncer) { s.client = c }
}

// WithRetries sets how many times a failed fetch is retried.
func WithRetries(n uint64) Option {
	return func(s *Syncer) { s.retries = n }
}

// New creates a Syncer writing into reg.
func New(cfg *config.Config, reg *config.DropRegistry, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:     cfg,
		reg:     reg,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     zap.NewNop(),
		retries: 2,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSource stores the manifest URL in the config.
func (s *Syncer) SetSource(url string) error {
	s.cfg.DropSource = url
	return s.cfg.Save()
}

// Run fetches the configured manifest and saves the merged registry. Entries
// that fail validation are skipped and logged; they never abort the sync.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	var res Result
	if s.cfg.DropSource == "" {
		return res, ErrNoSource
	}

	m, err := s.fetchManifest(ctx, s.cfg.DropSource)
	if err != nil {
		return res, fmt.Errorf("fetching manifest: %w", err)
	}

	for i := range m.Drops {
		d := m.Drops[i]
		_, existsErr := s.reg.Get(d.Name, d.Network)
		if err := s.reg.Add(&d); err != nil {
			res.Skipped++
			s.log.Warn("skipping manifest drop",
				zap.String("name", d.Name),
				zap.String("network", d.Network),
				zap.Error(err),
			)
			continue
		}
		if existsErr == nil {
			res.Updated++
		} else {
			res.Added++
		}
	}

	if err := s.reg.Save(); err != nil {
		return res, fmt.Errorf("saving drops: %w", err)
	}

	s.cfg.LastSynced = s.now().UTC().Format(time.RFC3339)
	if err := s.cfg.Save(); err != nil {
		return res, err
	}
	return res, nil
}

// Watch runs Run on a ticker until ctx is cancelled. Errors after the first
// run are logged and the loop continues.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration) error {
	if _, err := s.Run(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := s.Run(ctx)
			if err != nil {
				s.log.Warn("drop sync failed", zap.Error(err))
				continue
			}
			s.log.Info("drops synced",
				zap.Int("added", res.Added),
				zap.Int("updated", res.Updated),
				zap.Int("skipped", res.Skipped),
			)
		}
	}
}

func (s *Syncer) fetchManifest(ctx context.Context, url string) (*Manifest, error) {
	var m Manifest
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("manifest server returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("manifest server returned %d", resp.StatusCode))
		}
		if err := json.Unmarshal(body, &m); err != nil {
			return backoff.Permanent(fmt.Errorf("parsing manifest: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return &m, nil
}
