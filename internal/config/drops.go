package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

// Drop registry errors.
var (
	ErrDropNotFound  = errors.New("drop not found")
	ErrAmbiguousDrop = errors.New("drop name exists on several networks")
)

// Drop is a saved drop profile. Numbers are kept as strings so that prices
// and token IDs survive JSON without float rounding.
type Drop struct {
	Name           string `json:"name"`
	Network        string `json:"network"`
	Address        string `json:"address"`
	Standard       string `json:"standard"`
	TokenID        string `json:"token_id,omitempty"`
	Price          string `json:"price,omitempty"`
	CurrencySymbol string `json:"currency_symbol,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Decimals       int32  `json:"decimals,omitempty"`
	DisplayName    string `json:"display_name"`
	Description    string `json:"description,omitempty"`
	Image          string `json:"image,omitempty"`
	TermsURL       string `json:"terms_url,omitempty"`
}

// MintConfig converts the profile into a mint configuration. An empty price
// yields a nil PricePerToken; that is the caller's signal that the drop
// cannot be shown.
func (d Drop) MintConfig() (mint.Config, error) {
	if !common.IsHexAddress(d.Address) {
		return mint.Config{}, fmt.Errorf("drop %q: invalid contract address %q", d.Name, d.Address)
	}
	std, err := mint.ParseStandard(d.Standard)
	if err != nil {
		return mint.Config{}, fmt.Errorf("drop %q: %w", d.Name, err)
	}

	cfg := mint.Config{
		Contract: mint.Contract{
			Address: common.HexToAddress(d.Address),
			Network: d.Network,
		},
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		Image:            d.Image,
		CurrencySymbol:   d.CurrencySymbol,
		CurrencyDecimals: d.Decimals,
		Standard:         std,
		TermsURL:         d.TermsURL,
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = d.Name
	}

	if d.Price != "" {
		p, err := decimal.NewFromString(d.Price)
		if err != nil {
			return mint.Config{}, fmt.Errorf("drop %q: invalid price %q: %w", d.Name, d.Price, err)
		}
		if p.IsNegative() {
			return mint.Config{}, fmt.Errorf("drop %q: negative price %s", d.Name, d.Price)
		}
		cfg.PricePerToken = &p
	}

	if d.TokenID != "" {
		id, ok := new(big.Int).SetString(d.TokenID, 0)
		if !ok || id.Sign() < 0 {
			return mint.Config{}, fmt.Errorf("drop %q: invalid token id %q", d.Name, d.TokenID)
		}
		cfg.TokenID = id
	}

	if d.Currency != "" {
		if !common.IsHexAddress(d.Currency) {
			return mint.Config{}, fmt.Errorf("drop %q: invalid currency address %q", d.Name, d.Currency)
		}
		cfg.Currency = common.HexToAddress(d.Currency)
	}
	return cfg, nil
}

// DropRegistry stores drop profiles keyed by name and network.
type DropRegistry struct {
	path  string
	drops map[string]*Drop // key: "name@network"
}

// NewDropRegistry creates a registry backed by a JSON file.
func NewDropRegistry(path string) *DropRegistry {
	return &DropRegistry{path: path, drops: make(map[string]*Drop)}
}

// Path returns the backing file.
func (r *DropRegistry) Path() string { return r.path }

// Load reads stored drops from disk. A missing file is an empty registry.
func (r *DropRegistry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Drop
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for i := range entries {
		d := &entries[i]
		r.drops[dropKey(d.Name, d.Network)] = d
	}
	return nil
}

// Save writes all drops to disk, sorted for stable diffs.
func (r *DropRegistry) Save() error {
	entries := make([]Drop, 0, len(r.drops))
	for _, d := range r.All() {
		entries = append(entries, *d)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or replaces a drop after checking it converts cleanly.
func (r *DropRegistry) Add(d *Drop) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("drop name is required")
	}
	cfg, err := d.MintConfig()
	if err != nil {
		return err
	}
	if cfg.Standard.IsMultiToken() && cfg.TokenID == nil {
		return fmt.Errorf("drop %q: %w", d.Name, mint.ErrMissingTokenID)
	}
	r.drops[dropKey(d.Name, d.Network)] = d
	return nil
}

// Get returns a drop by name and network.
func (r *DropRegistry) Get(name, network string) (*Drop, error) {
	d, ok := r.drops[dropKey(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrDropNotFound, name, network)
	}
	return d, nil
}

// Find returns the drop called name. network may be empty when the name is
// unique across networks.
func (r *DropRegistry) Find(name, network string) (*Drop, error) {
	if network != "" {
		return r.Get(name, network)
	}
	var matches []*Drop
	for _, d := range r.drops {
		if d.Name == name {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrDropNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s (pass --network)", ErrAmbiguousDrop, name)
	}
}

// All returns every drop sorted by name, then network.
func (r *DropRegistry) All() []*Drop {
	out := make([]*Drop, 0, len(r.drops))
	for _, d := range r.drops {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Network < out[j].Network
	})
	return out
}

// Remove deletes a drop.
func (r *DropRegistry) Remove(name, network string) error {
	k := dropKey(name, network)
	if _, ok := r.drops[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrDropNotFound, name, network)
	}
	delete(r.drops, k)
	return nil
}

func dropKey(name, network string) string {
	return name + "@" + network
}
