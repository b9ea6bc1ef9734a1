package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// EnvConfigDir overrides the --config flag.
const EnvConfigDir = "W3MINT_CONFIG_DIR"

const (
	defaultNetwork        = "base"
	defaultMode           = "mainnet"
	defaultAlgorithm      = "fastest"
	defaultReceiptTimeout = 180 // seconds

	configFile  = "config.json"
	walletsFile = "wallets.json"
	dropsFile   = "drops.json"
	keysDir     = "keys"
	logFile     = "w3mint.log"
)

// Config holds all w3mint configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	DefaultWallet  string              `json:"default_wallet"`
	NetworkMode    string              `json:"network_mode"`  // "mainnet" | "testnet"
	RPCAlgorithm   string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs     map[string][]string `json:"custom_rpcs"`
	ReceiptTimeout int                 `json:"receipt_timeout"` // seconds
	Debug          bool                `json:"debug"`

	// DropSource is the manifest URL `drop sync` pulls from.
	DropSource string `json:"drop_source,omitempty"`
	LastSynced string `json:"last_synced,omitempty"`

	// RPCRotation is the next round-robin position per "chain/mode".
	RPCRotation map[string]int `json:"rpc_rotation,omitempty"`

	configDir string
}

// Load reads config from dir, falling back to defaults for anything unset.
// dir defaults to ~/.w3mint.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3mint")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = defaultReceiptTimeout
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// RPCCandidates returns the custom RPCs for chain followed by defaults,
// without duplicates.
func (c *Config) RPCCandidates(chain string, defaults []string) []string {
	out := slices.Clone(c.CustomRPCs[chain])
	for _, u := range defaults {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// Rotation returns the saved round-robin position for chain in mode.
func (c *Config) Rotation(chain, mode string) int {
	return c.RPCRotation[chain+"/"+mode]
}

// SetRotation records the round-robin position for chain in mode and
// reports whether it changed.
func (c *Config) SetRotation(chain, mode string, n int) bool {
	key := chain + "/" + mode
	if c.RPCRotation[key] == n {
		return false
	}
	if c.RPCRotation == nil {
		c.RPCRotation = make(map[string]int)
	}
	c.RPCRotation[key] = n
	return true
}

// ReceiptWait returns how long a mint waits for its receipt.
func (c *Config) ReceiptWait() time.Duration {
	if c.ReceiptTimeout <= 0 {
		return defaultReceiptTimeout * time.Second
	}
	return time.Duration(c.ReceiptTimeout) * time.Second
}

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// WalletsPath is where wallet metadata is stored.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// DropsPath is where drop profiles are stored.
func (c *Config) DropsPath() string { return filepath.Join(c.configDir, dropsFile) }

// LogPath is where the interactive mint card writes its diagnostics.
func (c *Config) LogPath() string { return filepath.Join(c.configDir, logFile) }

// KeysDir is where the file keyring backend keeps encrypted keys.
func (c *Config) KeysDir() string { return filepath.Join(c.configDir, keysDir) }

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		NetworkMode:    defaultMode,
		RPCAlgorithm:   defaultAlgorithm,
		CustomRPCs:     make(map[string][]string),
		ReceiptTimeout: defaultReceiptTimeout,
		configDir:      dir,
	}
}
