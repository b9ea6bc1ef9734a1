package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keychainService = "w3mint"

	// EnvPrivateKey overrides every stored key, for CI and scripted mints.
	EnvPrivateKey = "W3MINT_KEY"

	envKeyringPassword = "W3MINT_KEYRING_PASSWORD"
)

// ErrKeyNotFound is returned when no key is stored under a reference.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore keeps private keys outside the wallet file.
type KeyStore interface {
	Store(name, hexKey string) (ref string, err error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access. Retrieved keys are cached for the
// lifetime of the process so a mint never prompts twice.
type Keystore struct {
	ring  keyring.Keyring
	cache sync.Map
}

// OpenKeystore returns a keystore backed by the OS keychain. fileDir is
// where the encrypted file backend keeps keys when no keychain is present.
func OpenKeystore(fileDir string) (*Keystore, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         filePassword,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, err = keyring.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return &Keystore{ring: ring}, nil
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(envKeyringPassword); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// Store saves a private key for a wallet name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	if k.ring == nil {
		return "", errors.New("keystore not available")
	}
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(hexKey)}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	k.cache.Store(ref, hexKey)
	return ref, nil
}

// Retrieve fetches a private key by its reference. EnvPrivateKey, when set,
// wins over anything stored.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v := os.Getenv(EnvPrivateKey); v != "" {
		return normaliseHexKey(v), nil
	}
	if v, ok := k.cache.Load(ref); ok {
		return v.(string), nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("%w: %s (keystore not available)", ErrKeyNotFound, ref)
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	key := string(item.Data)
	k.cache.Store(ref, key)
	return key, nil
}

// Delete removes a stored key. Deleting a missing key is not an error.
func (k *Keystore) Delete(ref string) error {
	k.cache.Delete(ref)
	if k.ring == nil {
		return nil
	}
	if err := k.ring.Remove(ref); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("keychain remove: %w", err)
	}
	return nil
}

// MemoryKeystore keeps keys in memory.
type MemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKeystore creates an empty in-memory keystore.
func NewMemoryKeystore() *MemoryKeystore {
	return &MemoryKeystore{data: make(map[string]string)}
}

func (k *MemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keychainService + "." + name
	k.data[ref] = hexKey
	return ref, nil
}

func (k *MemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *MemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}
