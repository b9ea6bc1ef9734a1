package wallet

import (
	"fmt"
	"sync"
)

// Connection is the wallet currently connected to a mint session. It hands
// the active account to the mint form and the signer to the submitter.
type Connection struct {
	mu     sync.RWMutex
	wallet *Wallet
	keys   KeyStore
}

// NewConnection returns a disconnected connection that signs with keys.
func NewConnection(keys KeyStore) *Connection {
	return &Connection{keys: keys}
}

// Connect makes w the active wallet. Only signing wallets can connect.
func (c *Connection) Connect(w *Wallet) error {
	if w == nil {
		return ErrWalletNotFound
	}
	if !w.CanSign() {
		return fmt.Errorf("%q: %w", w.Name, ErrWatchOnly)
	}
	c.mu.Lock()
	c.wallet = w
	c.mu.Unlock()
	return nil
}

// Disconnect clears the active wallet.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.wallet = nil
	c.mu.Unlock()
}

// Wallet returns the connected wallet.
func (c *Connection) Wallet() (*Wallet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wallet, c.wallet != nil
}

// ActiveAccount returns the connected address.
func (c *Connection) ActiveAccount() (string, bool) {
	w, ok := c.Wallet()
	if !ok {
		return "", false
	}
	return w.Address, true
}

// Signer returns a signer for the connected wallet.
func (c *Connection) Signer() (*Signer, error) {
	w, ok := c.Wallet()
	if !ok {
		return nil, fmt.Errorf("no wallet connected")
	}
	return NewSigner(w, c.keys), nil
}
