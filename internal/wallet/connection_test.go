package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
)

var _ mint.AccountProvider = (*wallet.Connection)(nil)

func TestConnectionStartsDisconnected(t *testing.T) {
	c := wallet.NewConnection(wallet.NewMemoryKeystore())
	addr, ok := c.ActiveAccount()
	assert.False(t, ok)
	assert.Empty(t, addr)

	_, err := c.Signer()
	assert.Error(t, err)
}

func TestConnectSigningWallet(t *testing.T) {
	ks := wallet.NewMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithKeystore(ks))
	w, err := mgr.AddWithKey("main", testPrivKeyHex)
	require.NoError(t, err)

	c := wallet.NewConnection(ks)
	require.NoError(t, c.Connect(w))

	addr, ok := c.ActiveAccount()
	assert.True(t, ok)
	assert.Equal(t, testSignerAddr, addr)

	s, err := c.Signer()
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, s.Address())

	c.Disconnect()
	_, ok = c.ActiveAccount()
	assert.False(t, ok)
}

func TestConnectRejectsWatchOnly(t *testing.T) {
	mgr := wallet.NewManager()
	require.NoError(t, mgr.AddWatchOnly("viewer", testSignerAddr))
	w, err := mgr.Get("viewer")
	require.NoError(t, err)

	c := wallet.NewConnection(mgr.Keystore())
	assert.ErrorIs(t, c.Connect(w), wallet.ErrWatchOnly)
	_, ok := c.ActiveAccount()
	assert.False(t, ok)
}

func TestConnectNil(t *testing.T) {
	c := wallet.NewConnection(nil)
	assert.ErrorIs(t, c.Connect(nil), wallet.ErrWalletNotFound)
}
