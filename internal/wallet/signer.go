package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrWatchOnly is returned when a watch-only wallet is asked to sign.
var ErrWatchOnly = errors.New("wallet is watch-only and cannot sign")

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	keys   KeyStore
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, keys KeyStore) *Signer {
	return &Signer{wallet: w, keys: keys}
}

// SignTx signs tx for chainID and returns the signed transaction.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("%q: %w", s.wallet.Name, ErrWatchOnly)
	}

	hexKey, err := s.keys.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	if got := crypto.PubkeyToAddress(privKey.PublicKey).Hex(); got != s.wallet.Address {
		return nil, fmt.Errorf("stored key belongs to %s, not wallet %q (%s)", got, s.wallet.Name, s.wallet.Address)
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() string {
	return s.wallet.Address
}
