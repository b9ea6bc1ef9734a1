package mint

import (
	"fmt"
	"math/big"
)

// ClaimRequest is the parameter set for one claim transaction. It is either
// a SingleTokenClaim or a MultiTokenClaim.
type ClaimRequest interface {
	Standard() TokenStandard
	Base() ClaimBase
}

// ClaimBase holds the fields shared by every claim.
type ClaimBase struct {
	Contract Contract
	// To is the recipient as entered; it is parsed when the transaction is
	// encoded.
	To       string
	Quantity *big.Int
}

// Base returns the shared claim fields.
func (b ClaimBase) Base() ClaimBase { return b }

// SingleTokenClaim claims Quantity new tokens from an ERC-721 drop.
type SingleTokenClaim struct {
	ClaimBase
}

// Standard implements ClaimRequest.
func (SingleTokenClaim) Standard() TokenStandard { return StandardERC721 }

// MultiTokenClaim claims Quantity copies of TokenID from an ERC-1155 drop.
type MultiTokenClaim struct {
	ClaimBase
	TokenID *big.Int
}

// Standard implements ClaimRequest.
func (MultiTokenClaim) Standard() TokenStandard { return StandardERC1155 }

// BuildRequest assembles the claim for cfg. The quantity and token id are
// copied so later edits to the form do not alter a request in flight. A
// multi-token drop without a token id is refused rather than defaulted.
func BuildRequest(cfg Config, quantity Quantity, to string) (ClaimRequest, error) {
	base := ClaimBase{
		Contract: cfg.Contract,
		To:       to,
		Quantity: big.NewInt(quantity.Value()),
	}
	if cfg.Standard.IsMultiToken() {
		if cfg.TokenID == nil {
			return nil, fmt.Errorf("%s: %w", cfg.Contract.Address.Hex(), ErrMissingTokenID)
		}
		return MultiTokenClaim{ClaimBase: base, TokenID: new(big.Int).Set(cfg.TokenID)}, nil
	}
	return SingleTokenClaim{ClaimBase: base}, nil
}
