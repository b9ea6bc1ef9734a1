package claim

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

// ErrInvalidRecipient is returned when the resolved recipient is not an address.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Claim function signatures, as hashed into their selectors.
const (
	SignatureERC721  = "claim(address,uint256,address,uint256,(bytes32[],uint256,uint256,address),bytes)"
	SignatureERC1155 = "claim(address,uint256,uint256,address,uint256,(bytes32[],uint256,uint256,address),bytes)"
)

// Pricing is what the claim pays per token and in which currency.
type Pricing struct {
	Currency      common.Address
	PricePerToken *big.Int
}

// IsNative reports whether the price is paid in the chain's native coin.
func (p Pricing) IsNative() bool {
	return p.Currency == (common.Address{}) || p.Currency == mint.NativeTokenAddress
}

// contractCurrency returns the currency as the drop contract expects it,
// with the native sentinel in place of the zero address.
func (p Pricing) contractCurrency() common.Address {
	if p.IsNative() {
		return mint.NativeTokenAddress
	}
	return p.Currency
}

// SameCurrency reports whether p and o are paid in the same currency.
func (p Pricing) SameCurrency(o Pricing) bool {
	return p.contractCurrency() == o.contractCurrency()
}

// Matches reports whether p and o charge the same amount in the same
// currency. A nil price reads as zero.
func (p Pricing) Matches(o Pricing) bool {
	return p.SameCurrency(o) && p.unit().Cmp(o.unit()) == 0
}

func (p Pricing) unit() *big.Int {
	if p.PricePerToken == nil {
		return new(big.Int)
	}
	return p.PricePerToken
}

// Total returns price × quantity.
func (p Pricing) Total(quantity *big.Int) *big.Int {
	if p.PricePerToken == nil || quantity == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(p.PricePerToken, quantity)
}

// Value returns the native amount to attach to the claim transaction.
func Value(req mint.ClaimRequest, p Pricing) *big.Int {
	if !p.IsNative() {
		return new(big.Int)
	}
	return p.Total(req.Base().Quantity)
}

// Recipient parses the request's recipient.
func Recipient(req mint.ClaimRequest) (common.Address, error) {
	to := req.Base().To
	if !common.IsHexAddress(to) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	return common.HexToAddress(to), nil
}

// Encode builds claim calldata for req.
func Encode(req mint.ClaimRequest, p Pricing) ([]byte, error) {
	to, err := Recipient(req)
	if err != nil {
		return nil, err
	}
	base := req.Base()
	if base.Quantity == nil || base.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", base.Quantity)
	}
	price := p.PricePerToken
	if price == nil {
		price = new(big.Int)
	}

	proof := EmptyAllowlistProof()
	switch r := req.(type) {
	case mint.MultiTokenClaim:
		return dropERC1155ABI.Pack("claim", to, r.TokenID, base.Quantity, p.contractCurrency(), price, proof, []byte{})
	case mint.SingleTokenClaim:
		return dropERC721ABI.Pack("claim", to, base.Quantity, p.contractCurrency(), price, proof, []byte{})
	default:
		return nil, fmt.Errorf("unsupported claim request %T", req)
	}
}

// Signature returns the claim function signature for a token standard.
func Signature(std mint.TokenStandard) string {
	if std.IsMultiToken() {
		return SignatureERC1155
	}
	return SignatureERC721
}

// Selector returns the 4-byte function selector of a canonical signature.
func Selector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], h.Sum(nil)[:4])
	return sel
}
