package mint

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Errors returned while validating a drop configuration.
var (
	ErrMissingPrice   = errors.New("price per token is not set")
	ErrMissingTokenID = errors.New("token id is required for erc1155 drops")
	ErrMissingName    = errors.New("display name is required")
)

// PlaceholderImage is shown when a drop has no image.
const PlaceholderImage = "/placeholder.svg?height=400&width=400"

const defaultCurrencyDecimals = 18

// Contract identifies a drop contract on a network.
type Contract struct {
	Address common.Address
	Network string
}

// Config describes one drop. It is immutable for the lifetime of a Form.
type Config struct {
	Contract    Contract
	DisplayName string
	Description string
	Image       string

	// PricePerToken is nil when the price is unknown. A Form with a nil
	// price renders nothing.
	PricePerToken  *decimal.Decimal
	CurrencySymbol string
	// Currency is the ERC-20 the drop charges in. Zero means the chain's
	// native currency.
	Currency         common.Address
	CurrencyDecimals int32

	Standard TokenStandard
	TokenID  *big.Int

	TermsURL string
}

// Validate checks the fields a claim cannot be built without. A missing
// price is reported last.
func (c Config) Validate() error {
	if c.DisplayName == "" {
		return ErrMissingName
	}
	if c.Standard.IsMultiToken() && c.TokenID == nil {
		return ErrMissingTokenID
	}
	if c.PricePerToken == nil {
		return ErrMissingPrice
	}
	return nil
}

// ImageRef returns the image reference or the placeholder.
func (c Config) ImageRef() string {
	if c.Image == "" {
		return PlaceholderImage
	}
	return c.Image
}

// IsNativeCurrency reports whether the drop is priced in the native coin.
func (c Config) IsNativeCurrency() bool {
	return c.Currency == (common.Address{}) || c.Currency == NativeTokenAddress
}

// Decimals returns the currency decimals, defaulting to 18.
func (c Config) Decimals() int32 {
	if c.CurrencyDecimals == 0 {
		return defaultCurrencyDecimals
	}
	return c.CurrencyDecimals
}

// PriceWei returns the per-token price in the currency's smallest unit, or
// nil when the price is unknown.
func (c Config) PriceWei() *big.Int {
	if c.PricePerToken == nil {
		return nil
	}
	return c.PricePerToken.Shift(c.Decimals()).BigInt()
}

// NativeTokenAddress is the sentinel drop contracts use for the native coin.
var NativeTokenAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
