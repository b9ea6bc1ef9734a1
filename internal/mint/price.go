package mint

import "github.com/shopspring/decimal"

// Free is shown instead of a price when the drop costs nothing.
const Free = "FREE"

// UnitPriceLabel formats the per-token badge, e.g. "0.01 ETH/each".
func UnitPriceLabel(price decimal.Decimal, symbol string) string {
	if price.IsZero() {
		return Free
	}
	return withSymbol(price, symbol) + "/each"
}

// TotalPriceLabel formats price × quantity, e.g. "6 ETH".
func TotalPriceLabel(price decimal.Decimal, quantity int64, symbol string) string {
	if price.IsZero() {
		return Free
	}
	return withSymbol(price.Mul(decimal.NewFromInt(quantity)), symbol)
}

func withSymbol(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		return d.String()
	}
	return d.String() + " " + symbol
}
