package mint

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Quantity is the number of tokens to claim. It never drops below 1.
// The zero value reads as 1.
type Quantity struct {
	n int64
}

// NewQuantity returns a quantity of 1.
func NewQuantity() Quantity {
	return Quantity{n: 1}
}

// Value returns the current quantity.
func (q Quantity) Value() int64 {
	if q.n < 1 {
		return 1
	}
	return q.n
}

// Decrease lowers the quantity by one, stopping at 1.
func (q *Quantity) Decrease() {
	q.n = max(1, q.Value()-1)
}

// Increase raises the quantity by one, stopping at math.MaxInt64.
func (q *Quantity) Increase() {
	if v := q.Value(); v < math.MaxInt64 {
		q.n = v + 1
	}
}

// CanDecrease reports whether Decrease would change the value.
func (q Quantity) CanDecrease() bool {
	return q.Value() > 1
}

// SetFromText parses the leading integer of text and stores max(1, parsed).
// Text without a leading integer leaves the quantity untouched and returns
// false. Trailing characters after the digits are ignored, so "12abc" reads
// as 12 and "3.9" as 3.
func (q *Quantity) SetFromText(text string) bool {
	v, ok := parseLeadingInt(text)
	if !ok {
		return false
	}
	q.n = max(1, v)
	return true
}

// String implements fmt.Stringer.
func (q Quantity) String() string {
	return strconv.FormatInt(q.Value(), 10)
}

// parseLeadingInt reads an optionally signed run of decimal digits after any
// leading whitespace. Values that overflow int64 are rejected.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
