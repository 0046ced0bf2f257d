package quote

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxCoins = decimal.NewFromInt(math.MaxInt64)

var suffixes = map[byte]int64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
}

// ParseCoins parses a user-entered coin amount. Thousands separators and the
// k/m/b suffixes are accepted ("1,500", "1.5k", "2m"). Negative or fractional
// coin results are rejected.
func ParseCoins(s string) (int64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, "_", "")
	if raw == "" {
		return 0, fmt.Errorf("invalid price value %q", s)
	}

	mult := int64(1)
	if m, ok := suffixes[raw[len(raw)-1]]; ok {
		mult = m
		raw = raw[:len(raw)-1]
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid price value %q", s)
	}
	d = d.Mul(decimal.NewFromInt(mult))
	if d.IsNegative() {
		return 0, fmt.Errorf("price value %q must not be negative", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("price value %q is not a whole number of coins", s)
	}
	if d.GreaterThan(maxCoins) {
		return 0, fmt.Errorf("price value %q is too large", s)
	}
	return d.IntPart(), nil
}
