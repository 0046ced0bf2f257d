package quote

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCoins renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func FormatCoins(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPrice renders an optional price, "n/a" when absent.
func FormatPrice(p *int64) string {
	if p == nil {
		return "n/a"
	}
	return FormatCoins(*p)
}

// Render produces the multi-line price block shown for an item.
func Render(name string, q Quote) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(fmt.Sprintf("\nLow: %s coins", FormatPrice(q.Low)))
	b.WriteString(fmt.Sprintf("\nHigh: %s coins", FormatPrice(q.High)))
	return b.String()
}

// RenderMargin produces the optional margin line printed after the price
// block. It reports false when either side is absent.
func RenderMargin(q Quote) (string, bool) {
	margin, ok := q.Margin()
	if !ok {
		return "", false
	}
	line := fmt.Sprintf("Margin: %s coins", FormatCoins(margin))
	if pct, ok := q.SpreadPct(); ok {
		line += fmt.Sprintf(" (%s%%)", pct.StringFixed(2))
	}
	return line, true
}
