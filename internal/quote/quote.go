// Package quote models a single Grand Exchange price observation and renders it.
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the low/high price pair reported for one item at fetch time.
// A nil price means the index had no trade data for that side.
type Quote struct {
	ItemID    int
	Low       *int64
	High      *int64
	LowTime   *time.Time
	HighTime  *time.Time
	FetchedAt time.Time
}

// Price returns a pointer to v, for building quotes by hand.
func Price(v int64) *int64 {
	return &v
}

// HasData reports whether at least one side of the quote is present.
func (q Quote) HasData() bool {
	return q.Low != nil || q.High != nil
}

// Margin is high minus low. ok is false when either side is absent.
func (q Quote) Margin() (margin int64, ok bool) {
	if q.Low == nil || q.High == nil {
		return 0, false
	}
	return *q.High - *q.Low, true
}

// SpreadPct is the margin as a percentage of the low price.
func (q Quote) SpreadPct() (decimal.Decimal, bool) {
	margin, ok := q.Margin()
	if !ok || *q.Low == 0 {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromInt(margin).
		Div(decimal.NewFromInt(*q.Low)).
		Mul(decimal.NewFromInt(100)), true
}
