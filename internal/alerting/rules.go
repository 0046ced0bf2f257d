package alerting

import (
	"errors"
	"fmt"

	"ge-price-monitor/internal/quote"
)

// Field selects which side of a quote a rule watches.
type Field string

const (
	// FieldLow is the instant-sell price.
	FieldLow Field = "low"
	// FieldHigh is the instant-buy price.
	FieldHigh Field = "high"
)

// Direction selects the comparison a rule applies.
type Direction string

const (
	AtOrBelow Direction = "at_or_below"
	AtOrAbove Direction = "at_or_above"
)

// ErrNoRules is returned when monitoring is requested without any threshold.
var ErrNoRules = errors.New("at least one price threshold is required")

// Rule is a single threshold on one price field.
type Rule struct {
	Name      string
	Label     string
	Field     Field
	Direction Direction
	Target    int64
}

// LowAlert fires when the low price drops to target or below.
func LowAlert(target int64) Rule {
	return Rule{Name: "low-alert", Label: "Low Price Alert", Field: FieldLow, Direction: AtOrBelow, Target: target}
}

// HighAlert fires when the high price rises to target or above.
func HighAlert(target int64) Rule {
	return Rule{Name: "high-alert", Label: "High Price Alert", Field: FieldHigh, Direction: AtOrAbove, Target: target}
}

// BuyBelow fires when the instant-buy (high) price drops to target or below.
func BuyBelow(target int64) Rule {
	return Rule{Name: "buy-below", Label: "Buy Price Alert", Field: FieldHigh, Direction: AtOrBelow, Target: target}
}

// SellAbove fires when the instant-sell (low) price rises to target or above.
func SellAbove(target int64) Rule {
	return Rule{Name: "sell-above", Label: "Sell Price Alert", Field: FieldLow, Direction: AtOrAbove, Target: target}
}

// Validate checks the rule is well formed.
func (r Rule) Validate() error {
	if r.Target < 0 {
		return fmt.Errorf("%s: target must not be negative", r.Name)
	}
	switch r.Field {
	case FieldLow, FieldHigh:
	default:
		return fmt.Errorf("%s: unknown field %q", r.Name, r.Field)
	}
	switch r.Direction {
	case AtOrBelow, AtOrAbove:
	default:
		return fmt.Errorf("%s: unknown direction %q", r.Name, r.Direction)
	}
	return nil
}

// Check reports the watched price and whether the condition holds.
// known is false when the quote lacks the watched side.
func (r Rule) Check(q quote.Quote) (price int64, holds bool, known bool) {
	p := q.Low
	if r.Field == FieldHigh {
		p = q.High
	}
	if p == nil {
		return 0, false, false
	}
	if r.Direction == AtOrBelow {
		return *p, *p <= r.Target, true
	}
	return *p, *p >= r.Target, true
}

// Trigger is a rule that fired for a quote.
type Trigger struct {
	Rule  Rule
	Price int64
}

// Message renders the notification body for the trigger.
func (t Trigger) Message() string {
	return fmt.Sprintf("%s: %s coins", t.Rule.Label, quote.FormatCoins(t.Price))
}

// Evaluator tracks rule arming across the polls of one monitoring session.
// A rule fires when its condition holds while armed, then stays quiet until
// the condition stops holding. Not safe for concurrent use.
type Evaluator struct {
	rules []Rule
	armed []bool
}

// NewEvaluator validates rules and arms them all.
func NewEvaluator(rules []Rule) (*Evaluator, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	armed := make([]bool, len(rules))
	for i := range armed {
		armed[i] = true
	}
	return &Evaluator{rules: append([]Rule(nil), rules...), armed: armed}, nil
}

// Rules returns the configured rules.
func (e *Evaluator) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate returns the rules that crossed into their alert zone with this quote.
func (e *Evaluator) Evaluate(q quote.Quote) []Trigger {
	var fired []Trigger
	for i, r := range e.rules {
		price, holds, known := r.Check(q)
		if !known {
			continue
		}
		if !holds {
			e.armed[i] = true
			continue
		}
		if e.armed[i] {
			e.armed[i] = false
			fired = append(fired, Trigger{Rule: r, Price: price})
		}
	}
	return fired
}
