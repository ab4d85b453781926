package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	roundingTo = decimal.NewFromInt(5)
)

// Quote is a customer-facing price derived from a supplier price.
type Quote struct {
	Base       Price
	FinalPrice string // two decimals
	Rate       string
	Margin     string
}

// Calculate marks up a raw supplier price:
//
//	final = round(base * (1 + rate/100) * (1 + margin/100)) to the nearest multiple of 5
//
// rate and margin are percentages as stored in the offer configuration.
func Calculate(rawPrice, rate, margin string) (Quote, error) {
	base, err := ParsePrice(rawPrice)
	if err != nil {
		return Quote{}, err
	}
	return CalculateFrom(base, rate, margin)
}

// CalculateFrom is Calculate for an already parsed price.
func CalculateFrom(base Price, rate, margin string) (Quote, error) {
	r, err := parsePercentage("rate", rate)
	if err != nil {
		return Quote{}, err
	}
	m, err := parsePercentage("margin", margin)
	if err != nil {
		return Quote{}, err
	}

	marked := base.Amount.
		Mul(decimal.NewFromInt(1).Add(r.Div(hundred))).
		Mul(decimal.NewFromInt(1).Add(m.Div(hundred)))
	final := RoundToNearest(marked, roundingTo)

	return Quote{
		Base:       base,
		FinalPrice: final.StringFixed(2),
		Rate:       r.String(),
		Margin:     m.String(),
	}, nil
}

// RoundToNearest rounds d to the nearest multiple of step, halves away from zero.
func RoundToNearest(d, step decimal.Decimal) decimal.Decimal {
	return d.Div(step).Round(0).Mul(step)
}
