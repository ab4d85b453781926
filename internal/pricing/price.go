package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"freightdesk/quote/internal/models"
)

var (
	ErrMalformedPrice      = errors.New("malformed price")
	ErrMalformedPercentage = errors.New("malformed percentage")
)

// Price is a supplier price split into its numeric amount and free-text unit.
type Price struct {
	Amount decimal.Decimal
	Unit   string
}

// ParsePrice reads a supplier price such as "59 euro".
//
// The amount is the token before the first whitespace and must be a positive
// decimal using '.' as separator; everything after it is kept verbatim as the
// unit. Anything else is rejected rather than coerced to zero.
func ParsePrice(raw string) (Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Price{}, fmt.Errorf("%w: empty", ErrMalformedPrice)
	}

	token, unit, _ := strings.Cut(raw, " ")
	if i := strings.IndexAny(token, "\t\n\r"); i >= 0 {
		unit = token[i:] + " " + unit
		token = token[:i]
	}

	amount, err := decimal.NewFromString(token)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q has no leading number", ErrMalformedPrice, raw)
	}
	if !amount.IsPositive() {
		return Price{}, fmt.Errorf("%w: %q is not positive", ErrMalformedPrice, raw)
	}
	return Price{Amount: amount, Unit: strings.TrimSpace(unit)}, nil
}

// Bid converts the price to its stored form.
func (p Price) Bid() *models.BidPrice {
	return &models.BidPrice{Amount: p.Amount.String(), Unit: p.Unit}
}

// String renders the price the way suppliers write it.
func (p Price) String() string {
	if p.Unit == "" {
		return p.Amount.String()
	}
	return p.Amount.String() + " " + p.Unit
}

// FromBid restores a Price from its stored form.
func FromBid(b *models.BidPrice) (Price, error) {
	if b == nil {
		return Price{}, fmt.Errorf("%w: no price", ErrMalformedPrice)
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return Price{}, fmt.Errorf("%w: stored amount %q", ErrMalformedPrice, b.Amount)
	}
	return Price{Amount: amount, Unit: b.Unit}, nil
}

func parsePercentage(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrMalformedPercentage, name, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s %q is negative", ErrMalformedPercentage, name, s)
	}
	return d, nil
}

// ValidatePercentage reports whether s is accepted as a rate or margin.
func ValidatePercentage(name, s string) error {
	_, err := parsePercentage(name, s)
	return err
}
