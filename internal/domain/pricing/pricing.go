// Package pricing composes a bill from a subtotal: discount first, then tax on
// the discounted amount, then a service charge on the taxed amount.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	zero    = decimal.Zero
)

var (
	// DefaultTaxRate is the sales tax applied to every bill.
	DefaultTaxRate = decimal.RequireFromString("0.08")
	// DefaultServiceCharge is applied on top of the taxed amount.
	DefaultServiceCharge = decimal.RequireFromString("0.05")
)

// ErrInvalidRate is returned for a negative rate or a discount outside 0-100.
var ErrInvalidRate = errors.New("invalid rate")

// Rates are the fractional multipliers applied after the discount.
type Rates struct {
	Tax     decimal.Decimal
	Service decimal.Decimal
}

// DefaultRates returns the 8% tax and 5% service charge.
func DefaultRates() Rates {
	return Rates{Tax: DefaultTaxRate, Service: DefaultServiceCharge}
}

// Validate checks that neither rate is negative.
func (r Rates) Validate() error {
	if r.Tax.IsNegative() {
		return errors.Wrapf(ErrInvalidRate, "tax %s", r.Tax)
	}
	if r.Service.IsNegative() {
		return errors.Wrapf(ErrInvalidRate, "service charge %s", r.Service)
	}
	return nil
}

// Breakdown itemizes how a subtotal becomes a total. Amounts are unrounded;
// round only for display.
type Breakdown struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
}

// Discounted returns subtotal * (1 - percent/100).
func Discounted(subtotal, percent decimal.Decimal) decimal.Decimal {
	factor := one.Sub(percent.Div(hundred))
	return subtotal.Mul(factor)
}

// Total returns discounted * (1 + tax) * (1 + service).
func Total(discounted decimal.Decimal, r Rates) decimal.Decimal {
	taxed := discounted.Mul(one.Add(r.Tax))
	return taxed.Mul(one.Add(r.Service))
}

// Compose builds the full breakdown for a subtotal and a discount percentage.
func Compose(subtotal, percent decimal.Decimal, r Rates) (Breakdown, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return Breakdown{}, errors.Wrapf(ErrInvalidRate, "discount %s%%", percent)
	}
	if err := r.Validate(); err != nil {
		return Breakdown{}, err
	}

	discounted := Discounted(subtotal, percent)
	taxed := discounted.Mul(one.Add(r.Tax))
	total := taxed.Mul(one.Add(r.Service))

	return Breakdown{
		Subtotal:      subtotal,
		Discount:      subtotal.Sub(discounted),
		Tax:           taxed.Sub(discounted),
		ServiceCharge: total.Sub(taxed),
		Total:         total,
	}, nil
}

// Sum adds up prices. An empty input sums to zero.
func Sum(prices []decimal.Decimal) decimal.Decimal {
	sum := zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum
}

// Split divides total evenly between n payers.
func Split(total decimal.Decimal, n int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(n)))
}
