// Package order aggregates dishes for a customer or a group and computes the
// bill: subtotal, membership discount, tax and service charge.
//
// An Order is plain in-memory state and is not safe for concurrent mutation.
package order

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/bistro/internal/domain/menu"
	"github.com/xenking/bistro/internal/domain/pricing"
)

// Order is an ordered list of dishes billed to a Party. Orders come from New
// or NewGroup; the zero value bills nobody and has no tax or service charge.
type Order struct {
	party Party
	items []item
	rates pricing.Rates
}

// item pins the price a dish had when it was added.
type item struct {
	dish  *menu.Dish
	price decimal.Decimal
}

// Option configures an Order.
type Option func(*Order)

// WithRates overrides the default tax and service charge.
func WithRates(r pricing.Rates) Option {
	return func(o *Order) { o.rates = r }
}

// WithGroupPolicy sets the discount policy of a group order. It has no effect
// on individual orders.
func WithGroupPolicy(p GroupPolicy) Option {
	return func(o *Order) {
		if g, ok := o.party.(Group); ok {
			g.Policy = p
			o.party = g
		}
	}
}

// New creates an empty order for a single customer.
func New(customer *menu.Customer, opts ...Option) (*Order, error) {
	if customer == nil {
		return nil, &ValidationError{Reason: "customer is required"}
	}
	return newOrder(Individual{Customer: customer}, opts)
}

// NewGroup creates an empty order shared by customers. An empty list is
// accepted here; SplitBill reports it.
func NewGroup(customers []*menu.Customer, opts ...Option) (*Order, error) {
	if slices.Contains(customers, nil) {
		return nil, &ValidationError{Reason: "group contains a nil customer"}
	}
	return newOrder(Group{Customers: slices.Clone(customers)}, opts)
}

func newOrder(p Party, opts []Option) (*Order, error) {
	o := &Order{
		party: p,
		rates: pricing.DefaultRates(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.rates.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return o, nil
}

// Party returns who the order is billed to.
func (o *Order) Party() Party { return o.party }

func (o *Order) billedTo() Party {
	if o.party == nil {
		return Group{}
	}
	return o.party
}

// IsGroup reports whether the order is shared by a group.
func (o *Order) IsGroup() bool {
	_, ok := o.party.(Group)
	return ok
}

// AddDish appends dish to the order. Later changes to dish.Price do not affect
// the bill.
func (o *Order) AddDish(dish *menu.Dish) error {
	if dish == nil {
		return &ValidationError{Reason: "only dishes can be added to an order"}
	}
	if !dish.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("dish %q has a negative price", dish.Name)}
	}
	o.items = append(o.items, item{dish: dish, price: dish.Price})
	return nil
}

// RemoveDish removes the first occurrence of dish. Dishes are matched by
// identity, not by value.
func (o *Order) RemoveDish(dish *menu.Dish) error {
	i := slices.IndexFunc(o.items, func(it item) bool { return it.dish == dish })
	if i < 0 {
		name := "<nil>"
		if dish != nil {
			name = dish.Name
		}
		return &NotFoundError{Dish: name}
	}
	o.items = slices.Delete(o.items, i, i+1)
	return nil
}

// Dishes returns a copy of the dishes in insertion order.
func (o *Order) Dishes() []*menu.Dish {
	dishes := make([]*menu.Dish, len(o.items))
	for i, it := range o.items {
		dishes[i] = it.dish
	}
	return dishes
}

// Len returns the number of dishes on the order.
func (o *Order) Len() int { return len(o.items) }

// Subtotal is the sum of all dish prices, zero for an empty order.
func (o *Order) Subtotal() decimal.Decimal {
	prices := make([]decimal.Decimal, len(o.items))
	for i, it := range o.items {
		prices[i] = it.price
	}
	return pricing.Sum(prices)
}

// DiscountPercent dispatches on the party.
func (o *Order) DiscountPercent() decimal.Decimal {
	return o.billedTo().DiscountPercent()
}

// ApplyDiscount returns the subtotal after the party's discount.
func (o *Order) ApplyDiscount() decimal.Decimal {
	return pricing.Discounted(o.Subtotal(), o.DiscountPercent())
}

// FinalTotal applies tax to the discounted subtotal, then the service charge
// to the taxed amount. The result is not rounded.
func (o *Order) FinalTotal() decimal.Decimal {
	return pricing.Total(o.ApplyDiscount(), o.rates)
}

// Breakdown itemizes the bill.
func (o *Order) Breakdown() (pricing.Breakdown, error) {
	return pricing.Compose(o.Subtotal(), o.DiscountPercent(), o.rates)
}

// SplitBill divides the final total evenly between the group's customers,
// ignoring who ate what.
func (o *Order) SplitBill() (decimal.Decimal, error) {
	n := o.billedTo().Payers()
	if n == 0 {
		return decimal.Zero, &ValidationError{Reason: "no customers to split the bill between"}
	}
	return pricing.Split(o.FinalTotal(), n), nil
}

func (o *Order) String() string {
	lines := make([]string, len(o.items))
	for i, it := range o.items {
		billed := *it.dish
		billed.Price = it.price
		lines[i] = billed.String()
	}

	header := "Order for "
	if o.IsGroup() {
		header = "Group Order for "
	}
	return fmt.Sprintf("%s%s:\n%s\nTotal: $%s",
		header,
		strings.Join(o.billedTo().Names(), ", "),
		strings.Join(lines, "\n"),
		o.FinalTotal().StringFixed(2),
	)
}
