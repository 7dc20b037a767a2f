package order

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/bistro/internal/domain/menu"
)

// Party is who an order is billed to: an Individual or a Group.
type Party interface {
	// DiscountPercent returns the 0-100 percentage taken off the subtotal.
	DiscountPercent() decimal.Decimal
	// Names returns the display names of everyone on the bill.
	Names() []string
	// Payers is the number of people sharing the bill.
	Payers() int

	isParty()
}

// Individual bills a single customer, who gets their tier discount.
type Individual struct {
	Customer *menu.Customer
}

func (Individual) isParty() {}

func (p Individual) DiscountPercent() decimal.Decimal {
	return p.Customer.DiscountPercent()
}

func (p Individual) Names() []string {
	return []string{p.Customer.Name}
}

func (Individual) Payers() int { return 1 }

// GroupPolicy decides the discount for a table of several customers.
type GroupPolicy int

const (
	// GroupNoDiscount bills groups at full price regardless of members' tiers.
	GroupNoDiscount GroupPolicy = iota
	// GroupMinDiscount applies the smallest discount any member is entitled to.
	GroupMinDiscount
	// GroupAverageDiscount applies the mean of the members' discounts.
	GroupAverageDiscount
)

var policyNames = map[GroupPolicy]string{
	GroupNoDiscount:      "none",
	GroupMinDiscount:     "min",
	GroupAverageDiscount: "average",
}

func (p GroupPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParseGroupPolicy maps "none", "min" or "average" to a GroupPolicy.
func ParseGroupPolicy(s string) (GroupPolicy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return GroupNoDiscount, &ValidationError{Reason: "unknown group policy " + s}
}

// Group bills several customers together and splits the total evenly.
type Group struct {
	Customers []*menu.Customer
	Policy    GroupPolicy
}

func (Group) isParty() {}

func (p Group) DiscountPercent() decimal.Decimal {
	if len(p.Customers) == 0 {
		return decimal.Zero
	}
	switch p.Policy {
	case GroupMinDiscount:
		lowest := p.Customers[0].DiscountPercent()
		for _, c := range p.Customers[1:] {
			lowest = decimal.Min(lowest, c.DiscountPercent())
		}
		return lowest
	case GroupAverageDiscount:
		sum := decimal.Zero
		for _, c := range p.Customers {
			sum = sum.Add(c.DiscountPercent())
		}
		return sum.Div(decimal.NewFromInt(int64(len(p.Customers))))
	default:
		return decimal.Zero
	}
}

func (p Group) Names() []string {
	names := make([]string, len(p.Customers))
	for i, c := range p.Customers {
		names[i] = c.Name
	}
	return names
}

func (p Group) Payers() int { return len(p.Customers) }
