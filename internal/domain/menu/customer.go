package menu

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Membership is a customer's tier. Matching is case-sensitive.
type Membership string

const (
	// Regular customers pay full price.
	Regular Membership = "Regular"
	// VIP customers get vipDiscount percent off.
	VIP Membership = "VIP"
)

var vipDiscount = decimal.NewFromInt(10)

// Customer is the person an order is billed to.
type Customer struct {
	Name       string
	Membership Membership
}

// NewCustomer creates a Customer. An empty membership defaults to Regular.
func NewCustomer(name string, membership Membership) *Customer {
	if membership == "" {
		membership = Regular
	}
	return &Customer{
		Name:       name,
		Membership: membership,
	}
}

// DiscountPercent returns the percentage (0-100) taken off this customer's
// pre-tax subtotal.
func (c *Customer) DiscountPercent() decimal.Decimal {
	if c.Membership == VIP {
		return vipDiscount
	}
	return decimal.Zero
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer: %s, Membership: %s", c.Name, c.Membership)
}
