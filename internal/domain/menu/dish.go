// Package menu holds the priced dishes and the customers who order them.
package menu

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNegativePrice is returned when a dish is created with a price below zero.
var ErrNegativePrice = errors.New("price must not be negative")

// Dish is a menu item. Dishes are compared by pointer: two dishes with equal
// fields are still distinct items on an order.
type Dish struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

// NewDish creates a Dish. Name and category are free-form and not validated.
func NewDish(name string, price decimal.Decimal, category string) (*Dish, error) {
	if price.IsNegative() {
		return nil, errors.Wrapf(ErrNegativePrice, "dish %q", name)
	}
	return &Dish{
		Name:     name,
		Price:    price,
		Category: category,
	}, nil
}

// MustDish is like NewDish but panics on error. Intended for fixtures.
func MustDish(name, price, category string) *Dish {
	d, err := NewDish(name, decimal.RequireFromString(price), category)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether d can be placed on an order.
func (d *Dish) Valid() bool {
	return d != nil && !d.Price.IsNegative()
}

func (d *Dish) String() string {
	return fmt.Sprintf("Dish: %s, Category: %s, Price: $%s", d.Name, d.Category, d.Price.StringFixed(2))
}
