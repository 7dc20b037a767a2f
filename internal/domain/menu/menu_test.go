package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDish(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := NewDish("Pizza", decimal.NewFromInt(12), "Main Course")
		require.NoError(t, err)
		assert.True(t, d.Valid())
		assert.Equal(t, "Dish: Pizza, Category: Main Course, Price: $12.00", d.String())
	})

	t.Run("free dish allowed", func(t *testing.T) {
		d, err := NewDish("Water", decimal.Zero, "Drink")
		require.NoError(t, err)
		assert.True(t, d.Valid())
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := NewDish("Refund", decimal.NewFromInt(-1), "Misc")
		require.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("empty name and category are accepted", func(t *testing.T) {
		d, err := NewDish("", decimal.RequireFromString("3.5"), "")
		require.NoError(t, err)
		assert.Equal(t, "Dish: , Category: , Price: $3.50", d.String())
	})
}

func TestDish_Valid(t *testing.T) {
	var nilDish *Dish
	assert.False(t, nilDish.Valid())
	assert.False(t, (&Dish{Name: "x", Price: decimal.NewFromInt(-5)}).Valid())
}

func TestCustomer_DiscountPercent(t *testing.T) {
	tests := []struct {
		name       string
		membership Membership
		want       int64
	}{
		{name: "vip", membership: VIP, want: 10},
		{name: "regular", membership: Regular, want: 0},
		{name: "default is regular", membership: "", want: 0},
		{name: "case sensitive", membership: "vip", want: 0},
		{name: "unknown tier", membership: "Gold", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCustomer("Alice", tt.membership)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(c.DiscountPercent()),
				"expected %d, got %s", tt.want, c.DiscountPercent())
		})
	}
}

func TestCustomer_String(t *testing.T) {
	assert.Equal(t, "Customer: Bob, Membership: VIP", NewCustomer("Bob", VIP).String())
	assert.Equal(t, "Customer: Alice, Membership: Regular", NewCustomer("Alice", "").String())
}
