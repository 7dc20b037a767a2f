package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bistro/internal/domain/order"
	"github.com/xenking/bistro/internal/domain/pricing"
)

func defaultConfig() *Config {
	return &Config{TaxRate: "0.08", ServiceCharge: "0.05", GroupPolicy: "none"}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, defaultConfig()))

	want := "Order for Alice:\n" +
		"Dish: Pizza, Category: Main Course, Price: $12.00\n" +
		"Dish: Ice Cream, Category: Dessert, Price: $5.00\n" +
		"Total: $19.28\n" +
		"Final Total: $19.28\n" +
		"Group Order for Alice, Bob:\n" +
		"Dish: Pizza, Category: Main Course, Price: $12.00\n" +
		"Dish: Ice Cream, Category: Dessert, Price: $5.00\n" +
		"Dish: Coffee, Category: Drink, Price: $3.00\n" +
		"Total: $22.68\n" +
		"Split Bill: $11.34 per person\n"
	assert.Equal(t, want, out.String())
}

func TestRun_AveragePolicy(t *testing.T) {
	cfg := defaultConfig()
	cfg.GroupPolicy = "average"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, cfg))
	// 20 * 0.95 * 1.08 * 1.05 = 21.546, split in two.
	assert.Contains(t, out.String(), "Split Bill: $10.77 per person\n")
}

func TestRun_BadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{name: "tax not a number", mutate: func(c *Config) { c.TaxRate = "eight" }},
		{name: "negative service", mutate: func(c *Config) { c.ServiceCharge = "-0.05" }, target: pricing.ErrInvalidRate},
		{name: "unknown policy", mutate: func(c *Config) { c.GroupPolicy = "max" }, target: order.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := run(context.Background(), &bytes.Buffer{}, cfg)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
