// Command billing prints the bill for a sample individual order and a sample
// group order.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/bistro/internal/domain/menu"
	"github.com/xenking/bistro/internal/domain/order"
	"github.com/xenking/bistro/internal/domain/pricing"
)

// Config is loaded from BILLING_-prefixed environment variables, flags, or
// billing.yaml.
type Config struct {
	TaxRate       string `default:"0.08" usage:"Tax rate applied after the discount" flag:"tax-rate"`
	ServiceCharge string `default:"0.05" usage:"Service charge applied after tax" flag:"service-charge"`
	GroupPolicy   string `default:"none" usage:"Group discount policy: none, min or average" flag:"group-policy"`
	Debug         bool   `default:"false" usage:"Enable debug logging"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BILLING",
		Files:     []string{"billing.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

func (c *Config) rates() (pricing.Rates, error) {
	tax, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return pricing.Rates{}, errors.Wrapf(err, "parse tax rate %q", c.TaxRate)
	}
	service, err := decimal.NewFromString(c.ServiceCharge)
	if err != nil {
		return pricing.Rates{}, errors.Wrapf(err, "parse service charge %q", c.ServiceCharge)
	}
	r := pricing.Rates{Tax: tax, Service: service}
	if err := r.Validate(); err != nil {
		return pricing.Rates{}, err
	}
	return r, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	lg, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, os.Stdout, cfg); err != nil {
		lg.Error("Billing failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfg *Config) error {
	lg := zctx.From(ctx)

	rates, err := cfg.rates()
	if err != nil {
		return err
	}
	policy, err := order.ParseGroupPolicy(cfg.GroupPolicy)
	if err != nil {
		return err
	}
	lg.Debug("Pricing configured",
		zap.Stringer("tax", rates.Tax),
		zap.Stringer("service", rates.Service),
		zap.Stringer("group_policy", policy),
	)

	pizza := menu.MustDish("Pizza", "12", "Main Course")
	iceCream := menu.MustDish("Ice Cream", "5", "Dessert")
	coffee := menu.MustDish("Coffee", "3", "Drink")

	alice := menu.NewCustomer("Alice", menu.Regular)
	bob := menu.NewCustomer("Bob", menu.VIP)

	single, err := order.New(alice, order.WithRates(rates))
	if err != nil {
		return errors.Wrap(err, "new order")
	}
	for _, d := range []*menu.Dish{pizza, iceCream} {
		if err := single.AddDish(d); err != nil {
			return errors.Wrapf(err, "add %s", d.Name)
		}
	}
	fmt.Fprintln(out, single)
	fmt.Fprintf(out, "Final Total: $%s\n", single.FinalTotal().StringFixed(2))
	lg.Debug("Individual order billed", zap.Int("dishes", single.Len()), zap.Stringer("total", single.FinalTotal()))

	group, err := order.NewGroup([]*menu.Customer{alice, bob},
		order.WithRates(rates),
		order.WithGroupPolicy(policy),
	)
	if err != nil {
		return errors.Wrap(err, "new group order")
	}
	for _, d := range []*menu.Dish{pizza, iceCream, coffee} {
		if err := group.AddDish(d); err != nil {
			return errors.Wrapf(err, "add %s", d.Name)
		}
	}
	share, err := group.SplitBill()
	if err != nil {
		return errors.Wrap(err, "split bill")
	}
	fmt.Fprintln(out, group)
	fmt.Fprintf(out, "Split Bill: $%s per person\n", share.StringFixed(2))
	lg.Debug("Group order billed", zap.Int("payers", group.Party().Payers()), zap.Stringer("share", share))

	return nil
}
