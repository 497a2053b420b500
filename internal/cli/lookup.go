package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/roach88/catalogview/internal/catalog"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	URL string // lookup template override
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <sku>",
		Short: "Look up one product",
		Long: `Fetch one product record the way the product popup does and print it.

The lookup template comes from shop.product_query_url, falling back to
shop.product_lookup, unless --url is given. Every [SKU] in the template
is replaced with the escaped sku.

Exit codes:
  0 - Product found
  1 - No product record for the sku
  2 - No lookup URL configured, or the request failed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "lookup URL template (overrides config)")

	return cmd
}

func runLookup(opts *LookupOptions, sku string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	template := opts.URL
	if template == "" {
		template = cfg.Shop.LookupURL()
	}
	if template == "" {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "no product lookup URL configured", nil)
	}

	timeout := cfg.Shop.LookupTimeout
	if timeout <= 0 {
		timeout = catalog.DefaultTimeout
	}
	lookup := catalog.NewLookup(
		catalog.WithHTTPClient(&http.Client{Timeout: timeout}),
		catalog.WithDebug(opts.Verbose),
	)

	formatter.VerboseLog("Looking up %s via %s", sku, catalog.BuildURL(template, sku))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	product, err := lookup.Fetch(ctx, sku, template)
	switch {
	case catalog.IsNotFound(err):
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("product %s not found", sku), nil)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeLookup, fmt.Sprintf("lookup of %s failed", sku), err)
	}

	if opts.Format == "json" {
		return formatter.Success(product)
	}

	w := cmd.OutOrStdout()
	for _, f := range catalog.Fields {
		if v := product.Get(f); v != "" {
			fmt.Fprintf(w, "%-12s %s\n", string(f)+":", v)
		}
	}
	return nil
}
