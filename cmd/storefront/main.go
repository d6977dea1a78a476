// Command storefront is a terminal client for the storefront backend:
// session, cart, wishlist, checkout and order tracking against the REST API
// configured via API_BASE_URL.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"storefront-client/internal/api"
	"storefront-client/internal/cart"
	"storefront-client/internal/catalog"
	"storefront-client/internal/checkout"
	"storefront-client/internal/config"
	"storefront-client/internal/logger"
	"storefront-client/internal/order"
	"storefront-client/internal/session"
	"storefront-client/internal/store"
	"storefront-client/internal/wishlist"
)

type app struct {
	cfg *config.Config
	log *slog.Logger

	db       *store.Store
	catalog  *catalog.Catalog
	client   *api.Client
	session  *session.Service
	cart     *cart.Store
	wishlist *wishlist.Service
	checkout *checkout.Orchestrator
	orders   *order.Service
}

func (a *app) init() error {
	// .env is optional; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New("storefront", cfg)

	db, err := store.Open(cfg.State.DatabasePath)
	if err != nil {
		return err
	}
	a.db = db

	cat, err := catalog.Load(cfg.State.CatalogPath)
	if err != nil {
		return err
	}
	a.catalog = cat

	// The client asks the session for the bearer token; the session issues
	// requests through the client. Late-bind the token source to break the
	// construction cycle.
	a.client = api.NewClient(&cfg.API, func() string {
		if a.session == nil {
			return ""
		}
		return a.session.Token()
	})
	a.session = session.New(a.client, db, a.log)

	a.cart = cart.New(db, a.log)
	if err := a.cart.Load(cat); err != nil {
		a.log.Warn("load cart", "err", err)
	}

	a.wishlist = wishlist.New(a.client, a.session, db, cfg.API.BaseURL, a.log)
	a.checkout = checkout.New(a.client, a.session, a.cart, a.log)
	a.orders = order.New(a.client, cfg.API.BaseURL, a.log)

	return nil
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client: browse, cart, wishlist, checkout, orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newVerifyCmd(a),
		newResetCmd(a),
		newProfileCmd(a),
		newProductsCmd(a),
		newCartCmd(a),
		newWishlistCmd(a),
		newAddressesCmd(a),
		newCheckoutCmd(a),
		newOrdersCmd(a),
		newLangCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
