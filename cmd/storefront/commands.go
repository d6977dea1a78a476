package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/checkout"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
	"storefront-client/internal/store"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func printResult(res dto.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.session.Login(cmd.Context(), args[0], args[1])
			if !res.Success {
				return errors.New(res.Message)
			}
			if res.User != nil {
				fmt.Printf("signed in as %s <%s>\n", res.User.Name, res.User.Email)
			} else {
				fmt.Println("signed in")
			}
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout(cmd.Context())
			fmt.Println("signed out")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, phone string
	cmd := &cobra.Command{
		Use:   "register <email> <password>",
		Short: "Create an account (verification code is sent by the backend)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(a.session.Register(cmd.Context(), dto.RegisterRequest{
				Name:     name,
				Email:    args[0],
				Phone:    phone,
				Password: args[1],
			}))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email> <code>",
		Short: "Confirm registration with the emailed code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(a.session.VerifyAccount(cmd.Context(), args[0], args[1]))
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Three-step password reset",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request <email>",
		Short: "Send the reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(a.session.RequestReset(cmd.Context(), args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "verify <email> <code>",
		Short: "Exchange the code for a reset token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, res := a.session.VerifyResetCode(cmd.Context(), args[0], args[1])
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Println("reset token:", token)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <reset-token> <password> <confirm>",
		Short: "Set the new password",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(a.session.SetNewPassword(cmd.Context(), args[0], args[1], args[2]))
		},
	})

	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				return errors.New("not signed in")
			}
			user := a.session.CurrentUser()
			if user == nil {
				fmt.Println("signed in (profile not resolved)")
				return nil
			}
			fmt.Printf("%s <%s>\n", user.Name, user.Email)
			if exp, ok := a.session.TokenExpiry(); ok {
				fmt.Println("session expires:", exp.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the reference catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range a.catalog.All() {
				name := p.NameEn
				if name == "" {
					name = p.Name
				}
				fmt.Printf("%4d  %-32s %8s\n", p.ID, name, p.Price.StringFixed(2))
			}
			return nil
		},
	}
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a catalog product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, ok := a.catalog.Lookup(id)
			if !ok {
				return fmt.Errorf("product %d not in catalog", id)
			}
			var size *model.PackSize
			if len(p.Sizes) > 0 {
				size = &p.Sizes[0]
			}
			if err := a.cart.Add(p, size, qty); err != nil {
				return err
			}
			fmt.Printf("cart: %d items, total %s\n", a.cart.Count(), a.cart.Total().StringFixed(2))
			return nil
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cart.Remove(id)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return a.cart.UpdateQuantity(id, q)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.Clear()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := a.cart.Lines()
			if len(lines) == 0 {
				fmt.Println("cart is empty")
				return nil
			}
			for _, l := range lines {
				name := l.NameEn
				if name == "" {
					name = l.Name
				}
				fmt.Printf("%4d  %-32s x%-3d %8s\n", l.ProductID, name, l.Quantity, l.Subtotal().StringFixed(2))
			}
			fmt.Printf("total: %s (%d items)\n", a.cart.Total().StringFixed(2), a.cart.Count())
			return nil
		},
	})

	return cmd
}

func newWishlistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the wishlist",
	}

	refresh := func(cmd *cobra.Command) error {
		if err := a.wishlist.Refresh(cmd.Context()); err != nil {
			a.log.Warn("refresh wishlist", "err", err)
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, ok := a.catalog.Lookup(id)
			if !ok {
				return fmt.Errorf("product %d not in catalog", id)
			}
			_ = refresh(cmd)
			return printResult(a.wishlist.Add(cmd.Context(), p))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_ = refresh(cmd)
			return printResult(a.wishlist.Remove(cmd.Context(), id))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every wishlist entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = refresh(cmd)
			return printResult(a.wishlist.Clear(cmd.Context()))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = refresh(cmd)
			entries := a.wishlist.Entries()
			if len(entries) == 0 {
				fmt.Println("wishlist is empty")
				return nil
			}
			for _, e := range entries {
				name := e.NameEn
				if name == "" {
					name = e.Name
				}
				fmt.Printf("%4d  %-32s %8s\n", e.ProductID, name, e.Price.StringFixed(2))
			}
			return nil
		},
	})

	return cmd
}

func newAddressesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List saved addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.session.IsAuthenticated() {
				return errors.New("please sign in first")
			}
			resp, err := a.client.Addresses(cmd.Context())
			if err != nil {
				return err
			}
			if !resp.Success {
				return errors.New(resp.Message)
			}
			fmt.Println(string(resp.Data))
			return nil
		},
	}
}

func newCheckoutCmd(a *app) *cobra.Command {
	var shipID, billID int64
	var payment string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.checkout.Submit(cmd.Context(), checkout.Selection{
				ShippingAddressID: shipID,
				BillingAddressID:  billID,
				PaymentMethod:     payment,
			})
			switch {
			case errors.Is(err, checkout.ErrNotAuthenticated):
				return errors.New("please sign in before checking out")
			case errors.Is(err, checkout.ErrEmptyCart):
				return errors.New("cart is empty")
			case errors.Is(err, checkout.ErrAddressRequired):
				return errors.New("select both --ship and --bill address ids")
			case err != nil:
				return err
			}
			if !outcome.Success {
				return errors.New(outcome.Message)
			}

			switch outcome.Destination.Kind {
			case checkout.DestOrderDetail:
				fmt.Println("order placed, id:", outcome.Destination.OrderID)
				return showOrder(a, cmd, strconv.FormatInt(outcome.Destination.OrderID, 10))
			case checkout.DestTransaction:
				fmt.Println("order placed, transaction:", outcome.Destination.TransactionID)
			default:
				fmt.Println("order placed; check your orders list")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&shipID, "ship", 0, "shipping address id")
	cmd.Flags().Int64Var(&billID, "bill", 0, "billing address id")
	cmd.Flags().StringVar(&payment, "payment", "cash", "payment method (card or cash)")
	return cmd
}

func showOrder(a *app, cmd *cobra.Command, id string) error {
	result, err := a.orders.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	rec := result.Order
	fmt.Printf("order %d  status: %s (%s)\n", rec.OrderID, rec.Status, rec.OriginalStatus)
	for _, item := range rec.Items {
		fmt.Printf("  %-32s x%-3d %8s\n", item.Name, item.Quantity, item.Subtotal().StringFixed(2))
	}
	fmt.Printf("  subtotal %s  discount %s  delivery %s  total %s\n",
		rec.Subtotal.StringFixed(2), rec.Discount.StringFixed(2),
		rec.DeliveryFee.StringFixed(2), rec.Total.StringFixed(2))
	if rec.Address != nil {
		fmt.Printf("  ship to: %s, %s, %s\n", rec.Address.Name, rec.Address.Address, rec.Address.City)
	}
	for _, w := range result.Warnings {
		a.log.Warn(w.Op, "err", w.Err)
	}
	return nil
}

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Track orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.orders.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no orders yet")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%6d  %-12s %10s  %s\n",
					rec.OrderID, rec.Status, rec.Total.StringFixed(2),
					rec.Date.Format("2006-01-02"))
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOrder(a, cmd, args[0])
		},
	})

	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order still in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !model.Cancellable(current.Order.OriginalStatus) {
				return fmt.Errorf("order is %s and can no longer be cancelled", current.Order.Status)
			}

			refreshed, res := a.orders.Cancel(cmd.Context(), args[0], reason)
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Println(res.Message)
			if refreshed != nil {
				fmt.Println("status now:", refreshed.Order.Status)
			}
			return nil
		},
	}
	cancel.Flags().StringVar(&reason, "reason", "", "cancellation reason")
	cmd.AddCommand(cancel)

	return cmd
}

func newLangCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [code]",
		Short: "Show or set the UI language preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				lang := "en"
				if _, err := a.db.Get(store.KeyLanguage, &lang); err != nil {
					return err
				}
				fmt.Println(lang)
				return nil
			}
			return a.db.Put(store.KeyLanguage, args[0])
		},
	}
}
