// Package checkout turns the current cart plus an address/payment selection
// into an order submission and interprets the backend's reply. Precondition
// failures are rejected locally; no request leaves the client until the
// selection is complete.
package checkout

import (
	"context"
	"errors"
	"log/slog"

	"storefront-client/internal/api"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
	"storefront-client/internal/normalize"
)

// Precondition errors; callers translate these into a login redirect or a
// notice instead of a request.
var (
	ErrNotAuthenticated = errors.New("checkout requires a signed-in session")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAddressRequired  = errors.New("shipping and billing address must be selected")
)

const msgSubmitFailed = "could not place the order, please try again"

// defaultPackSizeID is sent when a cart line has no variant selected; the
// backend requires some pack size on every item.
const defaultPackSizeID = 1

// OrdersAPI is the slice of the backend client checkout needs.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, sub model.OrderSubmission) (*api.Response, error)
}

type Auth interface {
	IsAuthenticated() bool
}

// Cart is the slice of the cart store checkout reads and clears.
type Cart interface {
	Lines() []model.CartLine
	Clear() error
}

// DestinationKind is where the UI should land after a successful
// submission, in strict priority order.
type DestinationKind int

const (
	DestOrdersList DestinationKind = iota
	DestTransaction
	DestOrderDetail
)

type Destination struct {
	Kind          DestinationKind
	OrderID       int64
	TransactionID string
}

// Outcome is the interpreted result of one submission attempt.
type Outcome struct {
	dto.Result
	OrderID       int64
	TransactionID string
	Destination   Destination
}

type Selection struct {
	ShippingAddressID int64
	BillingAddressID  int64
	PaymentMethod     string
}

type Orchestrator struct {
	api  OrdersAPI
	auth Auth
	cart Cart
	log  *slog.Logger
}

func New(ordersAPI OrdersAPI, auth Auth, cart Cart, log *slog.Logger) *Orchestrator {
	return &Orchestrator{api: ordersAPI, auth: auth, cart: cart, log: log}
}

// Submit validates the preconditions, posts the order and probes the reply.
// A resolvable order id is sufficient evidence of success even when the
// response's own success flag is absent or false. On success the cart is
// cleared and the destination resolved: order detail when an order id was
// found, the transaction view when only a transaction id was, the orders
// list otherwise.
func (o *Orchestrator) Submit(ctx context.Context, sel Selection) (Outcome, error) {
	if !o.auth.IsAuthenticated() {
		return Outcome{}, ErrNotAuthenticated
	}

	lines := o.cart.Lines()
	if len(lines) == 0 {
		return Outcome{}, ErrEmptyCart
	}
	if sel.ShippingAddressID == 0 || sel.BillingAddressID == 0 {
		return Outcome{}, ErrAddressRequired
	}

	sub := model.OrderSubmission{
		ShippingAddressID: sel.ShippingAddressID,
		BillingAddressID:  sel.BillingAddressID,
		PaymentMethod:     model.ResolvePaymentMethod(sel.PaymentMethod),
		Items:             make([]model.OrderItem, len(lines)),
	}
	for i, l := range lines {
		packSizeID := l.PackSizeID
		if packSizeID == 0 {
			packSizeID = defaultPackSizeID
		}
		sub.Items[i] = model.OrderItem{
			ProductID:  l.ProductID,
			PackSizeID: packSizeID,
			Quantity:   l.Quantity,
		}
	}

	resp, err := o.api.CreateOrder(ctx, sub)
	if err != nil {
		o.log.Warn("create order", "err", err)
		return Outcome{Result: dto.Fail(msgSubmitFailed)}, nil
	}

	doc := resp.Doc()
	orderID, hasOrderID := normalize.FirstID(doc, normalize.OrderIDProbes)
	txnID, hasTxnID := normalize.FirstString(doc, normalize.TransactionIDProbes)

	if !resp.Success && !hasOrderID {
		msg := resp.Message
		if msg == "" {
			msg = msgSubmitFailed
		}
		return Outcome{Result: dto.Fail(msg)}, nil
	}

	if err := o.cart.Clear(); err != nil {
		o.log.Warn("clear cart after checkout", "err", err)
	}

	dest := Destination{Kind: DestOrdersList}
	switch {
	case hasOrderID:
		dest = Destination{Kind: DestOrderDetail, OrderID: orderID}
	case hasTxnID:
		dest = Destination{Kind: DestTransaction, TransactionID: txnID}
	}

	return Outcome{
		Result:        dto.OK(resp.Message),
		OrderID:       orderID,
		TransactionID: txnID,
		Destination:   dest,
	}, nil
}
