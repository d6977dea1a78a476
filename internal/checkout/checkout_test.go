package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"storefront-client/internal/api"
	"storefront-client/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeOrdersAPI struct {
	raw   string
	err   error
	calls int
	last  model.OrderSubmission
}

func (f *fakeOrdersAPI) CreateOrder(ctx context.Context, sub model.OrderSubmission) (*api.Response, error) {
	f.calls++
	f.last = sub
	if f.err != nil {
		return nil, f.err
	}
	r := &api.Response{StatusCode: 200, Body: []byte(f.raw)}
	_ = json.Unmarshal([]byte(f.raw), &r.Envelope)
	return r, nil
}

type fakeAuth struct{ authed bool }

func (f fakeAuth) IsAuthenticated() bool { return f.authed }

type fakeCart struct {
	lines   []model.CartLine
	cleared bool
}

func (f *fakeCart) Lines() []model.CartLine { return f.lines }
func (f *fakeCart) Clear() error            { f.cleared = true; return nil }

func oneLine() []model.CartLine {
	return []model.CartLine{{
		ProductID: 5,
		UnitPrice: decimal.RequireFromString("3.00"),
		Quantity:  2,
	}}
}

func TestSubmitRejectsUnauthenticated(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{}
	o := New(ordersAPI, fakeAuth{authed: false}, &fakeCart{lines: oneLine()}, testLogger())

	_, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 1})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if ordersAPI.calls != 0 {
		t.Fatal("no network call may be made")
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{}
	o := New(ordersAPI, fakeAuth{authed: true}, &fakeCart{}, testLogger())

	_, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 1})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if ordersAPI.calls != 0 {
		t.Fatal("no network call may be made")
	}
}

func TestSubmitRejectsMissingAddressLocally(t *testing.T) {
	cases := []Selection{
		{BillingAddressID: 2},
		{ShippingAddressID: 1},
		{},
	}
	for _, sel := range cases {
		ordersAPI := &fakeOrdersAPI{}
		o := New(ordersAPI, fakeAuth{authed: true}, &fakeCart{lines: oneLine()}, testLogger())

		_, err := o.Submit(context.Background(), sel)
		if !errors.Is(err, ErrAddressRequired) {
			t.Fatalf("selection %+v: expected ErrAddressRequired, got %v", sel, err)
		}
		if ordersAPI.calls != 0 {
			t.Fatalf("selection %+v: no network call may be made", sel)
		}
	}
}

func TestSubmitBuildsSubmission(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{raw: `{"success":true,"data":{"id":10}}`}
	crt := &fakeCart{lines: []model.CartLine{
		{ProductID: 5, Quantity: 2, PackSizeID: 3},
		{ProductID: 6, Quantity: 1}, // no variant selected
	}}
	o := New(ordersAPI, fakeAuth{authed: true}, crt, testLogger())

	_, err := o.Submit(context.Background(), Selection{
		ShippingAddressID: 1,
		BillingAddressID:  2,
		PaymentMethod:     "wallet",
	})
	if err != nil {
		t.Fatal(err)
	}

	sub := ordersAPI.last
	if sub.PaymentMethod != model.PaymentCashOnDelivery {
		t.Errorf("non-card payment must map to cash_on_delivery, got %q", sub.PaymentMethod)
	}
	if sub.Items[0].PackSizeID != 3 {
		t.Errorf("selected pack size lost: %+v", sub.Items[0])
	}
	if sub.Items[1].PackSizeID != 1 {
		t.Errorf("unset pack size must default to 1, got %d", sub.Items[1].PackSizeID)
	}
}

func TestSubmitCardPaymentStaysCard(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{raw: `{"success":true,"data":{"id":10}}`}
	o := New(ordersAPI, fakeAuth{authed: true}, &fakeCart{lines: oneLine()}, testLogger())

	_, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2, PaymentMethod: "card"})
	if err != nil {
		t.Fatal(err)
	}
	if ordersAPI.last.PaymentMethod != model.PaymentCard {
		t.Fatalf("got %q", ordersAPI.last.PaymentMethod)
	}
}

func TestSubmitSucceedsOnDeepOrderIDWithoutSuccessFlag(t *testing.T) {
	// No success flag at all, id nested two levels down: still a success.
	ordersAPI := &fakeOrdersAPI{raw: `{"data":{"data":{"id":42}}}`}
	crt := &fakeCart{lines: oneLine()}
	o := New(ordersAPI, fakeAuth{authed: true}, crt, testLogger())

	outcome, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatal("a present order id is sufficient evidence of success")
	}
	if outcome.Destination.Kind != DestOrderDetail || outcome.Destination.OrderID != 42 {
		t.Fatalf("expected order-detail destination for id 42, got %+v", outcome.Destination)
	}
	if !crt.cleared {
		t.Fatal("cart must be cleared after a successful submission")
	}
}

func TestSubmitTransactionFallback(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{raw: `{"success":true,"data":{"transaction_id":"tx-9"}}`}
	o := New(ordersAPI, fakeAuth{authed: true}, &fakeCart{lines: oneLine()}, testLogger())

	outcome, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Destination.Kind != DestTransaction || outcome.Destination.TransactionID != "tx-9" {
		t.Fatalf("expected transaction destination, got %+v", outcome.Destination)
	}
}

func TestSubmitOrdersListFallback(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{raw: `{"success":true,"message":"ok"}`}
	o := New(ordersAPI, fakeAuth{authed: true}, &fakeCart{lines: oneLine()}, testLogger())

	outcome, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Destination.Kind != DestOrdersList {
		t.Fatalf("expected orders-list destination, got %+v", outcome.Destination)
	}
}

func TestSubmitFailureKeepsCartAndMessage(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{raw: `{"success":false,"message":"out of stock"}`}
	crt := &fakeCart{lines: oneLine()}
	o := New(ordersAPI, fakeAuth{authed: true}, crt, testLogger())

	outcome, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success {
		t.Fatal("expected failure")
	}
	if outcome.Message != "out of stock" {
		t.Fatalf("server message must surface verbatim, got %q", outcome.Message)
	}
	if crt.cleared {
		t.Fatal("cart must be retained on failure")
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	ordersAPI := &fakeOrdersAPI{err: errors.New("timeout")}
	crt := &fakeCart{lines: oneLine()}
	o := New(ordersAPI, fakeAuth{authed: true}, crt, testLogger())

	outcome, err := o.Submit(context.Background(), Selection{ShippingAddressID: 1, BillingAddressID: 2})
	if err != nil {
		t.Fatalf("transport failures are normalized into the outcome, got %v", err)
	}
	if outcome.Success || outcome.Message == "" {
		t.Fatalf("expected failed outcome with message, got %+v", outcome)
	}
	if crt.cleared {
		t.Fatal("cart must be retained on failure")
	}
}
