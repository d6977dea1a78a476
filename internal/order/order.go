// Package order reconstructs display-ready order records from raw backend
// payloads: fixed status vocabulary, defensively recomputed subtotal and a
// best-effort address backfill. Soft failures degrade the record instead of
// failing the read.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"storefront-client/internal/api"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
	"storefront-client/internal/normalize"
)

const msgRequestFailed = "request failed, please try again"

// API is the slice of the backend client the order service needs.
type API interface {
	Orders(ctx context.Context) (*api.Response, error)
	Order(ctx context.Context, id string) (*api.Response, error)
	CancelOrder(ctx context.Context, id string) (*api.Response, error)
	Addresses(ctx context.Context) (*api.Response, error)
}

// Warning records a soft failure: the read went through but some part of
// the record degraded (e.g. the address backfill fetch failed).
type Warning struct {
	Op  string
	Err error
}

// LoadResult distinguishes the hard-failure path (an error from Get) from
// soft degradation carried as warnings on an otherwise usable record.
type LoadResult struct {
	Order    model.OrderRecord
	Warnings []Warning
}

type Service struct {
	api     API
	baseURL string
	log     *slog.Logger
}

func New(ordersAPI API, baseURL string, log *slog.Logger) *Service {
	return &Service{api: ordersAPI, baseURL: baseURL, log: log}
}

// Get fetches and normalizes one order. The record is derived entirely from
// the payload at read time and not cached.
func (s *Service) Get(ctx context.Context, id string) (*LoadResult, error) {
	resp, err := s.api.Order(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", id, err)
	}
	if !resp.Success {
		return nil, errors.New(failMessage(resp))
	}

	raw, ok := orderPayload(resp.DataDoc())
	if !ok {
		return nil, fmt.Errorf("order %s: unexpected payload shape", id)
	}

	result := &LoadResult{Order: s.normalizeRecord(raw)}
	s.backfillAddress(ctx, raw, result)
	return result, nil
}

// List fetches the user's orders, tolerating the usual list shape variants.
func (s *Service) List(ctx context.Context) ([]model.OrderRecord, error) {
	resp, err := s.api.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	if !resp.Success {
		return nil, errors.New(failMessage(resp))
	}

	items := normalize.Items(resp.DataDoc())
	records := make([]model.OrderRecord, 0, len(items))
	for _, v := range items {
		if m, ok := normalize.AsMap(v); ok {
			records = append(records, s.normalizeRecord(m))
		}
	}
	return records, nil
}

// Cancel cancels the order and re-fetches it so any server-side side
// effects (refund status and the like) are picked up, rather than patching
// the record locally. The reason is collected for the interface but not
// transmitted; the cancellation endpoint does not take it today.
func (s *Service) Cancel(ctx context.Context, id string, reason string) (*LoadResult, dto.Result) {
	_ = reason

	resp, err := s.api.CancelOrder(ctx, id)
	if err != nil {
		s.log.Warn("cancel order", "id", id, "err", err)
		return nil, dto.Fail(msgRequestFailed)
	}
	if !resp.Success {
		return nil, dto.Fail(failMessage(resp))
	}

	refreshed, err := s.Get(ctx, id)
	if err != nil {
		s.log.Warn("refetch cancelled order", "id", id, "err", err)
		return nil, dto.OK(resp.Message)
	}
	return refreshed, dto.OK(resp.Message)
}

// normalizeRecord maps one raw order object onto the fixed record shape.
// Every field is defaulted when absent; the subtotal is recomputed from the
// normalized items rather than trusted from the payload.
func (s *Service) normalizeRecord(raw map[string]any) model.OrderRecord {
	rec := model.OrderRecord{
		ID:             normalize.Str(raw["id"]),
		OriginalStatus: normalize.Str(raw["status"]),
	}
	rec.OrderID, _ = normalize.ID(firstPresent(raw["order_id"], raw["id"]))
	rec.Status = model.NormalizeStatus(rec.OriginalStatus)
	rec.Date = parseDate(raw["created_at"], raw["date"])
	rec.DeliveryDate = parseDate(raw["delivery_date"], raw["delivered_at"])
	rec.TransactionID, _ = normalize.FirstString(raw, []normalize.Probe{
		{"transaction_id"}, {"payment", "transaction_id"},
	})

	subtotal := decimal.Zero
	for _, v := range normalize.Items(firstPresent(raw["items"], raw["products"])) {
		item, ok := normalize.AsMap(v)
		if !ok {
			continue
		}
		line := s.normalizeItem(item)
		subtotal = subtotal.Add(line.Subtotal())
		rec.Items = append(rec.Items, line)
	}
	rec.Subtotal = subtotal
	rec.Discount = normalize.Amount(raw["discount"])
	rec.DeliveryFee = normalize.Amount(firstPresent(raw["delivery_fee"], raw["shipping_fee"]))
	rec.Total = normalize.Amount(raw["total"])
	if rec.Total.IsZero() {
		rec.Total = subtotal.Sub(rec.Discount).Add(rec.DeliveryFee)
	}

	if payment, ok := normalize.AsMap(raw["payment"]); ok {
		rec.Payment = model.OrderPayment{
			Method:           normalize.Str(firstPresent(payment["method"], payment["payment_method"])),
			CardNumberMasked: normalize.Str(payment["card_number"]),
		}
	} else {
		rec.Payment = model.OrderPayment{Method: normalize.Str(raw["payment_method"])}
	}

	if addr, ok := normalize.AsMap(firstPresent(raw["shipping_address"], raw["address"])); ok {
		rec.Address = decodeAddress(addr)
	}

	return rec
}

// normalizeItem resolves one raw order item: name via the product-then-item
// fallback chain, image via the shared URL rule, quantity and price coerced
// with their defaults.
func (s *Service) normalizeItem(item map[string]any) model.OrderLine {
	product, ok := normalize.AsMap(item["product"])
	if !ok {
		product = map[string]any{}
	}

	line := model.OrderLine{
		Name:     normalize.DisplayName(product["name"], item["name"]),
		Image:    normalize.ImageURL(firstPresent(product["image"], item["image"]), s.baseURL),
		Quantity: normalize.Quantity(item["quantity"]),
		Price:    normalize.Amount(firstPresent(item["price"], product["price"])),
	}
	line.ProductID, _ = normalize.ID(firstPresent(item["product_id"], product["id"]))
	return line
}

// backfillAddress resolves the shipping address by id from the user's
// address list when the payload carries no inline detail. Failure here is
// soft: the record is returned with whatever address data it has.
func (s *Service) backfillAddress(ctx context.Context, raw map[string]any, result *LoadResult) {
	if result.Order.Address != nil {
		return
	}
	addrID, ok := normalize.ID(firstPresent(raw["shipping_address_id"], raw["address_id"]))
	if !ok || addrID == 0 {
		return
	}

	resp, err := s.api.Addresses(ctx)
	if err != nil || !resp.Success {
		if err == nil {
			err = errors.New(failMessage(resp))
		}
		s.log.Warn("address backfill", "err", err)
		result.Warnings = append(result.Warnings, Warning{Op: "address backfill", Err: err})
		return
	}

	for _, v := range normalize.Items(resp.DataDoc()) {
		m, ok := normalize.AsMap(v)
		if !ok {
			continue
		}
		if id, ok := normalize.ID(m["id"]); ok && id == addrID {
			result.Order.Address = decodeAddress(m)
			return
		}
	}

	result.Warnings = append(result.Warnings, Warning{
		Op:  "address backfill",
		Err: fmt.Errorf("address %d not found", addrID),
	})
}

func decodeAddress(m map[string]any) *model.Address {
	addr := &model.Address{
		Name:       normalize.Str(firstPresent(m["name"], m["type"])),
		City:       normalize.Str(m["city"]),
		State:      normalize.Str(m["state"]),
		Country:    normalize.Str(m["country"]),
		Address:    normalize.Str(m["address"]),
		Phone:      normalize.Str(m["phone"]),
		PostalCode: normalize.Str(m["postal_code"]),
	}
	addr.ID, _ = normalize.ID(m["id"])
	return addr
}

// orderPayload accepts the order either directly under data or nested at
// data.order.
func orderPayload(data any) (map[string]any, bool) {
	m, ok := normalize.AsMap(data)
	if !ok {
		return nil, false
	}
	if nested, ok := normalize.AsMap(m["order"]); ok {
		return nested, true
	}
	return m, true
}

func parseDate(candidates ...any) time.Time {
	for _, v := range candidates {
		s := normalize.Str(v)
		if s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func failMessage(resp *api.Response) string {
	if resp.Message != "" {
		return resp.Message
	}
	return msgRequestFailed
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
