package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// PackSize is one size/packaging variant of a product. Its ID is what the
// backend expects on order items.
type PackSize struct {
	ID    int64           `json:"id"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// Product is a reference-catalog entry used to enrich cart lines and build
// wishlist entries.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	NameEn      string          `json:"name_en"`
	CategoryID  int64           `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	Description string          `json:"description,omitempty"`
	Sizes       []PackSize      `json:"sizes,omitempty"`
}

// CartLine is one product entry in the cart. Quantity is always >= 1; a line
// that would reach zero is removed instead.
type CartLine struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	NameEn     string          `json:"name_en,omitempty"`
	CategoryID int64           `json:"category_id,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Image      string          `json:"image,omitempty"`
	SizeLabel  string          `json:"size_label,omitempty"`
	PackSizeID int64           `json:"pack_size_id,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type WishlistEntry struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	NameEn      string          `json:"name_en,omitempty"`
	CategoryID  int64           `json:"category_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Address is a read-only projection of a server-owned record. It is always
// referenced by ID, never duplicated locally.
type Address struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// ResolvePaymentMethod maps a user-facing payment choice onto the backend
// vocabulary: "card" stays card, everything else is cash on delivery.
func ResolvePaymentMethod(raw string) PaymentMethod {
	if raw == string(PaymentCard) {
		return PaymentCard
	}
	return PaymentCashOnDelivery
}

type OrderItem struct {
	ProductID  int64 `json:"product_id"`
	PackSizeID int64 `json:"pack_size_id"`
	Quantity   int   `json:"quantity"`
}

// OrderSubmission is built fresh per checkout attempt and immutable once
// sent.
type OrderSubmission struct {
	ShippingAddressID int64         `json:"shipping_address_id"`
	BillingAddressID  int64         `json:"billing_address_id"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	Items             []OrderItem   `json:"items"`
}

type OrderPayment struct {
	Method           string `json:"method"`
	CardNumberMasked string `json:"card_number_masked,omitempty"`
}

// OrderLine is a normalized order item as displayed.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderRecord is the normalized view of a server order payload. It is derived
// at read time and never cached beyond the viewing session.
type OrderRecord struct {
	ID             string          `json:"id"`
	OrderID        int64           `json:"order_id"`
	Status         Status          `json:"status"`
	OriginalStatus string          `json:"original_status"`
	Date           time.Time       `json:"date"`
	DeliveryDate   time.Time       `json:"delivery_date"`
	Items          []OrderLine     `json:"items"`
	Address        *Address        `json:"address,omitempty"`
	Payment        OrderPayment    `json:"payment"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	TransactionID  string          `json:"transaction_id,omitempty"`
}
