package models

import "time"

// PaymentType is how a receipt was paid.
type PaymentType string

const (
	// PaymentCash is a cash payment; the tendered amount may exceed
	// the total and the difference is returned as change.
	PaymentCash PaymentType = "cash"

	// PaymentCashless is a card or other non-cash payment.
	PaymentCashless PaymentType = "cashless"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	return t == PaymentCash || t == PaymentCashless
}

// Product is a catalog entry. Products are created lazily the first
// time a (name, price) pair is purchased and are never updated or
// deleted afterwards.
type Product struct {
	// ID is the unique identifier for the product, assigned by the store.
	ID int64

	// Name is the product name as submitted by the buyer.
	Name string

	// Price is the unit price. Together with Name it identifies the
	// catalog entry: the same name at a different price is a different
	// product.
	Price float64
}

// LineItem associates a receipt with a catalog product and a purchased
// quantity. Quantity is always positive; non-positive entries are
// filtered out before a receipt is persisted.
type LineItem struct {
	// ProductID references the resolved catalog entry. Zero until the
	// receipt has been persisted.
	ProductID int64

	// Name and Price mirror the catalog entry so a loaded receipt is
	// self-contained.
	Name  string
	Price float64

	// Quantity is the number of units purchased (> 0).
	Quantity int64
}

// Subtotal is the line total, price times quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// Receipt is an immutable record of one purchase transaction.
// PaymentAmount is always >= Total; the difference is the change
// ("rest") due back to the customer.
type Receipt struct {
	// ID is the unique identifier for the receipt, assigned by the store.
	ID int64

	// Total is the sum of line-item subtotals.
	Total float64

	// CreatedAt is when the receipt was created (UTC).
	CreatedAt time.Time

	// PaymentType is cash or cashless.
	PaymentType PaymentType

	// PaymentAmount is the recorded payment. For cash this is the
	// tendered amount; for cashless it equals Total under the default
	// policy.
	PaymentAmount float64

	// UserID is the owning user.
	UserID int64

	// OwnerUsername is populated on reads for display purposes.
	OwnerUsername string

	// Items are the line items in stored order.
	Items []LineItem
}

// Rest is the change due back to the customer.
func (r *Receipt) Rest() float64 {
	return r.PaymentAmount - r.Total
}

// ReceiptFilter narrows a receipt listing. All set predicates are
// combined with AND. Nil pointer fields and the empty payment type
// mean "no constraint".
type ReceiptFilter struct {
	// StartDate keeps receipts created at or after this time.
	StartDate *time.Time

	// EndDate keeps receipts created at or before this time.
	EndDate *time.Time

	// MinTotal keeps receipts with a total >= this value.
	MinTotal *float64

	// PaymentType keeps receipts with this payment type.
	PaymentType PaymentType

	// Skip is the number of matching records to skip before Limit
	// applies.
	Skip int

	// Limit caps the page size.
	Limit int
}
