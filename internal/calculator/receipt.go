// Package calculator computes receipt totals and validates payments.
// It is pure: it has no side effects and produces exactly the values
// the store persists.
package calculator

import (
	"errors"

	"github.com/olchaban/receipts/internal/models"
)

var (
	// ErrNoItemsPurchased means every requested item had a
	// non-positive quantity.
	ErrNoItemsPurchased = errors.New("no products were bought")

	// ErrInsufficientPayment means the tendered amount is below the
	// computed total.
	ErrInsufficientPayment = errors.New("insufficient payment")
)

// Item is one requested purchase line.
type Item struct {
	Name     string
	Price    float64
	Quantity int64
}

// Payment is the payment submitted with a purchase request.
type Payment struct {
	Type   models.PaymentType
	Amount float64
}

// Policy controls how cashless payments are recorded.
type Policy struct {
	// CashlessUsesTendered makes the caller-supplied amount
	// authoritative for cashless payments, validated for sufficiency
	// like cash. When false the recorded amount is the computed total
	// and the supplied amount is ignored.
	CashlessUsesTendered bool
}

// Result is the outcome of a validated purchase request.
type Result struct {
	// Items are the requested items with positive quantities, in
	// request order.
	Items []Item

	// Total is the sum of price*quantity over Items.
	Total float64

	// PaymentAmount is the amount to record on the receipt.
	PaymentAmount float64

	// Rest is the change due back, PaymentAmount - Total.
	Rest float64
}

// Compute filters the requested items, sums the total and validates
// the payment.
//
// Items with quantity <= 0 are dropped; if nothing remains the request
// fails with ErrNoItemsPurchased. Cash payments must tender at least
// the total or the request fails with ErrInsufficientPayment. Cashless
// payments record the total itself unless the policy says otherwise.
func Compute(items []Item, payment Payment, policy Policy) (*Result, error) {
	valid := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoItemsPurchased
	}

	var total float64
	for _, item := range valid {
		total += item.Price * float64(item.Quantity)
	}

	amount := payment.Amount
	if payment.Type == models.PaymentCashless && !policy.CashlessUsesTendered {
		amount = total
	} else if amount < total {
		return nil, ErrInsufficientPayment
	}

	return &Result{
		Items:         valid,
		Total:         total,
		PaymentAmount: amount,
		Rest:          amount - total,
	}, nil
}
