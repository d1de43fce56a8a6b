package billing

import (
	"github.com/fetch46/care-coord-suite/pkg/money"
)

// PaidToDate sums the completed payments against an invoice. Pending,
// failed and refunded payments do not count toward settlement.
func PaidToDate(payments []*Payment) money.Money {
	var sum money.Money
	for _, p := range payments {
		if p.Status == PaymentCompleted {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Balance returns the amount still owed on the invoice given a snapshot of
// its payments.
func Balance(inv *Invoice, payments []*Payment) money.Money {
	return inv.TotalAmount.Sub(PaidToDate(payments))
}

// ApplyPayment reconciles a new payment against an invoice and its
// existing payments. It is a pure function of its inputs: the caller must
// supply a consistent, locked snapshot of existing payments and is
// responsible for persisting the returned records.
//
// A completed payment that would push the completed total past the invoice
// amount fails with OverpaymentError; healthcare billing needs an
// auditable refund or credit path instead of a silent clamp. A completed
// payment that covers the invoice exactly flips it to paid; anything less
// leaves the prior status untouched. Non-completed payments (pending,
// failed, refunded) never change the invoice.
func ApplyPayment(inv *Invoice, existing []*Payment, p *Payment) (*Invoice, *Payment, error) {
	if p.Amount <= 0 {
		return nil, nil, money.ErrInvalidAmount
	}
	if p.Status == "" {
		p.Status = PaymentCompleted
	}
	if !validPaymentStatuses[p.Status] {
		return nil, nil, &ValidationError{Code: "invalid_status", Message: "invalid payment status: " + p.Status}
	}
	if p.Method != "" && !validPaymentMethods[p.Method] {
		return nil, nil, &ValidationError{Code: "invalid_method", Message: "invalid payment method: " + p.Method}
	}

	updated := *inv
	applied := *p
	applied.InvoiceID = inv.ID
	applied.PatientID = inv.PatientID

	if applied.Status == PaymentCompleted {
		paid := PaidToDate(existing)
		newTotal := paid.Add(applied.Amount)
		if newTotal > inv.TotalAmount {
			return nil, nil, &OverpaymentError{Excess: newTotal.Sub(inv.TotalAmount)}
		}
		if newTotal == inv.TotalAmount {
			updated.Status = StatusPaid
		}
	}

	return &updated, &applied, nil
}

// ReversePayment transitions a completed payment to refunded. The caller
// must re-derive the owning invoice's status with RecomputeStatus using a
// payment snapshot that reflects the reversal.
func ReversePayment(p *Payment) (*Payment, error) {
	if p.Status != PaymentCompleted {
		return nil, ErrNotReversible
	}
	reversed := *p
	reversed.Status = PaymentRefunded
	return &reversed, nil
}

// RecomputeStatus derives an invoice's status from a payment snapshot, the
// inverse of ApplyPayment's forward derivation. A fully covered invoice is
// paid; a previously paid invoice that lost coverage reverts to sent.
// Cancelled stays terminal and non-paid statuses are left alone.
func RecomputeStatus(inv *Invoice, payments []*Payment) string {
	if inv.Status == StatusCancelled {
		return StatusCancelled
	}
	if PaidToDate(payments) >= inv.TotalAmount {
		return StatusPaid
	}
	if inv.Status == StatusPaid {
		return StatusSent
	}
	return inv.Status
}
