package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

// Invoice statuses.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment methods.
const (
	MethodCash         = "cash"
	MethodCheck        = "check"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodInsurance    = "insurance"
)

var validInvoiceStatuses = map[string]bool{
	StatusDraft: true, StatusSent: true, StatusPaid: true,
	StatusOverdue: true, StatusCancelled: true,
}

var validPaymentStatuses = map[string]bool{
	PaymentPending: true, PaymentCompleted: true,
	PaymentFailed: true, PaymentRefunded: true,
}

var validPaymentMethods = map[string]bool{
	MethodCash: true, MethodCheck: true, MethodCard: true,
	MethodBankTransfer: true, MethodInsurance: true,
}

// LineItem maps to the invoice_line_item table. Total is always derived
// from Quantity and UnitPrice, never edited independently.
type LineItem struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	InvoiceID   uuid.UUID   `db:"invoice_id" json:"invoice_id"`
	Sequence    int         `db:"sequence" json:"sequence"`
	Description string      `db:"description" json:"description"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   money.Money `db:"unit_price" json:"unit_price"`
	ServiceDate time.Time   `db:"service_date" json:"service_date"`
	Total       money.Money `db:"total" json:"total"`
}

// Invoice maps to the invoice table. Amounts are minor units. The invoice
// exclusively owns its line items; deleting it cascades to them.
type Invoice struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	InvoiceNumber string      `db:"invoice_number" json:"invoice_number"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	InvoiceDate   time.Time   `db:"invoice_date" json:"invoice_date"`
	DueDate       time.Time   `db:"due_date" json:"due_date"`
	Subtotal      money.Money `db:"subtotal" json:"subtotal"`
	TaxAmount     money.Money `db:"tax_amount" json:"tax_amount"`
	TotalAmount   money.Money `db:"total_amount" json:"total_amount"`
	Status        string      `db:"status" json:"status"`
	Notes         *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`

	LineItems []*LineItem `db:"-" json:"line_items,omitempty"`
}

// Payment maps to the payment table. A payment references its invoice but
// does not own it; an invoice can accumulate many payments.
type Payment struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	PaymentNumber   string      `db:"payment_number" json:"payment_number"`
	InvoiceID       uuid.UUID   `db:"invoice_id" json:"invoice_id"`
	PatientID       uuid.UUID   `db:"patient_id" json:"patient_id"`
	Amount          money.Money `db:"amount" json:"amount"`
	PaymentDate     time.Time   `db:"payment_date" json:"payment_date"`
	Method          string      `db:"method" json:"payment_method"`
	Status          string      `db:"status" json:"status"`
	ReferenceNumber *string     `db:"reference_number" json:"reference_number,omitempty"`
	Notes           *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// InvoiceNumber formats a human-readable invoice number, e.g.
// InvoiceNumber(2025, time.June, 7) == "INV-202506-007". Sequence values
// are allocated atomically by the sequence repository; this only defines
// the format.
func InvoiceNumber(year int, month time.Month, seq int) string {
	return fmt.Sprintf("INV-%04d%02d-%03d", year, int(month), seq)
}

// PaymentNumber formats a payment number, e.g. "PAY-202506-001".
func PaymentNumber(year int, month time.Month, seq int) string {
	return fmt.Sprintf("PAY-%04d%02d-%03d", year, int(month), seq)
}

// IsOverdue reports whether the invoice should be considered overdue as of
// the given date. Paid and cancelled invoices never go overdue.
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if inv.Status == StatusPaid || inv.Status == StatusCancelled {
		return false
	}
	y1, m1, d1 := inv.DueDate.Date()
	y2, m2, d2 := asOf.Date()
	due := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return today.After(due)
}
