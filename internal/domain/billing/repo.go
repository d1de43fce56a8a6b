package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	// Create persists the invoice and its line items.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	// LockForUpdate loads the invoice with a row lock so a payment can be
	// reconciled against a consistent snapshot.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error)
	// MarkOverdue flips every invoice past its due date (excluding paid and
	// cancelled) to overdue and returns the number affected.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error)
}

// SequenceRepository hands out document numbers. Next must be atomic under
// concurrent callers: two submissions in the same (kind, year, month)
// bucket never observe the same value.
type SequenceRepository interface {
	Next(ctx context.Context, kind string, year int, month time.Month) (int, error)
}

// Sequence kinds.
const (
	SeqInvoice = "invoice"
	SeqPayment = "payment"
)
