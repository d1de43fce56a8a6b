package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

// TxRunner executes fn inside a database transaction. The pg wiring uses
// db.WithTx; tests substitute a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	invoices   InvoiceRepository
	payments   PaymentRepository
	sequences  SequenceRepository
	tx         TxRunner
	taxRateBPS int64
	now        func() time.Time
}

func NewService(inv InvoiceRepository, pay PaymentRepository, seq SequenceRepository, tx TxRunner, taxRateBPS int64) *Service {
	return &Service{
		invoices:   inv,
		payments:   pay,
		sequences:  seq,
		tx:         tx,
		taxRateBPS: taxRateBPS,
		now:        time.Now,
	}
}

// TaxRateBPS returns the tax rate the service applies, in basis points.
func (s *Service) TaxRateBPS() int64 { return s.taxRateBPS }

// PreviewTotals computes a draft's subtotal, tax and total without
// persisting anything.
func (s *Service) PreviewTotals(d *Draft) (Totals, error) {
	return d.ComputeTotals(s.taxRateBPS)
}

// CreateInvoice validates the draft, computes its totals, allocates the
// next invoice number for the submission month and persists the invoice
// with its line items, in the draft's requested status (draft or sent).
// Number allocation and the insert share one
// transaction, so a failed insert never burns a number for a committed
// invoice; a unique-index race surfaces as ErrNumberConflict and the
// caller may retry.
func (s *Service) CreateInvoice(ctx context.Context, d *Draft) (*Invoice, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	totals, err := d.ComputeTotals(s.taxRateBPS)
	if err != nil {
		return nil, err
	}
	status, err := d.SubmitStatus()
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoiceDate := d.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = now
	}
	dueDate := d.DueDate
	if dueDate.IsZero() {
		dueDate = invoiceDate.AddDate(0, 0, 30)
	}

	inv := &Invoice{
		ID:          uuid.New(),
		PatientID:   d.PatientID,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		TotalAmount: totals.Total,
		Status:      status,
	}
	if d.Notes != "" {
		notes := d.Notes
		inv.Notes = &notes
	}
	for i, it := range d.Items {
		total, err := it.Total()
		if err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, &LineItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Sequence:    i + 1,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ServiceDate: it.ServiceDate,
			Total:       total,
		})
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		seq, err := s.sequences.Next(ctx, SeqInvoice, now.Year(), now.Month())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = InvoiceNumber(now.Year(), now.Month(), seq)
		return s.invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.invoices.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (s *Service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	items, err := s.invoices.GetLineItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (s *Service) ListInvoicesByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) SearchInvoices(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.Search(ctx, params, limit, offset)
}

// SendInvoice transitions a draft invoice to sent.
func (s *Service) SendInvoice(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusDraft {
			return &ValidationError{Code: "invalid_transition", Message: "only draft invoices can be sent"}
		}
		return s.invoices.UpdateStatus(ctx, id, StatusSent)
	})
}

// CancelInvoice marks an invoice cancelled. Cancellation is terminal and
// refused on paid or already cancelled invoices.
func (s *Service) CancelInvoice(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == StatusPaid || inv.Status == StatusCancelled {
			return ErrInvoiceClosed
		}
		return s.invoices.UpdateStatus(ctx, id, StatusCancelled)
	})
}

// MarkOverdueInvoices sweeps invoices past their due date into overdue and
// returns how many changed. Intended to run once a day. The cutoff is the
// sweep's calendar date, not its timestamp: an invoice due today is not
// overdue until tomorrow, matching Invoice.IsOverdue.
func (s *Service) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	y, m, d := s.now().Date()
	return s.invoices.MarkOverdue(ctx, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// InvoiceBalance returns the amount still owed on an invoice.
func (s *Service) InvoiceBalance(ctx context.Context, id uuid.UUID) (money.Money, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	payments, err := s.payments.ListByInvoice(ctx, id)
	if err != nil {
		return 0, err
	}
	return Balance(inv, payments), nil
}

// RecordPaymentRequest carries the client-supplied fields of a payment.
type RecordPaymentRequest struct {
	InvoiceID       uuid.UUID   `json:"invoice_id"`
	Amount          money.Money `json:"amount"`
	PaymentDate     time.Time   `json:"payment_date"`
	Method          string      `json:"payment_method"`
	Status          string      `json:"status"`
	ReferenceNumber *string     `json:"reference_number"`
	Notes           *string     `json:"notes"`
}

// RecordPayment applies a payment to its invoice. The invoice row is
// locked for the duration of the transaction so the overpayment check and
// the status change see a consistent snapshot even under concurrent
// submissions against the same invoice.
func (s *Service) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*Payment, error) {
	now := s.now()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	var recorded *Payment
	err := s.tx(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.LockForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status == StatusCancelled {
			return ErrInvoiceClosed
		}
		existing, err := s.payments.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}

		p := &Payment{
			ID:              uuid.New(),
			InvoiceID:       inv.ID,
			PatientID:       inv.PatientID,
			Amount:          req.Amount,
			PaymentDate:     paymentDate,
			Method:          req.Method,
			Status:          req.Status,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		}
		updated, applied, err := ApplyPayment(inv, existing, p)
		if err != nil {
			return err
		}

		seq, err := s.sequences.Next(ctx, SeqPayment, now.Year(), now.Month())
		if err != nil {
			return err
		}
		applied.PaymentNumber = PaymentNumber(now.Year(), now.Month(), seq)

		if err := s.payments.Create(ctx, applied); err != nil {
			return err
		}
		if updated.Status != inv.Status {
			if err := s.invoices.UpdateStatus(ctx, inv.ID, updated.Status); err != nil {
				return err
			}
		}
		recorded = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// RefundPayment reverses a completed payment and re-derives the owning
// invoice's status from the remaining completed payments. A paid invoice
// whose coverage drops below its total reverts to sent.
func (s *Service) RefundPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	var refunded *Payment
	err := s.tx(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err := s.invoices.LockForUpdate(ctx, p.InvoiceID)
		if err != nil {
			return err
		}

		reversed, err := ReversePayment(p)
		if err != nil {
			return err
		}
		if err := s.payments.UpdateStatus(ctx, reversed.ID, reversed.Status); err != nil {
			return err
		}

		payments, err := s.payments.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		for i, cur := range payments {
			if cur.ID == reversed.ID {
				payments[i] = reversed
			}
		}
		if next := RecomputeStatus(inv, payments); next != inv.Status {
			if err := s.invoices.UpdateStatus(ctx, inv.ID, next); err != nil {
				return err
			}
		}
		refunded = reversed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return s.payments.ListByInvoice(ctx, invoiceID)
}

func (s *Service) ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.payments.ListByPatient(ctx, patientID, limit, offset)
}
