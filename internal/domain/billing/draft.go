package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

// Draft is an in-memory invoice under construction. All draft operations
// are pure: they mutate only the draft, never storage.
type Draft struct {
	PatientID   uuid.UUID   `json:"patient_id"`
	InvoiceDate time.Time   `json:"invoice_date"`
	DueDate     time.Time   `json:"due_date"`
	Notes       string      `json:"notes"`
	Status      string      `json:"status"`
	Items       []DraftItem `json:"items"`
}

// SubmitStatus resolves the status the draft is submitted with. Only draft
// and sent are valid submission targets; empty means draft.
func (d *Draft) SubmitStatus() (string, error) {
	switch d.Status {
	case "", StatusDraft:
		return StatusDraft, nil
	case StatusSent:
		return StatusSent, nil
	}
	return "", invalidSubmitStatusErr(d.Status)
}

// DraftItem is one line of a draft. Its total is computed on demand, never
// stored, so quantity/price edits can never leave a stale total behind.
type DraftItem struct {
	ID          uuid.UUID   `json:"id"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	ServiceDate time.Time   `json:"service_date"`
}

// Total computes quantity × unit price in integer minor units.
func (it DraftItem) Total() (money.Money, error) {
	if it.Quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if it.UnitPrice < 0 {
		return 0, money.ErrInvalidAmount
	}
	return it.UnitPrice.MulQty(it.Quantity)
}

// AddItem appends a zero-valued line item and returns it.
func (d *Draft) AddItem() *DraftItem {
	d.Items = append(d.Items, DraftItem{
		ID:          uuid.New(),
		Quantity:    1,
		ServiceDate: d.InvoiceDate,
	})
	return &d.Items[len(d.Items)-1]
}

// RemoveItem deletes the identified line item. Removing the last remaining
// item fails with ErrLastItem and leaves the draft unchanged.
func (d *Draft) RemoveItem(itemID uuid.UUID) error {
	if len(d.Items) <= 1 {
		return ErrLastItem
	}
	for i, it := range d.Items {
		if it.ID == itemID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Totals holds the derived amounts of a draft or invoice.
type Totals struct {
	Subtotal  money.Money `json:"subtotal"`
	TaxAmount money.Money `json:"tax_amount"`
	Total     money.Money `json:"total_amount"`
}

// ComputeTotals derives subtotal, tax and total for the draft at the given
// tax rate (basis points). Deterministic and side-effect free: calling it
// twice on the same draft yields identical results.
func (d *Draft) ComputeTotals(taxRateBPS int64) (Totals, error) {
	var subtotal money.Money
	for _, it := range d.Items {
		t, err := it.Total()
		if err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(t)
	}

	tax, err := money.Percentage(subtotal, taxRateBPS)
	if err != nil {
		return Totals{}, err
	}

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}, nil
}

// Validate checks the draft is ready to submit: a patient is selected,
// every line item has a description, at least one item exists, and the due
// date does not precede the invoice date.
func (d *Draft) Validate() error {
	if d.PatientID == uuid.Nil {
		return missingPatientErr()
	}
	if _, err := d.SubmitStatus(); err != nil {
		return err
	}
	if len(d.Items) == 0 {
		return noLineItemsErr()
	}
	if !d.DueDate.IsZero() && d.DueDate.Before(d.InvoiceDate) {
		return invalidDueDateErr()
	}
	for i, it := range d.Items {
		if it.Description == "" {
			return emptyDescriptionErr(i + 1)
		}
		if _, err := it.Total(); err != nil {
			return err
		}
	}
	return nil
}
