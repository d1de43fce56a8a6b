package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

const testTaxRateBPS = 850 // 8.5%

func testDraft() *Draft {
	return &Draft{
		PatientID:   uuid.New(),
		InvoiceDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Items: []DraftItem{
			{ID: uuid.New(), Description: "Physical therapy session", Quantity: 2, UnitPrice: money.FromMinor(4500)},
			{ID: uuid.New(), Description: "Initial assessment", Quantity: 1, UnitPrice: money.FromMinor(3500)},
		},
	}
}

func TestComputeTotals(t *testing.T) {
	d := testDraft()

	totals, err := d.ComputeTotals(testTaxRateBPS)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	// 2 x $45.00 + 1 x $35.00 = $125.00; 8.5% tax on $125.00 is $10.625,
	// rounded half up to $10.63.
	if totals.Subtotal != 12500 {
		t.Errorf("subtotal = %d, want 12500", totals.Subtotal)
	}
	if totals.TaxAmount != 1063 {
		t.Errorf("tax = %d, want 1063", totals.TaxAmount)
	}
	if totals.Total != 13563 {
		t.Errorf("total = %d, want 13563", totals.Total)
	}
	if totals.Total != totals.Subtotal.Add(totals.TaxAmount) {
		t.Error("total must equal subtotal + tax")
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	d := testDraft()
	first, err := d.ComputeTotals(testTaxRateBPS)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	second, err := d.ComputeTotals(testTaxRateBPS)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if first != second {
		t.Errorf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsZeroRate(t *testing.T) {
	d := testDraft()
	totals, err := d.ComputeTotals(0)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if totals.TaxAmount != 0 {
		t.Errorf("tax at 0%% = %d, want 0", totals.TaxAmount)
	}
	if totals.Total != totals.Subtotal {
		t.Error("total should equal subtotal at zero rate")
	}
}

func TestDraftItemTotal(t *testing.T) {
	it := DraftItem{Quantity: 3, UnitPrice: money.FromMinor(1999)}
	got, err := it.Total()
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if got != 5997 {
		t.Errorf("total = %d, want 5997", got)
	}

	it.Quantity = 0
	if _, err := it.Total(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity should fail with ErrInvalidQuantity, got %v", err)
	}

	it.Quantity = 1
	it.UnitPrice = money.FromMinor(-100)
	if _, err := it.Total(); !errors.Is(err, money.ErrInvalidAmount) {
		t.Errorf("negative price should fail with ErrInvalidAmount, got %v", err)
	}
}

func TestAddItemDefaults(t *testing.T) {
	d := testDraft()
	it := d.AddItem()
	if it.Quantity != 1 {
		t.Errorf("new item quantity = %d, want 1", it.Quantity)
	}
	if !it.ServiceDate.Equal(d.InvoiceDate) {
		t.Errorf("new item service date = %v, want invoice date %v", it.ServiceDate, d.InvoiceDate)
	}
	if len(d.Items) != 3 {
		t.Errorf("draft has %d items, want 3", len(d.Items))
	}
}

func TestRemoveItem(t *testing.T) {
	d := testDraft()
	target := d.Items[0].ID

	if err := d.RemoveItem(target); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(d.Items) != 1 {
		t.Fatalf("draft has %d items, want 1", len(d.Items))
	}

	if err := d.RemoveItem(d.Items[0].ID); !errors.Is(err, ErrLastItem) {
		t.Errorf("removing last item should fail with ErrLastItem, got %v", err)
	}
	if len(d.Items) != 1 {
		t.Error("failed removal must leave the draft unchanged")
	}

	d.Items = append(d.Items, DraftItem{ID: uuid.New(), Description: "x", Quantity: 1})
	if err := d.RemoveItem(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("removing unknown item should fail with ErrNotFound, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	wantCode := func(t *testing.T, err error, code string) {
		t.Helper()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if ve.Code != code {
			t.Errorf("code = %q, want %q", ve.Code, code)
		}
	}

	t.Run("valid draft passes", func(t *testing.T) {
		if err := testDraft().Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("missing patient", func(t *testing.T) {
		d := testDraft()
		d.PatientID = uuid.Nil
		wantCode(t, d.Validate(), CodeMissingPatient)
	})

	t.Run("no line items", func(t *testing.T) {
		d := testDraft()
		d.Items = nil
		wantCode(t, d.Validate(), CodeNoLineItems)
	})

	t.Run("submitting as sent is allowed", func(t *testing.T) {
		d := testDraft()
		d.Status = StatusSent
		if err := d.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("submitting as paid is rejected", func(t *testing.T) {
		d := testDraft()
		d.Status = StatusPaid
		wantCode(t, d.Validate(), CodeInvalidStatus)
	})

	t.Run("due date before invoice date", func(t *testing.T) {
		d := testDraft()
		d.DueDate = d.InvoiceDate.AddDate(0, 0, -1)
		wantCode(t, d.Validate(), CodeInvalidDueDate)
	})

	t.Run("empty description names the line", func(t *testing.T) {
		d := testDraft()
		d.Items[1].Description = ""
		err := d.Validate()
		wantCode(t, err, CodeEmptyDescription)
		if want := "line item 2 is missing a description"; err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("invalid quantity surfaces", func(t *testing.T) {
		d := testDraft()
		d.Items[0].Quantity = -1
		if err := d.Validate(); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}
