package reporting

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/internal/domain/billing"
	"github.com/fetch46/care-coord-suite/pkg/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invoiceOn(date time.Time, status string, total money.Money) *billing.Invoice {
	return &billing.Invoice{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		InvoiceDate: date,
		TotalAmount: total,
		Status:      status,
	}
}

func TestRevenueByPeriod(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 6, 30)

	invoices := []*billing.Invoice{
		invoiceOn(day(2025, 1, 10), billing.StatusPaid, 10000),
		invoiceOn(day(2025, 1, 20), billing.StatusPaid, 5000),
		invoiceOn(day(2025, 1, 25), billing.StatusSent, 99999), // unpaid, no revenue
		invoiceOn(day(2025, 3, 5), billing.StatusPaid, 20000),
		invoiceOn(day(2025, 8, 1), billing.StatusPaid, 77777), // outside range
	}
	expenses := []*Expense{
		{ExpenseDate: day(2025, 1, 15), Category: CategoryRent, Amount: 3000},
		{ExpenseDate: day(2025, 4, 2), Category: CategorySupplies, Amount: 1200},
		{ExpenseDate: day(2025, 7, 2), Category: CategoryRent, Amount: 3000}, // outside range
	}

	rows := RevenueByPeriod(invoices, expenses, start, end)

	if len(rows) != 3 {
		t.Fatalf("got %d buckets, want 3 (only months with activity)", len(rows))
	}
	if rows[0].Period != "2025-01" || rows[1].Period != "2025-03" || rows[2].Period != "2025-04" {
		t.Errorf("buckets out of order: %s, %s, %s", rows[0].Period, rows[1].Period, rows[2].Period)
	}

	jan := rows[0]
	if jan.Revenue != 15000 {
		t.Errorf("january revenue = %d, want 15000", jan.Revenue)
	}
	if jan.Expenses != 3000 {
		t.Errorf("january expenses = %d, want 3000", jan.Expenses)
	}
	if jan.Profit != 12000 {
		t.Errorf("january profit = %d, want 12000", jan.Profit)
	}

	// March has revenue only, April expenses only.
	if rows[1].Revenue != 20000 || rows[1].Expenses != 0 {
		t.Errorf("march = %+v", rows[1])
	}
	if rows[2].Revenue != 0 || rows[2].Expenses != 1200 || rows[2].Profit != -1200 {
		t.Errorf("april = %+v", rows[2])
	}
}

func TestRevenueByPeriodEmpty(t *testing.T) {
	rows := RevenueByPeriod(nil, nil, day(2025, 1, 1), day(2025, 12, 31))
	if len(rows) != 0 {
		t.Errorf("empty inputs should produce no buckets, got %d", len(rows))
	}
}

func TestRevenueByPeriodIdempotent(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 6, 30)
	invoices := []*billing.Invoice{
		invoiceOn(day(2025, 2, 1), billing.StatusPaid, 10000),
	}

	first := RevenueByPeriod(invoices, nil, start, end)
	second := RevenueByPeriod(invoices, nil, start, end)
	if len(first) != len(second) || *first[0] != *second[0] {
		t.Error("re-running the fold on the same snapshot diverged")
	}
}

func TestRevenueByPatient(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 12, 31)
	jane := uuid.New()
	names := map[uuid.UUID]string{jane: "Jane Doe"}

	paid := invoiceOn(day(2025, 2, 1), billing.StatusPaid, 10000)
	paid.PatientID = jane
	sent := invoiceOn(day(2025, 3, 1), billing.StatusSent, 5000)
	sent.PatientID = jane

	rows := RevenueByPatient([]*billing.Invoice{paid, sent}, names, start, end)

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.PatientName != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", row.PatientName)
	}
	if row.TotalRevenue != 10000 {
		t.Errorf("revenue = %d, want 10000", row.TotalRevenue)
	}
	if row.Outstanding != 5000 {
		t.Errorf("outstanding = %d, want 5000", row.Outstanding)
	}
	if row.InvoiceCount != 2 {
		t.Errorf("invoice count = %d, want 2", row.InvoiceCount)
	}
}

func TestRevenueByPatientStatuses(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 12, 31)
	pid := uuid.New()

	var invoices []*billing.Invoice
	for _, status := range []string{
		billing.StatusDraft, billing.StatusSent, billing.StatusPaid,
		billing.StatusOverdue, billing.StatusCancelled,
	} {
		inv := invoiceOn(day(2025, 5, 1), status, 1000)
		inv.PatientID = pid
		invoices = append(invoices, inv)
	}

	rows := RevenueByPatient(invoices, nil, start, end)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.InvoiceCount != 5 {
		t.Errorf("count = %d, want 5 (all statuses counted)", row.InvoiceCount)
	}
	if row.TotalRevenue != 1000 {
		t.Errorf("revenue = %d, want 1000 (paid only)", row.TotalRevenue)
	}
	// Outstanding covers sent and overdue; draft and cancelled contribute
	// to neither sum.
	if row.Outstanding != 2000 {
		t.Errorf("outstanding = %d, want 2000", row.Outstanding)
	}
}

func TestRevenueByPatientOrdering(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 12, 31)
	big, small := uuid.New(), uuid.New()
	names := map[uuid.UUID]string{big: "Big Spender", small: "Small Spender"}

	bigInv := invoiceOn(day(2025, 2, 1), billing.StatusPaid, 50000)
	bigInv.PatientID = big
	smallInv := invoiceOn(day(2025, 2, 1), billing.StatusPaid, 100)
	smallInv.PatientID = small

	rows := RevenueByPatient([]*billing.Invoice{smallInv, bigInv}, names, start, end)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].PatientName != "Big Spender" {
		t.Errorf("rows should be sorted by revenue desc, got %q first", rows[0].PatientName)
	}
}

func TestRangeBoundariesInclusive(t *testing.T) {
	start, end := day(2025, 1, 1), day(2025, 1, 31)
	invoices := []*billing.Invoice{
		invoiceOn(start, billing.StatusPaid, 100),
		invoiceOn(end, billing.StatusPaid, 200),
		invoiceOn(end.AddDate(0, 0, 1), billing.StatusPaid, 400),
	}
	rows := RevenueByPeriod(invoices, nil, start, end)
	if len(rows) != 1 || rows[0].Revenue != 300 {
		t.Errorf("boundary days should be included, got %+v", rows)
	}
}
