package reporting

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/internal/domain/billing"
)

// The aggregations below are pure folds over invoice/expense snapshots:
// no hidden state, fully re-computable at any time, so a report can be
// re-run after data corrections and come out consistent.

func periodKey(t time.Time) string {
	return t.Format("2006-01")
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// RevenueByPeriod buckets paid-invoice revenue and expenses by calendar
// month over [start, end]. Revenue counts invoices by invoice date, not
// payment date, so a report for a closed period is stable once its
// invoices settle. Only months with at least one contributing invoice or
// expense are emitted, in chronological order.
func RevenueByPeriod(invoices []*billing.Invoice, expenses []*Expense, start, end time.Time) []*PeriodSummary {
	buckets := make(map[string]*PeriodSummary)
	bucket := func(key string) *PeriodSummary {
		b, ok := buckets[key]
		if !ok {
			b = &PeriodSummary{Period: key}
			buckets[key] = b
		}
		return b
	}

	for _, inv := range invoices {
		if inv.Status != billing.StatusPaid || !inRange(inv.InvoiceDate, start, end) {
			continue
		}
		b := bucket(periodKey(inv.InvoiceDate))
		b.Revenue = b.Revenue.Add(inv.TotalAmount)
	}
	for _, e := range expenses {
		if !inRange(e.ExpenseDate, start, end) {
			continue
		}
		b := bucket(periodKey(e.ExpenseDate))
		b.Expenses = b.Expenses.Add(e.Amount)
	}

	result := make([]*PeriodSummary, 0, len(buckets))
	for _, b := range buckets {
		b.Profit = b.Revenue.Sub(b.Expenses)
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result
}

// RevenueByPatient rolls up invoices per patient over [start, end].
// Revenue counts paid invoices; outstanding counts sent and overdue ones;
// the invoice count includes every status. Names are resolved through the
// supplied lookup and rows come back sorted by revenue, highest first.
func RevenueByPatient(invoices []*billing.Invoice, names map[uuid.UUID]string, start, end time.Time) []*PatientRevenue {
	byPatient := make(map[uuid.UUID]*PatientRevenue)
	for _, inv := range invoices {
		if !inRange(inv.InvoiceDate, start, end) {
			continue
		}
		row, ok := byPatient[inv.PatientID]
		if !ok {
			row = &PatientRevenue{PatientID: inv.PatientID, PatientName: names[inv.PatientID]}
			byPatient[inv.PatientID] = row
		}
		row.InvoiceCount++
		switch inv.Status {
		case billing.StatusPaid:
			row.TotalRevenue = row.TotalRevenue.Add(inv.TotalAmount)
		case billing.StatusSent, billing.StatusOverdue:
			row.Outstanding = row.Outstanding.Add(inv.TotalAmount)
		}
	}

	result := make([]*PatientRevenue, 0, len(byPatient))
	for _, row := range byPatient {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalRevenue != result[j].TotalRevenue {
			return result[i].TotalRevenue > result[j].TotalRevenue
		}
		return result[i].PatientName < result[j].PatientName
	})
	return result
}
