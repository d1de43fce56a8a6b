package reporting

import (
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/pkg/money"
)

// Expense categories.
const (
	CategorySupplies  = "supplies"
	CategoryPayroll   = "payroll"
	CategoryRent      = "rent"
	CategoryUtilities = "utilities"
	CategoryInsurance = "insurance"
	CategoryOther     = "other"
)

var validExpenseCategories = map[string]bool{
	CategorySupplies: true, CategoryPayroll: true, CategoryRent: true,
	CategoryUtilities: true, CategoryInsurance: true, CategoryOther: true,
}

// Expense is one entry in the practice's outgoing ledger. Amounts are
// minor units, like everything else in the money pipeline.
type Expense struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	ExpenseDate time.Time   `db:"expense_date" json:"expense_date"`
	Category    string      `db:"category" json:"category"`
	Description string      `db:"description" json:"description"`
	Amount      money.Money `db:"amount" json:"amount"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// PeriodSummary is one monthly bucket of the revenue report.
type PeriodSummary struct {
	Period   string      `json:"period"` // "2025-06"
	Revenue  money.Money `json:"revenue"`
	Expenses money.Money `json:"expenses"`
	Profit   money.Money `json:"profit"`
}

// PatientRevenue rolls up one patient's invoices over a range.
type PatientRevenue struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	PatientName  string      `json:"patient_name"`
	TotalRevenue money.Money `json:"total_revenue"`
	Outstanding  money.Money `json:"outstanding_amount"`
	InvoiceCount int         `json:"invoice_count"`
}
