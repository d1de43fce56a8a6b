package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fetch46/care-coord-suite/internal/domain/billing"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRange(ctx context.Context, start, end time.Time) ([]*Expense, error)
	ListByCategory(ctx context.Context, category string, start, end time.Time) ([]*Expense, error)
}

// SnapshotRepository supplies the read-side inputs the aggregations fold
// over: invoices in a date range and display names for their patients.
type SnapshotRepository interface {
	InvoicesInRange(ctx context.Context, start, end time.Time) ([]*billing.Invoice, error)
	PatientNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
