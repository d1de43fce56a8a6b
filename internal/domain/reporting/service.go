package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	expenses  ExpenseRepository
	snapshots SnapshotRepository
}

func NewService(exp ExpenseRepository, snap SnapshotRepository) *Service {
	return &Service{expenses: exp, snapshots: snap}
}

// -- Expenses --

func (s *Service) RecordExpense(ctx context.Context, e *Expense) error {
	if e.Amount <= 0 {
		return fmt.Errorf("expense amount must be positive")
	}
	if e.Description == "" {
		return fmt.Errorf("description is required")
	}
	if e.Category == "" {
		e.Category = CategoryOther
	}
	if !validExpenseCategories[e.Category] {
		return fmt.Errorf("invalid expense category: %s", e.Category)
	}
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = time.Now()
	}
	return s.expenses.Create(ctx, e)
}

func (s *Service) GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.expenses.Delete(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, category string, start, end time.Time) ([]*Expense, error) {
	if category != "" {
		return s.expenses.ListByCategory(ctx, category, start, end)
	}
	return s.expenses.ListByRange(ctx, start, end)
}

// -- Reports --

// RevenueByPeriod loads invoice and expense snapshots for the range and
// folds them into monthly buckets.
func (s *Service) RevenueByPeriod(ctx context.Context, start, end time.Time) ([]*PeriodSummary, error) {
	invoices, err := s.snapshots.InvoicesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return RevenueByPeriod(invoices, expenses, start, end), nil
}

// RevenueByPatient loads invoices for the range, resolves the patient
// names involved and folds per patient.
func (s *Service) RevenueByPatient(ctx context.Context, start, end time.Time) ([]*PatientRevenue, error) {
	invoices, err := s.snapshots.InvoicesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, inv := range invoices {
		if !seen[inv.PatientID] {
			seen[inv.PatientID] = true
			ids = append(ids, inv.PatientID)
		}
	}
	names, err := s.snapshots.PatientNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	return RevenueByPatient(invoices, names, start, end), nil
}
