package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fetch46/care-coord-suite/internal/domain/billing"
	"github.com/fetch46/care-coord-suite/internal/platform/db"
)

var ErrNotFound = errors.New("not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Expense Repository ===========

type expenseRepoPG struct{ pool *pgxpool.Pool }

func NewExpenseRepoPG(pool *pgxpool.Pool) ExpenseRepository { return &expenseRepoPG{pool: pool} }

func (r *expenseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const expCols = `id, expense_date, category, description, amount, created_at`

func (r *expenseRepoPG) scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.ExpenseDate, &e.Category, &e.Description, &e.Amount, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepoPG) Create(ctx context.Context, e *Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO expense (id, expense_date, category, description, amount)
		VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.ExpenseDate, e.Category, e.Description, e.Amount)
	return err
}

func (r *expenseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return r.scanExpense(r.conn(ctx).QueryRow(ctx, `SELECT `+expCols+` FROM expense WHERE id = $1`, id))
}

func (r *expenseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM expense WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *expenseRepoPG) ListByRange(ctx context.Context, start, end time.Time) ([]*Expense, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+expCols+` FROM expense
		WHERE expense_date >= $1 AND expense_date <= $2
		ORDER BY expense_date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Expense
	for rows.Next() {
		e, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *expenseRepoPG) ListByCategory(ctx context.Context, category string, start, end time.Time) ([]*Expense, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+expCols+` FROM expense
		WHERE category = $1 AND expense_date >= $2 AND expense_date <= $3
		ORDER BY expense_date`, category, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Expense
	for rows.Next() {
		e, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

// =========== Snapshot Repository ===========

type snapshotRepoPG struct{ pool *pgxpool.Pool }

func NewSnapshotRepoPG(pool *pgxpool.Pool) SnapshotRepository { return &snapshotRepoPG{pool: pool} }

func (r *snapshotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *snapshotRepoPG) InvoicesInRange(ctx context.Context, start, end time.Time) ([]*billing.Invoice, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_number, patient_id, invoice_date, due_date,
			subtotal, tax_amount, total_amount, status, notes, created_at, updated_at
		FROM invoice
		WHERE invoice_date >= $1 AND invoice_date <= $2
		ORDER BY invoice_date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*billing.Invoice
	for rows.Next() {
		var inv billing.Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.InvoiceDate, &inv.DueDate,
			&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.Status, &inv.Notes,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &inv)
	}
	return items, nil
}

func (r *snapshotRepoPG) PatientNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, first_name, last_name FROM patient WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var first, last string
		if err := rows.Scan(&id, &first, &last); err != nil {
			return nil, err
		}
		names[id] = first + " " + last
	}
	return names, nil
}
