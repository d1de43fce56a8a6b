package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fetch46/care-coord-suite/internal/platform/db"
	"github.com/fetch46/care-coord-suite/internal/platform/search"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNumberConflict
	}
	return err
}

// =========== Invoice Repository ===========

type invoiceRepoPG struct{ pool *pgxpool.Pool }

func NewInvoiceRepoPG(pool *pgxpool.Pool) InvoiceRepository { return &invoiceRepoPG{pool: pool} }

func (r *invoiceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const invCols = `id, invoice_number, patient_id, invoice_date, due_date,
	subtotal, tax_amount, total_amount, status, notes, created_at, updated_at`

func (r *invoiceRepoPG) scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.InvoiceDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.Status, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &inv, nil
}

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, invoice_number, patient_id, invoice_date, due_date,
			subtotal, tax_amount, total_amount, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		inv.ID, inv.InvoiceNumber, inv.PatientID, inv.InvoiceDate, inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Status, inv.Notes)
	if err != nil {
		return mapError(err)
	}
	for _, li := range inv.LineItems {
		if li.ID == uuid.Nil {
			li.ID = uuid.New()
		}
		li.InvoiceID = inv.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO invoice_line_item (id, invoice_id, sequence, description,
				quantity, unit_price, service_date, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			li.ID, li.InvoiceID, li.Sequence, li.Description,
			li.Quantity, li.UnitPrice, li.ServiceDate, li.Total)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return r.scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invoice WHERE id = $1`, id))
}

func (r *invoiceRepoPG) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return r.scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invoice WHERE invoice_number = $1`, number))
}

func (r *invoiceRepoPG) LockForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return r.scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invoice WHERE id = $1 FOR UPDATE`, id))
}

func (r *invoiceRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE invoice SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+invCols+` FROM invoice WHERE patient_id = $1 ORDER BY invoice_date DESC, created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, nil
}

var invoiceSearchParams = map[string]search.ParamConfig{
	"patient": {Type: search.ParamReference, Column: "patient_id"},
	"status":  {Type: search.ParamToken, Column: "status"},
	"number":  {Type: search.ParamString, Column: "invoice_number"},
	"date":    {Type: search.ParamDate, Column: "invoice_date"},
	"due":     {Type: search.ParamDate, Column: "due_date"},
	"total":   {Type: search.ParamNumber, Column: "total_amount"},
}

func (r *invoiceRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	qb := search.NewQuery("invoice", invCols)
	qb.ApplyParams(params, invoiceSearchParams)
	qb.OrderBy("invoice_date DESC, created_at DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(limit, offset), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, nil
}

func (r *invoiceRepoPG) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status = $1, updated_at = NOW()
		WHERE due_date < $2 AND status NOT IN ($3, $4, $5)`,
		StatusOverdue, asOf, StatusPaid, StatusCancelled, StatusOverdue)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *invoiceRepoPG) GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, sequence, description, quantity, unit_price, service_date, total
		FROM invoice_line_item WHERE invoice_id = $1 ORDER BY sequence`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Sequence, &li.Description,
			&li.Quantity, &li.UnitPrice, &li.ServiceDate, &li.Total); err != nil {
			return nil, err
		}
		items = append(items, &li)
	}
	return items, nil
}

// =========== Payment Repository ===========

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const payCols = `id, payment_number, invoice_id, patient_id, amount, payment_date,
	method, status, reference_number, notes, created_at`

func (r *paymentRepoPG) scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PaymentNumber, &p.InvoiceID, &p.PatientID, &p.Amount, &p.PaymentDate,
		&p.Method, &p.Status, &p.ReferenceNumber, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment (id, payment_number, invoice_id, patient_id, amount, payment_date,
			method, status, reference_number, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.PaymentNumber, p.InvoiceID, p.PatientID, p.Amount, p.PaymentDate,
		p.Method, p.Status, p.ReferenceNumber, p.Notes)
	return mapError(err)
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.scanPayment(r.conn(ctx).QueryRow(ctx, `SELECT `+payCols+` FROM payment WHERE id = $1`, id))
}

func (r *paymentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE payment SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *paymentRepoPG) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+payCols+` FROM payment WHERE invoice_id = $1 ORDER BY payment_date, created_at`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *paymentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM payment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+payCols+` FROM payment WHERE patient_id = $1 ORDER BY payment_date DESC, created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

// =========== Sequence Repository ===========

type sequenceRepoPG struct{ pool *pgxpool.Pool }

func NewSequenceRepoPG(pool *pgxpool.Pool) SequenceRepository { return &sequenceRepoPG{pool: pool} }

func (r *sequenceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// Next allocates the next number in the (kind, year, month) bucket. The
// upsert makes allocation atomic: concurrent callers serialize on the row
// and each sees a distinct value.
func (r *sequenceRepoPG) Next(ctx context.Context, kind string, year int, month time.Month) (int, error) {
	var next int
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO billing_sequence (kind, year, month, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (kind, year, month)
		DO UPDATE SET last_value = billing_sequence.last_value + 1
		RETURNING last_value`,
		kind, year, int(month)).Scan(&next)
	if err != nil {
		return 0, mapError(err)
	}
	return next, nil
}
