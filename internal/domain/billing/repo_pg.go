package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicindia/api/internal/platform/auth"
	"github.com/clinicindia/api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var scope = db.Scoper{PatientColumn: "patient_id", DoctorColumn: "doctor_id"}

const invoiceCols = `id, patient_id, doctor_id, appointment_id, amount, description,
	status, due_date, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.DoctorID, &inv.AppointmentID, &inv.Amount,
		&inv.Description, &inv.Status, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &inv, err
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invoices (id, patient_id, doctor_id, appointment_id, amount, description, status, due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		inv.ID, inv.PatientID, inv.DoctorID, inv.AppointmentID, inv.Amount,
		inv.Description, inv.Status, inv.DueDate)
	return err
}

func (r *repoPG) GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Invoice, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE id = $1`
	args := []interface{}{id}
	if cond, scopeArgs := scope.Predicate(ident, 2); cond != "" {
		query += ` AND ` + cond
		args = append(args, scopeArgs...)
	}
	return scanInvoice(r.pool.QueryRow(ctx, query, args...))
}

func (r *repoPG) ListScoped(ctx context.Context, ident auth.Identity, status string, limit, offset int) ([]*Invoice, int, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM invoices WHERE 1=1`
	var args []interface{}
	idx := 1

	if cond, scopeArgs := scope.Predicate(ident, idx); cond != "" {
		query += ` AND ` + cond
		countQuery += ` AND ` + cond
		args = append(args, scopeArgs...)
		idx += len(scopeArgs)
	}
	if status != "" {
		cond := fmt.Sprintf(` AND status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}

func (r *repoPG) RecordPayment(ctx context.Context, inv *Invoice, pay *Payment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	pay.ID = uuid.New()
	pay.InvoiceID = inv.ID
	if _, err := tx.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, method, reference)
		VALUES ($1,$2,$3,$4,$5)`,
		pay.ID, pay.InvoiceID, pay.Amount, pay.Method, pay.Reference); err != nil {
		return err
	}

	// Guard against a concurrent payment settling the same invoice.
	tag, err := tx.Exec(ctx, `
		UPDATE invoices SET status=$2, paid_at=$3, updated_at=NOW()
		WHERE id = $1 AND status <> $2`,
		inv.ID, InvoicePaid, inv.PaidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyPaid
	}

	return tx.Commit(ctx)
}

func (r *repoPG) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, created_at
		FROM payments WHERE invoice_id = $1 ORDER BY created_at`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
