package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicindia/api/internal/platform/auth"
	"github.com/clinicindia/api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ q queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{q: pool} }

var scope = db.Scoper{PatientColumn: "patient_id", DoctorColumn: "doctor_id"}

const apptCols = `id, patient_id, doctor_id, date, start_time, end_time, status,
	reason, notes, cancelled_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &date, &a.StartTime, &a.EndTime,
		&a.Status, &a.Reason, &a.Notes, &a.CancelledAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	a.Date = date.Format("2006-01-02")
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.q.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, start_time, end_time, status, reason, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.StartTime, a.EndTime, a.Status, a.Reason, a.Notes)
	return err
}

func (r *repoPG) GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointments WHERE id = $1`
	args := []interface{}{id}
	if cond, scopeArgs := scope.Predicate(ident, 2); cond != "" {
		query += ` AND ` + cond
		args = append(args, scopeArgs...)
	}
	return scanAppointment(r.q.QueryRow(ctx, query, args...))
}

func (r *repoPG) ListScoped(ctx context.Context, ident auth.Identity, status, date string, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointments WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointments WHERE 1=1`
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
	if date != "" {
		cond := fmt.Sprintf(` AND date = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, date)
		idx++
	}

	var total int
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY date DESC, start_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE appointments SET status=$2, notes=$3, cancelled_at=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.Notes, a.CancelledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) HasConflict(ctx context.Context, doctorID uuid.UUID, date, startTime string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND date = $2 AND start_time = $3 AND status <> $4
		)`, doctorID, date, startTime, StatusCancelled).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> $3
		ORDER BY start_time`, doctorID, date, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
