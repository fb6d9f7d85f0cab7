package medicalrecord

import (
	"context"
	"errors"
	"fmt"

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

const recordCols = `id, patient_id, doctor_id, appointment_id, diagnosis, symptoms,
	treatment, notes, record_date, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.AppointmentID, &rec.Diagnosis,
		&rec.Symptoms, &rec.Treatment, &rec.Notes, &rec.RecordDate, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.q.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, appointment_id, diagnosis,
			symptoms, treatment, notes, record_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.AppointmentID, rec.Diagnosis,
		rec.Symptoms, rec.Treatment, rec.Notes, rec.RecordDate)
	return err
}

func (r *repoPG) GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordCols + ` FROM medical_records WHERE id = $1`
	args := []interface{}{id}
	if cond, scopeArgs := scope.Predicate(ident, 2); cond != "" {
		query += ` AND ` + cond
		args = append(args, scopeArgs...)
	}
	return scanRecord(r.q.QueryRow(ctx, query, args...))
}

func (r *repoPG) ListScoped(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	query := `SELECT ` + recordCols + ` FROM medical_records WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM medical_records WHERE 1=1`
	var args []interface{}
	idx := 1

	if cond, scopeArgs := scope.Predicate(ident, idx); cond != "" {
		query += ` AND ` + cond
		countQuery += ` AND ` + cond
		args = append(args, scopeArgs...)
		idx += len(scopeArgs)
	}
	if patientID != uuid.Nil {
		cond := fmt.Sprintf(` AND patient_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, patientID)
		idx++
	}

	var total int
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY record_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE medical_records SET diagnosis=$2, symptoms=$3, treatment=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Diagnosis, rec.Symptoms, rec.Treatment, rec.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
