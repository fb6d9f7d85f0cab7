package prescription

import (
	"context"
	"encoding/json"
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

const rxCols = `id, patient_id, doctor_id, medical_record_id, medications,
	instructions, valid_until, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var meds []byte
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.MedicalRecordID, &meds,
		&p.Instructions, &p.ValidUntil, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(meds) > 0 {
		if err := json.Unmarshal(meds, &p.Medications); err != nil {
			return nil, fmt.Errorf("decode medications: %w", err)
		}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("encode medications: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, medical_record_id,
			medications, instructions, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.DoctorID, p.MedicalRecordID, meds, p.Instructions, p.ValidUntil)
	return err
}

func (r *repoPG) GetScoped(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Prescription, error) {
	query := `SELECT ` + rxCols + ` FROM prescriptions WHERE id = $1`
	args := []interface{}{id}
	if cond, scopeArgs := scope.Predicate(ident, 2); cond != "" {
		query += ` AND ` + cond
		args = append(args, scopeArgs...)
	}
	return scanPrescription(r.q.QueryRow(ctx, query, args...))
}

func (r *repoPG) ListScoped(ctx context.Context, ident auth.Identity, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	query := `SELECT ` + rxCols + ` FROM prescriptions WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM prescriptions WHERE 1=1`
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

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
