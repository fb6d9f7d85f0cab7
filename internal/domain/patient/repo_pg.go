package patient

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

// Rows in patients are patient-owned; scope resolves through user_id.
var scope = db.Scoper{UserColumn: "user_id"}

const patientCols = `id, user_id, date_of_birth, gender, blood_group, address,
	emergency_contact_name, emergency_contact_phone, medical_history, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.DateOfBirth, &p.Gender, &p.BloodGroup, &p.Address,
		&p.EmergencyContactName, &p.EmergencyContactPhone, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.q.Exec(ctx, `
		INSERT INTO patients (id, user_id, date_of_birth, gender, blood_group, address,
			emergency_contact_name, emergency_contact_phone, medical_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.UserID, p.DateOfBirth, p.Gender, p.BloodGroup, p.Address,
		p.EmergencyContactName, p.EmergencyContactPhone, p.MedicalHistory)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateProfile
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.q.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetOwned(ctx context.Context, userID, id uuid.UUID) (*Patient, error) {
	cond, args := scope.Predicate(auth.Identity{ID: userID, Role: auth.RolePatient}, 2)
	query := `SELECT ` + patientCols + ` FROM patients WHERE id = $1`
	if cond != "" {
		query += ` AND ` + cond
	}
	return scanPatient(r.q.QueryRow(ctx, query, append([]interface{}{id}, args...)...))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(r.q.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.q.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, patientCols),
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE patients SET date_of_birth=$2, gender=$3, blood_group=$4, address=$5,
			emergency_contact_name=$6, emergency_contact_phone=$7, medical_history=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DateOfBirth, p.Gender, p.BloodGroup, p.Address,
		p.EmergencyContactName, p.EmergencyContactPhone, p.MedicalHistory)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
