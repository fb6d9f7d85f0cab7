package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ q queryable }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{q: pool} }

const doctorCols = `id, user_id, specialization, qualification, experience_years,
	consultation_fee, bio, available, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Specialization, &d.Qualification, &d.ExperienceYears,
		&d.ConsultationFee, &d.Bio, &d.Available, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.q.Exec(ctx, `
		INSERT INTO doctors (id, user_id, specialization, qualification, experience_years,
			consultation_fee, bio, available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.UserID, d.Specialization, d.Qualification, d.ExperienceYears,
		d.ConsultationFee, d.Bio, d.Available)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateProfile
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.q.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.q.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *repoPG) List(ctx context.Context, specialization string, availableOnly bool, limit, offset int) ([]*Doctor, int, error) {
	query := `SELECT ` + doctorCols + ` FROM doctors WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctors WHERE 1=1`
	var args []interface{}
	idx := 1

	if specialization != "" {
		cond := fmt.Sprintf(` AND specialization ILIKE $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, "%"+specialization+"%")
		idx++
	}
	if availableOnly {
		query += ` AND available`
		countQuery += ` AND available`
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

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE doctors SET specialization=$2, qualification=$3, experience_years=$4,
			consultation_fee=$5, bio=$6, available=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Specialization, d.Qualification, d.ExperienceYears,
		d.ConsultationFee, d.Bio, d.Available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Schedule Repository ===========

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

const schedCols = `id, doctor_id, day_of_week, start_time, end_time, slot_minutes, created_at`

func scanEntry(row pgx.Row) (*ScheduleEntry, error) {
	var e ScheduleEntry
	err := row.Scan(&e.ID, &e.DoctorID, &e.DayOfWeek, &e.StartTime, &e.EndTime, &e.SlotMinutes, &e.CreatedAt)
	return &e, err
}

func (r *scheduleRepoPG) Replace(ctx context.Context, doctorID uuid.UUID, entries []*ScheduleEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM doctor_schedules WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	for _, e := range entries {
		e.ID = uuid.New()
		e.DoctorID = doctorID
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_schedules (id, doctor_id, day_of_week, start_time, end_time, slot_minutes)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			e.ID, e.DoctorID, e.DayOfWeek, e.StartTime, e.EndTime, e.SlotMinutes); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *scheduleRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ScheduleEntry, error) {
	return r.list(ctx, `SELECT `+schedCols+` FROM doctor_schedules WHERE doctor_id = $1 ORDER BY day_of_week, start_time`, doctorID)
}

func (r *scheduleRepoPG) ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*ScheduleEntry, error) {
	return r.list(ctx, `SELECT `+schedCols+` FROM doctor_schedules WHERE doctor_id = $1 AND day_of_week = $2 ORDER BY start_time`, doctorID, dayOfWeek)
}

func (r *scheduleRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ScheduleEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
