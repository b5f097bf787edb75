package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinident/clinident/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = "id, patient_id, status, start_time, end_time, room, notes, created_at"

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.Status, &a.StartTime, &a.EndTime, &a.Room, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgRepository) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, status, start_time, end_time, room, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		a.ID, a.PatientID, a.Status, a.StartTime, a.EndTime, a.Room, a.Notes,
	).Scan(&a.CreatedAt)
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+apptCols+" FROM appointments WHERE id = $1", id)
	return scanAppointment(row)
}

func (r *pgRepository) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2, status = $3, start_time = $4, end_time = $5, room = $6, notes = $7
		WHERE id = $1`,
		a.ID, a.PatientID, a.Status, a.StartTime, a.EndTime, a.Room, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		"UPDATE appointments SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) Search(ctx context.Context, p SearchParams, limit, offset int) ([]*Appointment, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if p.Status != "" {
		args = append(args, p.Status)
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if p.Start != "" {
		args = append(args, p.Start)
		where += fmt.Sprintf(" AND a.start_time::date >= $%d::date", len(args))
	}
	if p.End != "" {
		args = append(args, p.End)
		where += fmt.Sprintf(" AND a.start_time::date <= $%d::date", len(args))
	}
	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR a.room ILIKE $%d OR a.notes ILIKE $%d)",
			len(args), len(args), len(args))
	}

	from := " FROM appointments a JOIN patients p ON p.id = a.patient_id"

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT a.id, a.patient_id, a.status, a.start_time, a.end_time, a.room, a.notes, a.created_at, p.name` +
		from + where +
		fmt.Sprintf(" ORDER BY a.start_time DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appointments := []*Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Status, &a.StartTime, &a.EndTime,
			&a.Room, &a.Notes, &a.CreatedAt, &a.PatientName); err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, &a)
	}
	return appointments, total, rows.Err()
}

type pgReminderRepository struct {
	pool *pgxpool.Pool
}

func NewPgReminderRepository(pool *pgxpool.Pool) ReminderRepository {
	return &pgReminderRepository{pool: pool}
}

func (r *pgReminderRepository) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reminderCols = "id, appointment_id, channel, status, scheduled_at, sent_at, created_at"

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rm Reminder
	err := row.Scan(&rm.ID, &rm.AppointmentID, &rm.Channel, &rm.Status, &rm.ScheduledAt, &rm.SentAt, &rm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *pgReminderRepository) Create(ctx context.Context, rm *Reminder) error {
	rm.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment_reminders (id, appointment_id, channel, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rm.ID, rm.AppointmentID, rm.Channel, rm.Status, rm.ScheduledAt,
	).Scan(&rm.CreatedAt)
}

func (r *pgReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+reminderCols+" FROM appointment_reminders WHERE id = $1", id)
	return scanReminder(row)
}

func (r *pgReminderRepository) Update(ctx context.Context, rm *Reminder) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_reminders
		SET appointment_id = $2, channel = $3, status = $4, scheduled_at = $5
		WHERE id = $1`,
		rm.ID, rm.AppointmentID, rm.Channel, rm.Status, rm.ScheduledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgReminderRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_reminders
		SET status = $2, sent_at = now()
		WHERE id = $1`, id, ReminderSent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM appointment_reminders WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgReminderRepository) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Reminder, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if appointmentID != nil {
		args = append(args, *appointmentID)
		where += fmt.Sprintf(" AND appointment_id = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM appointment_reminders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + reminderCols + " FROM appointment_reminders" + where +
		fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reminders := []*Reminder{}
	for rows.Next() {
		var rm Reminder
		if err := rows.Scan(&rm.ID, &rm.AppointmentID, &rm.Channel, &rm.Status,
			&rm.ScheduledAt, &rm.SentAt, &rm.CreatedAt); err != nil {
			return nil, 0, err
		}
		reminders = append(reminders, &rm)
	}
	return reminders, total, rows.Err()
}
