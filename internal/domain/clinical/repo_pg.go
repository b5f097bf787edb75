package clinical

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

func checkAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type pgOdontogramRepository struct {
	pool *pgxpool.Pool
}

func NewPgOdontogramRepository(pool *pgxpool.Pool) OdontogramRepository {
	return &pgOdontogramRepository{pool: pool}
}

const odontogramCols = "id, patient_id, tooth, surface, condition, executed_procedure_id, created_at, updated_at"

func (r *pgOdontogramRepository) Create(ctx context.Context, e *OdontogramEntry) error {
	e.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO odontogram_entries (id, patient_id, tooth, surface, condition, executed_procedure_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		e.ID, e.PatientID, e.Tooth, e.Surface, e.Condition, e.ExecutedProcedureID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *pgOdontogramRepository) GetByID(ctx context.Context, id uuid.UUID) (*OdontogramEntry, error) {
	var e OdontogramEntry
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+odontogramCols+" FROM odontogram_entries WHERE id = $1", id,
	).Scan(&e.ID, &e.PatientID, &e.Tooth, &e.Surface, &e.Condition,
		&e.ExecutedProcedureID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgOdontogramRepository) Update(ctx context.Context, e *OdontogramEntry) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE odontogram_entries
		SET patient_id = $2, tooth = $3, surface = $4, condition = $5,
		    executed_procedure_id = $6, updated_at = now()
		WHERE id = $1`,
		e.ID, e.PatientID, e.Tooth, e.Surface, e.Condition, e.ExecutedProcedureID)
	return checkAffected(tag, err)
}

func (r *pgOdontogramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM odontogram_entries WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgOdontogramRepository) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*OdontogramEntry, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if patientID != nil {
		args = append(args, *patientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM odontogram_entries"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + odontogramCols + " FROM odontogram_entries" + where +
		fmt.Sprintf(" ORDER BY tooth ASC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*OdontogramEntry{}
	for rows.Next() {
		var e OdontogramEntry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Tooth, &e.Surface, &e.Condition,
			&e.ExecutedProcedureID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}

type pgNoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &pgNoteRepository{pool: pool}
}

const noteCols = "id, appointment_id, author_id, author_name, text, created_at"

func (r *pgNoteRepository) Create(ctx context.Context, n *ProgressNote) error {
	n.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO progress_notes (id, appointment_id, author_id, author_name, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		n.ID, n.AppointmentID, n.AuthorID, n.AuthorName, n.Text,
	).Scan(&n.CreatedAt)
}

func (r *pgNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*ProgressNote, error) {
	var n ProgressNote
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+noteCols+" FROM progress_notes WHERE id = $1", id,
	).Scan(&n.ID, &n.AppointmentID, &n.AuthorID, &n.AuthorName, &n.Text, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *pgNoteRepository) Update(ctx context.Context, n *ProgressNote) error {
	// Author is fixed at creation time.
	tag, err := conn(ctx, r.pool).Exec(ctx,
		"UPDATE progress_notes SET text = $2 WHERE id = $1", n.ID, n.Text)
	return checkAffected(tag, err)
}

func (r *pgNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM progress_notes WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgNoteRepository) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ProgressNote, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if appointmentID != nil {
		args = append(args, *appointmentID)
		where += fmt.Sprintf(" AND appointment_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM progress_notes"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + noteCols + " FROM progress_notes" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := []*ProgressNote{}
	for rows.Next() {
		var n ProgressNote
		if err := rows.Scan(&n.ID, &n.AppointmentID, &n.AuthorID, &n.AuthorName,
			&n.Text, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, &n)
	}
	return notes, total, rows.Err()
}

type pgAttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &pgAttachmentRepository{pool: pool}
}

const attachmentCols = "id, patient_id, appointment_id, file_path, file_type, description, created_at"

func (r *pgAttachmentRepository) Create(ctx context.Context, a *Attachment) error {
	a.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO attachments (id, patient_id, appointment_id, file_path, file_type, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.PatientID, a.AppointmentID, a.FilePath, a.FileType, a.Description,
	).Scan(&a.CreatedAt)
}

func (r *pgAttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	var a Attachment
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+attachmentCols+" FROM attachments WHERE id = $1", id,
	).Scan(&a.ID, &a.PatientID, &a.AppointmentID, &a.FilePath, &a.FileType,
		&a.Description, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgAttachmentRepository) Update(ctx context.Context, a *Attachment) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE attachments
		SET patient_id = $2, appointment_id = $3, file_path = $4, file_type = $5, description = $6
		WHERE id = $1`,
		a.ID, a.PatientID, a.AppointmentID, a.FilePath, a.FileType, a.Description)
	return checkAffected(tag, err)
}

func (r *pgAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM attachments WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgAttachmentRepository) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Attachment, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if patientID != nil {
		args = append(args, *patientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM attachments"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + attachmentCols + " FROM attachments" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attachments := []*Attachment{}
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AppointmentID, &a.FilePath,
			&a.FileType, &a.Description, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		attachments = append(attachments, &a)
	}
	return attachments, total, rows.Err()
}

type pgPrescriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPgPrescriptionRepository(pool *pgxpool.Pool) PrescriptionRepository {
	return &pgPrescriptionRepository{pool: pool}
}

const prescriptionCols = "id, appointment_id, text, created_at"

func (r *pgPrescriptionRepository) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO prescriptions (id, appointment_id, text)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		p.ID, p.AppointmentID, p.Text,
	).Scan(&p.CreatedAt)
}

func (r *pgPrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	var p Prescription
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+prescriptionCols+" FROM prescriptions WHERE id = $1", id,
	).Scan(&p.ID, &p.AppointmentID, &p.Text, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgPrescriptionRepository) Update(ctx context.Context, p *Prescription) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE prescriptions SET appointment_id = $2, text = $3 WHERE id = $1`,
		p.ID, p.AppointmentID, p.Text)
	return checkAffected(tag, err)
}

func (r *pgPrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM prescriptions WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgPrescriptionRepository) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if appointmentID != nil {
		args = append(args, *appointmentID)
		where += fmt.Sprintf(" AND appointment_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM prescriptions"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + prescriptionCols + " FROM prescriptions" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	prescriptions := []*Prescription{}
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.Text, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		prescriptions = append(prescriptions, &p)
	}
	return prescriptions, total, rows.Err()
}

type pgConsentRepository struct {
	pool *pgxpool.Pool
}

func NewPgConsentRepository(pool *pgxpool.Pool) ConsentRepository {
	return &pgConsentRepository{pool: pool}
}

func (r *pgConsentRepository) Create(ctx context.Context, f *ConsentForm) error {
	f.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO consent_forms (id, patient_id, procedure_id, text, signature_path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		f.ID, f.PatientID, f.ProcedureID, f.Text, f.SignaturePath,
	).Scan(&f.CreatedAt)
}

func (r *pgConsentRepository) GetByID(ctx context.Context, id uuid.UUID) (*ConsentForm, error) {
	var f ConsentForm
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT f.id, f.patient_id, f.procedure_id, f.text, f.signed_at, f.signature_path, f.created_at, p.name
		FROM consent_forms f
		JOIN patients p ON p.id = f.patient_id
		WHERE f.id = $1`, id,
	).Scan(&f.ID, &f.PatientID, &f.ProcedureID, &f.Text, &f.SignedAt,
		&f.SignaturePath, &f.CreatedAt, &f.PatientName)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *pgConsentRepository) Update(ctx context.Context, f *ConsentForm) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE consent_forms
		SET patient_id = $2, procedure_id = $3, text = $4
		WHERE id = $1`,
		f.ID, f.PatientID, f.ProcedureID, f.Text)
	return checkAffected(tag, err)
}

func (r *pgConsentRepository) Sign(ctx context.Context, id uuid.UUID, signaturePath string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE consent_forms
		SET signed_at = now(), signature_path = $2
		WHERE id = $1`, id, signaturePath)
	return checkAffected(tag, err)
}

func (r *pgConsentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM consent_forms WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgConsentRepository) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*ConsentForm, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if patientID != nil {
		args = append(args, *patientID)
		where += fmt.Sprintf(" AND f.patient_id = $%d", len(args))
	}

	from := " FROM consent_forms f JOIN patients p ON p.id = f.patient_id"

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT f.id, f.patient_id, f.procedure_id, f.text, f.signed_at, f.signature_path, f.created_at, p.name` +
		from + where +
		fmt.Sprintf(" ORDER BY f.signed_at DESC NULLS LAST, p.name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	forms := []*ConsentForm{}
	for rows.Next() {
		var f ConsentForm
		if err := rows.Scan(&f.ID, &f.PatientID, &f.ProcedureID, &f.Text, &f.SignedAt,
			&f.SignaturePath, &f.CreatedAt, &f.PatientName); err != nil {
			return nil, 0, err
		}
		forms = append(forms, &f)
	}
	return forms, total, rows.Err()
}
