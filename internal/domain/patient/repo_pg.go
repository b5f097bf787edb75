package patient

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

type pgRepository struct{ pool *pgxpool.Pool }

func NewPgRepository(pool *pgxpool.Pool) Repository { return &pgRepository{pool: pool} }

func (r *pgRepository) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = "id, name, document, birth_date, phone, email, address, active, archived_at, created_at, updated_at"

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Document, &p.BirthDate, &p.Phone, &p.Email,
		&p.Address, &p.Active, &p.ArchivedAt, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *pgRepository) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.Active = true
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, name, document, birth_date, phone, email, address, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Document, p.BirthDate, p.Phone, p.Email, p.Address, p.Active)
	return err
}

func (r *pgRepository) GetActive(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND active`, id))
}

func (r *pgRepository) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, document=$3, birth_date=$4, phone=$5,
			email=$6, address=$7, updated_at=NOW()
		WHERE id = $1 AND active`,
		p.ID, p.Name, p.Document, p.BirthDate, p.Phone, p.Email, p.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET active=FALSE, archived_at=NOW(), updated_at=NOW()
		WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) Reactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET active=TRUE, archived_at=NULL, updated_at=NOW()
		WHERE id = $1 AND NOT active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgRepository) list(ctx context.Context, active bool, q string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE active = $1`
	countQuery := `SELECT COUNT(*) FROM patients WHERE active = $1`
	args := []any{active}

	if q != "" {
		query += ` AND (name ILIKE '%' || $2 || '%' OR document ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`
		countQuery += ` AND (name ILIKE '%' || $2 || '%' OR document ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`
		args = append(args, q)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
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

func (r *pgRepository) ListActive(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx, true, q, limit, offset)
}

func (r *pgRepository) ListArchived(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx, false, q, limit, offset)
}
