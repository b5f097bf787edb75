package billing

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

type pgInvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewPgInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &pgInvoiceRepository{pool: pool}
}

// invoiceSelect pulls the invoice with its paid total so balance never
// drifts from the payment rows.
const invoiceSelect = `
	SELECT i.id, i.patient_id, i.origin, i.amount, i.status, i.external_ref, i.created_at,
	       COALESCE((SELECT SUM(pay.amount) FROM payments pay WHERE pay.invoice_id = i.id), 0) AS total_paid,
	       p.name
	FROM invoices i
	JOIN patients p ON p.id = i.patient_id`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.PatientID, &inv.Origin, &inv.Amount, &inv.Status,
		&inv.ExternalRef, &inv.CreatedAt, &inv.TotalPaid, &inv.PatientName)
	if err != nil {
		return nil, err
	}
	inv.Balance = inv.Amount.Sub(inv.TotalPaid)
	return &inv, nil
}

func (r *pgInvoiceRepository) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	if err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO invoices (id, patient_id, origin, amount, status, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		inv.ID, inv.PatientID, inv.Origin, inv.Amount, inv.Status, inv.ExternalRef,
	).Scan(&inv.CreatedAt); err != nil {
		return err
	}
	inv.Balance = inv.Amount
	return nil
}

func (r *pgInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id)
	return scanInvoice(row)
}

func (r *pgInvoiceRepository) Update(ctx context.Context, inv *Invoice) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE invoices
		SET patient_id = $2, origin = $3, amount = $4, status = $5, external_ref = $6
		WHERE id = $1`,
		inv.ID, inv.PatientID, inv.Origin, inv.Amount, inv.Status, inv.ExternalRef)
	return checkAffected(tag, err)
}

func (r *pgInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgInvoiceRepository) Search(ctx context.Context, p InvoiceSearchParams, limit, offset int) ([]*Invoice, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if p.PatientID != nil {
		args = append(args, *p.PatientID)
		where += fmt.Sprintf(" AND i.patient_id = $%d", len(args))
	}
	if p.Status != "" {
		args = append(args, p.Status)
		where += fmt.Sprintf(" AND i.status = $%d", len(args))
	}
	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR i.id::text ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM invoices i JOIN patients p ON p.id = i.patient_id"+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := invoiceSelect + where +
		fmt.Sprintf(" ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices := []*Invoice{}
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.PatientID, &inv.Origin, &inv.Amount, &inv.Status,
			&inv.ExternalRef, &inv.CreatedAt, &inv.TotalPaid, &inv.PatientName); err != nil {
			return nil, 0, err
		}
		inv.Balance = inv.Amount.Sub(inv.TotalPaid)
		invoices = append(invoices, &inv)
	}
	return invoices, total, rows.Err()
}

func (r *pgInvoiceRepository) SetStatusBulk(ctx context.Context, ids []uuid.UUID, status string) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		"UPDATE invoices SET status = $1 WHERE id = ANY($2)", status, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type pgPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPgPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &pgPaymentRepository{pool: pool}
}

const paymentCols = "id, invoice_id, method, amount, installment, paid_at, created_at"

func (r *pgPaymentRepository) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO payments (id, invoice_id, method, amount, installment, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.ID, p.InvoiceID, p.Method, p.Amount, p.Installment, p.PaidAt,
	).Scan(&p.CreatedAt)
}

func (r *pgPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE id = $1", id,
	).Scan(&p.ID, &p.InvoiceID, &p.Method, &p.Amount, &p.Installment, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgPaymentRepository) Update(ctx context.Context, p *Payment) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE payments
		SET invoice_id = $2, method = $3, amount = $4, installment = $5, paid_at = $6
		WHERE id = $1`,
		p.ID, p.InvoiceID, p.Method, p.Amount, p.Installment, p.PaidAt)
	return checkAffected(tag, err)
}

func (r *pgPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgPaymentRepository) List(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if invoiceID != nil {
		args = append(args, *invoiceID)
		where += fmt.Sprintf(" AND invoice_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM payments"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + paymentCols + " FROM payments" + where +
		fmt.Sprintf(" ORDER BY paid_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := []*Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Method, &p.Amount, &p.Installment,
			&p.PaidAt, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		payments = append(payments, &p)
	}
	return payments, total, rows.Err()
}
