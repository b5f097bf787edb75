package treatment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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

type pgCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPgCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &pgCatalogRepository{pool: pool}
}

const catalogCols = "id, code, name, duration_minutes, base_price, created_at"

func (r *pgCatalogRepository) Create(ctx context.Context, p *CatalogProcedure) error {
	p.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO catalog_procedures (id, code, name, duration_minutes, base_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		p.ID, p.Code, p.Name, p.DurationMinutes, p.BasePrice,
	).Scan(&p.CreatedAt)
}

func (r *pgCatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*CatalogProcedure, error) {
	var p CatalogProcedure
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+catalogCols+" FROM catalog_procedures WHERE id = $1", id,
	).Scan(&p.ID, &p.Code, &p.Name, &p.DurationMinutes, &p.BasePrice, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgCatalogRepository) Update(ctx context.Context, p *CatalogProcedure) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE catalog_procedures
		SET code = $2, name = $3, duration_minutes = $4, base_price = $5
		WHERE id = $1`,
		p.ID, p.Code, p.Name, p.DurationMinutes, p.BasePrice)
	return checkAffected(tag, err)
}

func (r *pgCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM catalog_procedures WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgCatalogRepository) List(ctx context.Context, q string, limit, offset int) ([]*CatalogProcedure, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if q != "" {
		args = append(args, "%"+q+"%")
		where += fmt.Sprintf(" AND (code ILIKE $%d OR name ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM catalog_procedures"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + catalogCols + " FROM catalog_procedures" + where +
		fmt.Sprintf(" ORDER BY code ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	procedures := []*CatalogProcedure{}
	for rows.Next() {
		var p CatalogProcedure
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.DurationMinutes,
			&p.BasePrice, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		procedures = append(procedures, &p)
	}
	return procedures, total, rows.Err()
}

type pgPlanRepository struct {
	pool *pgxpool.Pool
}

func NewPgPlanRepository(pool *pgxpool.Pool) PlanRepository {
	return &pgPlanRepository{pool: pool}
}

const planCols = "id, patient_id, status, title, notes, created_at, updated_at"

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.Status, &p.Title, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgPlanRepository) Create(ctx context.Context, p *TreatmentPlan) error {
	p.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO treatment_plans (id, patient_id, status, title, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.Status, p.Title, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *pgPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+planCols+" FROM treatment_plans WHERE id = $1", id)
	return scanPlan(row)
}

func (r *pgPlanRepository) Update(ctx context.Context, p *TreatmentPlan) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE treatment_plans
		SET patient_id = $2, status = $3, title = $4, notes = $5, updated_at = now()
		WHERE id = $1`,
		p.ID, p.PatientID, p.Status, p.Title, p.Notes)
	return checkAffected(tag, err)
}

func (r *pgPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM treatment_plans WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgPlanRepository) Search(ctx context.Context, params PlanSearchParams, limit, offset int) ([]*TreatmentPlan, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if params.PatientID != nil {
		args = append(args, *params.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM treatment_plans"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + planCols + " FROM treatment_plans" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	plans := []*TreatmentPlan{}
	for rows.Next() {
		var p TreatmentPlan
		if err := rows.Scan(&p.ID, &p.PatientID, &p.Status, &p.Title, &p.Notes,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		plans = append(plans, &p)
	}
	return plans, total, rows.Err()
}

func (r *pgPlanRepository) TotalPlanned(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity * unit_price), 0)
		FROM planned_procedures
		WHERE plan_id = $1`, planID,
	).Scan(&total)
	return total, err
}

type pgPlannedRepository struct {
	pool *pgxpool.Pool
}

func NewPgPlannedRepository(pool *pgxpool.Pool) PlannedRepository {
	return &pgPlannedRepository{pool: pool}
}

const plannedCols = "id, plan_id, procedure_id, tooth, surface, quantity, unit_price, status, created_at"

func (r *pgPlannedRepository) Create(ctx context.Context, p *PlannedProcedure) error {
	p.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO planned_procedures (id, plan_id, procedure_id, tooth, surface, quantity, unit_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		p.ID, p.PlanID, p.ProcedureID, p.Tooth, p.Surface, p.Quantity, p.UnitPrice, p.Status,
	).Scan(&p.CreatedAt)
}

func (r *pgPlannedRepository) GetByID(ctx context.Context, id uuid.UUID) (*PlannedProcedure, error) {
	var p PlannedProcedure
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+plannedCols+" FROM planned_procedures WHERE id = $1", id,
	).Scan(&p.ID, &p.PlanID, &p.ProcedureID, &p.Tooth, &p.Surface,
		&p.Quantity, &p.UnitPrice, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgPlannedRepository) Update(ctx context.Context, p *PlannedProcedure) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE planned_procedures
		SET plan_id = $2, procedure_id = $3, tooth = $4, surface = $5,
		    quantity = $6, unit_price = $7, status = $8
		WHERE id = $1`,
		p.ID, p.PlanID, p.ProcedureID, p.Tooth, p.Surface, p.Quantity, p.UnitPrice, p.Status)
	return checkAffected(tag, err)
}

func (r *pgPlannedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM planned_procedures WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgPlannedRepository) List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*PlannedProcedure, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if planID != nil {
		args = append(args, *planID)
		where += fmt.Sprintf(" AND plan_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM planned_procedures"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + plannedCols + " FROM planned_procedures" + where +
		fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	procedures := []*PlannedProcedure{}
	for rows.Next() {
		var p PlannedProcedure
		if err := rows.Scan(&p.ID, &p.PlanID, &p.ProcedureID, &p.Tooth, &p.Surface,
			&p.Quantity, &p.UnitPrice, &p.Status, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		procedures = append(procedures, &p)
	}
	return procedures, total, rows.Err()
}

type pgExecutedRepository struct {
	pool *pgxpool.Pool
}

func NewPgExecutedRepository(pool *pgxpool.Pool) ExecutedRepository {
	return &pgExecutedRepository{pool: pool}
}

const executedCols = "id, appointment_id, planned_id, procedure_id, tooth, surface, quantity, unit_price, notes, performed_at, created_at"

func (r *pgExecutedRepository) Create(ctx context.Context, e *ExecutedProcedure) error {
	e.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO executed_procedures (id, appointment_id, planned_id, procedure_id, tooth, surface, quantity, unit_price, notes, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		e.ID, e.AppointmentID, e.PlannedID, e.ProcedureID, e.Tooth, e.Surface,
		e.Quantity, e.UnitPrice, e.Notes, e.PerformedAt,
	).Scan(&e.CreatedAt)
}

func (r *pgExecutedRepository) GetByID(ctx context.Context, id uuid.UUID) (*ExecutedProcedure, error) {
	var e ExecutedProcedure
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+executedCols+" FROM executed_procedures WHERE id = $1", id,
	).Scan(&e.ID, &e.AppointmentID, &e.PlannedID, &e.ProcedureID, &e.Tooth, &e.Surface,
		&e.Quantity, &e.UnitPrice, &e.Notes, &e.PerformedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgExecutedRepository) Update(ctx context.Context, e *ExecutedProcedure) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE executed_procedures
		SET appointment_id = $2, planned_id = $3, procedure_id = $4, tooth = $5,
		    surface = $6, quantity = $7, unit_price = $8, notes = $9, performed_at = $10
		WHERE id = $1`,
		e.ID, e.AppointmentID, e.PlannedID, e.ProcedureID, e.Tooth, e.Surface,
		e.Quantity, e.UnitPrice, e.Notes, e.PerformedAt)
	return checkAffected(tag, err)
}

func (r *pgExecutedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM executed_procedures WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgExecutedRepository) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ExecutedProcedure, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if appointmentID != nil {
		args = append(args, *appointmentID)
		where += fmt.Sprintf(" AND appointment_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM executed_procedures"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + executedCols + " FROM executed_procedures" + where +
		fmt.Sprintf(" ORDER BY performed_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	executed := []*ExecutedProcedure{}
	for rows.Next() {
		var e ExecutedProcedure
		if err := rows.Scan(&e.ID, &e.AppointmentID, &e.PlannedID, &e.ProcedureID,
			&e.Tooth, &e.Surface, &e.Quantity, &e.UnitPrice, &e.Notes,
			&e.PerformedAt, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		executed = append(executed, &e)
	}
	return executed, total, rows.Err()
}

type pgQuoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuoteRepository(pool *pgxpool.Pool) QuoteRepository {
	return &pgQuoteRepository{pool: pool}
}

const quoteCols = "id, plan_id, total, discount, valid_until, approved_at, created_at"

func (r *pgQuoteRepository) Create(ctx context.Context, q *Quote) error {
	q.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO quotes (id, plan_id, total, discount, valid_until)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		q.ID, q.PlanID, q.Total, q.Discount, q.ValidUntil,
	).Scan(&q.CreatedAt)
}

func (r *pgQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var q Quote
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+quoteCols+" FROM quotes WHERE id = $1", id,
	).Scan(&q.ID, &q.PlanID, &q.Total, &q.Discount, &q.ValidUntil, &q.ApprovedAt, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *pgQuoteRepository) Update(ctx context.Context, q *Quote) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE quotes
		SET plan_id = $2, total = $3, discount = $4, valid_until = $5
		WHERE id = $1`,
		q.ID, q.PlanID, q.Total, q.Discount, q.ValidUntil)
	return checkAffected(tag, err)
}

func (r *pgQuoteRepository) Approve(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		"UPDATE quotes SET approved_at = now() WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM quotes WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgQuoteRepository) List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*Quote, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if planID != nil {
		args = append(args, *planID)
		where += fmt.Sprintf(" AND plan_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM quotes"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + quoteCols + " FROM quotes" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quotes := []*Quote{}
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.PlanID, &q.Total, &q.Discount, &q.ValidUntil,
			&q.ApprovedAt, &q.CreatedAt); err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, &q)
	}
	return quotes, total, rows.Err()
}
