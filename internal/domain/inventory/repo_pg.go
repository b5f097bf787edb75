package inventory

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

type pgItemRepository struct {
	pool *pgxpool.Pool
}

func NewPgItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &pgItemRepository{pool: pool}
}

// itemSelect pulls the item with its consumed total from OUT movements.
const itemSelect = `
	SELECT i.id, i.description, i.brand, i.lot, i.expires_at, i.min_quantity, i.quantity,
	       i.created_at, i.updated_at,
	       COALESCE((SELECT SUM(m.quantity) FROM stock_movements m
	                 WHERE m.item_id = i.id AND m.type = 'OUT'), 0) AS total_consumed
	FROM stock_items i`

func scanItem(row pgx.Row) (*StockItem, error) {
	var i StockItem
	err := row.Scan(&i.ID, &i.Description, &i.Brand, &i.Lot, &i.ExpiresAt,
		&i.MinQuantity, &i.Quantity, &i.CreatedAt, &i.UpdatedAt, &i.TotalConsumed)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *pgItemRepository) Create(ctx context.Context, i *StockItem) error {
	i.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO stock_items (id, description, brand, lot, expires_at, min_quantity, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		i.ID, i.Description, i.Brand, i.Lot, i.ExpiresAt, i.MinQuantity, i.Quantity,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *pgItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, itemSelect+" WHERE i.id = $1", id)
	return scanItem(row)
}

func (r *pgItemRepository) Update(ctx context.Context, i *StockItem) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE stock_items
		SET description = $2, brand = $3, lot = $4, expires_at = $5,
		    min_quantity = $6, quantity = $7, updated_at = now()
		WHERE id = $1`,
		i.ID, i.Description, i.Brand, i.Lot, i.ExpiresAt, i.MinQuantity, i.Quantity)
	return checkAffected(tag, err)
}

func (r *pgItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM stock_items WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgItemRepository) List(ctx context.Context, q string, belowMinimum bool, limit, offset int) ([]*StockItem, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if q != "" {
		args = append(args, "%"+q+"%")
		where += fmt.Sprintf(" AND (i.description ILIKE $%d OR i.brand ILIKE $%d OR i.lot ILIKE $%d)",
			len(args), len(args), len(args))
	}
	if belowMinimum {
		where += " AND i.quantity < i.min_quantity"
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_items i"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := itemSelect + where +
		fmt.Sprintf(" ORDER BY i.description ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*StockItem{}
	for rows.Next() {
		var i StockItem
		if err := rows.Scan(&i.ID, &i.Description, &i.Brand, &i.Lot, &i.ExpiresAt,
			&i.MinQuantity, &i.Quantity, &i.CreatedAt, &i.UpdatedAt, &i.TotalConsumed); err != nil {
			return nil, 0, err
		}
		items = append(items, &i)
	}
	return items, total, rows.Err()
}

func (r *pgItemRepository) ZeroQuantity(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		"UPDATE stock_items SET quantity = 0, updated_at = now() WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgItemRepository) RaiseToMinimum(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE stock_items
		SET quantity = min_quantity, updated_at = now()
		WHERE id = ANY($1) AND quantity < min_quantity`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgItemRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE stock_items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1`, id, delta)
	return checkAffected(tag, err)
}

type pgMovementRepository struct {
	pool *pgxpool.Pool
}

func NewPgMovementRepository(pool *pgxpool.Pool) MovementRepository {
	return &pgMovementRepository{pool: pool}
}

const movementCols = "id, item_id, type, quantity, reason, appointment_id, created_at"

func (r *pgMovementRepository) Create(ctx context.Context, m *StockMovement) error {
	m.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO stock_movements (id, item_id, type, quantity, reason, appointment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.ItemID, m.Type, m.Quantity, m.Reason, m.AppointmentID,
	).Scan(&m.CreatedAt)
}

func (r *pgMovementRepository) GetByID(ctx context.Context, id uuid.UUID) (*StockMovement, error) {
	var m StockMovement
	err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT "+movementCols+" FROM stock_movements WHERE id = $1", id,
	).Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.Reason, &m.AppointmentID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, "DELETE FROM stock_movements WHERE id = $1", id)
	return checkAffected(tag, err)
}

func (r *pgMovementRepository) List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*StockMovement, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if itemID != nil {
		args = append(args, *itemID)
		where += fmt.Sprintf(" AND item_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_movements"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + movementCols + " FROM stock_movements" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movements := []*StockMovement{}
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.Reason,
			&m.AppointmentID, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		movements = append(movements, &m)
	}
	return movements, total, rows.Err()
}
