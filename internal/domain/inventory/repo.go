package inventory

import (
	"context"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, i *StockItem) error
	// GetByID loads the item with total_consumed computed.
	GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	Update(ctx context.Context, i *StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q string, belowMinimum bool, limit, offset int) ([]*StockItem, int, error)
	// ZeroQuantity sets the quantity of every listed item to zero and
	// returns the number of rows touched.
	ZeroQuantity(ctx context.Context, ids []uuid.UUID) (int64, error)
	// RaiseToMinimum sets quantity to the minimum for listed items that
	// are below it. Items at or above their minimum are left alone.
	RaiseToMinimum(ctx context.Context, ids []uuid.UUID) (int64, error)
	// AdjustQuantity applies a signed delta to the stored quantity.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error
}

type MovementRepository interface {
	Create(ctx context.Context, m *StockMovement) error
	GetByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*StockMovement, int, error)
}
