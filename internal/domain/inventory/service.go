package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinident/clinident/internal/platform/db"
)

var ErrInvalidMovementType = errors.New("invalid movement type")

type Service struct {
	items     ItemRepository
	movements MovementRepository
	pool      *pgxpool.Pool
}

func NewService(items ItemRepository, movements MovementRepository, pool *pgxpool.Pool) *Service {
	return &Service{items: items, movements: movements, pool: pool}
}

// inTx wraps fn in a transaction when a pool is present. Unit tests build
// the service without one and run against plain mocks.
func (s *Service) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.RunInTx(ctx, s.pool, fn)
}

func (s *Service) CreateItem(ctx context.Context, i *StockItem) error {
	if err := s.validateItem(i); err != nil {
		return err
	}
	return s.items.Create(ctx, i)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, i *StockItem) error {
	if err := s.validateItem(i); err != nil {
		return err
	}
	return s.items.Update(ctx, i)
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.items.Delete(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, q string, belowMinimum bool, limit, offset int) ([]*StockItem, int, error) {
	return s.items.List(ctx, strings.TrimSpace(q), belowMinimum, limit, offset)
}

// ZeroQuantity empties the selected items, recording an inventory count
// reset.
func (s *Service) ZeroQuantity(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.items.ZeroQuantity(ctx, ids)
}

// RaiseToMinimum restocks the selected items up to their minimum. Items
// already at or above it are not touched, so the returned count can be
// lower than the number of ids.
func (s *Service) RaiseToMinimum(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.items.RaiseToMinimum(ctx, ids)
}

func (s *Service) validateItem(i *StockItem) error {
	if strings.TrimSpace(i.Description) == "" {
		return errors.New("description is required")
	}
	if i.MinQuantity < 0 {
		return errors.New("min_quantity must not be negative")
	}
	if i.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

// CreateMovement records the movement and applies it to the item's stored
// quantity in the same transaction.
func (s *Service) CreateMovement(ctx context.Context, m *StockMovement) error {
	if err := s.validateMovement(m); err != nil {
		return err
	}
	delta := m.Quantity
	if m.Type == MovementOut {
		delta = -delta
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.movements.Create(ctx, m); err != nil {
			return err
		}
		return s.items.AdjustQuantity(ctx, m.ItemID, delta)
	})
}

func (s *Service) GetMovement(ctx context.Context, id uuid.UUID) (*StockMovement, error) {
	return s.movements.GetByID(ctx, id)
}

// DeleteMovement removes the movement and rolls its effect back out of
// the item's quantity.
func (s *Service) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return err
	}
	delta := -m.Quantity
	if m.Type == MovementOut {
		delta = m.Quantity
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.movements.Delete(ctx, id); err != nil {
			return err
		}
		return s.items.AdjustQuantity(ctx, m.ItemID, delta)
	})
}

func (s *Service) ListMovements(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*StockMovement, int, error) {
	return s.movements.List(ctx, itemID, limit, offset)
}

func (s *Service) validateMovement(m *StockMovement) error {
	if m.ItemID == uuid.Nil {
		return errors.New("item_id is required")
	}
	if !validMovementTypes[m.Type] {
		return ErrInvalidMovementType
	}
	if m.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}
