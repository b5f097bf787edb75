package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockItemRepo struct {
	items map[uuid.UUID]*StockItem
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: map[uuid.UUID]*StockItem{}}
}

func (m *mockItemRepo) Create(ctx context.Context, i *StockItem) error {
	i.ID = uuid.New()
	m.items[i.ID] = i
	return nil
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	i, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return i, nil
}

func (m *mockItemRepo) Update(ctx context.Context, i *StockItem) error { return nil }
func (m *mockItemRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockItemRepo) List(ctx context.Context, q string, belowMinimum bool, limit, offset int) ([]*StockItem, int, error) {
	return nil, 0, nil
}

func (m *mockItemRepo) ZeroQuantity(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if i, ok := m.items[id]; ok {
			i.Quantity = 0
			n++
		}
	}
	return n, nil
}

func (m *mockItemRepo) RaiseToMinimum(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if i, ok := m.items[id]; ok && i.Quantity < i.MinQuantity {
			i.Quantity = i.MinQuantity
			n++
		}
	}
	return n, nil
}

func (m *mockItemRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	i, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	i.Quantity += delta
	return nil
}

type mockMovementRepo struct {
	rows map[uuid.UUID]*StockMovement
}

func newMockMovementRepo() *mockMovementRepo {
	return &mockMovementRepo{rows: map[uuid.UUID]*StockMovement{}}
}

func (m *mockMovementRepo) Create(ctx context.Context, mv *StockMovement) error {
	mv.ID = uuid.New()
	m.rows[mv.ID] = mv
	return nil
}

func (m *mockMovementRepo) GetByID(ctx context.Context, id uuid.UUID) (*StockMovement, error) {
	mv, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return mv, nil
}

func (m *mockMovementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *mockMovementRepo) List(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*StockMovement, int, error) {
	return nil, 0, nil
}

func newTestService() (*Service, *mockItemRepo, *mockMovementRepo) {
	items := newMockItemRepo()
	movements := newMockMovementRepo()
	return NewService(items, movements, nil), items, movements
}

func seedItem(t *testing.T, items *mockItemRepo, qty, min int) *StockItem {
	t.Helper()
	i := &StockItem{Description: "luvas de procedimento", Quantity: qty, MinQuantity: min}
	if err := items.Create(context.Background(), i); err != nil {
		t.Fatal(err)
	}
	return i
}

func TestRaiseToMinimumOnlyTouchesLowItems(t *testing.T) {
	svc, items, _ := newTestService()
	ctx := context.Background()

	low := seedItem(t, items, 5, 10)
	full := seedItem(t, items, 12, 10)

	n, err := svc.RaiseToMinimum(ctx, []uuid.UUID{low.ID, full.ID})
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if n != 1 {
		t.Errorf("affected = %d, want 1", n)
	}
	if low.Quantity != 10 {
		t.Errorf("low item quantity = %d, want 10", low.Quantity)
	}
	if full.Quantity != 12 {
		t.Errorf("full item quantity = %d, want untouched 12", full.Quantity)
	}
}

func TestZeroQuantity(t *testing.T) {
	svc, items, _ := newTestService()
	ctx := context.Background()

	a := seedItem(t, items, 7, 3)
	b := seedItem(t, items, 0, 3)

	n, err := svc.ZeroQuantity(ctx, []uuid.UUID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("zero: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}
	if a.Quantity != 0 || b.Quantity != 0 {
		t.Errorf("quantities = %d/%d, want 0/0", a.Quantity, b.Quantity)
	}

	n, err = svc.ZeroQuantity(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("empty selection: n=%d err=%v, want 0/nil", n, err)
	}
}

func TestMovementAdjustsQuantity(t *testing.T) {
	svc, items, _ := newTestService()
	ctx := context.Background()

	item := seedItem(t, items, 10, 2)

	in := &StockMovement{ItemID: item.ID, Type: MovementIn, Quantity: 5}
	if err := svc.CreateMovement(ctx, in); err != nil {
		t.Fatalf("create in: %v", err)
	}
	if item.Quantity != 15 {
		t.Errorf("quantity after IN = %d, want 15", item.Quantity)
	}

	out := &StockMovement{ItemID: item.ID, Type: MovementOut, Quantity: 4}
	if err := svc.CreateMovement(ctx, out); err != nil {
		t.Fatalf("create out: %v", err)
	}
	if item.Quantity != 11 {
		t.Errorf("quantity after OUT = %d, want 11", item.Quantity)
	}
}

func TestDeleteMovementReversesEffect(t *testing.T) {
	svc, items, movements := newTestService()
	ctx := context.Background()

	item := seedItem(t, items, 8, 2)

	out := &StockMovement{ItemID: item.ID, Type: MovementOut, Quantity: 3}
	if err := svc.CreateMovement(ctx, out); err != nil {
		t.Fatal(err)
	}
	if item.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", item.Quantity)
	}

	if err := svc.DeleteMovement(ctx, out.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if item.Quantity != 8 {
		t.Errorf("quantity after reversal = %d, want 8", item.Quantity)
	}
	if _, ok := movements.rows[out.ID]; ok {
		t.Error("movement should be gone")
	}
}

func TestCreateMovementValidation(t *testing.T) {
	svc, items, _ := newTestService()
	ctx := context.Background()

	item := seedItem(t, items, 1, 1)

	bad := &StockMovement{ItemID: item.ID, Type: "XFER", Quantity: 1}
	if err := svc.CreateMovement(ctx, bad); !errors.Is(err, ErrInvalidMovementType) {
		t.Errorf("err = %v, want ErrInvalidMovementType", err)
	}

	zero := &StockMovement{ItemID: item.ID, Type: MovementIn, Quantity: 0}
	if err := svc.CreateMovement(ctx, zero); err == nil {
		t.Error("expected error for non-positive quantity")
	}
}

func TestBelowMinimum(t *testing.T) {
	i := StockItem{Quantity: 3, MinQuantity: 5}
	if !i.BelowMinimum() {
		t.Error("3 of 5 should be below minimum")
	}
	i.Quantity = 5
	if i.BelowMinimum() {
		t.Error("5 of 5 should not be below minimum")
	}
}
