package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvoiceRepo struct {
	invoices map[uuid.UUID]*Invoice
	payments *mockPaymentRepo
}

func newMockInvoiceRepo(payments *mockPaymentRepo) *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: map[uuid.UUID]*Invoice{}, payments: payments}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	m.invoices[inv.ID] = inv
	return nil
}

// GetByID derives total_paid and balance the way the SQL layer does.
func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	paid := decimal.Zero
	for _, p := range m.payments.rows {
		if p.InvoiceID == id {
			paid = paid.Add(p.Amount)
		}
	}
	out := *inv
	out.TotalPaid = paid
	out.Balance = inv.Amount.Sub(paid)
	return &out, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, inv *Invoice) error { return nil }
func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockInvoiceRepo) Search(ctx context.Context, p InvoiceSearchParams, limit, offset int) ([]*Invoice, int, error) {
	return nil, 0, nil
}

func (m *mockInvoiceRepo) SetStatusBulk(ctx context.Context, ids []uuid.UUID, status string) (int64, error) {
	var n int64
	for _, id := range ids {
		if inv, ok := m.invoices[id]; ok {
			inv.Status = status
			n++
		}
	}
	return n, nil
}

type mockPaymentRepo struct {
	rows map[uuid.UUID]*Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{rows: map[uuid.UUID]*Payment{}}
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	m.rows[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, p *Payment) error { return nil }
func (m *mockPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *mockPaymentRepo) List(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return nil, 0, nil
}

func newTestService() (*Service, *mockInvoiceRepo, *mockPaymentRepo) {
	payments := newMockPaymentRepo()
	invoices := newMockInvoiceRepo(payments)
	return NewService(invoices, payments), invoices, payments
}

func TestInvoiceBalanceReflectsPayments(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	inv := &Invoice{PatientID: uuid.New(), Amount: decimal.RequireFromString("200.00")}
	require.NoError(t, svc.CreateInvoice(ctx, inv))
	assert.Equal(t, InvoiceOpen, inv.Status)

	for _, amount := range []string{"50.00", "30.00"} {
		p := &Payment{
			InvoiceID: inv.ID,
			Method:    MethodPix,
			Amount:    decimal.RequireFromString(amount),
		}
		require.NoError(t, svc.CreatePayment(ctx, p))
	}

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalPaid.Equal(decimal.RequireFromString("80.00")), "total paid = %s", got.TotalPaid)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("120.00")), "balance = %s", got.Balance)
}

func TestSetStatusBulk(t *testing.T) {
	svc, invoices, _ := newTestService()
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		inv := &Invoice{PatientID: uuid.New(), Amount: decimal.RequireFromString("10.00")}
		require.NoError(t, svc.CreateInvoice(ctx, inv))
		ids = append(ids, inv.ID)
	}

	// Paid without the balance settled: allowed, treated as a write-off.
	n, err := svc.SetStatusBulk(ctx, ids, InvoicePaid)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	for _, id := range ids {
		assert.Equal(t, InvoicePaid, invoices.invoices[id].Status)
	}

	n, err = svc.SetStatusBulk(ctx, ids, "ZZ")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, n)

	n, err = svc.SetStatusBulk(ctx, nil, InvoiceCancelled)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreatePaymentDefaultsAndValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := &Payment{InvoiceID: uuid.New(), Method: MethodCash, Amount: decimal.RequireFromString("45.00")}
	require.NoError(t, svc.CreatePayment(ctx, p))
	assert.Equal(t, 1, p.Installment)
	assert.False(t, p.PaidAt.IsZero())

	bad := &Payment{InvoiceID: uuid.New(), Method: "CHK", Amount: decimal.RequireFromString("10.00")}
	assert.ErrorIs(t, svc.CreatePayment(ctx, bad), ErrInvalidMethod)

	neg := &Payment{InvoiceID: uuid.New(), Method: MethodCard, Amount: decimal.RequireFromString("10.00"), Installment: -2}
	assert.Error(t, svc.CreatePayment(ctx, neg))
}
