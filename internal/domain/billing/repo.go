package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceSearchParams narrows an invoice listing. Zero values mean "no
// filter".
type InvoiceSearchParams struct {
	PatientID *uuid.UUID
	Status    string
	Query     string // matched against patient name or the invoice id text
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	// GetByID loads the invoice with total_paid and balance computed.
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, p InvoiceSearchParams, limit, offset int) ([]*Invoice, int, error)
	// SetStatusBulk updates every listed invoice in one statement and
	// returns the number of rows touched.
	SetStatusBulk(ctx context.Context, ids []uuid.UUID, status string) (int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error)
}
