package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus = errors.New("invalid invoice status")
	ErrInvalidMethod = errors.New("invalid payment method")
)

type Service struct {
	invoices InvoiceRepository
	payments PaymentRepository
}

func NewService(invoices InvoiceRepository, payments PaymentRepository) *Service {
	return &Service{invoices: invoices, payments: payments}
}

func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.Status == "" {
		inv.Status = InvoiceOpen
	}
	if err := s.validateInvoice(inv); err != nil {
		return err
	}
	return s.invoices.Create(ctx, inv)
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *Service) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	if err := s.validateInvoice(inv); err != nil {
		return err
	}
	return s.invoices.Update(ctx, inv)
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.invoices.Delete(ctx, id)
}

func (s *Service) SearchInvoices(ctx context.Context, p InvoiceSearchParams, limit, offset int) ([]*Invoice, int, error) {
	p.Query = strings.TrimSpace(p.Query)
	return s.invoices.Search(ctx, p, limit, offset)
}

// SetStatusBulk moves a set of invoices to one status. The outstanding
// balance is intentionally not checked: marking an invoice paid while
// money is still owed is an operator decision, typically a write-off.
func (s *Service) SetStatusBulk(ctx context.Context, ids []uuid.UUID, status string) (int64, error) {
	if !ValidInvoiceStatus(status) {
		return 0, ErrInvalidStatus
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.invoices.SetStatusBulk(ctx, ids, status)
}

func (s *Service) validateInvoice(inv *Invoice) error {
	if inv.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if inv.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if !ValidInvoiceStatus(inv.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func (s *Service) CreatePayment(ctx context.Context, p *Payment) error {
	if p.Installment == 0 {
		p.Installment = 1
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	if err := s.validatePayment(p); err != nil {
		return err
	}
	return s.payments.Create(ctx, p)
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) UpdatePayment(ctx context.Context, p *Payment) error {
	if err := s.validatePayment(p); err != nil {
		return err
	}
	return s.payments.Update(ctx, p)
}

func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.payments.Delete(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, invoiceID *uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.payments.List(ctx, invoiceID, limit, offset)
}

func (s *Service) validatePayment(p *Payment) error {
	if p.InvoiceID == uuid.Nil {
		return errors.New("invoice_id is required")
	}
	if !validMethods[p.Method] {
		return ErrInvalidMethod
	}
	if p.Amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if p.Installment < 1 {
		return errors.New("installment must be at least 1")
	}
	return nil
}
