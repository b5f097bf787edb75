package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceOpen      = "AB" // aberta
	InvoicePartial   = "PA"
	InvoicePaid      = "PG"
	InvoiceCancelled = "CA"
)

var validInvoiceStatuses = map[string]bool{
	InvoiceOpen: true, InvoicePartial: true, InvoicePaid: true, InvoiceCancelled: true,
}

// ValidInvoiceStatus reports whether code is a known invoice status.
func ValidInvoiceStatus(code string) bool { return validInvoiceStatuses[code] }

// Payment methods.
const (
	MethodPix      = "PX"
	MethodCard     = "CC"
	MethodCash     = "DN" // dinheiro
	MethodTransfer = "BL" // boleto
)

var validMethods = map[string]bool{
	MethodPix: true, MethodCard: true, MethodCash: true, MethodTransfer: true,
}

type Invoice struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PatientID   uuid.UUID       `db:"patient_id" json:"patient_id"`
	Origin      string          `db:"origin" json:"origin"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	ExternalRef string          `db:"external_ref" json:"external_ref"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`

	// Derived at read time, never stored. Amounts already received and
	// what remains outstanding.
	TotalPaid   decimal.Decimal `db:"-" json:"total_paid"`
	Balance     decimal.Decimal `db:"-" json:"balance"`
	PatientName string          `db:"-" json:"patient_name,omitempty"`
}

type Payment struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Method      string          `db:"method" json:"method"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Installment int             `db:"installment" json:"installment"`
	PaidAt      time.Time       `db:"paid_at" json:"paid_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
