package treatment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Treatment plan statuses.
const (
	PlanDraft      = "RA" // rascunho
	PlanScheduled  = "AG"
	PlanApproved   = "AP"
	PlanInProgress = "EA"
	PlanDone       = "CO"
	PlanCancelled  = "CA"
)

var validPlanStatuses = map[string]bool{
	PlanDraft: true, PlanScheduled: true, PlanApproved: true,
	PlanInProgress: true, PlanDone: true, PlanCancelled: true,
}

// ValidPlanStatus reports whether code is a known plan status.
func ValidPlanStatus(code string) bool { return validPlanStatuses[code] }

// Planned procedure statuses.
const (
	ProcPlanned   = "PL"
	ProcApproved  = "AP"
	ProcDone      = "CO"
	ProcCancelled = "CA"
)

var validProcStatuses = map[string]bool{
	ProcPlanned: true, ProcApproved: true, ProcDone: true, ProcCancelled: true,
}

type CatalogProcedure struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Code            string          `db:"code" json:"code"`
	Name            string          `db:"name" json:"name"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	BasePrice       decimal.Decimal `db:"base_price" json:"base_price"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type TreatmentPlan struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Status    string    `db:"status" json:"status"`
	Title     string    `db:"title" json:"title"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// TotalPlanned is computed at read time over the plan's procedures.
	TotalPlanned decimal.Decimal `db:"-" json:"total_planned"`
}

type PlannedProcedure struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PlanID      uuid.UUID       `db:"plan_id" json:"plan_id"`
	ProcedureID uuid.UUID       `db:"procedure_id" json:"procedure_id"`
	Tooth       string          `db:"tooth" json:"tooth"`
	Surface     string          `db:"surface" json:"surface"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// LineTotal is quantity times unit price. It is never stored.
func (p *PlannedProcedure) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// MarshalJSON adds the derived line total to the wire form.
func (p PlannedProcedure) MarshalJSON() ([]byte, error) {
	type alias PlannedProcedure
	return json.Marshal(struct {
		alias
		LineTotal decimal.Decimal `json:"line_total"`
	}{alias(p), p.LineTotal()})
}

type ExecutedProcedure struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	PlannedID     *uuid.UUID      `db:"planned_id" json:"planned_id,omitempty"`
	ProcedureID   *uuid.UUID      `db:"procedure_id" json:"procedure_id,omitempty"`
	Tooth         string          `db:"tooth" json:"tooth"`
	Surface       string          `db:"surface" json:"surface"`
	Quantity      int             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	PerformedAt   time.Time       `db:"performed_at" json:"performed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type Quote struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	PlanID     uuid.UUID       `db:"plan_id" json:"plan_id"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Discount   decimal.Decimal `db:"discount" json:"discount"`
	ValidUntil *time.Time      `db:"valid_until" json:"valid_until,omitempty"`
	ApprovedAt *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
