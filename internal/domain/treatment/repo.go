package treatment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogRepository interface {
	Create(ctx context.Context, p *CatalogProcedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*CatalogProcedure, error)
	Update(ctx context.Context, p *CatalogProcedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q string, limit, offset int) ([]*CatalogProcedure, int, error)
}

// PlanSearchParams narrows a plan listing. Zero values mean "no filter".
type PlanSearchParams struct {
	PatientID *uuid.UUID
	Status    string
}

type PlanRepository interface {
	Create(ctx context.Context, p *TreatmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	Update(ctx context.Context, p *TreatmentPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params PlanSearchParams, limit, offset int) ([]*TreatmentPlan, int, error)
	// TotalPlanned sums quantity times unit price over the plan's procedures.
	TotalPlanned(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error)
}

type PlannedRepository interface {
	Create(ctx context.Context, p *PlannedProcedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*PlannedProcedure, error)
	Update(ctx context.Context, p *PlannedProcedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*PlannedProcedure, int, error)
}

type ExecutedRepository interface {
	Create(ctx context.Context, e *ExecutedProcedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExecutedProcedure, error)
	Update(ctx context.Context, e *ExecutedProcedure) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ExecutedProcedure, int, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	Update(ctx context.Context, q *Quote) error
	Approve(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*Quote, int, error)
}
