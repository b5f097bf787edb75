package treatment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPlanStatus = errors.New("invalid plan status")
	ErrInvalidProcStatus = errors.New("invalid procedure status")
)

type Service struct {
	catalog  CatalogRepository
	plans    PlanRepository
	planned  PlannedRepository
	executed ExecutedRepository
	quotes   QuoteRepository
}

func NewService(
	catalog CatalogRepository,
	plans PlanRepository,
	planned PlannedRepository,
	executed ExecutedRepository,
	quotes QuoteRepository,
) *Service {
	return &Service{
		catalog:  catalog,
		plans:    plans,
		planned:  planned,
		executed: executed,
		quotes:   quotes,
	}
}

func (s *Service) CreateCatalogProcedure(ctx context.Context, p *CatalogProcedure) error {
	if err := s.validateCatalog(p); err != nil {
		return err
	}
	return s.catalog.Create(ctx, p)
}

func (s *Service) GetCatalogProcedure(ctx context.Context, id uuid.UUID) (*CatalogProcedure, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) UpdateCatalogProcedure(ctx context.Context, p *CatalogProcedure) error {
	if err := s.validateCatalog(p); err != nil {
		return err
	}
	return s.catalog.Update(ctx, p)
}

func (s *Service) DeleteCatalogProcedure(ctx context.Context, id uuid.UUID) error {
	return s.catalog.Delete(ctx, id)
}

func (s *Service) ListCatalog(ctx context.Context, q string, limit, offset int) ([]*CatalogProcedure, int, error) {
	return s.catalog.List(ctx, strings.TrimSpace(q), limit, offset)
}

func (s *Service) validateCatalog(p *CatalogProcedure) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.BasePrice.IsNegative() {
		return errors.New("base_price must not be negative")
	}
	return nil
}

func (s *Service) CreatePlan(ctx context.Context, p *TreatmentPlan) error {
	if p.Status == "" {
		p.Status = PlanDraft
	}
	if err := s.validatePlan(p); err != nil {
		return err
	}
	return s.plans.Create(ctx, p)
}

// GetPlan loads the plan with its derived planned total.
func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.plans.TotalPlanned(ctx, id)
	if err != nil {
		return nil, err
	}
	p.TotalPlanned = total
	return p, nil
}

func (s *Service) UpdatePlan(ctx context.Context, p *TreatmentPlan) error {
	if err := s.validatePlan(p); err != nil {
		return err
	}
	return s.plans.Update(ctx, p)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

// SearchPlans filters by patient and status. An unknown status code is
// dropped rather than rejected, matching the list screen's behavior.
func (s *Service) SearchPlans(ctx context.Context, params PlanSearchParams, limit, offset int) ([]*TreatmentPlan, int, error) {
	if !ValidPlanStatus(params.Status) {
		params.Status = ""
	}
	return s.plans.Search(ctx, params, limit, offset)
}

func (s *Service) validatePlan(p *TreatmentPlan) error {
	if p.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if !ValidPlanStatus(p.Status) {
		return ErrInvalidPlanStatus
	}
	return nil
}

// CreatePlanned stores a plan line. Quantity is taken as given, zero
// included; the transport layer owns the default for an absent field.
func (s *Service) CreatePlanned(ctx context.Context, p *PlannedProcedure) error {
	if p.Status == "" {
		p.Status = ProcPlanned
	}
	if err := s.validatePlanned(p); err != nil {
		return err
	}
	if p.UnitPrice.IsZero() {
		// Default the price from the catalog when the caller leaves it out.
		proc, err := s.catalog.GetByID(ctx, p.ProcedureID)
		if err == nil {
			p.UnitPrice = proc.BasePrice
		}
	}
	return s.planned.Create(ctx, p)
}

func (s *Service) GetPlanned(ctx context.Context, id uuid.UUID) (*PlannedProcedure, error) {
	return s.planned.GetByID(ctx, id)
}

func (s *Service) UpdatePlanned(ctx context.Context, p *PlannedProcedure) error {
	if err := s.validatePlanned(p); err != nil {
		return err
	}
	return s.planned.Update(ctx, p)
}

func (s *Service) DeletePlanned(ctx context.Context, id uuid.UUID) error {
	return s.planned.Delete(ctx, id)
}

func (s *Service) ListPlanned(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*PlannedProcedure, int, error) {
	return s.planned.List(ctx, planID, limit, offset)
}

func (s *Service) validatePlanned(p *PlannedProcedure) error {
	if p.PlanID == uuid.Nil {
		return errors.New("plan_id is required")
	}
	if p.ProcedureID == uuid.Nil {
		return errors.New("procedure_id is required")
	}
	if p.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if p.UnitPrice.IsNegative() {
		return errors.New("unit_price must not be negative")
	}
	if !validProcStatuses[p.Status] {
		return ErrInvalidProcStatus
	}
	return nil
}

func (s *Service) CreateExecuted(ctx context.Context, e *ExecutedProcedure) error {
	if e.Quantity == 0 {
		e.Quantity = 1
	}
	if e.PerformedAt.IsZero() {
		e.PerformedAt = time.Now()
	}
	if err := s.validateExecuted(e); err != nil {
		return err
	}
	// An executed procedure spawned from the plan inherits the planned
	// line's catalog procedure and price when the caller leaves them out.
	if e.PlannedID != nil && (e.ProcedureID == nil || e.UnitPrice.IsZero()) {
		planned, err := s.planned.GetByID(ctx, *e.PlannedID)
		if err == nil {
			if e.ProcedureID == nil {
				e.ProcedureID = &planned.ProcedureID
			}
			if e.UnitPrice.IsZero() {
				e.UnitPrice = planned.UnitPrice
			}
		}
	}
	return s.executed.Create(ctx, e)
}

func (s *Service) GetExecuted(ctx context.Context, id uuid.UUID) (*ExecutedProcedure, error) {
	return s.executed.GetByID(ctx, id)
}

func (s *Service) UpdateExecuted(ctx context.Context, e *ExecutedProcedure) error {
	if err := s.validateExecuted(e); err != nil {
		return err
	}
	return s.executed.Update(ctx, e)
}

func (s *Service) DeleteExecuted(ctx context.Context, id uuid.UUID) error {
	return s.executed.Delete(ctx, id)
}

func (s *Service) ListExecuted(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ExecutedProcedure, int, error) {
	return s.executed.List(ctx, appointmentID, limit, offset)
}

func (s *Service) validateExecuted(e *ExecutedProcedure) error {
	if e.AppointmentID == uuid.Nil {
		return errors.New("appointment_id is required")
	}
	if e.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if e.UnitPrice.IsNegative() {
		return errors.New("unit_price must not be negative")
	}
	return nil
}

func (s *Service) CreateQuote(ctx context.Context, q *Quote) error {
	if err := s.validateQuote(q); err != nil {
		return err
	}
	return s.quotes.Create(ctx, q)
}

func (s *Service) GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.quotes.GetByID(ctx, id)
}

func (s *Service) UpdateQuote(ctx context.Context, q *Quote) error {
	if err := s.validateQuote(q); err != nil {
		return err
	}
	return s.quotes.Update(ctx, q)
}

// ApproveQuote stamps the approval time.
func (s *Service) ApproveQuote(ctx context.Context, id uuid.UUID) error {
	return s.quotes.Approve(ctx, id)
}

func (s *Service) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	return s.quotes.Delete(ctx, id)
}

func (s *Service) ListQuotes(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*Quote, int, error) {
	return s.quotes.List(ctx, planID, limit, offset)
}

func (s *Service) validateQuote(q *Quote) error {
	if q.PlanID == uuid.Nil {
		return errors.New("plan_id is required")
	}
	if q.Total.IsNegative() {
		return errors.New("total must not be negative")
	}
	if q.Discount.IsNegative() {
		return errors.New("discount must not be negative")
	}
	return nil
}
