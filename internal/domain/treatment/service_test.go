package treatment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type mockCatalogRepo struct {
	procs map[uuid.UUID]*CatalogProcedure
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{procs: map[uuid.UUID]*CatalogProcedure{}}
}

func (m *mockCatalogRepo) Create(ctx context.Context, p *CatalogProcedure) error {
	p.ID = uuid.New()
	m.procs[p.ID] = p
	return nil
}

func (m *mockCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*CatalogProcedure, error) {
	p, ok := m.procs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockCatalogRepo) Update(ctx context.Context, p *CatalogProcedure) error { return nil }
func (m *mockCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

func (m *mockCatalogRepo) List(ctx context.Context, q string, limit, offset int) ([]*CatalogProcedure, int, error) {
	return nil, 0, nil
}

type mockPlanRepo struct {
	plans      map[uuid.UUID]*TreatmentPlan
	total      decimal.Decimal
	lastSearch PlanSearchParams
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: map[uuid.UUID]*TreatmentPlan{}}
}

func (m *mockPlanRepo) Create(ctx context.Context, p *TreatmentPlan) error {
	p.ID = uuid.New()
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPlanRepo) Update(ctx context.Context, p *TreatmentPlan) error { return nil }
func (m *mockPlanRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

func (m *mockPlanRepo) Search(ctx context.Context, params PlanSearchParams, limit, offset int) ([]*TreatmentPlan, int, error) {
	m.lastSearch = params
	return nil, 0, nil
}

func (m *mockPlanRepo) TotalPlanned(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	return m.total, nil
}

type mockPlannedRepo struct {
	lines map[uuid.UUID]*PlannedProcedure
}

func newMockPlannedRepo() *mockPlannedRepo {
	return &mockPlannedRepo{lines: map[uuid.UUID]*PlannedProcedure{}}
}

func (m *mockPlannedRepo) Create(ctx context.Context, p *PlannedProcedure) error {
	p.ID = uuid.New()
	m.lines[p.ID] = p
	return nil
}

func (m *mockPlannedRepo) GetByID(ctx context.Context, id uuid.UUID) (*PlannedProcedure, error) {
	p, ok := m.lines[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPlannedRepo) Update(ctx context.Context, p *PlannedProcedure) error { return nil }
func (m *mockPlannedRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

func (m *mockPlannedRepo) List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*PlannedProcedure, int, error) {
	return nil, 0, nil
}

type mockExecutedRepo struct {
	rows map[uuid.UUID]*ExecutedProcedure
}

func newMockExecutedRepo() *mockExecutedRepo {
	return &mockExecutedRepo{rows: map[uuid.UUID]*ExecutedProcedure{}}
}

func (m *mockExecutedRepo) Create(ctx context.Context, e *ExecutedProcedure) error {
	e.ID = uuid.New()
	m.rows[e.ID] = e
	return nil
}

func (m *mockExecutedRepo) GetByID(ctx context.Context, id uuid.UUID) (*ExecutedProcedure, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

func (m *mockExecutedRepo) Update(ctx context.Context, e *ExecutedProcedure) error { return nil }
func (m *mockExecutedRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }

func (m *mockExecutedRepo) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ExecutedProcedure, int, error) {
	return nil, 0, nil
}

type mockQuoteRepo struct{}

func (mockQuoteRepo) Create(ctx context.Context, q *Quote) error { return nil }
func (mockQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return nil, pgx.ErrNoRows
}
func (mockQuoteRepo) Update(ctx context.Context, q *Quote) error      { return nil }
func (mockQuoteRepo) Approve(ctx context.Context, id uuid.UUID) error { return nil }
func (mockQuoteRepo) Delete(ctx context.Context, id uuid.UUID) error  { return nil }
func (mockQuoteRepo) List(ctx context.Context, planID *uuid.UUID, limit, offset int) ([]*Quote, int, error) {
	return nil, 0, nil
}

type testRepos struct {
	catalog  *mockCatalogRepo
	plans    *mockPlanRepo
	planned  *mockPlannedRepo
	executed *mockExecutedRepo
}

func newTestService() (*Service, testRepos) {
	r := testRepos{
		catalog:  newMockCatalogRepo(),
		plans:    newMockPlanRepo(),
		planned:  newMockPlannedRepo(),
		executed: newMockExecutedRepo(),
	}
	return NewService(r.catalog, r.plans, r.planned, r.executed, mockQuoteRepo{}), r
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		qty   int
		price string
		want  string
	}{
		{1, "150.00", "150.00"},
		{3, "80.50", "241.50"},
		{0, "150.00", "0.00"},
		{2, "0", "0"},
	}
	for _, tc := range cases {
		p := PlannedProcedure{Quantity: tc.qty, UnitPrice: decimal.RequireFromString(tc.price)}
		if got := p.LineTotal(); !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("LineTotal(qty=%d, price=%s) = %s, want %s", tc.qty, tc.price, got, tc.want)
		}
	}
}

func TestCreatePlannedDefaultsPriceFromCatalog(t *testing.T) {
	svc, repos := newTestService()
	ctx := context.Background()

	proc := &CatalogProcedure{Code: "D-101", Name: "Restauração", BasePrice: decimal.RequireFromString("220.00")}
	if err := repos.catalog.Create(ctx, proc); err != nil {
		t.Fatal(err)
	}

	p := &PlannedProcedure{PlanID: uuid.New(), ProcedureID: proc.ID, Quantity: 1}
	if err := svc.CreatePlanned(ctx, p); err != nil {
		t.Fatalf("create planned: %v", err)
	}
	if !p.UnitPrice.Equal(proc.BasePrice) {
		t.Errorf("unit price = %s, want catalog base price %s", p.UnitPrice, proc.BasePrice)
	}
}

func TestCreatePlannedKeepsZeroQuantity(t *testing.T) {
	svc, repos := newTestService()
	ctx := context.Background()

	proc := &CatalogProcedure{Code: "D-103", Name: "Avaliação", BasePrice: decimal.RequireFromString("50.00")}
	if err := repos.catalog.Create(ctx, proc); err != nil {
		t.Fatal(err)
	}

	p := &PlannedProcedure{PlanID: uuid.New(), ProcedureID: proc.ID, Quantity: 0}
	if err := svc.CreatePlanned(ctx, p); err != nil {
		t.Fatalf("create planned: %v", err)
	}
	if p.Quantity != 0 {
		t.Errorf("quantity = %d, want the caller's 0", p.Quantity)
	}
	if !p.LineTotal().IsZero() {
		t.Errorf("line total = %s, want 0", p.LineTotal())
	}
}

func TestCreatePlannedKeepsExplicitPrice(t *testing.T) {
	svc, repos := newTestService()
	ctx := context.Background()

	proc := &CatalogProcedure{Code: "D-102", Name: "Limpeza", BasePrice: decimal.RequireFromString("120.00")}
	if err := repos.catalog.Create(ctx, proc); err != nil {
		t.Fatal(err)
	}

	negotiated := decimal.RequireFromString("99.90")
	p := &PlannedProcedure{PlanID: uuid.New(), ProcedureID: proc.ID, Quantity: 2, UnitPrice: negotiated}
	if err := svc.CreatePlanned(ctx, p); err != nil {
		t.Fatalf("create planned: %v", err)
	}
	if !p.UnitPrice.Equal(negotiated) {
		t.Errorf("unit price = %s, want the caller's %s", p.UnitPrice, negotiated)
	}
}

func TestGetPlanCarriesPlannedTotal(t *testing.T) {
	svc, repos := newTestService()
	ctx := context.Background()

	plan := &TreatmentPlan{PatientID: uuid.New(), Status: PlanApproved}
	if err := repos.plans.Create(ctx, plan); err != nil {
		t.Fatal(err)
	}
	repos.plans.total = decimal.RequireFromString("562.50")

	got, err := svc.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if !got.TotalPlanned.Equal(repos.plans.total) {
		t.Errorf("total planned = %s, want 562.50", got.TotalPlanned)
	}
}

func TestSearchPlansDropsUnknownStatus(t *testing.T) {
	svc, repos := newTestService()

	_, _, err := svc.SearchPlans(context.Background(), PlanSearchParams{Status: "ZZ"}, 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repos.plans.lastSearch.Status != "" {
		t.Errorf("unknown status should be dropped, repo saw %q", repos.plans.lastSearch.Status)
	}
}

func TestCreateExecutedInheritsFromPlannedLine(t *testing.T) {
	svc, repos := newTestService()
	ctx := context.Background()

	procID := uuid.New()
	line := &PlannedProcedure{
		PlanID:      uuid.New(),
		ProcedureID: procID,
		Quantity:    1,
		UnitPrice:   decimal.RequireFromString("300.00"),
		Status:      ProcApproved,
	}
	if err := repos.planned.Create(ctx, line); err != nil {
		t.Fatal(err)
	}

	e := &ExecutedProcedure{AppointmentID: uuid.New(), PlannedID: &line.ID}
	if err := svc.CreateExecuted(ctx, e); err != nil {
		t.Fatalf("create executed: %v", err)
	}
	if e.ProcedureID == nil || *e.ProcedureID != procID {
		t.Error("executed procedure should inherit the planned line's catalog procedure")
	}
	if !e.UnitPrice.Equal(line.UnitPrice) {
		t.Errorf("unit price = %s, want %s", e.UnitPrice, line.UnitPrice)
	}
	if e.PerformedAt.IsZero() {
		t.Error("performed_at should default to now")
	}
}
