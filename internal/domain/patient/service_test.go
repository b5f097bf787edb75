package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: map[uuid.UUID]*Patient{}}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.Active = true
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetActive(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok || !p.Active {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	stored, ok := m.patients[p.ID]
	if !ok || !stored.Active {
		return pgx.ErrNoRows
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Archive(ctx context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok || !p.Active {
		return pgx.ErrNoRows
	}
	now := time.Now()
	p.Active = false
	p.ArchivedAt = &now
	return nil
}

func (m *mockRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok || p.Active {
		return pgx.ErrNoRows
	}
	p.Active = true
	p.ArchivedAt = nil
	return nil
}

func (m *mockRepo) ListActive(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return m.list(true, q)
}

func (m *mockRepo) ListArchived(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return m.list(false, q)
}

func (m *mockRepo) list(active bool, q string) ([]*Patient, int, error) {
	out := []*Patient{}
	for _, p := range m.patients {
		if p.Active != active {
			continue
		}
		if q != "" && !strings.Contains(p.Name, q) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func validPatient() *Patient {
	return &Patient{
		Name:      "Maria Souza",
		Document:  "123.456.789-00",
		BirthDate: time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		Phone:     "11 99999-0000",
	}
}

func TestCreateRequiresFields(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing name", func(p *Patient) { p.Name = "" }},
		{"missing document", func(p *Patient) { p.Document = "" }},
		{"missing birth date", func(p *Patient) { p.BirthDate = time.Time{} }},
		{"missing phone", func(p *Patient) { p.Phone = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPatient()
			tc.mutate(p)
			if err := svc.Create(context.Background(), p); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestArchiveHidesPatientFromActiveViews(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := validPatient()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Archive(ctx, p.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if _, err := svc.Get(ctx, p.ID); err == nil {
		t.Error("archived patient should behave as not found")
	}

	active, _, err := svc.List(ctx, "", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active list: got %d patients, want 0", len(active))
	}

	archived, _, err := svc.ListArchived(ctx, "", 20, 0)
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("archived list: got %d patients, want 1", len(archived))
	}
	if archived[0].ArchivedAt == nil {
		t.Error("archived patient should carry an archive timestamp")
	}
}

func TestReactivateRestoresPatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := validPatient()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Archive(ctx, p.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := svc.Reactivate(ctx, p.ID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get after reactivate: %v", err)
	}
	if !got.Active {
		t.Error("patient should be active after reactivation")
	}
	if got.ArchivedAt != nil {
		t.Error("archive timestamp should be cleared on reactivation")
	}
}

func TestListTrimsQuery(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p := validPatient()
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _, err := svc.List(ctx, "  Maria  ", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d patients, want 1", len(got))
	}
}
