package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockApptRepo struct {
	appointments map[uuid.UUID]*Appointment
	lastSearch   SearchParams
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appointments: map[uuid.UUID]*Appointment{}}
}

func (m *mockApptRepo) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockApptRepo) Update(ctx context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockApptRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	a, ok := m.appointments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = status
	return nil
}

func (m *mockApptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.appointments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.appointments, id)
	return nil
}

func (m *mockApptRepo) Search(ctx context.Context, p SearchParams, limit, offset int) ([]*Appointment, int, error) {
	m.lastSearch = p
	out := []*Appointment{}
	for _, a := range m.appointments {
		if p.Status != "" && a.Status != p.Status {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

type mockReminderRepo struct {
	reminders map[uuid.UUID]*Reminder
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{reminders: map[uuid.UUID]*Reminder{}}
}

func (m *mockReminderRepo) Create(ctx context.Context, r *Reminder) error {
	r.ID = uuid.New()
	m.reminders[r.ID] = r
	return nil
}

func (m *mockReminderRepo) GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	r, ok := m.reminders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockReminderRepo) Update(ctx context.Context, r *Reminder) error {
	if _, ok := m.reminders[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.reminders[r.ID] = r
	return nil
}

func (m *mockReminderRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	r, ok := m.reminders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	r.Status = ReminderSent
	r.SentAt = &now
	return nil
}

func (m *mockReminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.reminders[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.reminders, id)
	return nil
}

func (m *mockReminderRepo) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Reminder, int, error) {
	out := []*Reminder{}
	for _, r := range m.reminders {
		if appointmentID != nil && r.AppointmentID != *appointmentID {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func validAppointment() *Appointment {
	return &Appointment{
		PatientID: uuid.New(),
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		Room:      "1",
	}
}

func TestCreateDefaultsStatus(t *testing.T) {
	svc := NewService(newMockApptRepo(), newMockReminderRepo())

	a := validAppointment()
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want %q", a.Status, StatusScheduled)
	}
}

func TestSetStatusAcceptsAnyKnownCode(t *testing.T) {
	repo := newMockApptRepo()
	svc := NewService(repo, newMockReminderRepo())
	ctx := context.Background()

	a := validAppointment()
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	// No transition graph: done straight back to scheduled is allowed.
	for _, code := range []string{StatusDone, StatusScheduled, StatusNoShow, StatusConfirmed} {
		if err := svc.SetStatus(ctx, a.ID, code); err != nil {
			t.Errorf("SetStatus(%q): %v", code, err)
		}
	}
}

func TestSetStatusRejectsUnknownCodeWithoutTouchingRecord(t *testing.T) {
	repo := newMockApptRepo()
	svc := NewService(repo, newMockReminderRepo())
	ctx := context.Background()

	a := validAppointment()
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := svc.SetStatus(ctx, a.ID, "XX")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}

	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("status = %q after rejected change, want %q", got.Status, StatusScheduled)
	}
}

func TestEndBeforeStartIsAccepted(t *testing.T) {
	svc := NewService(newMockApptRepo(), newMockReminderRepo())

	a := validAppointment()
	a.EndTime = a.StartTime.Add(-time.Hour)
	if err := svc.Create(context.Background(), a); err != nil {
		t.Errorf("create with end before start: %v", err)
	}
}

func TestCreateReminderValidatesChannel(t *testing.T) {
	svc := NewService(newMockApptRepo(), newMockReminderRepo())

	r := &Reminder{
		AppointmentID: uuid.New(),
		Channel:       "FAX",
		ScheduledAt:   time.Now(),
	}
	if err := svc.CreateReminder(context.Background(), r); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("err = %v, want ErrInvalidChannel", err)
	}
}

func TestMarkReminderSent(t *testing.T) {
	reminders := newMockReminderRepo()
	svc := NewService(newMockApptRepo(), reminders)
	ctx := context.Background()

	r := &Reminder{
		AppointmentID: uuid.New(),
		Channel:       ChannelWhatsApp,
		ScheduledAt:   time.Now(),
	}
	if err := svc.CreateReminder(ctx, r); err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if r.Status != ReminderScheduled {
		t.Fatalf("status = %q, want %q", r.Status, ReminderScheduled)
	}

	if err := svc.MarkReminderSent(ctx, r.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	got, err := svc.GetReminder(ctx, r.ID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if got.Status != ReminderSent {
		t.Errorf("status = %q, want %q", got.Status, ReminderSent)
	}
	if got.SentAt == nil {
		t.Error("sent_at should be stamped")
	}
}

func TestSearchDropsMalformedDateBounds(t *testing.T) {
	repo := newMockApptRepo()
	svc := NewService(repo, newMockReminderRepo())
	ctx := context.Background()

	_, _, err := svc.Search(ctx, SearchParams{Start: "not-a-date", End: "31/12/2025"}, 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastSearch.Start != "" || repo.lastSearch.End != "" {
		t.Errorf("malformed bounds should be dropped, repo saw %q/%q",
			repo.lastSearch.Start, repo.lastSearch.End)
	}

	_, _, err = svc.Search(ctx, SearchParams{Start: "2025-03-01", End: "2025-03-31"}, 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastSearch.Start != "2025-03-01" || repo.lastSearch.End != "2025-03-31" {
		t.Errorf("valid bounds should pass through, repo saw %q/%q",
			repo.lastSearch.Start, repo.lastSearch.End)
	}
}
