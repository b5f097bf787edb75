package clinical

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinident/clinident/internal/platform/auth"
)

func TestValidTooth(t *testing.T) {
	cases := []struct {
		tooth int
		want  bool
	}{
		{11, true}, {18, true}, {21, true}, {48, true}, // permanent
		{51, true}, {55, true}, {85, true}, // deciduous
		{10, false}, {19, false}, {49, false}, {56, false}, {86, false},
		{0, false}, {90, false}, {-11, false}, {111, false},
	}
	for _, tc := range cases {
		if got := ValidTooth(tc.tooth); got != tc.want {
			t.Errorf("ValidTooth(%d) = %v, want %v", tc.tooth, got, tc.want)
		}
	}
}

type mockOdontogramRepo struct {
	entries map[uuid.UUID]*OdontogramEntry
}

func newMockOdontogramRepo() *mockOdontogramRepo {
	return &mockOdontogramRepo{entries: map[uuid.UUID]*OdontogramEntry{}}
}

func (m *mockOdontogramRepo) Create(ctx context.Context, e *OdontogramEntry) error {
	e.ID = uuid.New()
	m.entries[e.ID] = e
	return nil
}

func (m *mockOdontogramRepo) GetByID(ctx context.Context, id uuid.UUID) (*OdontogramEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

func (m *mockOdontogramRepo) Update(ctx context.Context, e *OdontogramEntry) error {
	if _, ok := m.entries[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOdontogramRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.entries, id)
	return nil
}

func (m *mockOdontogramRepo) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*OdontogramEntry, int, error) {
	out := []*OdontogramEntry{}
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, len(out), nil
}

type mockNoteRepo struct {
	notes map[uuid.UUID]*ProgressNote
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: map[uuid.UUID]*ProgressNote{}}
}

func (m *mockNoteRepo) Create(ctx context.Context, n *ProgressNote) error {
	n.ID = uuid.New()
	m.notes[n.ID] = n
	return nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*ProgressNote, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return n, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, n *ProgressNote) error { return nil }
func (m *mockNoteRepo) Delete(ctx context.Context, id uuid.UUID) error   { return nil }

func (m *mockNoteRepo) List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ProgressNote, int, error) {
	return nil, 0, nil
}

type mockConsentRepo struct {
	forms map[uuid.UUID]*ConsentForm
}

func newMockConsentRepo() *mockConsentRepo {
	return &mockConsentRepo{forms: map[uuid.UUID]*ConsentForm{}}
}

func (m *mockConsentRepo) Create(ctx context.Context, f *ConsentForm) error {
	f.ID = uuid.New()
	m.forms[f.ID] = f
	return nil
}

func (m *mockConsentRepo) GetByID(ctx context.Context, id uuid.UUID) (*ConsentForm, error) {
	f, ok := m.forms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f, nil
}

func (m *mockConsentRepo) Update(ctx context.Context, f *ConsentForm) error { return nil }

func (m *mockConsentRepo) Sign(ctx context.Context, id uuid.UUID, signaturePath string) error {
	f, ok := m.forms[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	f.SignedAt = &now
	f.SignaturePath = signaturePath
	return nil
}

func (m *mockConsentRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockConsentRepo) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*ConsentForm, int, error) {
	return nil, 0, nil
}

func newTestService(odontogram OdontogramRepository, notes NoteRepository, consents ConsentRepository) *Service {
	if odontogram == nil {
		odontogram = newMockOdontogramRepo()
	}
	if notes == nil {
		notes = newMockNoteRepo()
	}
	if consents == nil {
		consents = newMockConsentRepo()
	}
	return NewService(odontogram, notes, nil, nil, consents)
}

func TestCreateEntryRejectsBadTooth(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	e := &OdontogramEntry{PatientID: uuid.New(), Tooth: 19}
	if err := svc.CreateEntry(context.Background(), e); !errors.Is(err, ErrInvalidTooth) {
		t.Errorf("err = %v, want ErrInvalidTooth", err)
	}
}

func TestCreateEntryRejectsBadSurface(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	e := &OdontogramEntry{PatientID: uuid.New(), Tooth: 11, Surface: "X"}
	if err := svc.CreateEntry(context.Background(), e); !errors.Is(err, ErrInvalidSurface) {
		t.Errorf("err = %v, want ErrInvalidSurface", err)
	}
}

func TestCreateEntryAllowsWholeToothSurface(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	e := &OdontogramEntry{PatientID: uuid.New(), Tooth: 85, Condition: "cárie"}
	if err := svc.CreateEntry(context.Background(), e); err != nil {
		t.Errorf("create: %v", err)
	}
}

func TestCreateNoteTakesAuthorFromIdentity(t *testing.T) {
	notes := newMockNoteRepo()
	svc := newTestService(nil, notes, nil)

	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		ID:    "user-42",
		Name:  "Dr. Lima",
		Roles: []string{auth.RoleDentist},
	})

	n := &ProgressNote{
		AppointmentID: uuid.New(),
		Text:          "restauração no 36",
		AuthorID:      "spoofed",
		AuthorName:    "Someone Else",
	}
	if err := svc.CreateNote(ctx, n); err != nil {
		t.Fatalf("create note: %v", err)
	}
	if n.AuthorID != "user-42" || n.AuthorName != "Dr. Lima" {
		t.Errorf("author = %q/%q, want identity from context", n.AuthorID, n.AuthorName)
	}
}

func TestCreateNoteRequiresIdentity(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	n := &ProgressNote{AppointmentID: uuid.New(), Text: "note"}
	if err := svc.CreateNote(context.Background(), n); err == nil {
		t.Error("expected error without an authenticated user")
	}
}

func TestSignConsentStampsTimeAndPath(t *testing.T) {
	consents := newMockConsentRepo()
	svc := newTestService(nil, nil, consents)
	ctx := context.Background()

	f := &ConsentForm{
		PatientID:   uuid.New(),
		ProcedureID: uuid.New(),
		Text:        "consent text",
	}
	if err := svc.CreateConsent(ctx, f); err != nil {
		t.Fatalf("create consent: %v", err)
	}
	if f.Signed() {
		t.Fatal("new form should not be signed")
	}

	if err := svc.SignConsent(ctx, f.ID, "signatures/f.png"); err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := svc.GetConsent(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Signed() {
		t.Error("form should be signed")
	}
	if got.SignaturePath != "signatures/f.png" {
		t.Errorf("signature path = %q", got.SignaturePath)
	}
}
