package clinical

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/clinident/clinident/internal/platform/auth"
)

var (
	ErrInvalidTooth   = errors.New("invalid tooth number")
	ErrInvalidSurface = errors.New("invalid tooth surface")
)

type Service struct {
	odontogram    OdontogramRepository
	notes         NoteRepository
	attachments   AttachmentRepository
	prescriptions PrescriptionRepository
	consents      ConsentRepository
}

func NewService(
	odontogram OdontogramRepository,
	notes NoteRepository,
	attachments AttachmentRepository,
	prescriptions PrescriptionRepository,
	consents ConsentRepository,
) *Service {
	return &Service{
		odontogram:    odontogram,
		notes:         notes,
		attachments:   attachments,
		prescriptions: prescriptions,
		consents:      consents,
	}
}

func (s *Service) CreateEntry(ctx context.Context, e *OdontogramEntry) error {
	if err := s.validateEntry(e); err != nil {
		return err
	}
	return s.odontogram.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*OdontogramEntry, error) {
	return s.odontogram.GetByID(ctx, id)
}

func (s *Service) UpdateEntry(ctx context.Context, e *OdontogramEntry) error {
	if err := s.validateEntry(e); err != nil {
		return err
	}
	return s.odontogram.Update(ctx, e)
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.odontogram.Delete(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*OdontogramEntry, int, error) {
	return s.odontogram.List(ctx, patientID, limit, offset)
}

func (s *Service) validateEntry(e *OdontogramEntry) error {
	if e.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if !ValidTooth(e.Tooth) {
		return ErrInvalidTooth
	}
	if e.Surface != "" && !validSurfaces[e.Surface] {
		return ErrInvalidSurface
	}
	return nil
}

// CreateNote records a progress note. The author always comes from the
// authenticated identity, never from the payload.
func (s *Service) CreateNote(ctx context.Context, n *ProgressNote) error {
	if n.AppointmentID == uuid.Nil {
		return errors.New("appointment_id is required")
	}
	if strings.TrimSpace(n.Text) == "" {
		return errors.New("text is required")
	}
	id := auth.IdentityFromContext(ctx)
	if id.ID == "" {
		return errors.New("no authenticated user")
	}
	n.AuthorID = id.ID
	n.AuthorName = id.Name
	return s.notes.Create(ctx, n)
}

func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*ProgressNote, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *Service) UpdateNote(ctx context.Context, n *ProgressNote) error {
	if strings.TrimSpace(n.Text) == "" {
		return errors.New("text is required")
	}
	return s.notes.Update(ctx, n)
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return s.notes.Delete(ctx, id)
}

func (s *Service) ListNotes(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ProgressNote, int, error) {
	return s.notes.List(ctx, appointmentID, limit, offset)
}

func (s *Service) CreateAttachment(ctx context.Context, a *Attachment) error {
	if a.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if a.FilePath == "" {
		return errors.New("file_path is required")
	}
	return s.attachments.Create(ctx, a)
}

func (s *Service) GetAttachment(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	return s.attachments.GetByID(ctx, id)
}

func (s *Service) UpdateAttachment(ctx context.Context, a *Attachment) error {
	if a.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if a.FilePath == "" {
		return errors.New("file_path is required")
	}
	return s.attachments.Update(ctx, a)
}

func (s *Service) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return s.attachments.Delete(ctx, id)
}

func (s *Service) ListAttachments(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Attachment, int, error) {
	return s.attachments.List(ctx, patientID, limit, offset)
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.AppointmentID == uuid.Nil {
		return errors.New("appointment_id is required")
	}
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("text is required")
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) UpdatePrescription(ctx context.Context, p *Prescription) error {
	if p.AppointmentID == uuid.Nil {
		return errors.New("appointment_id is required")
	}
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("text is required")
	}
	return s.prescriptions.Update(ctx, p)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.prescriptions.Delete(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.List(ctx, appointmentID, limit, offset)
}

func (s *Service) CreateConsent(ctx context.Context, f *ConsentForm) error {
	if err := s.validateConsent(f); err != nil {
		return err
	}
	return s.consents.Create(ctx, f)
}

func (s *Service) GetConsent(ctx context.Context, id uuid.UUID) (*ConsentForm, error) {
	return s.consents.GetByID(ctx, id)
}

func (s *Service) UpdateConsent(ctx context.Context, f *ConsentForm) error {
	if err := s.validateConsent(f); err != nil {
		return err
	}
	return s.consents.Update(ctx, f)
}

// SignConsent stamps the signature time and stores the signature image path.
func (s *Service) SignConsent(ctx context.Context, id uuid.UUID, signaturePath string) error {
	return s.consents.Sign(ctx, id, signaturePath)
}

func (s *Service) DeleteConsent(ctx context.Context, id uuid.UUID) error {
	return s.consents.Delete(ctx, id)
}

func (s *Service) ListConsents(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*ConsentForm, int, error) {
	return s.consents.List(ctx, patientID, limit, offset)
}

func (s *Service) validateConsent(f *ConsentForm) error {
	if f.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if f.ProcedureID == uuid.Nil {
		return errors.New("procedure_id is required")
	}
	if strings.TrimSpace(f.Text) == "" {
		return errors.New("text is required")
	}
	return nil
}
