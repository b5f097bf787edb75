package clinical

import (
	"context"

	"github.com/google/uuid"
)

type OdontogramRepository interface {
	Create(ctx context.Context, e *OdontogramEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*OdontogramEntry, error)
	Update(ctx context.Context, e *OdontogramEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*OdontogramEntry, int, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n *ProgressNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProgressNote, error)
	Update(ctx context.Context, n *ProgressNote) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*ProgressNote, int, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	Update(ctx context.Context, a *Attachment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Attachment, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}

type ConsentRepository interface {
	Create(ctx context.Context, f *ConsentForm) error
	GetByID(ctx context.Context, id uuid.UUID) (*ConsentForm, error)
	Update(ctx context.Context, f *ConsentForm) error
	Sign(ctx context.Context, id uuid.UUID, signaturePath string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*ConsentForm, int, error)
}
