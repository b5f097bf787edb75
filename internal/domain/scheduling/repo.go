package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// SearchParams narrows an appointment listing. Zero values mean "no filter".
type SearchParams struct {
	Status string
	Start  string // inclusive date bound on the start time, YYYY-MM-DD
	End    string // inclusive date bound on the start time, YYYY-MM-DD
	Query  string // matched against patient name, room and notes
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, p SearchParams, limit, offset int) ([]*Appointment, int, error)
}

type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	Update(ctx context.Context, r *Reminder) error
	MarkSent(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Reminder, int, error)
}
