package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus  = errors.New("invalid appointment status")
	ErrInvalidChannel = errors.New("invalid reminder channel")
)

type Service struct {
	appointments Repository
	reminders    ReminderRepository
}

func NewService(appointments Repository, reminders ReminderRepository) *Service {
	return &Service{appointments: appointments, reminders: reminders}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := s.validate(a); err != nil {
		return err
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	return s.appointments.Update(ctx, a)
}

// SetStatus moves an appointment to any status. An unknown code is
// rejected before the row is touched.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.appointments.SetStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

// Search filters the agenda. Malformed date bounds are dropped like any
// other unusable filter value rather than failing the whole listing.
func (s *Service) Search(ctx context.Context, p SearchParams, limit, offset int) ([]*Appointment, int, error) {
	p.Query = strings.TrimSpace(p.Query)
	if _, err := time.Parse("2006-01-02", p.Start); err != nil {
		p.Start = ""
	}
	if _, err := time.Parse("2006-01-02", p.End); err != nil {
		p.End = ""
	}
	return s.appointments.Search(ctx, p, limit, offset)
}

func (s *Service) validate(a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return errors.New("patient_id is required")
	}
	if a.StartTime.IsZero() {
		return errors.New("start_time is required")
	}
	if a.EndTime.IsZero() {
		return errors.New("end_time is required")
	}
	if !ValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func (s *Service) CreateReminder(ctx context.Context, rm *Reminder) error {
	if rm.Status == "" {
		rm.Status = ReminderScheduled
	}
	if err := s.validateReminder(rm); err != nil {
		return err
	}
	return s.reminders.Create(ctx, rm)
}

func (s *Service) GetReminder(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	return s.reminders.GetByID(ctx, id)
}

func (s *Service) UpdateReminder(ctx context.Context, rm *Reminder) error {
	if err := s.validateReminder(rm); err != nil {
		return err
	}
	return s.reminders.Update(ctx, rm)
}

// MarkReminderSent stamps the delivery time and flips the status to sent.
func (s *Service) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return s.reminders.MarkSent(ctx, id)
}

func (s *Service) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	return s.reminders.Delete(ctx, id)
}

func (s *Service) ListReminders(ctx context.Context, appointmentID *uuid.UUID, limit, offset int) ([]*Reminder, int, error) {
	return s.reminders.List(ctx, appointmentID, limit, offset)
}

func (s *Service) validateReminder(rm *Reminder) error {
	if rm.AppointmentID == uuid.Nil {
		return errors.New("appointment_id is required")
	}
	if rm.ScheduledAt.IsZero() {
		return errors.New("scheduled_at is required")
	}
	if !validChannels[rm.Channel] {
		return ErrInvalidChannel
	}
	if !validReminderStatuses[rm.Status] {
		return errors.New("invalid reminder status")
	}
	return nil
}
