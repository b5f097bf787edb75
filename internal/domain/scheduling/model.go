package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment status codes. There is deliberately no transition graph:
// front-desk staff move appointments between any two statuses.
const (
	StatusScheduled  = "AG" // agendada
	StatusConfirmed  = "CF" // confirmada
	StatusInProgress = "EA" // em andamento
	StatusDone       = "CO" // concluída
	StatusCancelled  = "CA" // cancelada
	StatusNoShow     = "FA" // faltou
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusInProgress: true,
	StatusDone: true, StatusCancelled: true, StatusNoShow: true,
}

// ValidStatus reports whether code is a known appointment status.
func ValidStatus(code string) bool { return validStatuses[code] }

type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Status    string    `db:"status" json:"status"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Room      string    `db:"room" json:"room"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// PatientName is joined in by list queries for display.
	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// Reminder channels and delivery statuses.
const (
	ChannelWhatsApp = "WA"
	ChannelSMS      = "SM"
	ChannelEmail    = "EM"

	ReminderScheduled = "AG"
	ReminderSent      = "EN"
	ReminderFailed    = "FA"
)

var validChannels = map[string]bool{
	ChannelWhatsApp: true, ChannelSMS: true, ChannelEmail: true,
}

var validReminderStatuses = map[string]bool{
	ReminderScheduled: true, ReminderSent: true, ReminderFailed: true,
}

type Reminder struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	Channel       string     `db:"channel" json:"channel"`
	Status        string     `db:"status" json:"status"`
	ScheduledAt   time.Time  `db:"scheduled_at" json:"scheduled_at"`
	SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
