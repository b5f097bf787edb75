package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// Summary is the front page of the clinic for one local calendar day.
type Summary struct {
	ActivePatients    int                `json:"active_patients"`
	AppointmentsToday int                `json:"appointments_today"`
	OpenInvoices      int                `json:"open_invoices"`
	ItemsBelowMinimum int                `json:"items_below_minimum"`
	NextAppointments  []AppointmentBrief `json:"next_appointments"`
	Activity          []ActivityItem     `json:"activity"`
}

// AppointmentBrief is one row of the day's agenda.
type AppointmentBrief struct {
	ID          uuid.UUID `json:"id"`
	PatientName string    `json:"patient_name"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	Room        string    `json:"room"`
}

// ActivityItem is one entry of the recent-activity feed. Kind names the
// source table.
type ActivityItem struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
