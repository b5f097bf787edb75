package dashboard

import (
	"context"
	"time"
)

// Repository answers the counting and feed queries the dashboard is made
// of. Day bounds are half-open: [from, to).
type Repository interface {
	ActivePatientCount(ctx context.Context) (int, error)
	AppointmentCount(ctx context.Context, from, to time.Time) (int, error)
	OpenInvoiceCount(ctx context.Context) (int, error)
	BelowMinimumCount(ctx context.Context) (int, error)
	EarliestAppointments(ctx context.Context, from, to time.Time, limit int) ([]AppointmentBrief, error)
	// RecentActivity returns up to perSource rows from each feed source.
	// No ordering across sources is promised.
	RecentActivity(ctx context.Context, perSource int) ([]ActivityItem, error)
}
