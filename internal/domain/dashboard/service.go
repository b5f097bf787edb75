package dashboard

import (
	"context"
	"sort"
	"time"
)

const (
	feedSize    = 8
	agendaLimit = 5
)

type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService builds the dashboard over the clinic's local timezone. The
// day boundary follows loc, not the server clock's zone.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	now := time.Now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	sum := &Summary{}

	var err error
	if sum.ActivePatients, err = s.repo.ActivePatientCount(ctx); err != nil {
		return nil, err
	}
	if sum.AppointmentsToday, err = s.repo.AppointmentCount(ctx, from, to); err != nil {
		return nil, err
	}
	if sum.OpenInvoices, err = s.repo.OpenInvoiceCount(ctx); err != nil {
		return nil, err
	}
	if sum.ItemsBelowMinimum, err = s.repo.BelowMinimumCount(ctx); err != nil {
		return nil, err
	}
	if sum.NextAppointments, err = s.repo.EarliestAppointments(ctx, from, to, agendaLimit); err != nil {
		return nil, err
	}
	if sum.Activity, err = s.recentActivity(ctx); err != nil {
		return nil, err
	}
	return sum, nil
}

// recentActivity merges the per-source slices into one feed. The sources
// arrive in no particular order, so the merged slice is fully re-sorted:
// newest first, ties broken by description so the feed is stable across
// refreshes.
func (s *Service) recentActivity(ctx context.Context) ([]ActivityItem, error) {
	items, err := s.repo.RecentActivity(ctx, feedSize)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].Description < items[j].Description
	})
	if len(items) > feedSize {
		items = items[:feedSize]
	}
	return items, nil
}
