package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	activePatients int
	appointments   int
	openInvoices   int
	belowMinimum   int
	agenda         []AppointmentBrief
	activity       []ActivityItem
}

func (m *mockRepo) ActivePatientCount(ctx context.Context) (int, error) {
	return m.activePatients, nil
}

func (m *mockRepo) AppointmentCount(ctx context.Context, from, to time.Time) (int, error) {
	return m.appointments, nil
}

func (m *mockRepo) OpenInvoiceCount(ctx context.Context) (int, error) {
	return m.openInvoices, nil
}

func (m *mockRepo) BelowMinimumCount(ctx context.Context) (int, error) {
	return m.belowMinimum, nil
}

func (m *mockRepo) EarliestAppointments(ctx context.Context, from, to time.Time, limit int) ([]AppointmentBrief, error) {
	if len(m.agenda) > limit {
		return m.agenda[:limit], nil
	}
	return m.agenda, nil
}

func (m *mockRepo) RecentActivity(ctx context.Context, perSource int) ([]ActivityItem, error) {
	return m.activity, nil
}

func TestSummaryCounters(t *testing.T) {
	repo := &mockRepo{activePatients: 42, appointments: 6, openInvoices: 3, belowMinimum: 2}
	svc := NewService(repo, time.UTC)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, sum.ActivePatients)
	assert.Equal(t, 6, sum.AppointmentsToday)
	assert.Equal(t, 3, sum.OpenInvoices)
	assert.Equal(t, 2, sum.ItemsBelowMinimum)
}

func TestActivityFeedSortedNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &mockRepo{activity: []ActivityItem{
		{Kind: "note", Description: "evolução registrada", Timestamp: base.Add(1 * time.Hour)},
		{Kind: "payment", Description: "pagamento recebido", Timestamp: base.Add(3 * time.Hour)},
		{Kind: "invoice", Description: "fatura emitida", Timestamp: base},
	}}
	svc := NewService(repo, time.UTC)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Activity, 3)
	for i := 1; i < len(sum.Activity); i++ {
		assert.False(t, sum.Activity[i].Timestamp.After(sum.Activity[i-1].Timestamp),
			"feed not in descending order at %d", i)
	}
	assert.Equal(t, "payment", sum.Activity[0].Kind)
}

func TestActivityFeedTiesBreakOnDescription(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	repo := &mockRepo{activity: []ActivityItem{
		{Kind: "note", Description: "b second", Timestamp: ts},
		{Kind: "note", Description: "a first", Timestamp: ts},
	}}
	svc := NewService(repo, time.UTC)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.Activity, 2)
	assert.Equal(t, "a first", sum.Activity[0].Description)
	assert.Equal(t, "b second", sum.Activity[1].Description)
}

func TestActivityFeedTruncated(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	var items []ActivityItem
	for i := 0; i < 20; i++ {
		items = append(items, ActivityItem{
			Kind:        "note",
			Description: "note",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	repo := &mockRepo{activity: items}
	svc := NewService(repo, time.UTC)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.Activity, feedSize)
	// The newest rows survive the cut.
	assert.Equal(t, base.Add(19*time.Minute), sum.Activity[0].Timestamp)
}

func TestAgendaCapped(t *testing.T) {
	var agenda []AppointmentBrief
	for i := 0; i < 9; i++ {
		agenda = append(agenda, AppointmentBrief{PatientName: "p", Status: "AG"})
	}
	repo := &mockRepo{agenda: agenda}
	svc := NewService(repo, time.UTC)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.NextAppointments, agendaLimit)
}
