package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ActivePatientCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM patients WHERE active").Scan(&n)
	return n, err
}

func (r *pgRepository) AppointmentCount(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM appointments WHERE start_time >= $1 AND start_time < $2",
		from, to).Scan(&n)
	return n, err
}

func (r *pgRepository) OpenInvoiceCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM invoices WHERE status IN ('AB', 'PA')").Scan(&n)
	return n, err
}

func (r *pgRepository) BelowMinimumCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stock_items WHERE quantity < min_quantity").Scan(&n)
	return n, err
}

func (r *pgRepository) EarliestAppointments(ctx context.Context, from, to time.Time, limit int) ([]AppointmentBrief, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, p.name, a.status, a.start_time, a.room
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.start_time >= $1 AND a.start_time < $2
		ORDER BY a.start_time ASC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	briefs := []AppointmentBrief{}
	for rows.Next() {
		var b AppointmentBrief
		if err := rows.Scan(&b.ID, &b.PatientName, &b.Status, &b.StartTime, &b.Room); err != nil {
			return nil, err
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}

// activitySources pulls the latest rows of each feed source with a
// ready-made description. Each SELECT is limited on its own; the merge
// happens in the service.
var activitySources = []struct {
	kind  string
	query string
}{
	{"note", `
		SELECT 'progress note by ' || n.author_name, n.created_at
		FROM progress_notes n
		ORDER BY n.created_at DESC LIMIT $1`},
	{"attachment", `
		SELECT 'attachment ' || a.file_path || ' for ' || p.name, a.created_at
		FROM attachments a JOIN patients p ON p.id = a.patient_id
		ORDER BY a.created_at DESC LIMIT $1`},
	{"prescription", `
		SELECT 'prescription for appointment ' || pr.appointment_id, pr.created_at
		FROM prescriptions pr
		ORDER BY pr.created_at DESC LIMIT $1`},
	{"executed_procedure", `
		SELECT 'procedure executed, tooth ' || e.tooth, e.performed_at
		FROM executed_procedures e
		ORDER BY e.performed_at DESC LIMIT $1`},
	{"invoice", `
		SELECT 'invoice ' || i.id || ' for ' || p.name, i.created_at
		FROM invoices i JOIN patients p ON p.id = i.patient_id
		ORDER BY i.created_at DESC LIMIT $1`},
	{"payment", `
		SELECT 'payment of ' || pay.amount || ' on invoice ' || pay.invoice_id, pay.paid_at
		FROM payments pay
		ORDER BY pay.paid_at DESC LIMIT $1`},
}

func (r *pgRepository) RecentActivity(ctx context.Context, perSource int) ([]ActivityItem, error) {
	items := []ActivityItem{}
	for _, src := range activitySources {
		rows, err := r.pool.Query(ctx, src.query, perSource)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			item := ActivityItem{Kind: src.kind}
			if err := rows.Scan(&item.Description, &item.Timestamp); err != nil {
				rows.Close()
				return nil, err
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return items, nil
}
