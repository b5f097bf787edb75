package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	// GetActive returns the patient only while not archived.
	GetActive(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Archive soft-deletes: active=false plus an archival timestamp.
	Archive(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	// ListActive filters by a substring match over name, document and
	// email when q is non-empty.
	ListActive(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
	ListArchived(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
}
