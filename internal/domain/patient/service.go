package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetActive(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	return s.patients.Archive(ctx, id)
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.patients.Reactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.ListActive(ctx, strings.TrimSpace(q), limit, offset)
}

func (s *Service) ListArchived(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.ListArchived(ctx, strings.TrimSpace(q), limit, offset)
}

func validate(p *Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Document) == "" {
		return fmt.Errorf("document is required")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}
