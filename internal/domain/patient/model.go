package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the canonical identity record every other module references.
// Archival is a soft delete: the row never leaves the table, so historical
// appointments and invoices keep a valid target.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Document   string     `db:"document" json:"document"`
	BirthDate  time.Time  `db:"birth_date" json:"birth_date"`
	Phone      string     `db:"phone" json:"phone"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	Active     bool       `db:"active" json:"active"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
