package inventory

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stock movement directions.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

var validMovementTypes = map[string]bool{MovementIn: true, MovementOut: true}

type StockItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Description string     `db:"description" json:"description"`
	Brand       string     `db:"brand" json:"brand"`
	Lot         string     `db:"lot" json:"lot"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	MinQuantity int        `db:"min_quantity" json:"min_quantity"`
	Quantity    int        `db:"quantity" json:"quantity"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// TotalConsumed sums OUT movements. Computed at read time.
	TotalConsumed int `db:"-" json:"total_consumed"`
}

// BelowMinimum reports whether the item needs restocking.
func (i *StockItem) BelowMinimum() bool { return i.Quantity < i.MinQuantity }

// MarshalJSON adds the derived restock flag to the wire form.
func (i StockItem) MarshalJSON() ([]byte, error) {
	type alias StockItem
	return json.Marshal(struct {
		alias
		BelowMinimum bool `json:"below_minimum"`
	}{alias(i), i.Quantity < i.MinQuantity})
}

type StockMovement struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ItemID        uuid.UUID  `db:"item_id" json:"item_id"`
	Type          string     `db:"type" json:"type"`
	Quantity      int        `db:"quantity" json:"quantity"`
	Reason        string     `db:"reason" json:"reason"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
