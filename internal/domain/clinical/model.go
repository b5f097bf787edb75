package clinical

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tooth surfaces in dental notation. An empty surface means the entry
// covers the whole tooth.
const (
	SurfaceMesial   = "M"
	SurfaceDistal   = "D"
	SurfaceOcclusal = "O"
	SurfaceIncisal  = "I"
	SurfaceBuccal   = "V" // vestibular
	SurfacePalatal  = "P"
	SurfaceLingual  = "L"
)

var validSurfaces = map[string]bool{
	SurfaceMesial: true, SurfaceDistal: true, SurfaceOcclusal: true,
	SurfaceIncisal: true, SurfaceBuccal: true, SurfacePalatal: true,
	SurfaceLingual: true,
}

// ValidTooth reports whether code is an FDI tooth number: permanent
// dentition 11-48 (quadrants 1-4, positions 1-8) or deciduous 51-85
// (quadrants 5-8, positions 1-5).
func ValidTooth(code int) bool {
	quadrant, position := code/10, code%10
	switch {
	case quadrant >= 1 && quadrant <= 4:
		return position >= 1 && position <= 8
	case quadrant >= 5 && quadrant <= 8:
		return position >= 1 && position <= 5
	}
	return false
}

type OdontogramEntry struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	Tooth               int        `db:"tooth" json:"tooth"`
	Surface             string     `db:"surface" json:"surface"`
	Condition           string     `db:"condition" json:"condition"`
	ExecutedProcedureID *uuid.UUID `db:"executed_procedure_id" json:"executed_procedure_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

type ProgressNote struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	AuthorID      string    `db:"author_id" json:"author_id"`
	AuthorName    string    `db:"author_name" json:"author_name"`
	Text          string    `db:"text" json:"text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Attachment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	FilePath      string     `db:"file_path" json:"file_path"`
	FileType      string     `db:"file_type" json:"file_type"`
	Description   string     `db:"description" json:"description"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type Prescription struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Text          string    `db:"text" json:"text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type ConsentForm struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProcedureID   uuid.UUID  `db:"procedure_id" json:"procedure_id"`
	Text          string     `db:"text" json:"text"`
	SignedAt      *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	SignaturePath string     `db:"signature_path" json:"signature_path"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// Signed reports whether the form has been signed.
func (f *ConsentForm) Signed() bool { return f.SignedAt != nil }

// MarshalJSON adds the derived signed flag to the wire form.
func (f ConsentForm) MarshalJSON() ([]byte, error) {
	type alias ConsentForm
	return json.Marshal(struct {
		alias
		Signed bool `json:"signed"`
	}{alias(f), f.SignedAt != nil})
}
