package entities

import "time"

// AuditAction identifies what happened to an appointment row
type AuditAction string

const (
	AuditActionBooked  AuditAction = "booked"
	AuditActionUpdated AuditAction = "updated"
)

// AuditEntry records one change to an appointment row
type AuditEntry struct {
	ID          string      `json:"id" db:"id"`
	RowID       string      `json:"row_id" db:"row_id"`
	Action      AuditAction `json:"action" db:"action"`
	Status      string      `json:"status,omitempty" db:"status"`
	DoctorNotes *string     `json:"doctor_notes,omitempty" db:"doctor_notes"`
	Actor       string      `json:"actor,omitempty" db:"actor"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}
