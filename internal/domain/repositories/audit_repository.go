package repositories

import (
	"context"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AuditRepository defines the interface for the appointment change log
type AuditRepository interface {
	// Record stores one audit entry
	Record(ctx context.Context, entry *entities.AuditEntry) error

	// ListByRow retrieves the entries of one appointment row, newest first
	ListByRow(ctx context.Context, rowID string, limit int) ([]*entities.AuditEntry, error)
}
