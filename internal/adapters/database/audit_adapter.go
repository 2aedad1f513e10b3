package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

const auditTable = "appointment_audit"

const auditSchema = `CREATE TABLE IF NOT EXISTS appointment_audit (
	id           TEXT PRIMARY KEY,
	row_id       TEXT NOT NULL,
	action       TEXT NOT NULL,
	status       TEXT,
	doctor_notes TEXT,
	actor        TEXT,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointment_audit_row_id ON appointment_audit (row_id, created_at DESC);`

const defaultAuditLimit = 50

// AuditAdapter implements the AuditRepository interface on PostgreSQL
type AuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAuditAdapter creates a new audit adapter
func NewAuditAdapter(client *postgres.Client) *AuditAdapter {
	return &AuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.AuditRepository = (*AuditAdapter)(nil)

// EnsureSchema creates the audit table when it does not exist yet
func (a *AuditAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, auditSchema); err != nil {
		return apperrors.NewInternalError("failed to create audit schema", err)
	}
	return nil
}

// Record stores one audit entry
func (a *AuditAdapter) Record(ctx context.Context, entry *entities.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":           entry.ID,
		"row_id":       entry.RowID,
		"action":       string(entry.Action),
		"status":       nullString(entry.Status),
		"doctor_notes": entry.DoctorNotes,
		"actor":        nullString(entry.Actor),
		"created_at":   entry.CreatedAt,
	}

	query, args, err := a.db.Insert(auditTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record audit entry", err)
	}
	return nil
}

// ListByRow retrieves the entries of one appointment row, newest first
func (a *AuditAdapter) ListByRow(ctx context.Context, rowID string, limit int) ([]*entities.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	query, args, err := a.db.Select(
		"id", "row_id", "action", "status", "doctor_notes", "actor", "created_at",
	).From(auditTable).
		Where(goqu.Ex{"row_id": rowID}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list audit entries", err)
	}
	defer rows.Close()

	entries := make([]*entities.AuditEntry, 0)
	for rows.Next() {
		entry := &entities.AuditEntry{}
		var action string
		var status, notes, actor sql.NullString
		if err := rows.Scan(&entry.ID, &entry.RowID, &action, &status, &notes, &actor, &entry.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan audit entry", err)
		}
		entry.Action = entities.AuditAction(action)
		entry.Status = status.String
		entry.Actor = actor.String
		if notes.Valid {
			n := notes.String
			entry.DoctorNotes = &n
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate audit entries", err)
	}

	return entries, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
