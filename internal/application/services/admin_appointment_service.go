package services

import (
	"context"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	"github.com/zatekoja/clinicassistant/pkg/config"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

const historyLimit = 50

// AdminAppointmentService backs the admin dashboard's appointment list and edits
type AdminAppointmentService struct {
	repo     repositories.AppointmentRepository
	cfg      *config.JamAIConfig
	eventBus providers.EventBus
	audit    repositories.AuditRepository
}

// NewAdminAppointmentService creates a new admin appointment service. eventBus and
// audit may be nil.
func NewAdminAppointmentService(
	repo repositories.AppointmentRepository,
	cfg *config.JamAIConfig,
	eventBus providers.EventBus,
	audit repositories.AuditRepository,
) *AdminAppointmentService {
	if eventBus == nil {
		eventBus = providers.NoopEventBus{}
	}
	return &AdminAppointmentService{
		repo:     repo,
		cfg:      cfg,
		eventBus: eventBus,
		audit:    audit,
	}
}

// ListAppointments returns every appointment flattened for the dashboard
func (s *AdminAppointmentService) ListAppointments(ctx context.Context) ([]entities.Appointment, error) {
	if !s.cfg.Configured() {
		return nil, apperrors.NewConfigurationError("JamAI API key not configured")
	}

	appointments, err := s.repo.List(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to fetch appointments")
		return nil, err
	}
	return appointments, nil
}

// UpdateAppointment changes the status and/or doctor notes of one row. An empty
// status leaves it unchanged; a nil doctorNotes leaves the notes unchanged.
func (s *AdminAppointmentService) UpdateAppointment(ctx context.Context, rowID, status string, doctorNotes *string, actor string) (interface{}, error) {
	if rowID == "" || (status == "" && doctorNotes == nil) {
		return nil, apperrors.NewValidationError("Row ID and either status or doctorNotes is required")
	}

	update := &entities.AppointmentUpdate{RowID: rowID, DoctorNotes: doctorNotes}
	if status != "" {
		st := entities.AppointmentStatus(status)
		if !st.IsValid() {
			return nil, apperrors.NewValidationError("Invalid status. Must be one of: " + entities.AppointmentStatusList())
		}
		update.Status = &st
	}

	if !s.cfg.Configured() {
		return nil, apperrors.NewConfigurationError("JamAI API key not configured")
	}

	body, err := s.repo.Update(ctx, update)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("row_id", rowID).Msg("Failed to update appointment")
		return nil, err
	}

	s.afterUpdate(ctx, update, actor)
	return body, nil
}

func (s *AdminAppointmentService) afterUpdate(ctx context.Context, update *entities.AppointmentUpdate, actor string) {
	logger := observability.LoggerFromContext(ctx)

	status := ""
	if update.Status != nil {
		status = string(*update.Status)
	}

	event := entities.NewAppointmentEvent(entities.AppointmentEventUpdated, update.RowID, status)
	if err := s.eventBus.Publish(ctx, providers.EventChannelAppointments, event); err != nil {
		logger.Warn().Err(err).Str("row_id", update.RowID).Msg("Failed to publish update event")
	}

	if s.audit == nil {
		return
	}
	entry := &entities.AuditEntry{
		RowID:       update.RowID,
		Action:      entities.AuditActionUpdated,
		Status:      status,
		DoctorNotes: update.DoctorNotes,
		Actor:       actor,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("row_id", update.RowID).Msg("Failed to record update audit entry")
	}
}

// AppointmentHistory returns the audit trail of one row, newest first
func (s *AdminAppointmentService) AppointmentHistory(ctx context.Context, rowID string) ([]*entities.AuditEntry, error) {
	if s.audit == nil {
		return nil, apperrors.NewNotFoundError("Appointment history is not available")
	}
	if rowID == "" {
		return nil, apperrors.NewValidationError("Row ID is required")
	}

	entries, err := s.audit.ListByRow(ctx, rowID, historyLimit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
