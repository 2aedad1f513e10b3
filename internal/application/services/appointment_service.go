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

// AppointmentService handles patient bookings
type AppointmentService struct {
	repo     repositories.AppointmentRepository
	cfg      *config.JamAIConfig
	eventBus providers.EventBus
	audit    repositories.AuditRepository
	notifier providers.ConfirmationNotifier
}

// NewAppointmentService creates a new appointment service. eventBus, audit and
// notifier may be nil when the matching backend is not configured.
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	cfg *config.JamAIConfig,
	eventBus providers.EventBus,
	audit repositories.AuditRepository,
	notifier providers.ConfirmationNotifier,
) *AppointmentService {
	if eventBus == nil {
		eventBus = providers.NoopEventBus{}
	}
	if notifier == nil {
		notifier = providers.NoopNotifier{}
	}
	return &AppointmentService{
		repo:     repo,
		cfg:      cfg,
		eventBus: eventBus,
		audit:    audit,
		notifier: notifier,
	}
}

// BookAppointment submits a booking and returns the confirmation in the requested language
func (s *AppointmentService) BookAppointment(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	if !request.HasRequiredFields() {
		return nil, apperrors.NewValidationError("All fields are required")
	}
	if !s.cfg.Configured() {
		return nil, apperrors.NewConfigurationError("JamAI API key not configured")
	}

	confirmation, err := s.repo.Create(ctx, request)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Appointment booking failed")
		return nil, err
	}
	confirmation.Confirmation = confirmation.Select(request.Language)

	s.afterBooking(ctx, request, confirmation)
	return confirmation, nil
}

// afterBooking runs the optional side effects of a booking. Failures are logged only.
func (s *AppointmentService) afterBooking(ctx context.Context, request *entities.AppointmentRequest, confirmation *entities.AppointmentConfirmation) {
	logger := observability.LoggerFromContext(ctx)

	event := entities.NewAppointmentEvent(entities.AppointmentEventBooked, confirmation.RowID, string(entities.AppointmentStatusBooked))
	event.PatientName = request.PatientName
	if err := s.eventBus.Publish(ctx, providers.EventChannelAppointments, event); err != nil {
		logger.Warn().Err(err).Str("row_id", confirmation.RowID).Msg("Failed to publish booking event")
	}

	if s.audit != nil && confirmation.RowID != "" {
		entry := &entities.AuditEntry{
			RowID:  confirmation.RowID,
			Action: entities.AuditActionBooked,
			Status: string(entities.AppointmentStatusBooked),
		}
		if err := s.audit.Record(ctx, entry); err != nil {
			logger.Warn().Err(err).Str("row_id", confirmation.RowID).Msg("Failed to record booking audit entry")
		}
	}

	if err := s.notifier.SendConfirmation(ctx, request.PhoneNumber, confirmation.Confirmation); err != nil {
		logger.Warn().Err(err).Str("row_id", confirmation.RowID).Msg("Failed to deliver booking confirmation")
	}
}
