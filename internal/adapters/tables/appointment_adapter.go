package tables

import (
	"context"
	"errors"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/domain/repositories"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

const (
	columnConfirmationEn = "confirmation_message_en"
	columnConfirmationMs = "confirmation_message_ms"
)

// AppointmentAdapter implements the AppointmentRepository interface on an action table
type AppointmentAdapter struct {
	provider providers.GenTablesProvider
	tableID  string
}

// NewAppointmentAdapter creates a new appointment adapter for the given action table
func NewAppointmentAdapter(provider providers.GenTablesProvider, tableID string) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		provider: provider,
		tableID:  tableID,
	}
}

// Create adds a booking row and returns the confirmations the table generated for it
func (a *AppointmentAdapter) Create(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	row, err := a.provider.AddRow(ctx, providers.TableKindAction, a.tableID, map[string]interface{}{
		"patient_name":   request.PatientName,
		"phone_number":   request.PhoneNumber,
		"preferred_date": request.PreferredDate,
		"preferred_time": request.PreferredTime,
		"reason":         request.Reason,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to book appointment", err).
			WithField("details", providers.FailureDetails(err))
	}

	confirmationEn := row.Text(columnConfirmationEn)
	confirmationMs := row.Text(columnConfirmationMs)
	if confirmationEn == "" || confirmationMs == "" {
		observability.LoggerFromContext(ctx).Error().
			Str("row_id", row.RowID).
			Bool("has_en", confirmationEn != "").
			Bool("has_ms", confirmationMs != "").
			Msg("Booking row is missing generated confirmations")
		return nil, apperrors.NewInternalError("Failed to generate confirmation", nil)
	}

	return &entities.AppointmentConfirmation{
		RowID:          row.RowID,
		Confirmation:   confirmationEn,
		ConfirmationEn: confirmationEn,
		ConfirmationMs: confirmationMs,
	}, nil
}

// List retrieves every appointment row flattened for the dashboard
func (a *AppointmentAdapter) List(ctx context.Context) ([]entities.Appointment, error) {
	rows, err := a.provider.ListRows(ctx, providers.TableKindAction, a.tableID)
	if err != nil {
		var upstream *providers.UpstreamError
		if errors.As(err, &upstream) {
			message := upstream.Message
			if message == "" {
				message = "Failed to fetch appointments"
			}
			return nil, apperrors.NewUpstreamError(message, upstream.StatusCode, err)
		}
		return nil, apperrors.NewInternalError("Internal server error", err)
	}

	appointments := make([]entities.Appointment, 0, len(rows))
	for _, row := range rows {
		appointments = append(appointments, flattenRow(row))
	}
	return appointments, nil
}

// Update writes the status and/or doctor notes of one row
func (a *AppointmentAdapter) Update(ctx context.Context, update *entities.AppointmentUpdate) (interface{}, error) {
	body, err := a.provider.UpdateRow(ctx, providers.TableKindAction, a.tableID, update.RowID, update.Columns())
	if err != nil {
		var upstream *providers.UpstreamError
		if errors.As(err, &upstream) {
			return nil, apperrors.NewUpstreamError("Failed to update appointment status", upstream.StatusCode, err)
		}
		return nil, apperrors.NewInternalError("Internal server error", err)
	}
	return body, nil
}
