package repositories

import (
	"context"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create books an appointment and returns the generated confirmations
	Create(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error)

	// List retrieves all appointments as flattened rows
	List(ctx context.Context) ([]entities.Appointment, error)

	// Update changes status and/or doctor notes of one appointment and returns
	// the raw response of the store
	Update(ctx context.Context, update *entities.AppointmentUpdate) (interface{}, error)
}
