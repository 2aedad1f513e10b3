package entities

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentEventType represents the type of appointment event
type AppointmentEventType string

const (
	AppointmentEventBooked  AppointmentEventType = "appointment.booked"
	AppointmentEventUpdated AppointmentEventType = "appointment.updated"
)

// AppointmentEvent is published whenever an appointment row is created or changed
type AppointmentEvent struct {
	ID          string               `json:"id"`
	Type        AppointmentEventType `json:"type"`
	RowID       string               `json:"row_id,omitempty"`
	Status      string               `json:"status,omitempty"`
	PatientName string               `json:"patient_name,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

// NewAppointmentEvent creates a new appointment event
func NewAppointmentEvent(eventType AppointmentEventType, rowID, status string) *AppointmentEvent {
	return &AppointmentEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		RowID:     rowID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}
