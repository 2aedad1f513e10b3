package tables_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicassistant/internal/adapters/tables"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

type MockGenTablesProvider struct {
	mock.Mock
}

func (m *MockGenTablesProvider) AddRow(ctx context.Context, kind providers.TableKind, tableID string, data map[string]interface{}) (*providers.GeneratedRow, error) {
	args := m.Called(ctx, kind, tableID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.GeneratedRow), args.Error(1)
}

func (m *MockGenTablesProvider) ListRows(ctx context.Context, kind providers.TableKind, tableID string) ([]map[string]interface{}, error) {
	args := m.Called(ctx, kind, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

func (m *MockGenTablesProvider) UpdateRow(ctx context.Context, kind providers.TableKind, tableID, rowID string, data map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, kind, tableID, rowID, data)
	return args.Get(0), args.Error(1)
}

func (m *MockGenTablesProvider) ListTables(ctx context.Context, kind providers.TableKind) (interface{}, error) {
	args := m.Called(ctx, kind)
	return args.Get(0), args.Error(1)
}

func bookingRequest() *entities.AppointmentRequest {
	return &entities.AppointmentRequest{
		PatientName:   "Aisyah",
		PhoneNumber:   "+60123456789",
		PreferredDate: "2026-11-02",
		PreferredTime: "10:00",
		Reason:        "Persistent cough",
		Language:      entities.LanguageMalay,
	}
}

func TestAppointmentAdapter_Create(t *testing.T) {
	t.Run("returns both confirmations", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "appointment_bookings", map[string]interface{}{
			"patient_name":   "Aisyah",
			"phone_number":   "+60123456789",
			"preferred_date": "2026-11-02",
			"preferred_time": "10:00",
			"reason":         "Persistent cough",
		}).Return(&providers.GeneratedRow{
			RowID: "row-1",
			Columns: map[string]string{
				"confirmation_message_en": "Your appointment is booked.",
				"confirmation_message_ms": "Temujanji anda telah ditempah.",
			},
		}, nil)

		confirmation, err := adapter.Create(context.Background(), bookingRequest())
		require.NoError(t, err)
		assert.Equal(t, "row-1", confirmation.RowID)
		assert.Equal(t, "Your appointment is booked.", confirmation.ConfirmationEn)
		assert.Equal(t, "Temujanji anda telah ditempah.", confirmation.ConfirmationMs)
		provider.AssertExpectations(t)
	})

	t.Run("missing malay confirmation fails", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "appointment_bookings", mock.Anything).
			Return(&providers.GeneratedRow{Columns: map[string]string{"confirmation_message_en": "Booked."}}, nil)

		_, err := adapter.Create(context.Background(), bookingRequest())
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to generate confirmation", appErr.Message)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	})

	t.Run("upstream failure carries details", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("AddRow", mock.Anything, providers.TableKindAction, "appointment_bookings", mock.Anything).
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusBadGateway})

		_, err := adapter.Create(context.Background(), bookingRequest())
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to book appointment", appErr.Message)
		assert.Equal(t, "API request failed: 502", appErr.Fields["details"])
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	})
}

func TestAppointmentAdapter_List(t *testing.T) {
	t.Run("flattens rows with key fallbacks", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("ListRows", mock.Anything, providers.TableKindAction, "appointment_bookings").
			Return([]map[string]interface{}{
				{
					"ID":                      "row-1",
					"patient_name":            map[string]interface{}{"value": "Aisyah"},
					"prefered_time":           "09:30",
					"appointment_status":      map[string]interface{}{"value": "Booked"},
					"confirmation_message_en": map[string]interface{}{"value": "Booked for Monday"},
					"Updated at":              "2026-10-01T08:00:00Z",
					"created_at":              "2026-09-30T08:00:00Z",
				},
				{
					"ID":                   "row-2",
					"current_state":        "Completed",
					"appointment_status":   "Booked",
					"confirmation_message": nil,
					"doctor_notes":         map[string]interface{}{"original": "kept as is"},
				},
			}, nil)

		appointments, err := adapter.List(context.Background())
		require.NoError(t, err)
		require.Len(t, appointments, 2)

		first := appointments[0]
		assert.Equal(t, "row-1", first.ID)
		assert.Equal(t, "Aisyah", first.PatientName)
		assert.Equal(t, "09:30", first.PreferedTime)
		assert.Nil(t, first.PreferredTime)
		assert.Equal(t, "Booked", first.CurrentState)
		assert.Equal(t, "Booked for Monday", first.ConfirmationMessage)
		assert.Equal(t, "2026-10-01T08:00:00Z", first.CreatedAt)

		second := appointments[1]
		assert.Equal(t, "Completed", second.CurrentState)
		assert.Nil(t, second.ConfirmationMessage)
		assert.Equal(t, map[string]interface{}{"original": "kept as is"}, second.DoctorNotes)
	})

	t.Run("upstream message is mirrored", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("ListRows", mock.Anything, providers.TableKindAction, "appointment_bookings").
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusForbidden, Message: "project access denied"})

		_, err := adapter.List(context.Background())
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "project access denied", appErr.Message)
		assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus())
	})

	t.Run("upstream without message uses default", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("ListRows", mock.Anything, providers.TableKindAction, "appointment_bookings").
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusNotFound})

		_, err := adapter.List(context.Background())
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to fetch appointments", appErr.Message)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus())
	})
}

func TestAppointmentAdapter_Update(t *testing.T) {
	status := entities.AppointmentStatusCompleted
	notes := ""
	update := &entities.AppointmentUpdate{RowID: "row-1", Status: &status, DoctorNotes: &notes}

	t.Run("passes columns through", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("UpdateRow", mock.Anything, providers.TableKindAction, "appointment_bookings", "row-1",
			map[string]interface{}{"current_state": "Completed", "doctor_notes": ""}).
			Return(map[string]interface{}{"ok": true}, nil)

		body, err := adapter.Update(context.Background(), update)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"ok": true}, body)
	})

	t.Run("upstream status is mirrored", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("UpdateRow", mock.Anything, providers.TableKindAction, "appointment_bookings", "row-1", mock.Anything).
			Return(nil, &providers.UpstreamError{StatusCode: http.StatusNotFound})

		_, err := adapter.Update(context.Background(), update)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to update appointment status", appErr.Message)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus())
	})

	t.Run("transport failure is internal", func(t *testing.T) {
		provider := new(MockGenTablesProvider)
		adapter := tables.NewAppointmentAdapter(provider, "appointment_bookings")

		provider.On("UpdateRow", mock.Anything, providers.TableKindAction, "appointment_bookings", "row-1", mock.Anything).
			Return(nil, errors.New("dial tcp: connection refused"))

		_, err := adapter.Update(context.Background(), update)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}
