package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

type MockChatService struct{ mock.Mock }

func (m *MockChatService) Reply(ctx context.Context, message string) (*entities.ChatMessage, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChatMessage), args.Error(1)
}

type MockAppointmentService struct{ mock.Mock }

func (m *MockAppointmentService) BookAppointment(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AppointmentConfirmation), args.Error(1)
}

type MockAdminAuthService struct{ mock.Mock }

func (m *MockAdminAuthService) Login(ctx context.Context, username, password string) (*entities.AdminSession, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AdminSession), args.Error(1)
}

type MockAdminAppointmentService struct{ mock.Mock }

func (m *MockAdminAppointmentService) ListAppointments(ctx context.Context) ([]entities.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Appointment), args.Error(1)
}

func (m *MockAdminAppointmentService) UpdateAppointment(ctx context.Context, rowID, status string, doctorNotes *string, actor string) (interface{}, error) {
	args := m.Called(ctx, rowID, status, doctorNotes, actor)
	return args.Get(0), args.Error(1)
}

func (m *MockAdminAppointmentService) AppointmentHistory(ctx context.Context, rowID string) ([]*entities.AuditEntry, error) {
	args := m.Called(ctx, rowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AuditEntry), args.Error(1)
}

type MockDiagnosticsService struct{ mock.Mock }

func (m *MockDiagnosticsService) ListTables(ctx context.Context) (interface{}, error) {
	args := m.Called(ctx)
	return args.Get(0), args.Error(1)
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
