package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinicassistant/internal/api/handlers"
	apperrors "github.com/zatekoja/clinicassistant/pkg/errors"
)

func TestDiagnosticsHandler_Diagnostics(t *testing.T) {
	t.Run("lists tables", func(t *testing.T) {
		service := new(MockDiagnosticsService)
		handler := handlers.NewDiagnosticsHandler(service)

		service.On("ListTables", mock.Anything).Return([]interface{}{
			map[string]interface{}{"id": "appointment_bookings"},
		}, nil)

		rec := httptest.NewRecorder()
		handler.Diagnostics(rec, httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true,"tables":[{"id":"appointment_bookings"}]}`, rec.Body.String())
	})

	t.Run("upstream failure carries raw body", func(t *testing.T) {
		service := new(MockDiagnosticsService)
		handler := handlers.NewDiagnosticsHandler(service)

		service.On("ListTables", mock.Anything).Return(nil,
			apperrors.NewUpstreamError("bad key", http.StatusUnauthorized, errors.New("401")).
				WithField("raw", map[string]interface{}{"message": "bad key"}))

		rec := httptest.NewRecorder()
		handler.Diagnostics(rec, httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"bad key","raw":{"message":"bad key"}}`, rec.Body.String())
	})

	t.Run("missing key", func(t *testing.T) {
		service := new(MockDiagnosticsService)
		handler := handlers.NewDiagnosticsHandler(service)

		service.On("ListTables", mock.Anything).Return(nil, apperrors.NewValidationError("Missing JAMAI_API_KEY"))

		rec := httptest.NewRecorder()
		handler.Diagnostics(rec, httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing JAMAI_API_KEY"}`, rec.Body.String())
	})

	t.Run("plain errors become generic 500", func(t *testing.T) {
		service := new(MockDiagnosticsService)
		handler := handlers.NewDiagnosticsHandler(service)

		service.On("ListTables", mock.Anything).Return(nil, errors.New("socket closed"))

		rec := httptest.NewRecorder()
		handler.Diagnostics(rec, httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})
}
