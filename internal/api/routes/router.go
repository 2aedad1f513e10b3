package routes

import (
	"net/http"

	"github.com/zatekoja/clinicassistant/internal/api/handlers"
	"github.com/zatekoja/clinicassistant/internal/api/middleware"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
)

// Handlers groups the route handlers. SSE and HistoryEnabled are optional and their
// routes are only registered when set.
type Handlers struct {
	Health            *handlers.HealthHandler
	Chat              *handlers.ChatHandler
	Appointment       *handlers.AppointmentHandler
	AdminAuth         *handlers.AdminAuthHandler
	AdminAppointments *handlers.AdminAppointmentsHandler
	Diagnostics       *handlers.DiagnosticsHandler
	SSE               *handlers.SSEHandler
	HistoryEnabled    bool
}

// Router holds all route handlers
type Router struct {
	mux             *http.ServeMux
	handlers        Handlers
	allowedOrigins  []string
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, allowedOrigins []string, cacheMiddleware *middleware.CacheMiddleware, metrics *observability.Metrics) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		allowedOrigins:  allowedOrigins,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.handlers.Health.Health)

	// Patient endpoints
	r.mux.HandleFunc("POST /api/chat", r.handlers.Chat.Chat)
	r.mux.HandleFunc("POST /api/appointment", r.handlers.Appointment.BookAppointment)

	// Admin endpoints
	r.mux.HandleFunc("POST /api/admin/login", r.handlers.AdminAuth.Login)
	r.mux.HandleFunc("GET /api/admin/appointments", r.handlers.AdminAppointments.ListAppointments)
	r.mux.HandleFunc("PATCH /api/admin/appointments", r.handlers.AdminAppointments.UpdateAppointment)
	r.mux.HandleFunc("GET /api/admin/diagnostics", r.handlers.Diagnostics.Diagnostics)

	if r.handlers.SSE != nil {
		r.mux.HandleFunc("GET /api/admin/appointments/events", r.handlers.SSE.StreamAppointmentEvents)
	}
	if r.handlers.HistoryEnabled {
		r.mux.HandleFunc("GET /api/admin/appointments/{rowId}/history", r.handlers.AdminAppointments.AppointmentHistory)
	}

	// Last wrap is outermost. CORS goes last so cache hits also carry its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CacheControl(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
