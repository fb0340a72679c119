package http

import (
	"net/http"

	"psychiatry-booking/internal/delivery/http/handler"
	"psychiatry-booking/internal/delivery/http/middleware"
	"psychiatry-booking/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	appointmentHandler  *handler.AppointmentHandler
	psychiatristHandler *handler.PsychiatristHandler
	patientHandler      *handler.PatientHandler
	adminHandler        *handler.AdminHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	loggingMiddleware   *middleware.LoggingMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	psychiatristHandler *handler.PsychiatristHandler,
	patientHandler *handler.PatientHandler,
	adminHandler *handler.AdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		appointmentHandler:  appointmentHandler,
		psychiatristHandler: psychiatristHandler,
		patientHandler:      patientHandler,
		adminHandler:        adminHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		loggingMiddleware:   loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/psychiatrist", r.authHandler.RegisterPsychiatrist).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Intake form (public)
	api.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)

	// Appointment requests (protected). /update must be registered before /{id}.
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/update", r.appointmentHandler.UpdateAppointmentStatus).Methods(http.MethodPut)
	appointments.HandleFunc("/", r.appointmentHandler.MissingAppointmentID).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)

	// Psychiatrist self-service (protected). /me must be registered before /{id}.
	psychiatristSelf := api.PathPrefix("/psychiatrists/me").Subrouter()
	psychiatristSelf.Use(r.authMiddleware.Authenticate)
	psychiatristSelf.Use(middleware.RequirePsychiatrist)
	psychiatristSelf.HandleFunc("", r.psychiatristHandler.GetOwnProfile).Methods(http.MethodGet)
	psychiatristSelf.HandleFunc("", r.psychiatristHandler.UpdateOwnProfile).Methods(http.MethodPut)

	// Directory (public)
	api.HandleFunc("/psychiatrists", r.psychiatristHandler.GetAllPsychiatrists).Methods(http.MethodGet)
	api.HandleFunc("/psychiatrists/{id}", r.psychiatristHandler.GetPsychiatrist).Methods(http.MethodGet)

	// Patient self-service (protected)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Use(middleware.RequirePatient)
	patients.HandleFunc("/me", r.patientHandler.GetOwnProfile).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/overview", r.adminHandler.GetOverview).Methods(http.MethodGet)
	admin.HandleFunc("/psychiatrists/{id}/rating", r.psychiatristHandler.SetRating).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.router
}

// Handler wraps the routes with CORS and request logging. Both run for
// every request, including preflights and unmatched paths.
func (r *Router) Handler() http.Handler {
	return r.corsMiddleware.Handle(r.loggingMiddleware.Handle(r.Setup()))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}
