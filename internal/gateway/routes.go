package gateway

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"medfront.com/clinicdesk/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Add middleware to all routes
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(metrics.MetricsMiddleware)

	// Patient endpoints
	r.HandleFunc("/patients", s.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/patients", s.CreatePatientHandler).Methods("POST")
	r.HandleFunc("/patients/{id}", s.GetPatientHandler).Methods("GET")
	r.HandleFunc("/patients/{id}", s.UpdatePatientHandler).Methods("PUT")
	r.HandleFunc("/patients/{id}", s.DeletePatientHandler).Methods("DELETE")
	r.HandleFunc("/patients/{id}/medical-services", s.MedicalServicesHandler).Methods("GET")
	r.HandleFunc("/patients/{id}/medical-records", s.MedicalRecordsHandler).Methods("GET")

	// Session and UI settings
	r.HandleFunc("/user", s.CurrentUserHandler).Methods("GET")
	r.HandleFunc("/config", s.ConfigHandler).Methods("GET")

	// Health and metrics endpoints
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods("GET")

	return r
}
