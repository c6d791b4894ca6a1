package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"medfront.com/clinicdesk/internal/cache"
	"medfront.com/clinicdesk/internal/config"
	"medfront.com/clinicdesk/internal/patients"
	"medfront.com/clinicdesk/internal/query"
	"medfront.com/clinicdesk/internal/rest"
	"medfront.com/clinicdesk/internal/users"
)

// Server exposes the patient operations to the clinic UI. Reads go
// through the query cache; mutations hit the backend directly and
// invalidate the affected keys on success.
type Server struct {
	patients       *patients.Service
	users          *users.Service
	cache          *cache.Store
	searchDebounce time.Duration
}

// NewServer wires the gateway over the data access layers and cache.
func NewServer(service *patients.Service, userService *users.Service, store *cache.Store, cfg *config.Config) *Server {
	return &Server{
		patients:       service,
		users:          userService,
		cache:          store,
		searchDebounce: cfg.SearchDebounce,
	}
}

// ListPatientsHandler handles GET /patients
func (s *Server) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	state := query.FromValues(r.URL.Query())
	params := state.ListParams()

	value, err := s.cache.Get(r.Context(), cache.ListKey(params), func(ctx context.Context) (any, error) {
		return s.patients.List(ctx, params)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

// GetPatientHandler handles GET /patients/{id}
func (s *Server) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	value, err := s.cache.Get(r.Context(), cache.PatientKey(id), func(ctx context.Context) (any, error) {
		return s.patients.Get(ctx, id)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

// CreatePatientHandler handles POST /patients
func (s *Server) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var payload patients.PatientCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Failed to decode create payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := s.patients.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cache.InvalidatePrefix(cache.ListKeyPrefix)

	writeJSON(w, http.StatusCreated, created)
}

// UpdatePatientHandler handles PUT /patients/{id}
func (s *Server) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	var payload patients.PatientUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Failed to decode update payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	updated, err := s.patients.Update(r.Context(), id, payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cache.Invalidate(cache.PatientKey(id))
	s.cache.InvalidatePrefix(cache.ListKeyPrefix)

	writeJSON(w, http.StatusOK, updated)
}

// DeletePatientHandler handles DELETE /patients/{id}
func (s *Server) DeletePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	deleted, err := s.patients.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cache.Invalidate(
		cache.PatientKey(id),
		cache.ServicesKey(id),
		cache.RecordsKey(id),
	)
	s.cache.InvalidatePrefix(cache.ListKeyPrefix)

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// MedicalServicesHandler handles GET /patients/{id}/medical-services
func (s *Server) MedicalServicesHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	// The service layer degrades these lists to empty on failure, so
	// the fetch never errors.
	value, _ := s.cache.Get(r.Context(), cache.ServicesKey(id), func(ctx context.Context) (any, error) {
		return s.patients.MedicalServices(ctx, id), nil
	})

	writeJSON(w, http.StatusOK, value)
}

// MedicalRecordsHandler handles GET /patients/{id}/medical-records
func (s *Server) MedicalRecordsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	value, _ := s.cache.Get(r.Context(), cache.RecordsKey(id), func(ctx context.Context) (any, error) {
		return s.patients.MedicalRecords(ctx, id), nil
	})

	writeJSON(w, http.StatusOK, value)
}

// CurrentUserHandler handles GET /user
func (s *Server) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	value, err := s.cache.Get(r.Context(), cache.UserKey(), func(ctx context.Context) (any, error) {
		return s.users.Current(ctx)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, value)
}

// ConfigHandler hands the UI its client-side settings, notably the
// debounce interval for the patient search box.
func (s *Server) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"search_debounce_ms": s.searchDebounce.Milliseconds(),
		"per_page_default":   patients.DefaultPerPage,
	})
}

// HealthHandler reports gateway liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps a data-access failure onto the gateway response.
// Backend statuses pass through unchanged (a 404 stays a 404); CSRF
// and transport failures surface as 502.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := rest.AsAPIError(err); ok {
		writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
		return
	}

	if errors.Is(err, rest.ErrCSRFTokenNotFound) {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Mutation aborted: csrf token unavailable")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "csrf token unavailable"})
		return
	}

	log.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Backend call failed")
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
