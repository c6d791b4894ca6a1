package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"medfront.com/clinicdesk/internal/cache"
	"medfront.com/clinicdesk/internal/config"
	"medfront.com/clinicdesk/internal/patients"
	"medfront.com/clinicdesk/internal/rest"
	"medfront.com/clinicdesk/internal/users"
)

// newTestGateway stands up a fake clinic backend plus a fully wired
// gateway router in front of it. The returned counter tracks mutating
// requests that reached the backend.
func newTestGateway(t *testing.T, issueCSRFCookie bool) (*mux.Router, *int) {
	t.Helper()

	mutations := new(int)

	upstream := http.NewServeMux()
	upstream.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		if issueCSRFCookie {
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
		}
		w.WriteHeader(http.StatusNoContent)
	})
	upstream.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		avatar := "https://cdn.clinic.example/avatars/9.jpg"
		json.NewEncoder(w).Encode(map[string]any{
			"status": 200, "message": "ok",
			"data": users.User{ID: 9, Fullname: "Dr. Lina", Avatar: &avatar},
		})
	})
	upstream.HandleFunc("/api/patients", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{
				"status": 200, "message": "ok",
				"data": []patients.Patient{{ID: 1, PatientNumber: "P-0001", Fullname: "Omar Haddad"}},
				"meta": patients.Meta{CurrentPage: 1, PerPage: 10, Total: 1, LastPage: 1},
			})
		case http.MethodPost:
			*mutations++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"status": 201, "message": "created",
				"data": patients.Patient{ID: 2, PatientNumber: "P-0002", Fullname: "Aisha Khalil"},
			})
		}
	})
	upstream.HandleFunc("/api/patients/", func(w http.ResponseWriter, r *http.Request) {
		remainder := strings.TrimPrefix(r.URL.Path, "/api/patients/")

		if strings.HasSuffix(remainder, "/medical-services") {
			json.NewEncoder(w).Encode(map[string]any{
				"status": 200, "message": "ok",
				"data": []patients.MedicalService{{ID: "ms-1", Doctor: "Dr. Salim"}},
			})
			return
		}
		if strings.HasSuffix(remainder, "/medical-records") {
			json.NewEncoder(w).Encode(map[string]any{
				"status": 200, "message": "ok",
				"data": []patients.MedicalRecord{{ID: "mr-1", Title: "Checkup"}},
			})
			return
		}

		switch r.Method {
		case http.MethodGet:
			if remainder != "1" {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{"status": 404, "message": "Patient not found", "data": nil})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": 200, "message": "ok",
				"data": patients.Patient{ID: 1, PatientNumber: "P-0001", Fullname: "Omar Haddad"},
			})
		case http.MethodPut:
			*mutations++
			json.NewEncoder(w).Encode(map[string]any{
				"status": 200, "message": "updated",
				"data": patients.Patient{ID: 1, PatientNumber: "P-0001", Fullname: "Renamed"},
			})
		case http.MethodDelete:
			*mutations++
			json.NewEncoder(w).Encode(map[string]any{"status": 200, "message": "deleted", "data": nil})
		}
	})

	backend := httptest.NewServer(upstream)
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		APIBaseURL:     backend.URL + "/api",
		DoctorID:       "1",
		CSRFCookieName: "XSRF-TOKEN",
		SearchDebounce: 300 * time.Millisecond,
		HTTPTimeout:    5 * time.Second,
	}
	session, err := config.NewSession("")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	client, err := rest.NewClient(cfg, session)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	server := NewServer(patients.NewService(client, cfg), users.NewService(client), cache.New(), cfg)
	return server.SetupRoutes(), mutations
}

func TestGatewayRoutes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "List patients",
			method:         "GET",
			path:           "/patients?page=1&per_page=10",
			expectedStatus: http.StatusOK,
			expectedBody:   `"patient_number":"P-0001"`,
		},
		{
			name:           "Get patient",
			method:         "GET",
			path:           "/patients/1",
			expectedStatus: http.StatusOK,
			expectedBody:   `"fullname":"Omar Haddad"`,
		},
		{
			name:           "Get unknown patient passes the 404 through",
			method:         "GET",
			path:           "/patients/999",
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"Patient not found"`,
		},
		{
			name:           "Create patient",
			method:         "POST",
			path:           "/patients",
			body:           `{"fullname":"Aisha Khalil","gender":"female","status":"active"}`,
			expectedStatus: http.StatusCreated,
			expectedBody:   `"patient_number":"P-0002"`,
		},
		{
			name:           "Create with invalid json",
			method:         "POST",
			path:           "/patients",
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid json"`,
		},
		{
			name:           "Update patient",
			method:         "PUT",
			path:           "/patients/1",
			body:           `{"fullname":"Renamed"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"fullname":"Renamed"`,
		},
		{
			name:           "Delete patient",
			method:         "DELETE",
			path:           "/patients/1",
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":true`,
		},
		{
			name:           "Medical services",
			method:         "GET",
			path:           "/patients/1/medical-services",
			expectedStatus: http.StatusOK,
			expectedBody:   `"Dr. Salim"`,
		},
		{
			name:           "Medical records",
			method:         "GET",
			path:           "/patients/1/medical-records",
			expectedStatus: http.StatusOK,
			expectedBody:   `"Checkup"`,
		},
		{
			name:           "Current user",
			method:         "GET",
			path:           "/user",
			expectedStatus: http.StatusOK,
			expectedBody:   `"fullname":"Dr. Lina"`,
		},
		{
			name:           "UI config",
			method:         "GET",
			path:           "/config",
			expectedStatus: http.StatusOK,
			expectedBody:   `"search_debounce_ms":300`,
		},
		{
			name:           "Health",
			method:         "GET",
			path:           "/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestGateway(t, true)

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d (%s)", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %s, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestGatewayMutationBlockedWithoutCSRF(t *testing.T) {
	router, mutations := newTestGateway(t, false)

	req := httptest.NewRequest("POST", "/patients", strings.NewReader(`{"fullname":"X","gender":"male","status":"active"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	if *mutations != 0 {
		t.Errorf("Expected no mutating request to reach the backend, got %d", *mutations)
	}
}

func TestGatewayRequestIDHeader(t *testing.T) {
	router, _ := newTestGateway(t, true)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request id header")
	}

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "fixed-id" {
		t.Errorf("Expected caller's request id to be reused, got %q", got)
	}
}

func TestGatewayServesStaleListAfterMutation(t *testing.T) {
	router, _ := newTestGateway(t, true)

	// Prime the list cache
	req := httptest.NewRequest("GET", "/patients", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	// A delete invalidates the cached list, so the next read must
	// fetch fresh data instead of serving the primed entry
	req = httptest.NewRequest("DELETE", "/patients/1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/patients", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var page patients.PatientPage
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to decode list response: %v", err)
	}
	if page.Meta.Total != 1 {
		t.Errorf("Expected meta from a fresh backend fetch, got %+v", page.Meta)
	}
}
