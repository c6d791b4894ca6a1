package patients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"medfront.com/clinicdesk/internal/config"
	"medfront.com/clinicdesk/internal/rest"
)

// List defaults
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// ListParams are the drivers of the patient list query.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

// Normalize fills in defaults for out-of-range values.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// Service is the typed data access layer for patient records and
// their read-only sub-resources.
type Service struct {
	client   *rest.Client
	doctorID string
}

// NewService creates the patient data access layer.
func NewService(client *rest.Client, cfg *config.Config) *Service {
	return &Service{
		client:   client,
		doctorID: cfg.DoctorID,
	}
}

// List fetches one page of the patient collection, always in
// paginated mode and scoped to the configured doctor.
func (s *Service) List(ctx context.Context, params ListParams) (*PatientPage, error) {
	params = params.Normalize()

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("search", params.Search)
	query.Set("paginate", "true")
	query.Set("doctor_id", s.doctorID)

	var envelope patientPageEnvelope
	if err := s.client.Get(ctx, "/patients", query, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	if envelope.Data == nil {
		envelope.Data = []Patient{}
	}
	return &PatientPage{Data: envelope.Data, Meta: envelope.Meta}, nil
}

// Get fetches a single patient by id. A missing patient surfaces as
// the backend's 404 (rest.IsNotFound distinguishes it).
func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	var envelope patientEnvelope
	if err := s.client.Get(ctx, "/patients/"+id, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch patient %s: %w", id, err)
	}
	return &envelope.Data, nil
}

// Create submits a new patient. The server assigns id and
// patient_number. An inline base64 avatar is transcoded to a binary
// multipart upload.
func (s *Service) Create(ctx context.Context, payload PatientCreate) (*Patient, error) {
	token, err := s.client.EnsureCSRFToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("aborting create: %w", err)
	}
	header := http.Header{}
	header.Set(rest.CSRFHeader, token)

	var envelope patientEnvelope

	if isInlineAvatar(payload.Avatar) {
		avatar, err := decodeDataURI(*payload.Avatar)
		if err != nil {
			return nil, fmt.Errorf("invalid avatar for create: %w", err)
		}
		body, contentType, err := buildMultipart(avatar, payload.formFields(), "")
		if err != nil {
			return nil, fmt.Errorf("failed to build create body: %w", err)
		}
		if err := s.client.Send(ctx, http.MethodPost, "/patients", body, contentType, header, &envelope); err != nil {
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
	} else {
		if err := s.client.SendJSON(ctx, http.MethodPost, "/patients", payload, header, &envelope); err != nil {
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
	}

	log.Info().
		Int("id", envelope.Data.ID).
		Str("patient_number", envelope.Data.PatientNumber).
		Msg("Patient created")

	return &envelope.Data, nil
}

// Update submits a partial patient change. File-bearing payloads go as
// POST with a _method=PUT override; plain payloads use a genuine PUT.
func (s *Service) Update(ctx context.Context, id string, payload PatientUpdate) (*Patient, error) {
	token, err := s.client.EnsureCSRFToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("aborting update of patient %s: %w", id, err)
	}
	header := http.Header{}
	header.Set(rest.CSRFHeader, token)

	var envelope patientEnvelope

	if isInlineAvatar(payload.Avatar) {
		avatar, err := decodeDataURI(*payload.Avatar)
		if err != nil {
			return nil, fmt.Errorf("invalid avatar for update: %w", err)
		}
		body, contentType, err := buildMultipart(avatar, payload.formFields(), http.MethodPut)
		if err != nil {
			return nil, fmt.Errorf("failed to build update body: %w", err)
		}
		if err := s.client.Send(ctx, http.MethodPost, "/patients/"+id, body, contentType, header, &envelope); err != nil {
			return nil, fmt.Errorf("failed to update patient %s: %w", id, err)
		}
	} else {
		if err := s.client.SendJSON(ctx, http.MethodPut, "/patients/"+id, payload, header, &envelope); err != nil {
			return nil, fmt.Errorf("failed to update patient %s: %w", id, err)
		}
	}

	log.Info().
		Str("id", id).
		Msg("Patient updated")

	return &envelope.Data, nil
}

// Delete removes a patient permanently.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	token, err := s.client.EnsureCSRFToken(ctx)
	if err != nil {
		return false, fmt.Errorf("aborting delete of patient %s: %w", id, err)
	}
	header := http.Header{}
	header.Set(rest.CSRFHeader, token)

	if _, err := s.client.Do(ctx, http.MethodDelete, "/patients/"+id, nil, nil, header); err != nil {
		return false, fmt.Errorf("failed to delete patient %s: %w", id, err)
	}

	log.Info().
		Str("id", id).
		Msg("Patient deleted")

	return true, nil
}

// MedicalServices lists a patient's medical services. These are
// supplementary display-only lists, so failures degrade to an empty
// slice instead of propagating.
func (s *Service) MedicalServices(ctx context.Context, id string) []MedicalService {
	var envelope medicalServicesEnvelope
	if err := s.client.Get(ctx, "/patients/"+id+"/medical-services", nil, &envelope); err != nil {
		log.Warn().
			Err(err).
			Str("patient_id", id).
			Msg("Failed to fetch medical services, returning empty list")
		return []MedicalService{}
	}
	if envelope.Data == nil {
		return []MedicalService{}
	}
	return envelope.Data
}

// MedicalRecords lists a patient's medical records, degrading to an
// empty slice on failure like MedicalServices.
func (s *Service) MedicalRecords(ctx context.Context, id string) []MedicalRecord {
	var envelope medicalRecordsEnvelope
	if err := s.client.Get(ctx, "/patients/"+id+"/medical-records", nil, &envelope); err != nil {
		log.Warn().
			Err(err).
			Str("patient_id", id).
			Msg("Failed to fetch medical records, returning empty list")
		return []MedicalRecord{}
	}
	if envelope.Data == nil {
		return []MedicalRecord{}
	}
	return envelope.Data
}
