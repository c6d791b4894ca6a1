package patients

import "strconv"

// Enum values the backend accepts for patient submission.
const (
	GenderMale   = "male"
	GenderFemale = "female"

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// StatusOption is an enumerated status with its display metadata.
type StatusOption struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GenderOption is an enumerated gender with its display metadata.
type GenderOption struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// BloodTypeOption is an enumerated blood-group code with its display
// metadata.
type BloodTypeOption struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// InsuranceSocietyBranch is the insurance branch a patient belongs to.
type InsuranceSocietyBranch struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Patient is a patient record as the backend returns it. ID and
// PatientNumber are server-assigned and never sent by the client.
type Patient struct {
	ID                       int                     `json:"id"`
	PatientNumber            string                  `json:"patient_number"`
	Fullname                 string                  `json:"fullname"`
	Gender                   GenderOption            `json:"gender"`
	BloodType                BloodTypeOption         `json:"blood_type"`
	Birthdate                string                  `json:"birthdate"`
	BirthPlace               string                  `json:"birth_place"`
	FullAddress              string                  `json:"full_address"`
	Avatar                   *string                 `json:"avatar"`
	InsuranceNumber          *string                 `json:"insurance_number"`
	PassportNumber           *string                 `json:"passport_number"`
	Phone                    string                  `json:"phone"`
	Status                   StatusOption            `json:"status"`
	NextStatuses             []StatusOption          `json:"next_statuses"`
	ExternalPatientID        *string                 `json:"external_patient_id"`
	InsuranceSocietyBranchID *int                    `json:"insurance_society_branch_id"`
	CreatedAt                string                  `json:"created_at"`
	UpdatedAt                string                  `json:"updated_at"`
	InsuranceSocietyBranch   *InsuranceSocietyBranch `json:"insurance_society_branch"`
}

// PatientCreate is the submission projection of Patient: enums
// flattened to raw values, server-assigned fields excluded. Avatar may
// hold a data: URI for an image pending upload; it is transcoded to a
// multipart file field before transmission, never sent as a string.
type PatientCreate struct {
	Fullname                 string  `json:"fullname"`
	Gender                   string  `json:"gender"`
	BloodType                string  `json:"blood_type"`
	Birthdate                string  `json:"birthdate"`
	BirthPlace               string  `json:"birth_place"`
	FullAddress              string  `json:"full_address"`
	Avatar                   *string `json:"avatar,omitempty"`
	InsuranceNumber          *string `json:"insurance_number,omitempty"`
	PassportNumber           *string `json:"passport_number,omitempty"`
	Phone                    string  `json:"phone"`
	Status                   string  `json:"status"`
	ExternalPatientID        *string `json:"external_patient_id,omitempty"`
	InsuranceSocietyBranchID *int    `json:"insurance_society_branch_id,omitempty"`
}

// PatientUpdate is a partial PatientCreate: nil fields are left
// untouched by the backend.
type PatientUpdate struct {
	Fullname                 *string `json:"fullname,omitempty"`
	Gender                   *string `json:"gender,omitempty"`
	BloodType                *string `json:"blood_type,omitempty"`
	Birthdate                *string `json:"birthdate,omitempty"`
	BirthPlace               *string `json:"birth_place,omitempty"`
	FullAddress              *string `json:"full_address,omitempty"`
	Avatar                   *string `json:"avatar,omitempty"`
	InsuranceNumber          *string `json:"insurance_number,omitempty"`
	PassportNumber           *string `json:"passport_number,omitempty"`
	Phone                    *string `json:"phone,omitempty"`
	Status                   *string `json:"status,omitempty"`
	ExternalPatientID        *string `json:"external_patient_id,omitempty"`
	InsuranceSocietyBranchID *int    `json:"insurance_society_branch_id,omitempty"`
}

// MedicalService is a read-only sub-resource scoped to a patient.
type MedicalService struct {
	ID             string `json:"id"`
	Doctor         string `json:"doctor"`
	AnalysisNumber string `json:"analysisNumber"`
	Status         string `json:"status"`
	Date           string `json:"date"`
	Time           string `json:"time"`
}

// MedicalRecord is a read-only sub-resource scoped to a patient.
type MedicalRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Details string `json:"details"`
}

// Meta is the pagination block of a collection response.
type Meta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// Links is the navigation block of a collection response.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PatientPage is one page of the patient collection.
type PatientPage struct {
	Data []Patient `json:"data"`
	Meta Meta      `json:"meta"`
}

// Response envelopes. Single resources arrive as
// {status, message, data}; collections add meta and links.
type patientEnvelope struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    Patient `json:"data"`
}

type patientPageEnvelope struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Patient `json:"data"`
	Meta    Meta      `json:"meta"`
	Links   Links     `json:"links"`
}

type medicalServicesEnvelope struct {
	Status  int              `json:"status"`
	Message string           `json:"message"`
	Data    []MedicalService `json:"data"`
}

type medicalRecordsEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    []MedicalRecord `json:"data"`
}

// formFields flattens the non-null scalar fields for multipart
// submission. Avatar is excluded; it travels as a file field.
func (p PatientCreate) formFields() map[string]string {
	fields := map[string]string{
		"fullname":     p.Fullname,
		"gender":       p.Gender,
		"blood_type":   p.BloodType,
		"birthdate":    p.Birthdate,
		"birth_place":  p.BirthPlace,
		"full_address": p.FullAddress,
		"phone":        p.Phone,
		"status":       p.Status,
	}
	if p.InsuranceNumber != nil {
		fields["insurance_number"] = *p.InsuranceNumber
	}
	if p.PassportNumber != nil {
		fields["passport_number"] = *p.PassportNumber
	}
	if p.ExternalPatientID != nil {
		fields["external_patient_id"] = *p.ExternalPatientID
	}
	if p.InsuranceSocietyBranchID != nil {
		fields["insurance_society_branch_id"] = strconv.Itoa(*p.InsuranceSocietyBranchID)
	}
	return fields
}

// formFields flattens the set fields for multipart submission.
func (p PatientUpdate) formFields() map[string]string {
	fields := map[string]string{}
	setString := func(key string, value *string) {
		if value != nil {
			fields[key] = *value
		}
	}
	setString("fullname", p.Fullname)
	setString("gender", p.Gender)
	setString("blood_type", p.BloodType)
	setString("birthdate", p.Birthdate)
	setString("birth_place", p.BirthPlace)
	setString("full_address", p.FullAddress)
	setString("phone", p.Phone)
	setString("status", p.Status)
	setString("insurance_number", p.InsuranceNumber)
	setString("passport_number", p.PassportNumber)
	setString("external_patient_id", p.ExternalPatientID)
	if p.InsuranceSocietyBranchID != nil {
		fields["insurance_society_branch_id"] = strconv.Itoa(*p.InsuranceSocietyBranchID)
	}
	return fields
}
