package cache

import (
	"fmt"

	"medfront.com/clinicdesk/internal/patients"
)

// ListKeyPrefix covers every cached patient list page regardless of
// its parameters.
const ListKeyPrefix = "patients:list:"

// ListKey derives the deterministic cache key for one list query.
func ListKey(params patients.ListParams) string {
	params = params.Normalize()
	return fmt.Sprintf("%spage=%d&per_page=%d&search=%s", ListKeyPrefix, params.Page, params.PerPage, params.Search)
}

// PatientKey is the cache key for a single patient snapshot.
func PatientKey(id string) string {
	return "patients:get:" + id
}

// ServicesKey is the cache key for a patient's medical services list.
func ServicesKey(id string) string {
	return "patients:services:" + id
}

// RecordsKey is the cache key for a patient's medical records list.
func RecordsKey(id string) string {
	return "patients:records:" + id
}

// UserKey is the cache key for the current user snapshot.
func UserKey() string {
	return "user:current"
}
