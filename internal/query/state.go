package query

import (
	"net/url"
	"strconv"

	"medfront.com/clinicdesk/internal/patients"
)

// State holds the sole drivers of the patient list query. It is
// round-tripped through the request URL so a reloaded or shared link
// reproduces the same query.
type State struct {
	Page    int
	PerPage int
	Search  string
}

// Default returns the initial list view state.
func Default() State {
	return State{Page: patients.DefaultPage, PerPage: patients.DefaultPerPage}
}

// FromValues reconstructs the state from URL query values, falling
// back to defaults for missing or invalid entries.
func FromValues(values url.Values) State {
	state := Default()

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page >= 1 {
		state.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil && perPage >= 1 {
		state.PerPage = perPage
	}
	state.Search = values.Get("search")

	return state
}

// Values encodes the state for a shareable URL.
func (s State) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(s.Page))
	values.Set("per_page", strconv.Itoa(s.PerPage))
	if s.Search != "" {
		values.Set("search", s.Search)
	}
	return values
}

// ListParams converts the state into data-access parameters.
func (s State) ListParams() patients.ListParams {
	return patients.ListParams{Page: s.Page, PerPage: s.PerPage, Search: s.Search}
}

// SetSearch changes the search term. Any term change moves the view
// back to the first page.
func (s *State) SetSearch(term string) {
	if s.Search == term {
		return
	}
	s.Search = term
	s.Page = patients.DefaultPage
}

// SetPerPage changes the page size and moves back to the first page.
func (s *State) SetPerPage(perPage int) {
	if perPage < 1 {
		perPage = patients.DefaultPerPage
	}
	if s.PerPage == perPage {
		return
	}
	s.PerPage = perPage
	s.Page = patients.DefaultPage
}

// SetPage moves to the given page, clamped to be at least 1.
func (s *State) SetPage(page int) {
	if page < 1 {
		page = patients.DefaultPage
	}
	s.Page = page
}
