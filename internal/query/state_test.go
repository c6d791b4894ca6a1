package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromValues(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		expected State
	}{
		{
			name:     "Empty query uses defaults",
			rawQuery: "",
			expected: State{Page: 1, PerPage: 10},
		},
		{
			name:     "All values parsed",
			rawQuery: "page=3&per_page=25&search=omar",
			expected: State{Page: 3, PerPage: 25, Search: "omar"},
		},
		{
			name:     "Invalid page falls back",
			rawQuery: "page=zero&per_page=25",
			expected: State{Page: 1, PerPage: 25},
		},
		{
			name:     "Negative values fall back",
			rawQuery: "page=-2&per_page=-5",
			expected: State{Page: 1, PerPage: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.rawQuery)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, FromValues(values))
		})
	}
}

func TestValuesRoundTrip(t *testing.T) {
	state := State{Page: 2, PerPage: 25, Search: "خالد"}

	rebuilt := FromValues(state.Values())

	assert.Equal(t, state, rebuilt, "a shared link must reproduce the same query")
}

func TestSetSearchResetsPage(t *testing.T) {
	state := State{Page: 5, PerPage: 10}

	state.SetSearch("omar")

	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "omar", state.Search)

	// Re-setting the same term is not a change and keeps the page
	state.SetPage(3)
	state.SetSearch("omar")
	assert.Equal(t, 3, state.Page)
}

func TestSetPerPageResetsPage(t *testing.T) {
	state := State{Page: 5, PerPage: 10}

	state.SetPerPage(25)

	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 25, state.PerPage)

	state.SetPage(4)
	state.SetPerPage(25)
	assert.Equal(t, 4, state.Page, "unchanged page size keeps the page")
}

func TestSetPageClamped(t *testing.T) {
	state := Default()

	state.SetPage(0)
	assert.Equal(t, 1, state.Page)

	state.SetPage(7)
	assert.Equal(t, 7, state.Page)
}
