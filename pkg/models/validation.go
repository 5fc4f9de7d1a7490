package models

// ValidationRequest is what a dry-run validator receives.
type ValidationRequest struct {
	SampleData      any             `json:"sample_data"`
	TransformedData map[string]any  `json:"transformed_data"`
	EnabledFields   []string        `json:"enabled_fields"`
	Mappings        []MappingRecord `json:"mappings"`
}

// Section validation statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

type ValidationSummary struct {
	Tours       int `json:"tours"`
	Departures  int `json:"departures"`
	Itineraries int `json:"itineraries"`
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
}

type SectionValidation struct {
	Section string `json:"section"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Items   []any  `json:"items,omitempty"`
}

// ValidationIssue is one error or warning.
type ValidationIssue struct {
	Section string `json:"section"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ValidationResponse is what a dry-run validator returns.
type ValidationResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Summary     ValidationSummary   `json:"summary"`
	Validations []SectionValidation `json:"validations"`
	Errors      []ValidationIssue   `json:"errors"`
	Warnings    []ValidationIssue   `json:"warnings"`
}
