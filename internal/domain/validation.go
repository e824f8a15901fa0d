package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FailedToRetrieveMessage is returned to the caller in place of an absent summary.
const FailedToRetrieveMessage = "Failed to retrieve validation data"

// SpecificationInput is the caller-supplied OpenAPI document for one request.
type SpecificationInput struct {
	Content string `json:"openApiFile"`
	IsYAML  bool   `json:"isYaml"`
}

// ImportSettings controls how the service imports the uploaded specification.
type ImportSettings struct {
	UseStrictValidation bool `json:"UseStrictValidation"`
}

// ArchiveMetadata is the descriptor stored as APIMATIC-META.json in every upload.
type ArchiveMetadata struct {
	ImportSettings ImportSettings `json:"ImportSettings"`
}

// DefaultArchiveMetadata is embedded verbatim into every archive.
var DefaultArchiveMetadata = ArchiveMetadata{
	ImportSettings: ImportSettings{UseStrictValidation: true},
}

// ValidationSummary is the import summary returned by the service.
// Its contents are opaque and passed through to the caller unmodified.
// A nil summary means the service returned no summary.
type ValidationSummary json.RawMessage

// NewValidationSummary normalizes raw JSON into a summary.
// Empty input and JSON null both yield the absent (nil) summary.
func NewValidationSummary(raw json.RawMessage) ValidationSummary {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return ValidationSummary(trimmed)
}

// IsAbsent reports whether the service produced no summary.
func (s ValidationSummary) IsAbsent() bool {
	return len(s) == 0
}

// MarshalJSON emits the summary verbatim, or null when absent.
func (s ValidationSummary) MarshalJSON() ([]byte, error) {
	if s.IsAbsent() {
		return []byte("null"), nil
	}
	return []byte(s), nil
}

// UnmarshalJSON stores a copy of the raw value, collapsing null to absent.
func (s *ValidationSummary) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("domain: UnmarshalJSON on nil ValidationSummary")
	}
	*s = NewValidationSummary(append(json.RawMessage(nil), data...))
	return nil
}

// APIError is a structured error response from the validation service.
// Result holds the decoded response body, which describes the problem the
// service found with the upload; it is nil when the body was not JSON.
type APIError struct {
	StatusCode int
	Body       string
	Result     ValidationSummary
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("APIMatic API error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("APIMatic API error (status %d)", e.StatusCode)
}

// NewAPIError builds an APIError, decoding the body into Result when it is JSON.
func NewAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
	if json.Valid(body) {
		apiErr.Result = NewValidationSummary(body)
	}
	return apiErr
}
