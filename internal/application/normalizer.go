package application

import (
	"errors"

	"apimatic-validator-mcp/internal/domain"
)

// normalizeOutcome collapses a gateway result into a summary or an error.
// A structured service error yields its result as the summary; any other
// error is returned unchanged.
func normalizeOutcome(summary domain.ValidationSummary, err error) (domain.ValidationSummary, error) {
	if err == nil {
		return summary, nil
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Result, nil
	}

	return nil, err
}
