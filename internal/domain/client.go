package domain

import (
	"context"
)

// ValidationClient uploads a specification archive to the remote validation
// service and returns the import summary it produced.
type ValidationClient interface {
	// BaseURL returns the configured base URL of the service.
	BaseURL() string

	// Validate sends the archive in a single request. A structured error
	// response from the service is returned as *APIError.
	Validate(ctx context.Context, archive []byte) (ValidationSummary, error)
}
