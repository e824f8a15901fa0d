package domain

import (
	"context"
	"time"
)

// ValidationOutcome classifies how one validation ended.
type ValidationOutcome string

const (
	// OutcomeSummary means the service returned an import summary.
	OutcomeSummary ValidationOutcome = "summary"
	// OutcomeRemoteFailure means the service answered with a structured error.
	OutcomeRemoteFailure ValidationOutcome = "remote_failure"
	// OutcomeMissingSummary means no summary could be extracted.
	OutcomeMissingSummary ValidationOutcome = "missing_summary"
	// OutcomeError means the archive could not be built or the service not reached.
	OutcomeError ValidationOutcome = "error"
)

// ValidationObservation describes one completed validation.
type ValidationObservation struct {
	InvocationID string
	Format       string // "yaml" or "json"
	ArchiveBytes int
	StatusCode   int // set for remote failures
	Outcome      ValidationOutcome
	Duration     time.Duration
	Err          error
}

// ValidationObserver receives validation observations, e.g. for metrics.
type ValidationObserver interface {
	ObserveValidation(ctx context.Context, observation ValidationObservation)
}
