package cli

import (
	"fmt"

	"apimatic-validator-mcp/internal/application"
	"apimatic-validator-mcp/internal/domain"
	"apimatic-validator-mcp/internal/infrastructure"
	"apimatic-validator-mcp/internal/telemetry"
)

// newValidationHandler builds the authenticated APIMatic client and the
// handler serving the validation tool.
func newValidationHandler(cfg *domain.Config, logger *application.StructuredLogger) (*application.ValidationHandler, error) {
	authManager := domain.NewAuthenticationManagerFromConfig(cfg)
	httpClient, err := authManager.GetAuthenticatedClient(cfg.APIMatic.Timeout)
	if err != nil {
		return nil, fmt.Errorf("creating authenticated client: %w", err)
	}

	client := infrastructure.NewAPIMaticClient(cfg.APIMatic.BaseURL, cfg.APIMatic.ExportFormat, httpClient)

	observer, err := telemetry.NewGlobalValidationObserver()
	if err != nil {
		return nil, fmt.Errorf("creating validation observer: %w", err)
	}

	return application.NewValidationHandler(client, domain.NewResponseMapper(), observer, logger), nil
}
