package application

import (
	"context"
	"errors"
	"time"

	"apimatic-validator-mcp/internal/archive"
	"apimatic-validator-mcp/internal/domain"
)

// Tool name and argument constants for the validation tool
const (
	ToolValidateOpenAPI = "validate-openapi-using-apimatic"

	ArgOpenAPIFile = "openApiFile"
	ArgIsYAML      = "isYaml"
)

// ValidationHandler implements ToolHandler for OpenAPI validation.
// It packages the caller's specification, sends it to the validation
// service and transforms the outcome using the ResponseMapper.
type ValidationHandler struct {
	client   domain.ValidationClient
	mapper   domain.ResponseMapper
	observer domain.ValidationObserver
	logger   *StructuredLogger
}

// NewValidationHandler creates a new ValidationHandler instance.
// observer and logger may be nil.
func NewValidationHandler(
	client domain.ValidationClient,
	mapper domain.ResponseMapper,
	observer domain.ValidationObserver,
	logger *StructuredLogger,
) *ValidationHandler {
	if logger == nil {
		logger = NewStructuredLogger()
	}
	return &ValidationHandler{
		client:   client,
		mapper:   mapper,
		observer: observer,
		logger:   logger,
	}
}

// ToolName returns the identifier for this handler.
func (h *ValidationHandler) ToolName() string {
	return ToolValidateOpenAPI
}

// ListTools returns the validation tool definition.
func (h *ValidationHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolValidateOpenAPI,
			Description: "Get validation summary for your OpenAPI spec using APIMatic",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					ArgOpenAPIFile: map[string]interface{}{
						"type":        "string",
						"description": "The OpenAPI file content as a string",
					},
					ArgIsYAML: map[string]interface{}{
						"type":        "boolean",
						"description": "Whether the OpenAPI file is in YAML format",
					},
				},
				Required: []string{ArgOpenAPIFile, ArgIsYAML},
			},
		},
	}
}

// Handle processes an MCP tool call request for the validation tool.
func (h *ValidationHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if req.Name != ToolValidateOpenAPI {
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: "Tool not found",
			Data:    req.Name,
		}
	}

	content, err := getStringParam(req.Arguments, ArgOpenAPIFile, true)
	if err != nil {
		return nil, err
	}
	isYAML, err := getBoolParam(req.Arguments, ArgIsYAML, true)
	if err != nil {
		return nil, err
	}

	return h.Validate(ctx, domain.SpecificationInput{Content: content, IsYAML: isYAML})
}

// Validate runs one validation: build the archive, call the service once,
// normalize the outcome and wrap it in a text response.
func (h *ValidationHandler) Validate(ctx context.Context, input domain.SpecificationInput) (*domain.ToolResponse, error) {
	start := time.Now()
	observation := domain.ValidationObservation{
		InvocationID: InvocationIDFromContext(ctx),
		Format:       formatName(input.IsYAML),
	}

	payload, err := archive.Build(input.Content, input.IsYAML)
	if err != nil {
		h.observe(ctx, observation, start, domain.OutcomeError, err)
		return nil, err
	}
	observation.ArchiveBytes = len(payload)

	h.logger.LogDebug("uploading specification", map[string]interface{}{
		"invocation_id": observation.InvocationID,
		"format":        observation.Format,
		"archive_bytes": observation.ArchiveBytes,
	})

	summary, callErr := h.client.Validate(ctx, payload)

	var apiErr *domain.APIError
	if errors.As(callErr, &apiErr) {
		observation.StatusCode = apiErr.StatusCode
	}

	summary, err = normalizeOutcome(summary, callErr)
	switch {
	case err != nil:
		h.observe(ctx, observation, start, domain.OutcomeError, err)
		return nil, err
	case summary.IsAbsent():
		h.observe(ctx, observation, start, domain.OutcomeMissingSummary, nil)
	case apiErr != nil:
		h.observe(ctx, observation, start, domain.OutcomeRemoteFailure, nil)
	default:
		h.observe(ctx, observation, start, domain.OutcomeSummary, nil)
	}

	return h.mapper.MapToToolResponse(summary)
}

// observe completes the observation and hands it to the observer.
func (h *ValidationHandler) observe(ctx context.Context, observation domain.ValidationObservation, start time.Time, outcome domain.ValidationOutcome, err error) {
	observation.Outcome = outcome
	observation.Duration = time.Since(start)
	observation.Err = err

	h.logger.LogInfo("validation finished", map[string]interface{}{
		"invocation_id": observation.InvocationID,
		"format":        observation.Format,
		"outcome":       string(outcome),
		"status_code":   observation.StatusCode,
		"duration_ms":   observation.Duration.Milliseconds(),
	})

	if h.observer != nil {
		h.observer.ObserveValidation(ctx, observation)
	}
}

func formatName(isYAML bool) string {
	if isYAML {
		return "yaml"
	}
	return "json"
}
