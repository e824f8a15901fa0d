package domain

// ResponseMapper converts validation outcomes to MCP tool responses.
type ResponseMapper interface {
	// MapToToolResponse wraps a validation summary in a text content block.
	// An absent summary becomes FailedToRetrieveMessage.
	MapToToolResponse(summary ValidationSummary) (*ToolResponse, error)

	// MapError converts a pipeline failure to a JSON-RPC error.
	MapError(err error) *Error
}
