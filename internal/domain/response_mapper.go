package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
// It converts validation summaries to MCP-compliant tool responses.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse converts a validation summary to MCP format.
// The summary is emitted as compact JSON in a single text block. An absent
// summary yields FailedToRetrieveMessage instead of an empty payload.
func (m *DefaultResponseMapper) MapToToolResponse(summary ValidationSummary) (*ToolResponse, error) {
	if summary.IsAbsent() {
		return NewTextResponse(FailedToRetrieveMessage), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, summary); err != nil {
		return nil, fmt.Errorf("failed to serialize validation summary: %w", err)
	}

	return NewTextResponse(buf.String()), nil
}

// MapError converts a pipeline error to MCP error format.
// Timeouts and connection failures become NetworkError; anything not
// otherwise recognized becomes InternalError.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	// Already a JSON-RPC error
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return mapAPIError(apiErr)
	}

	if isNetworkError(err) {
		return &Error{
			Code:    NetworkError,
			Message: "Network error",
			Data:    err.Error(),
		}
	}

	// Default to internal error for unknown error types
	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// isNetworkError reports whether err was caused by a timeout or by the
// service being unreachable.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// mapAPIError maps service status codes to JSON-RPC error codes.
func mapAPIError(apiErr *APIError) *Error {
	var code int
	var message string

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = AuthenticationError
		message = "Authentication failed"
	case http.StatusTooManyRequests:
		code = RateLimitError
		message = "Rate limit exceeded"
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = NetworkError
		message = "Service unavailable"
	default:
		code = APIErrorCode
		message = fmt.Sprintf("APIMatic API error (status %d)", apiErr.StatusCode)
	}

	data := map[string]interface{}{
		"statusCode": apiErr.StatusCode,
	}
	if !apiErr.Result.IsAbsent() {
		data["result"] = json.RawMessage(apiErr.Result)
	} else if apiErr.Body != "" {
		data["body"] = apiErr.Body
	}

	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
