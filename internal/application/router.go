package application

import (
	"context"
	"fmt"

	"apimatic-validator-mcp/internal/domain"
)

// RequestRouter dispatches MCP tool requests to the appropriate ToolHandler.
// It maintains a registry of tools by exact name and checks the arguments of
// every call against the tool's declared input schema before the handler runs.
type RequestRouter struct {
	handlers   map[string]domain.ToolHandler
	tools      map[string]domain.ToolHandler
	validators map[string]*argumentValidator
	order      []domain.ToolDefinition
}

// NewRequestRouter creates a new RequestRouter with the provided handlers.
// Handlers are registered by their ToolName() identifier and each of their
// tools by name. Returns an error if a tool schema does not compile or a
// tool name is registered twice.
func NewRequestRouter(handlers ...domain.ToolHandler) (*RequestRouter, error) {
	router := &RequestRouter{
		handlers:   make(map[string]domain.ToolHandler),
		tools:      make(map[string]domain.ToolHandler),
		validators: make(map[string]*argumentValidator),
	}

	for _, handler := range handlers {
		router.handlers[handler.ToolName()] = handler

		for _, def := range handler.ListTools() {
			if _, exists := router.tools[def.Name]; exists {
				return nil, fmt.Errorf("duplicate tool name: %s", def.Name)
			}

			validator, err := newArgumentValidator(def)
			if err != nil {
				return nil, err
			}

			router.tools[def.Name] = handler
			router.validators[def.Name] = validator
			router.order = append(router.order, def)
		}
	}

	return router, nil
}

// Route dispatches a tool request to the handler that serves the tool.
// Unknown tools yield MethodNotFound and schema violations InvalidParams.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	handler, exists := r.tools[req.Name]
	if !exists {
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: "Tool not found",
			Data:    fmt.Sprintf("unknown tool: %s", req.Name),
		}
	}

	if err := r.validators[req.Name].Validate(req.Arguments); err != nil {
		return nil, err
	}

	// Delegate to the handler
	return handler.Handle(ctx, req)
}

// ListAllTools aggregates tool definitions from all registered handlers
// in registration order. This is used for MCP tool discovery (tools/list method).
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	tools := make([]domain.ToolDefinition, len(r.order))
	copy(tools, r.order)
	return tools
}

// GetHandler returns the handler registered under a handler name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(handlerName string) (domain.ToolHandler, bool) {
	handler, exists := r.handlers[handlerName]
	return handler, exists
}
