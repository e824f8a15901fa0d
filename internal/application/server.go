package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"apimatic-validator-mcp/internal/domain"
)

const (
	// ProtocolVersion is the MCP protocol revision this server speaks.
	ProtocolVersion = "2024-11-05"
	// ServerName is reported in the initialize handshake.
	ServerName = "APIMatic Validator MCP"
	// ServerVersion is reported in the initialize handshake.
	ServerVersion = "1.0.0"
)

// Server is the main MCP server implementation.
// It orchestrates the transport layer and request routing, and implements
// the MCP protocol methods. Every request is handled on its own goroutine,
// so validations overlap.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	mapper    domain.ResponseMapper
	logger    *StructuredLogger

	inFlight sync.WaitGroup
	done     chan struct{}
}

// NewServer creates a new MCP server instance.
// A nil logger writes info-level entries to stderr.
func NewServer(
	transport domain.Transport,
	router *RequestRouter,
	mapper domain.ResponseMapper,
	logger *StructuredLogger,
) *Server {
	if logger == nil {
		logger = NewStructuredLogger()
	}
	return &Server{
		transport: transport,
		router:    router,
		mapper:    mapper,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the server operation.
// It starts the transport layer and begins processing incoming requests.
func (s *Server) Start(ctx context.Context) error {
	// Start the transport layer
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, nil)
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"transport_type": "stdio",
		"tools":          len(s.router.ListAllTools()),
	})

	// Start processing requests
	go s.processRequests(ctx)

	return nil
}

// Done is closed once the input stream has ended (or ctx was cancelled)
// and every in-flight request has been answered.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// processRequests dispatches incoming JSON-RPC requests until the transport
// stops delivering them.
func (s *Server) processRequests(ctx context.Context) {
	defer close(s.done)

	reqChan := s.transport.Receive()
	// In-flight validations run to completion even after shutdown starts.
	reqCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			s.inFlight.Wait()
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, stdin has ended
				s.logger.LogInfo("input closed", nil)
				s.inFlight.Wait()
				return
			}

			s.inFlight.Add(1)
			go func(req *domain.Request) {
				defer s.inFlight.Done()
				s.handleRequest(reqCtx, req)
			}(req)
		}
	}
}

// handleRequest processes a single JSON-RPC request.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.LogDebug("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	// Validate request structure
	if err := s.validateRequest(req); err != nil {
		if !req.IsNotification() {
			s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		}
		return
	}

	if req.IsNotification() {
		s.handleNotification(req)
		return
	}

	var result interface{}
	var rpcErr *domain.Error

	switch req.Method {
	case "initialize":
		result = s.handleInitialize()
	case "ping":
		result = map[string]interface{}{}
	case "tools/list":
		result = s.handleToolsList()
	case "tools/call":
		result, rpcErr = s.handleToolsCall(ctx, req)
	default:
		rpcErr = &domain.Error{
			Code:    domain.MethodNotFound,
			Message: "Method not found",
			Data:    fmt.Sprintf("unknown method: %s", req.Method),
		}
	}

	if rpcErr != nil {
		s.sendError(req.ID, rpcErr)
		return
	}

	s.send(&domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	})
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleNotification handles messages without an id. They never get a response.
func (s *Server) handleNotification(req *domain.Request) {
	switch req.Method {
	case "notifications/initialized":
		s.logger.LogInfo("client initialized", nil)
	default:
		s.logger.LogDebug("ignoring notification", map[string]interface{}{
			"method": req.Method,
		})
	}
}

// handleInitialize handles the MCP initialize method.
// This is the initial handshake between client and server.
func (s *Server) handleInitialize() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
	}
}

// handleToolsList handles the MCP tools/list method.
// Returns all available tools from registered handlers.
func (s *Server) handleToolsList() map[string]interface{} {
	return map[string]interface{}{
		"tools": s.router.ListAllTools(),
	}
}

// handleToolsCall handles the MCP tools/call method.
// Executes a tool call by routing it to the appropriate handler.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) (interface{}, *domain.Error) {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    err.Error(),
		}
	}

	invocationID := newInvocationID()
	ctx = withInvocationID(ctx, invocationID)
	start := time.Now()

	toolResp, err := s.router.Route(ctx, toolReq)
	if err != nil {
		s.logger.LogError("tool execution failed", err, map[string]interface{}{
			"tool":          toolReq.Name,
			"request_id":    req.ID,
			"invocation_id": invocationID,
		})
		return nil, s.mapper.MapError(err)
	}

	s.logger.LogInfo("tool call completed", map[string]interface{}{
		"tool":          toolReq.Name,
		"request_id":    req.ID,
		"invocation_id": invocationID,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return toolResp, nil
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Convert params to JSON and back to ToolRequest
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	s.sendError(id, &domain.Error{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// sendError sends an already mapped JSON-RPC error.
func (s *Server) sendError(id interface{}, rpcErr *domain.Error) {
	s.send(&domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   rpcErr,
	})
}

// send writes a response, logging transport failures.
func (s *Server) send(response *domain.Response) {
	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": response.ID,
		})
	}
}

// Shutdown waits until request processing has stopped and in-flight
// requests are answered, bounded by ctx, then closes the transport.
// The context passed to Start must already be cancelled or stdin closed.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.done:
	case <-ctx.Done():
		s.logger.LogError("shutdown timed out with requests in flight", ctx.Err(), nil)
	}

	return s.Close()
}

// Close closes the transport immediately.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}
