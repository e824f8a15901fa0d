package domain

import (
	"encoding/json"
	"testing"
)

// TestRequestJSONSerialization verifies Request struct JSON serialization.
func TestRequestJSONSerialization(t *testing.T) {
	tests := []struct {
		name     string
		request  *Request
		expected string
	}{
		{
			name: "tools/call with arguments",
			request: &Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  "tools/call",
				Params: map[string]interface{}{
					"name":      "validate-openapi-using-apimatic",
					"arguments": map[string]interface{}{"isYaml": true},
				},
			},
			expected: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{"isYaml":true},"name":"validate-openapi-using-apimatic"}}`,
		},
		{
			name: "notification without ID",
			request: &Request{
				JSONRPC: "2.0",
				Method:  "notifications/initialized",
			},
			expected: `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.request)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}

			if string(data) != tt.expected {
				t.Errorf("json.Marshal() = %s, want %s", string(data), tt.expected)
			}
		})
	}
}

// TestRequest_IsNotification verifies notification detection after decoding.
func TestRequest_IsNotification(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "numeric id", input: `{"jsonrpc":"2.0","id":1,"method":"ping"}`, want: false},
		{name: "string id", input: `{"jsonrpc":"2.0","id":"a","method":"ping"}`, want: false},
		{name: "zero id", input: `{"jsonrpc":"2.0","id":0,"method":"ping"}`, want: false},
		{name: "no id", input: `{"jsonrpc":"2.0","method":"notifications/initialized"}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.input), &req); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if got := req.IsNotification(); got != tt.want {
				t.Errorf("IsNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestErrorJSONSerialization verifies Error struct serialization and the error interface.
func TestErrorJSONSerialization(t *testing.T) {
	rpcErr := &Error{
		Code:    InvalidParams,
		Message: "Invalid params",
		Data:    "openApiFile is required",
	}

	data, err := json.Marshal(rpcErr)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	want := `{"code":-32602,"message":"Invalid params","data":"openApiFile is required"}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", string(data), want)
	}

	var asError error = rpcErr
	if asError.Error() != "Invalid params" {
		t.Errorf("Error() = %s, want Invalid params", asError.Error())
	}
}

// TestResponseOmitsEmptyFields verifies that a response carries either result or error.
func TestResponseOmitsEmptyFields(t *testing.T) {
	success, _ := json.Marshal(&Response{JSONRPC: "2.0", ID: 1, Result: map[string]interface{}{}})
	if string(success) != `{"jsonrpc":"2.0","id":1,"result":{}}` {
		t.Errorf("unexpected success response %s", success)
	}

	failure, _ := json.Marshal(&Response{JSONRPC: "2.0", ID: 1, Error: &Error{Code: MethodNotFound, Message: "Method not found"}})
	if string(failure) != `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}` {
		t.Errorf("unexpected error response %s", failure)
	}
}
