package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"apimatic-validator-mcp/internal/domain"
)

// argumentValidator checks tool arguments against a tool's declared input schema.
type argumentValidator struct {
	schema *gojsonschema.Schema
}

// newArgumentValidator compiles the input schema of a tool definition.
func newArgumentValidator(def domain.ToolDefinition) (*argumentValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid input schema for tool %s: %w", def.Name, err)
	}
	return &argumentValidator{schema: schema}, nil
}

// Validate returns an InvalidParams error describing every schema violation.
func (v *argumentValidator) Validate(args map[string]interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}

	argBytes, err := json.Marshal(args)
	if err != nil {
		return &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    fmt.Sprintf("marshal arguments for validation: %v", err),
		}
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(argBytes))
	if err != nil {
		return &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    fmt.Sprintf("schema validation error: %v", err),
		}
	}
	if result.Valid() {
		return nil
	}

	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return &domain.Error{
		Code:    domain.InvalidParams,
		Message: "Invalid params",
		Data:    fmt.Sprintf("arguments failed validation: %s", strings.Join(details, "; ")),
	}
}
