package application

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"microcms-mcp-server/internal/domain"
)

// SchemaFor derives a tool parameter schema from the json and jsonschema
// tags of T. Fields without omitempty are required. Two adjustments are
// made to the generated schema:
//   - additionalProperties is removed, so unknown arguments are ignored
//     rather than rejected;
//   - pointer fields lose their "null" alternative, so an optional
//     parameter is either absent or has the declared type.
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive parameter schema: %w", err)
	}

	schema.AdditionalProperties = nil
	for _, prop := range schema.Properties {
		if len(prop.Types) == 0 {
			continue
		}
		types := slices.DeleteFunc(slices.Clone(prop.Types), func(t string) bool { return t == "null" })
		if len(types) == 1 {
			prop.Type = types[0]
			prop.Types = nil
		} else {
			prop.Types = types
		}
	}

	return schema, nil
}

// ParamSchema is a parameter schema compiled for validation.
type ParamSchema struct {
	required   []string
	resolved   *jsonschema.Resolved
	properties map[string]*jsonschema.Resolved
}

// CompileParamSchema resolves schema and each of its properties. The input
// schema is not modified.
func CompileParamSchema(schema *jsonschema.Schema) (*ParamSchema, error) {
	if schema == nil {
		return nil, fmt.Errorf("parameter schema is required")
	}

	root, err := cloneSchema(schema)
	if err != nil {
		return nil, err
	}
	resolved, err := root.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameter schema: %w", err)
	}

	properties := make(map[string]*jsonschema.Resolved, len(schema.Properties))
	for name, prop := range schema.Properties {
		clone, err := cloneSchema(prop)
		if err != nil {
			return nil, err
		}
		r, err := clone.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve schema of parameter %s: %w", name, err)
		}
		properties[name] = r
	}

	return &ParamSchema{
		required:   slices.Clone(schema.Required),
		resolved:   resolved,
		properties: properties,
	}, nil
}

// Validate checks args against the schema. It returns a
// *domain.ValidationError listing every missing required parameter and every
// parameter whose value does not match its declared type. Arguments that
// the schema does not declare are ignored.
func (p *ParamSchema) Validate(tool string, args map[string]any) error {
	instance, err := normalizeArguments(args)
	if err != nil {
		return &domain.ValidationError{Tool: tool, Err: err}
	}

	verr := &domain.ValidationError{Tool: tool}
	for _, name := range p.required {
		if _, ok := instance[name]; !ok {
			verr.Missing = append(verr.Missing, name)
		}
	}
	for name, value := range instance {
		prop, ok := p.properties[name]
		if !ok {
			continue
		}
		if err := prop.Validate(value); err != nil {
			verr.Invalid = append(verr.Invalid, name)
		}
	}

	// Whole-object constraints the per-field checks cannot see
	if verr.Empty() {
		if err := p.resolved.Validate(instance); err != nil {
			verr.Err = err
		}
	}

	if verr.Empty() {
		return nil
	}
	verr.Sort()
	return verr
}

// DecodeParams converts validated arguments into the typed parameter struct.
func DecodeParams[T any](args map[string]any) (T, error) {
	var params T
	if args == nil {
		args = map[string]any{}
	}

	data, err := json.Marshal(args)
	if err != nil {
		return params, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("failed to decode arguments: %w", err)
	}

	return params, nil
}

// normalizeArguments round-trips args through JSON so the schema engine
// always sees JSON-native values (float64 numbers, []any, map[string]any)
// whatever the transport handed over.
func normalizeArguments(args map[string]any) (map[string]any, error) {
	if args == nil {
		return map[string]any{}, nil
	}

	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("arguments are not JSON encodable: %w", err)
	}

	instance := map[string]any{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}

	return instance, nil
}

// cloneSchema deep-copies a schema so resolving it cannot affect the
// announced definition.
func cloneSchema(schema *jsonschema.Schema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameter schema: %w", err)
	}

	var clone jsonschema.Schema
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to copy parameter schema: %w", err)
	}

	return &clone, nil
}
