package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ToJSONSchema renders s as a draft-2020-12 JSON Schema document, suitable
// for handing to a validator or to a provider's native structured-output
// support.
func (s Schema) ToJSONSchema() map[string]any {
	return s.toJSONSchema()
}

func (s Schema) toJSONSchema() map[string]any {
	switch s.kind {
	case schemaString:
		return withConstraints(map[string]any{"type": "string"}, s.constraints)
	case schemaInteger:
		return withConstraints(map[string]any{"type": "integer"}, s.constraints)
	case schemaNumber:
		return withConstraints(map[string]any{"type": "number"}, s.constraints)
	case schemaBoolean:
		return map[string]any{"type": "boolean"}
	case schemaArray:
		m := map[string]any{"type": "array", "items": s.items.toJSONSchema()}
		return withConstraints(m, s.constraints)
	case schemaObject:
		props := map[string]any{}
		var required []string
		if s.properties != nil {
			for pair := s.properties.Oldest(); pair != nil; pair = pair.Next() {
				props[pair.Key] = pair.Value.Schema.toJSONSchema()
				if pair.Value.IsRequired {
					required = append(required, pair.Key)
				}
			}
		}
		m := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			m["required"] = required
		}
		if s.description != "" {
			m["description"] = s.description
		}
		return m
	case schemaOptional:
		return s.inner.toJSONSchema()
	case schemaAnyOf:
		var variants []any
		for _, v := range s.anyOf {
			variants = append(variants, v.toJSONSchema())
		}
		return map[string]any{"anyOf": variants}
	default:
		return map[string]any{}
	}
}

func withConstraints(m map[string]any, constraints []Constraint) map[string]any {
	for _, c := range constraints {
		switch c.Kind {
		case ConstraintPattern:
			m["pattern"] = c.Pattern
		case ConstraintConstant:
			m["const"] = constOrNil(c.Constant)
		case ConstraintAnyOf:
			var vs []any
			for _, v := range c.AnyOf {
				vs = append(vs, constOrNil(v))
			}
			m["enum"] = vs
		case ConstraintMinLength:
			m["minLength"] = c.Int
		case ConstraintMaxLength:
			m["maxLength"] = c.Int
		case ConstraintMinimum:
			m["minimum"] = c.Float
		case ConstraintMaximum:
			m["maximum"] = c.Float
		case ConstraintExclusiveMin:
			m["exclusiveMinimum"] = c.Float
		case ConstraintExclusiveMax:
			m["exclusiveMaximum"] = c.Float
		case ConstraintMultipleOf:
			m["multipleOf"] = c.Float
		case ConstraintMinItems:
			m["minItems"] = c.Int
		case ConstraintMaxItems:
			m["maxItems"] = c.Int
		case ConstraintUniqueItems:
			m["uniqueItems"] = c.Bool
		}
	}
	return m
}

func constOrNil(v StructuredContent) any {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil
	}
	var out any
	_ = json.Unmarshal(b, &out)
	return out
}

// Validator wraps a compiled jsonschema.Schema for repeated validation of
// decoded StructuredContent values, used as a defense-in-depth check before
// handing a value to a generated Partial<T>/T decoder.
type Validator struct {
	compiled *jsonschema.Schema
}

// NewValidator compiles s into a reusable Validator.
func NewValidator(s Schema) (*Validator, error) {
	doc := s.toJSONSchema()
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal json schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	const resourceURL = "conduit://schema/validator.json"
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate checks v against the compiled schema. v is rendered back to
// plain JSON first since jsonschema validates generic Go values, not
// StructuredContent directly.
func (val *Validator) Validate(v StructuredContent) error {
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}
	return val.compiled.Validate(generic)
}
