package schema

import "fmt"

// Schema is a structural + value-constraint descriptor for a generable
// record type, mirroring a JSON-Schema-like discriminated union.
type Schema struct {
	kind schemaKind

	// string/integer/number/boolean constraints share this slot.
	constraints []Constraint

	// array
	items *Schema

	// object
	name        string
	description string
	properties  *om_PropertyMap

	// optional / anyOf
	inner  *Schema
	anyOf  []Schema
}

type schemaKind int

const (
	schemaString schemaKind = iota
	schemaInteger
	schemaNumber
	schemaBoolean
	schemaArray
	schemaObject
	schemaOptional
	schemaAnyOf
)

// Property describes one field of an object Schema.
type Property struct {
	Schema      Schema
	Description string
	IsRequired  bool
}

// PropertyMap is an insertion-order-preserving map of property name to
// Property, mirroring Object for StructuredContent.
type PropertyMap = om_PropertyMap

// StringSchema returns a string-kind schema with the given constraints.
func StringSchema(constraints ...Constraint) Schema {
	return Schema{kind: schemaString, constraints: constraints}
}

// IntegerSchema returns an integer-kind schema.
func IntegerSchema(constraints ...Constraint) Schema {
	return Schema{kind: schemaInteger, constraints: constraints}
}

// NumberSchema returns a number-kind schema.
func NumberSchema(constraints ...Constraint) Schema {
	return Schema{kind: schemaNumber, constraints: constraints}
}

// BooleanSchema returns a boolean-kind schema.
func BooleanSchema(constraints ...Constraint) Schema {
	return Schema{kind: schemaBoolean, constraints: constraints}
}

// ArraySchema returns an array-kind schema over the given item schema.
func ArraySchema(items Schema, constraints ...Constraint) Schema {
	return Schema{kind: schemaArray, items: &items, constraints: constraints}
}

// NewPropertyMap returns an empty, order-preserving property map.
func NewPropertyMap() *PropertyMap {
	return newPropertyMap()
}

// ObjectSchema returns an object-kind schema. properties preserves
// declaration order exactly as inserted.
func ObjectSchema(name, description string, properties *PropertyMap) Schema {
	if properties == nil {
		properties = NewPropertyMap()
	}
	return Schema{kind: schemaObject, name: name, description: description, properties: properties}
}

// OptionalSchema wraps inner as optional. Nested optional(optional(T)) is
// normalized to optional(T), per the spec invariant.
func OptionalSchema(inner Schema) Schema {
	if inner.kind == schemaOptional {
		return inner
	}
	return Schema{kind: schemaOptional, inner: &inner}
}

// AnyOfSchema returns a tagged union over schemas, named for documentation
// and code-generation purposes.
func AnyOfSchema(name, description string, schemas ...Schema) Schema {
	return Schema{kind: schemaAnyOf, name: name, description: description, anyOf: schemas}
}

// IsOptional reports whether s is the optional wrapper variant.
func (s Schema) IsOptional() bool { return s.kind == schemaOptional }

// Unwrap returns the inner schema of an optional variant, or s itself.
func (s Schema) Unwrap() Schema {
	if s.kind == schemaOptional && s.inner != nil {
		return *s.inner
	}
	return s
}

// Name returns the declared name for object/anyOf schemas, else "".
func (s Schema) Name() string { return s.name }

// Description returns the declared description, else "".
func (s Schema) Description() string { return s.description }

// Properties returns the object schema's property map, or nil if s is not
// an object schema (or is an optional-wrapped object; call Unwrap first).
func (s Schema) Properties() *PropertyMap {
	if s.kind != schemaObject {
		return nil
	}
	return s.properties
}

// Items returns the array schema's item schema, or nil if s is not array.
func (s Schema) Items() *Schema {
	if s.kind != schemaArray {
		return nil
	}
	return s.items
}

// AnyOfSchemas returns the member schemas of an anyOf variant, or nil.
func (s Schema) AnyOfSchemas() []Schema {
	if s.kind != schemaAnyOf {
		return nil
	}
	return s.anyOf
}

// Constraints returns the value constraints attached to a leaf schema.
func (s Schema) Constraints() []Constraint { return s.constraints }

func (s Schema) String() string {
	switch s.kind {
	case schemaString:
		return "string"
	case schemaInteger:
		return "integer"
	case schemaNumber:
		return "number"
	case schemaBoolean:
		return "boolean"
	case schemaArray:
		return fmt.Sprintf("array<%s>", s.items.String())
	case schemaObject:
		return fmt.Sprintf("object(%s)", s.name)
	case schemaOptional:
		return fmt.Sprintf("optional(%s)", s.inner.String())
	case schemaAnyOf:
		return fmt.Sprintf("anyOf(%s)", s.name)
	default:
		return "unknown"
	}
}

// ConstraintKind discriminates Constraint variants.
type ConstraintKind int

const (
	ConstraintPattern ConstraintKind = iota
	ConstraintConstant
	ConstraintAnyOf
	ConstraintMinLength
	ConstraintMaxLength
	ConstraintMinimum
	ConstraintMaximum
	ConstraintExclusiveMin
	ConstraintExclusiveMax
	ConstraintMultipleOf
	ConstraintMinItems
	ConstraintMaxItems
	ConstraintUniqueItems
)

// Constraint is a typed value constraint attached to a leaf or array
// Schema. Nothing here checks that a constraint fits the schema kind it is
// attached to: this type only carries the constraint value.
type Constraint struct {
	Kind ConstraintKind

	Pattern     string
	Constant    StructuredContent
	AnyOf       []StructuredContent
	Int         int64
	Float       float64
	Bool        bool
}

func Pattern(re string) Constraint { return Constraint{Kind: ConstraintPattern, Pattern: re} }
func Constant(v StructuredContent) Constraint {
	return Constraint{Kind: ConstraintConstant, Constant: v}
}
func AnyOfValues(vs ...StructuredContent) Constraint {
	return Constraint{Kind: ConstraintAnyOf, AnyOf: vs}
}
func MinLength(n int64) Constraint   { return Constraint{Kind: ConstraintMinLength, Int: n} }
func MaxLength(n int64) Constraint   { return Constraint{Kind: ConstraintMaxLength, Int: n} }
func Minimum(v float64) Constraint   { return Constraint{Kind: ConstraintMinimum, Float: v} }
func Maximum(v float64) Constraint   { return Constraint{Kind: ConstraintMaximum, Float: v} }
func ExclusiveMin(v float64) Constraint { return Constraint{Kind: ConstraintExclusiveMin, Float: v} }
func ExclusiveMax(v float64) Constraint { return Constraint{Kind: ConstraintExclusiveMax, Float: v} }
func MultipleOf(v float64) Constraint   { return Constraint{Kind: ConstraintMultipleOf, Float: v} }
func MinItems(n int64) Constraint       { return Constraint{Kind: ConstraintMinItems, Int: n} }
func MaxItems(n int64) Constraint       { return Constraint{Kind: ConstraintMaxItems, Int: n} }
func UniqueItems() Constraint           { return Constraint{Kind: ConstraintUniqueItems, Bool: true} }
