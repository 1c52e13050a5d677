package schema

import "testing"

func TestOptionalSchemaNormalizesDoubleWrap(t *testing.T) {
	t.Parallel()

	inner := StringSchema()
	once := OptionalSchema(inner)
	twice := OptionalSchema(once)

	if !twice.IsOptional() {
		t.Fatalf("expected optional schema")
	}
	if twice.Unwrap().kind != schemaString {
		t.Fatalf("double-wrapped optional should unwrap to the original inner kind")
	}
}

func TestObjectSchemaPreservesPropertyOrder(t *testing.T) {
	t.Parallel()

	props := NewPropertyMap()
	props.Set("city", Property{Schema: StringSchema(), IsRequired: true})
	props.Set("country", Property{Schema: StringSchema()})
	props.Set("population", Property{Schema: IntegerSchema()})

	obj := ObjectSchema("Location", "a place", props)

	var order []string
	for pair := obj.Properties().Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	want := []string{"city", "country", "population"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestArraySchemaItemsRoundTrip(t *testing.T) {
	t.Parallel()

	s := ArraySchema(IntegerSchema(Minimum(0)))
	if s.Items() == nil {
		t.Fatal("Items() returned nil for an array schema")
	}
	if s.Items().kind != schemaInteger {
		t.Fatalf("item kind = %v, want integer", s.Items().kind)
	}
}

func TestAnyOfSchemaReturnsMembers(t *testing.T) {
	t.Parallel()

	s := AnyOfSchema("Shape", "a shape", StringSchema(), IntegerSchema())
	members := s.AnyOfSchemas()
	if len(members) != 2 {
		t.Fatalf("AnyOfSchemas() returned %d members, want 2", len(members))
	}
}

func TestSchemaStringDescribesEveryKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		s    Schema
		want string
	}{
		{StringSchema(), "string"},
		{IntegerSchema(), "integer"},
		{NumberSchema(), "number"},
		{BooleanSchema(), "boolean"},
		{ArraySchema(StringSchema()), "array<string>"},
		{ObjectSchema("Widget", "", nil), "object(Widget)"},
		{OptionalSchema(StringSchema()), "optional(string)"},
		{AnyOfSchema("Shape", "", StringSchema()), "anyOf(Shape)"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestPropertiesReturnsNilForNonObjectSchema(t *testing.T) {
	t.Parallel()

	if StringSchema().Properties() != nil {
		t.Fatal("Properties() should be nil for a non-object schema")
	}
}

func TestObjectSchemaDefaultsNilPropertiesToEmptyMap(t *testing.T) {
	t.Parallel()

	s := ObjectSchema("Empty", "", nil)
	if s.Properties() == nil {
		t.Fatal("ObjectSchema(nil properties) should default to an empty map, not nil")
	}
	if s.Properties().Len() != 0 {
		t.Fatalf("expected zero properties, got %d", s.Properties().Len())
	}
}
