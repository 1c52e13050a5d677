package schema

import "testing"

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-3.5`,
		`"hello"`,
		`[1,2,3]`,
		`{"a":1,"b":2,"c":3}`,
		`{"title":"Pasta","steps":["boil","drain"]}`,
		`[{"x":1},{"y":2}]`,
	}
	for _, in := range cases {
		v, err := Parse([]byte(in))
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		out, err := v.Render()
		if err != nil {
			t.Fatalf("Render(%q): %v", in, err)
		}
		v2, err := Parse([]byte(out))
		if err != nil {
			t.Fatalf("re-parse of rendered %q: %v", out, err)
		}
		out2, err := v2.Render()
		if err != nil {
			t.Fatalf("re-render: %v", err)
		}
		if out != out2 {
			t.Fatalf("round trip not stable: %q != %q", out, out2)
		}
	}
}

func TestObjectKeyOrderPreserved(t *testing.T) {
	v, err := Parse([]byte(`{"z":1,"a":2,"m":3}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Render()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":1,"a":2,"m":3}`
	if got != want {
		t.Fatalf("key order not preserved: got %q want %q", got, want)
	}
}

func TestTypedAccessors(t *testing.T) {
	v, err := Parse([]byte(`{"name":"ada","age":36,"active":true,"tags":["x","y"]}`))
	if err != nil {
		t.Fatal(err)
	}

	name, err := v.Field("name")
	if err != nil {
		t.Fatal(err)
	}
	s, err := name.StringValue()
	if err != nil || s != "ada" {
		t.Fatalf("name = %q, err=%v", s, err)
	}

	age, err := v.Field("age")
	if err != nil {
		t.Fatal(err)
	}
	n, err := age.Int()
	if err != nil || n != 36 {
		t.Fatalf("age = %d, err=%v", n, err)
	}

	active, err := v.Field("active")
	if err != nil {
		t.Fatal(err)
	}
	b, err := active.BoolValue()
	if err != nil || !b {
		t.Fatalf("active = %v, err=%v", b, err)
	}

	tags, err := v.Field("tags")
	if err != nil {
		t.Fatal(err)
	}
	arr, err := tags.ArrayValue()
	if err != nil || len(arr) != 2 {
		t.Fatalf("tags = %v, err=%v", arr, err)
	}

	if _, err := v.Field("missing"); err == nil {
		t.Fatal("expected MissingKey error")
	} else if _, ok := err.(*MissingKey); !ok {
		t.Fatalf("expected *MissingKey, got %T", err)
	}

	if _, err := name.Int(); err == nil {
		t.Fatal("expected TypeMismatch error")
	} else if _, ok := err.(*TypeMismatch); !ok {
		t.Fatalf("expected *TypeMismatch, got %T", err)
	}
}

func TestIntRejectsFractional(t *testing.T) {
	v := Number(1.5)
	if _, err := v.Int(); err == nil {
		t.Fatal("expected InvalidIntegerValue error")
	} else if _, ok := err.(*InvalidIntegerValue); !ok {
		t.Fatalf("expected *InvalidIntegerValue, got %T", err)
	}
}

func TestNumberRejectsNonFinite(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on NaN")
		}
	}()
	_ = Number(nan())
}

func nan() float64 {
	var zero float64
	return zero / zero
}
