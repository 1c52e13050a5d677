package jsonrepair

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRepairProgressiveFragments(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"open_object", `{"t`},
		{"partial_key_value", `{"title":"Pas`},
		{"partial_array_string", `{"title":"Pasta","steps":["bo`},
		{"complete", `{"title":"Pasta","steps":["boil"]}`},
		{"open_array", `[1,2,`},
		{"dangling_colon", `{"a":`},
		{"dangling_key", `{"a"`},
		{"nested_open", `{"a":{"b":`},
		{"trailing_comma_object", `{"a":1,`},
		{"unterminated_string_escape", `{"a":"esc\`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Repair(tc.input)
			if err != nil {
				t.Fatalf("Repair(%q) error: %v", tc.input, err)
			}
			var v any
			if err := json.Unmarshal([]byte(out), &v); err != nil {
				t.Fatalf("Repair(%q) = %q, not valid JSON: %v", tc.input, out, err)
			}
		})
	}
}

func TestRepairPrefixConsistentSubset(t *testing.T) {
	full := `{"title":"Pasta","steps":["boil","drain"]}`
	prefixes := []string{
		`{"t`,
		`{"title":"Pas`,
		`{"title":"Pasta","steps":["bo`,
		`{"title":"Pasta","steps":["boil"]}`,
		`{"title":"Pasta","steps":["boil","dr`,
	}
	var fullDecoded map[string]any
	if err := json.Unmarshal([]byte(full), &fullDecoded); err != nil {
		t.Fatal(err)
	}

	for _, p := range prefixes {
		out, err := Repair(p)
		if err != nil {
			t.Fatalf("Repair(%q): %v", p, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("Repair(%q) = %q invalid: %v", p, out, err)
		}
		if title, ok := decoded["title"]; ok {
			if title != fullDecoded["title"] {
				t.Fatalf("committed title diverges: %v vs %v", title, fullDecoded["title"])
			}
		}
	}
}

func TestRepairDepthCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 150; i++ {
		sb.WriteString(`{"a":`)
	}
	if _, err := Repair(sb.String()); err == nil {
		t.Fatal("expected depth cap error")
	}
}

func TestRepairEmptyBecomesEmptyObject(t *testing.T) {
	out, err := Repair("")
	if err != nil {
		t.Fatal(err)
	}
	if out != "{}" {
		t.Fatalf("got %q, want {}", out)
	}
}

func TestRepairArrayRoot(t *testing.T) {
	out, err := Repair(`[1,2,`)
	if err != nil {
		t.Fatal(err)
	}
	var v []int
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("not valid JSON array: %v, got %q", err, out)
	}
	if len(v) != 2 || v[0] != 1 || v[1] != 2 {
		t.Fatalf("unexpected array content: %v", v)
	}
}
