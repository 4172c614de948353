package utils

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestLookupNestedPath(t *testing.T) {
	v := decode(t, `{"results":{"ticker":"TSLA","market_cap":1.2e12}}`)

	if got := LookupString(v, "results", "ticker"); got != "TSLA" {
		t.Errorf("LookupString = %q, want TSLA", got)
	}
	mc, ok := LookupFloat(v, "results", "market_cap")
	if !ok || mc != 1.2e12 {
		t.Errorf("LookupFloat = %v, %v", mc, ok)
	}
}

func TestLookupNullPropagation(t *testing.T) {
	v := decode(t, `{"a":{"b":1},"s":"str","arr":[1,2]}`)

	cases := [][]string{
		{"missing"},
		{"a", "missing"},
		{"a", "b", "c"},       // descends through a number
		{"s", "b"},            // descends through a string
		{"arr", "b"},          // descends through an array
		{"missing", "deeper"}, // mismatch early in the path
	}
	for _, path := range cases {
		if got := Lookup(v, path...); got != nil {
			t.Errorf("Lookup(%v) = %v, want nil", path, got)
		}
	}

	if got := Lookup(nil, "any"); got != nil {
		t.Errorf("Lookup(nil) = %v, want nil", got)
	}
	if s := LookupString(v, "a", "b"); s != "" {
		t.Errorf("LookupString on number = %q, want empty", s)
	}
	if _, ok := LookupFloat(v, "s"); ok {
		t.Error("LookupFloat on string should report !ok")
	}
	if got := LookupSlice(v, "a"); got != nil {
		t.Errorf("LookupSlice on object = %v, want nil", got)
	}
}

func TestLookupEmptyPathReturnsValue(t *testing.T) {
	v := decode(t, `{"k":1}`)
	if got := Lookup(v); got == nil {
		t.Error("Lookup with empty path should return the input")
	}
	if got := LookupSlice(decode(t, `[1,2,3]`)); len(got) != 3 {
		t.Errorf("LookupSlice on root array = %v", got)
	}
}
