package jsonutil

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

// TestMarshalNaNFields tests that NaN and infinities render as null
func TestMarshalNaNFields(t *testing.T) {
	v := struct {
		T    float64 `json:"t"`
		P    float64 `json:"p"`
		Up   float64 `json:"up"`
		Down float64 `json:"down"`
	}{T: 1.5, P: math.NaN(), Up: math.Inf(1), Down: math.Inf(-1)}

	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if out["t"] != 1.5 {
		t.Errorf("t = %v", out["t"])
	}
	for _, key := range []string{"p", "up", "down"} {
		if out[key] != nil {
			t.Errorf("%s = %v, want null", key, out[key])
		}
	}
}

// TestMarshalNested tests recursion through maps, slices, and pointers
func TestMarshalNested(t *testing.T) {
	nan := math.NaN()
	v := map[string]interface{}{
		"values": []float64{1, nan, 3},
		"ptr":    &nan,
		"none":   (*float64)(nil),
	}

	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `[1,null,3]`) {
		t.Errorf("values not sanitized: %s", got)
	}
	if !strings.Contains(got, `"ptr":null`) || !strings.Contains(got, `"none":null`) {
		t.Errorf("pointers not sanitized: %s", got)
	}
}

// Inner is embedded in TestMarshalHonorsTags; it must be exported for its
// fields to flatten.
type Inner struct {
	Kept    string `json:"kept"`
	Skipped string `json:"-"`
}

// TestMarshalHonorsTags tests json tag names, omitempty, and embedding
func TestMarshalHonorsTags(t *testing.T) {
	v := struct {
		Inner
		Error string  `json:"error,omitempty"`
		Score float64 `json:"score"`
	}{Inner: Inner{Kept: "yes", Skipped: "no"}, Score: 2}

	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"kept":"yes"`) {
		t.Errorf("Embedded field not flattened: %s", got)
	}
	if strings.Contains(got, "Skipped") || strings.Contains(got, `"no"`) {
		t.Errorf("json:\"-\" field leaked: %s", got)
	}
	if strings.Contains(got, "error") {
		t.Errorf("omitempty zero field leaked: %s", got)
	}
}

// TestMarshalPreservesMarshalers tests that time.Time renders normally
func TestMarshalPreservesMarshalers(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	v := struct {
		When time.Time `json:"when"`
	}{When: ts}

	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"2024-03-01T10:00:00Z"`) {
		t.Errorf("time.Time mangled: %s", b)
	}
}
