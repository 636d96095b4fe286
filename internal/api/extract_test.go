package api

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	data, err := parseJSON([]byte(s))
	if err != nil {
		t.Fatalf("parseJSON(%q): %v", s, err)
	}
	return data
}

func TestValidResponseShape(t *testing.T) {
	tests := []struct {
		name string
		json string
		want bool
	}{
		{"valid", `[["x", [[1, [[0, 1.5]]]]]]`, true},
		{"valid empty points", `[["x", []]]`, true},
		{"not an array", `{"a": 1}`, false},
		{"empty array", `[]`, false},
		{"first element not array", `[1, 2]`, false},
		{"first element too short", `[["x"]]`, false},
		{"points not an array", `[["x", "y"]]`, false},
		{"null", `null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidResponseShape(mustParse(t, tt.json)); got != tt.want {
				t.Errorf("ValidResponseShape(%s) = %v, want %v", tt.json, got, tt.want)
			}
		})
	}
}

func TestExtractDataPoints(t *testing.T) {
	t.Run("extracts in order", func(t *testing.T) {
		data := mustParse(t, `[["fraction", [
			[1609459200000, [[0, 75.5, null, null, null, 0]]],
			[1609466400000, [[0, 72.1, null, null, null, 0]]]
		]]]`)

		points := ExtractDataPoints(data)
		if len(points) != 2 {
			t.Fatalf("len(points) = %d, want 2", len(points))
		}
		if points[0].TimestampMS != 1609459200000 || !points[0].Value.Equal(decimal.RequireFromString("75.5")) {
			t.Errorf("points[0] = %+v", points[0])
		}
		if points[1].TimestampMS != 1609466400000 || points[1].Value.String() != "72.1" {
			t.Errorf("points[1] = %+v", points[1])
		}
	})

	t.Run("skips malformed entries and null values", func(t *testing.T) {
		data := mustParse(t, `[["fraction", [
			[1, [[0, 10]]],
			"junk",
			[2],
			[3, "x"],
			[4, []],
			[5, ["x"]],
			[6, [[0]]],
			[7, [[0, null]]],
			["ts", [[0, 1]]],
			[8, [[0, "str"]]],
			[9, [[0, 90]], "extra"]
		]]]`)

		points := ExtractDataPoints(data)
		if len(points) != 2 {
			t.Fatalf("len(points) = %d, want 2: %+v", len(points), points)
		}
		if points[0].TimestampMS != 1 || points[1].TimestampMS != 9 {
			t.Errorf("unexpected timestamps: %d, %d", points[0].TimestampMS, points[1].TimestampMS)
		}
	})

	t.Run("numeric string values", func(t *testing.T) {
		data := mustParse(t, `[["fraction", [
			[1000, [[0, "0.5"]]],
			[2000, [[0, 0.25]]],
			[3000, [[0, " 12 "]]]
		]]]`)

		points := ExtractDataPoints(data)
		if len(points) != 3 {
			t.Fatalf("len(points) = %d, want 3: %+v", len(points), points)
		}
		if points[0].TimestampMS != 1000 || points[0].Value.String() != "0.5" {
			t.Errorf("points[0] = %+v", points[0])
		}
		if points[1].TimestampMS != 2000 || points[1].Value.String() != "0.25" {
			t.Errorf("points[1] = %+v", points[1])
		}
		if points[2].Value.String() != "12" {
			t.Errorf("points[2] = %+v", points[2])
		}
	})

	t.Run("invalid shape yields nothing", func(t *testing.T) {
		if points := ExtractDataPoints(mustParse(t, `{"x": 1}`)); len(points) != 0 {
			t.Errorf("len(points) = %d, want 0", len(points))
		}
	})

	t.Run("plain float decoding", func(t *testing.T) {
		var data any
		if err := json.Unmarshal([]byte(`[["x", [[1000, [[0, 0.25]]]]]]`), &data); err != nil {
			t.Fatal(err)
		}
		points := ExtractDataPoints(data)
		if len(points) != 1 || points[0].TimestampMS != 1000 || points[0].Value.String() != "0.25" {
			t.Errorf("points = %+v", points)
		}
	})

	t.Run("value text preserved", func(t *testing.T) {
		points := ExtractDataPoints(mustParse(t, `[["x", [[1000, [[0, 0.123456789012345678]]]]]]`))
		if len(points) != 1 || points[0].Value.String() != "0.123456789012345678" {
			t.Errorf("points = %+v", points)
		}
	})
}
