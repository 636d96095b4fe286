package api

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/traffic-data/internal/model"
)

// ValidResponseShape reports whether data looks like a traffic response:
// a non-empty array whose first element is an array of length > 1 whose
// second element is the array of point entries.
func ValidResponseShape(data any) bool {
	_, ok := pointEntries(data)
	return ok
}

// ExtractDataPoints flattens a parsed response into data points, in order.
//
// A point entry looks like [ts, [[_, value, ...], ...], ...]. Entries that do
// not match, and entries whose value is null, are skipped.
func ExtractDataPoints(data any) []model.DataPoint {
	entries, ok := pointEntries(data)
	if !ok {
		return nil
	}

	points := make([]model.DataPoint, 0, len(entries))
	for _, entry := range entries {
		if p, ok := extractPoint(entry); ok {
			points = append(points, p)
		}
	}
	return points
}

func pointEntries(data any) ([]any, bool) {
	root, ok := data.([]any)
	if !ok || len(root) == 0 {
		return nil, false
	}
	first, ok := root[0].([]any)
	if !ok || len(first) <= 1 {
		return nil, false
	}
	entries, ok := first[1].([]any)
	return entries, ok
}

func extractPoint(entry any) (model.DataPoint, bool) {
	point, ok := entry.([]any)
	if !ok || len(point) < 2 {
		return model.DataPoint{}, false
	}
	samples, ok := point[1].([]any)
	if !ok || len(samples) == 0 {
		return model.DataPoint{}, false
	}
	sample, ok := samples[0].([]any)
	if !ok || len(sample) < 2 {
		return model.DataPoint{}, false
	}

	ts, ok := toMillis(point[0])
	if !ok {
		return model.DataPoint{}, false
	}
	value, ok := toDecimal(sample[1])
	if !ok {
		return model.DataPoint{}, false
	}

	return model.DataPoint{TimestampMS: ts, Value: value}, true
}

// toMillis accepts json.Number (UseNumber decoding) or float64 (plain decoding).
func toMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// toDecimal converts a JSON number, or a string holding one, to a decimal.
// null and anything else yield false.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}
