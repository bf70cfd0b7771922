// Package geo holds the coordinate handling shared by every map-facing
// feature: validation, normalization, parsing of upstream location
// representations and zoom clamping. All functions are total; malformed
// input yields a false/fallback result, never a panic.
package geo

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultZoom = 10
	MinZoom     = 0
	MaxZoom     = 20
)

// DefaultCenter is used whenever no better position is known.
var DefaultCenter = [2]float64{28.6139, 77.2090}

// Validate reports whether lat/lng form a usable coordinate.
func Validate(lat, lng float64) bool {
	if !isFinite(lat) || !isFinite(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidatePair is Validate over a latitude-first pair.
func ValidatePair(pair [2]float64) bool {
	return Validate(pair[0], pair[1])
}

// Normalize rounds both elements to 6 decimal digits (~0.1m) so stored and
// displayed coordinates are stable across round-trips.
func Normalize(pair [2]float64) [2]float64 {
	return [2]float64{round6(pair[0]), round6(pair[1])}
}

// ParsePoint converts an upstream location value into a validated,
// latitude-first pair. Two representations are accepted: a point string
// wrapping two numbers in parentheses or brackets with longitude first
// ("(77.21,28.61)"), and a numeric two-element slice, also longitude first.
// The boolean result is false for anything else, including pairs that fail
// validation.
func ParsePoint(raw interface{}) ([2]float64, bool) {
	switch v := raw.(type) {
	case string:
		return parsePointString(v)
	case []float64:
		if len(v) != 2 {
			return [2]float64{}, false
		}
		return orderLatFirst(v[0], v[1])
	case []interface{}:
		if len(v) != 2 {
			return [2]float64{}, false
		}
		lng, ok1 := toFloat(v[0])
		lat, ok2 := toFloat(v[1])
		if !ok1 || !ok2 {
			return [2]float64{}, false
		}
		return orderLatFirst(lng, lat)
	case primitive.A:
		// bson decodes arrays into interface{} fields as primitive.A.
		return ParsePoint([]interface{}(v))
	default:
		return [2]float64{}, false
	}
}

func parsePointString(s string) ([2]float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return [2]float64{}, false
	}
	first, last := s[0], s[len(s)-1]
	if !(first == '(' && last == ')') && !(first == '[' && last == ']') {
		return [2]float64{}, false
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return [2]float64{}, false
	}
	lng, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return [2]float64{}, false
	}
	return orderLatFirst(lng, lat)
}

func orderLatFirst(lng, lat float64) ([2]float64, bool) {
	if !Validate(lat, lng) {
		return [2]float64{}, false
	}
	return [2]float64{lat, lng}, true
}

// ClampZoom returns zoom rounded to the nearest integer within [MinZoom,
// MaxZoom], or DefaultZoom when the input is non-finite or out of range.
func ClampZoom(zoom float64) int {
	if !isFinite(zoom) || zoom < MinZoom || zoom > MaxZoom {
		return DefaultZoom
	}
	return int(math.Round(zoom))
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
