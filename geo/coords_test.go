package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidate(t *testing.T) {
	assert.True(t, Validate(28.61, 77.21))
	assert.True(t, Validate(-90, -180))
	assert.True(t, Validate(90, 180))
	assert.True(t, Validate(0, 0))

	assert.False(t, Validate(91, 0))
	assert.False(t, Validate(-91, 0))
	assert.False(t, Validate(0, 181))
	assert.False(t, Validate(0, -181))
	assert.False(t, Validate(math.NaN(), 0))
	assert.False(t, Validate(0, math.NaN()))
	assert.False(t, Validate(math.Inf(1), 0))
}

func TestValidatePair(t *testing.T) {
	assert.True(t, ValidatePair([2]float64{28.61, 77.21}))
	assert.False(t, ValidatePair([2]float64{999, 0}))
}

func TestNormalize(t *testing.T) {
	got := Normalize([2]float64{12.3456789, 77.1234564})
	assert.Equal(t, [2]float64{12.345679, 77.123456}, got)
}

func TestNormalizeIdempotentThroughValidate(t *testing.T) {
	pairs := [][2]float64{
		{28.6139, 77.2090},
		{-89.9999999, 179.9999999},
		{0.0000004, -0.0000004},
	}
	for _, pair := range pairs {
		normalized := Normalize(pair)
		assert.True(t, ValidatePair(normalized))
		assert.Equal(t, normalized, Normalize(normalized))
	}
}

func TestParsePointString(t *testing.T) {
	// Longitude-first point string comes back latitude-first.
	got, ok := ParsePoint("(77.21,28.61)")
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	got, ok = ParsePoint("[77.21, 28.61]")
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	_, ok = ParsePoint("(77.21,28.61")
	assert.False(t, ok)
	_, ok = ParsePoint("77.21,28.61")
	assert.False(t, ok)
	_, ok = ParsePoint("(abc,28.61)")
	assert.False(t, ok)
	_, ok = ParsePoint("()")
	assert.False(t, ok)
	_, ok = ParsePoint("")
	assert.False(t, ok)
}

func TestParsePointSlices(t *testing.T) {
	got, ok := ParsePoint([]float64{77.21, 28.61})
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	got, ok = ParsePoint([]interface{}{77.21, 28.61})
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	// bson decodes arrays into interface{} fields as primitive.A.
	got, ok = ParsePoint(primitive.A{77.21, 28.61})
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28.61, 77.21}, got)

	got, ok = ParsePoint(primitive.A{int32(77), int32(28)})
	assert.True(t, ok)
	assert.Equal(t, [2]float64{28, 77}, got)

	_, ok = ParsePoint(primitive.A{77.21})
	assert.False(t, ok)

	_, ok = ParsePoint([]float64{77.21})
	assert.False(t, ok)
	_, ok = ParsePoint([]interface{}{"77.21", "28.61"})
	assert.False(t, ok)
	_, ok = ParsePoint(42)
	assert.False(t, ok)
	_, ok = ParsePoint(nil)
	assert.False(t, ok)
}

func TestParsePointRejectsOutOfRange(t *testing.T) {
	// A parseable pair with out-of-range values still fails.
	_, ok := ParsePoint("(200,95)")
	assert.False(t, ok)
	_, ok = ParsePoint([]float64{0, 91})
	assert.False(t, ok)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, DefaultZoom, ClampZoom(25))
	assert.Equal(t, DefaultZoom, ClampZoom(-1))
	assert.Equal(t, DefaultZoom, ClampZoom(math.NaN()))
	assert.Equal(t, DefaultZoom, ClampZoom(math.Inf(1)))

	assert.Equal(t, 0, ClampZoom(0))
	assert.Equal(t, 20, ClampZoom(20))
	assert.Equal(t, 13, ClampZoom(12.7))
}
