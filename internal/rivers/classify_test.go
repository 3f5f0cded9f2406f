package rivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func line(length float64) *geom.LineString {
	return geom.NewLineStringFlat(geom.XY, []float64{0, 0, length, 0})
}

func TestClassifyByUpstreamArea(t *testing.T) {
	features := []River{
		{UpstreamSqKm: 10},
		{UpstreamSqKm: 500},
		{UpstreamSqKm: 1000},
	}

	got := Classify(features, true)
	require.Len(t, got, 3)
	assert.Equal(t, ClassSmall, got[0].SizeClass)
	assert.Equal(t, ClassMedium, got[1].SizeClass)
	assert.Equal(t, ClassLarge, got[2].SizeClass)
}

func TestClassifyBucketBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		metric   float64
		expected string
	}{
		{"zero", 0, ClassSmall},
		{"at small threshold", 330, ClassSmall},
		{"just past small", 331, ClassMedium},
		{"at medium threshold", 660, ClassMedium},
		{"just past medium", 661, ClassLarge},
		{"maximum", 1000, ClassLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := []River{{UpstreamSqKm: tt.metric}, {UpstreamSqKm: 1000}}
			got := Classify(features, true)
			assert.Equal(t, tt.expected, got[0].SizeClass)
		})
	}
}

func TestClassifyLengthFallback(t *testing.T) {
	features := []River{
		{Geometry: line(10)},
		{Geometry: line(1000)},
	}

	got := Classify(features, false)
	assert.Equal(t, ClassSmall, got[0].SizeClass)
	assert.Equal(t, ClassLarge, got[1].SizeClass)
}

func TestClassifyUpstreamColumnWinsOverLength(t *testing.T) {
	// Long line with tiny drainage area stays small when the column exists.
	features := []River{
		{Geometry: line(1_000_000), UpstreamSqKm: 1},
		{Geometry: line(1), UpstreamSqKm: 1000},
	}

	got := Classify(features, true)
	assert.Equal(t, ClassSmall, got[0].SizeClass)
	assert.Equal(t, ClassLarge, got[1].SizeClass)
}

func TestClassifyAllZeroMetrics(t *testing.T) {
	features := []River{
		{UpstreamSqKm: 0},
		{UpstreamSqKm: 0},
		{UpstreamSqKm: 0},
	}

	got := Classify(features, true)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, ClassSmall, r.SizeClass)
	}
}

func TestClassifyPreservesOrderAndCount(t *testing.T) {
	features := []River{
		{UpstreamSqKm: 700},
		{UpstreamSqKm: 1},
		{UpstreamSqKm: 1000},
		{UpstreamSqKm: 400},
	}

	got := Classify(features, true)
	require.Len(t, got, len(features))
	for i := range features {
		assert.Equal(t, features[i].UpstreamSqKm, got[i].UpstreamSqKm)
	}
	assert.Equal(t, ClassLarge, got[0].SizeClass)
	assert.Equal(t, ClassSmall, got[1].SizeClass)
	assert.Equal(t, ClassLarge, got[2].SizeClass)
	assert.Equal(t, ClassMedium, got[3].SizeClass)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	features := []River{{UpstreamSqKm: 10}}
	_ = Classify(features, true)
	assert.Empty(t, features[0].SizeClass)
}

func TestClassifyEmptyInput(t *testing.T) {
	got := Classify(nil, true)
	assert.Empty(t, got)
}

func TestClassifyMultiLineStringLength(t *testing.T) {
	mls := geom.NewMultiLineString(geom.XY)
	require.NoError(t, mls.Push(line(100)))
	require.NoError(t, mls.Push(line(900)))

	features := []River{
		{Geometry: mls},
		{Geometry: line(1000)},
	}

	got := Classify(features, false)
	// Summed parts equal the single 1000-unit line.
	assert.Equal(t, ClassLarge, got[0].SizeClass)
	assert.Equal(t, ClassLarge, got[1].SizeClass)
}
