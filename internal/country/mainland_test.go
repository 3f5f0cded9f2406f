package country

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(x, y, size float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x, y, x + size, y, x + size, y + size, x, y + size, x, y,
	}, []int{10}).SetSRID(4326)
}

func TestExtractMainlandSinglePolygon(t *testing.T) {
	poly := square(10, 40, 2)
	m, err := ExtractMainland([]Feature{{Sovereignty: "Testland", Geometry: poly}})
	require.NoError(t, err)

	region, ok := m.Region.(*geom.Polygon)
	require.True(t, ok, "region should be a single polygon")
	assert.Equal(t, 4326, region.SRID())

	// Round trip through the projection should reproduce the input closely.
	want := poly.FlatCoords()
	got := region.FlatCoords()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6)
	}
}

func TestExtractMainlandPicksLargestPart(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	require.NoError(t, mp.Push(square(20, 20, 1)))  // island
	require.NoError(t, mp.Push(square(0, 0, 10)))   // mainland
	require.NoError(t, mp.Push(square(30, 30, 0.5)) /* islet */)

	m, err := ExtractMainland([]Feature{{Sovereignty: "Testland", Geometry: mp}})
	require.NoError(t, err)

	region, ok := m.Region.(*geom.Polygon)
	require.True(t, ok)

	b := region.Bounds()
	assert.InDelta(t, 0, b.Min(0), 1e-6)
	assert.InDelta(t, 0, b.Min(1), 1e-6)
	assert.InDelta(t, 10, b.Max(0), 1e-6)
	assert.InDelta(t, 10, b.Max(1), 1e-6)
}

func TestExtractMainlandAcrossFeatures(t *testing.T) {
	features := []Feature{
		{Sovereignty: "Testland", Geometry: square(0, 0, 1)},
		{Sovereignty: "Testland", Geometry: square(5, 5, 3)},
	}

	m, err := ExtractMainland(features)
	require.NoError(t, err)

	region := m.Region.(*geom.Polygon)
	assert.InDelta(t, 5, region.Bounds().Min(0), 1e-6)
	assert.InDelta(t, 8, region.Bounds().Max(0), 1e-6)
}

func TestExtractMainlandTieKeepsFirst(t *testing.T) {
	features := []Feature{
		{Sovereignty: "Testland", Geometry: square(0, 0, 2)},
		{Sovereignty: "Testland", Geometry: square(50, 0, 2)},
	}

	m, err := ExtractMainland(features)
	require.NoError(t, err)

	region := m.Region.(*geom.Polygon)
	assert.InDelta(t, 0, region.Bounds().Min(0), 1e-6)
}

func TestExtractMainlandEmptyGeometryFallback(t *testing.T) {
	features := []Feature{
		{Sovereignty: "Nowhere", Geometry: nil},
		{Sovereignty: "Nowhere", Geometry: nil},
	}

	m, err := ExtractMainland(features)
	require.NoError(t, err)
	require.NotNil(t, m.Region)
	require.NotNil(t, m.Mask)

	_, ok := m.Region.(*geom.GeometryCollection)
	assert.True(t, ok, "fallback region wraps the original selection")
}

func TestExtractMainlandMaskMatchesRegion(t *testing.T) {
	m, err := ExtractMainland([]Feature{{Sovereignty: "Testland", Geometry: square(0, 0, 1)}})
	require.NoError(t, err)
	assert.Equal(t, m.Region, m.Mask)
}
