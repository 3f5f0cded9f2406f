package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestForwardKnownValues(t *testing.T) {
	x, y := Forward(0, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	// World edge: 180 degrees is half the Mercator circumference.
	x, _ = Forward(180, 0)
	assert.InDelta(t, 20037508.34, x, 1.0)

	// Reference point: Greenwich at 51.4778N.
	x, y = Forward(0, 51.4778)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 6705340, y, 2000)
}

func TestForwardInverseRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
	}{
		{"equator", 12.5, 0},
		{"mid latitude", -74.006, 40.7128},
		{"southern hemisphere", 151.2093, -33.8688},
		{"high latitude", 18.0686, 59.3293},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Forward(tt.lon, tt.lat)
			lon, lat := Inverse(x, y)
			assert.InDelta(t, tt.lon, lon, 1e-9)
			assert.InDelta(t, tt.lat, lat, 1e-9)
		})
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	poly := geom.NewPolygonFlat(geom.XY, []float64{
		8, 44, 12, 44, 12, 47, 8, 47, 8, 44,
	}, []int{10}).SetSRID(SRIDGeographic)

	projected, err := ToWebMercator(poly)
	require.NoError(t, err)
	assert.Equal(t, SRIDWebMercator, projected.SRID())

	back, err := ToGeographic(projected)
	require.NoError(t, err)
	assert.Equal(t, SRIDGeographic, back.SRID())

	want := poly.FlatCoords()
	got := back.FlatCoords()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}

func TestTransformLineString(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}).SetSRID(SRIDGeographic)

	projected, err := ToWebMercator(ls)
	require.NoError(t, err)

	mls, ok := projected.(*geom.LineString)
	require.True(t, ok)
	assert.InDelta(t, 0, mls.FlatCoords()[0], 1e-9)
	assert.Greater(t, mls.FlatCoords()[2], 111000.0)
}

func TestTransformNil(t *testing.T) {
	got, err := ToWebMercator(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransformCollection(t *testing.T) {
	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(geom.NewPointFlat(geom.XY, []float64{10, 20}).SetSRID(SRIDGeographic)))

	projected, err := ToWebMercator(gc)
	require.NoError(t, err)

	out, ok := projected.(*geom.GeometryCollection)
	require.True(t, ok)
	require.Len(t, out.Geoms(), 1)
}
