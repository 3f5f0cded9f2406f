package geodata

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// gpkgBlob assembles a GeoPackage geometry blob: "GP" magic, version 0,
// little-endian flags, srs_id 4326, optional XY envelope, then the WKB body.
func gpkgBlob(t *testing.T, g geom.T, withEnvelope bool) []byte {
	t.Helper()

	body, err := wkb.Marshal(g, wkb.NDR)
	require.NoError(t, err)

	flags := byte(0x01)
	if withEnvelope {
		flags |= 1 << 1
	}
	header := []byte{'G', 'P', 0, flags, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(header[4:8], 4326)

	if withEnvelope {
		b := g.Bounds()
		for _, v := range []float64{b.Min(0), b.Max(0), b.Min(1), b.Max(1)} {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			header = append(header, buf[:]...)
		}
	}
	return append(header, body...)
}

func TestSplitGPKGBlobWithEnvelope(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{10, 20, 30, 40})
	blob := gpkgBlob(t, ls, true)

	env, body, err := splitGPKGBlob(blob)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.InDelta(t, 10, env.minX, 1e-12)
	assert.InDelta(t, 30, env.maxX, 1e-12)
	assert.InDelta(t, 20, env.minY, 1e-12)
	assert.InDelta(t, 40, env.maxY, 1e-12)

	got, err := wkb.Unmarshal(body)
	require.NoError(t, err)
	assert.Equal(t, ls.FlatCoords(), got.FlatCoords())
}

func TestSplitGPKGBlobNoEnvelope(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{1, 2, 3, 4})
	env, body, err := splitGPKGBlob(gpkgBlob(t, ls, false))
	require.NoError(t, err)
	assert.Nil(t, env)

	got, err := wkb.Unmarshal(body)
	require.NoError(t, err)
	assert.Equal(t, ls.FlatCoords(), got.FlatCoords())
}

func TestSplitGPKGBlobBigEndianEnvelope(t *testing.T) {
	// flags: big-endian header with a 4-double envelope.
	blob := []byte{'G', 'P', 0, 1 << 1, 0, 0, 0x10, 0xe6}
	for _, v := range []float64{-5, 5, -6, 6} {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		blob = append(blob, buf[:]...)
	}
	blob = append(blob, 0xDE, 0xAD)

	env, body, err := splitGPKGBlob(blob)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.InDelta(t, -5, env.minX, 1e-12)
	assert.InDelta(t, 5, env.maxX, 1e-12)
	assert.InDelta(t, -6, env.minY, 1e-12)
	assert.InDelta(t, 6, env.maxY, 1e-12)
	assert.Equal(t, []byte{0xDE, 0xAD}, body)
}

func TestSplitGPKGBlobRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"nil", nil},
		{"too short", []byte{'G', 'P', 0}},
		{"bad magic", []byte{'X', 'Y', 0, 0, 0, 0, 0, 0}},
		{"invalid envelope indicator", []byte{'G', 'P', 0, 5 << 1, 0, 0, 0, 0}},
		{"truncated envelope", []byte{'G', 'P', 0, 1 << 1, 0, 0, 0, 0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := splitGPKGBlob(tt.blob)
			assert.Error(t, err)
		})
	}
}

// writeTestGPKG creates a minimal GeoPackage with two rivers, one inside
// the unit-ish square at the origin and one far away.
func writeTestGPKG(t *testing.T, withUpstream bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rivers.gpkg")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	stmts := []string{
		`CREATE TABLE gpkg_contents (table_name TEXT, data_type TEXT)`,
		`CREATE TABLE gpkg_geometry_columns (table_name TEXT, column_name TEXT)`,
		`INSERT INTO gpkg_contents VALUES ('rivers', 'features')`,
		`INSERT INTO gpkg_geometry_columns VALUES ('rivers', 'geom')`,
	}
	if withUpstream {
		stmts = append(stmts, `CREATE TABLE rivers (fid INTEGER PRIMARY KEY, geom BLOB, UPLAND_SKM REAL)`)
	} else {
		stmts = append(stmts, `CREATE TABLE rivers (fid INTEGER PRIMARY KEY, geom BLOB)`)
	}
	for _, s := range stmts {
		_, err = db.Exec(s)
		require.NoError(t, err)
	}

	inside := gpkgBlob(t, geom.NewLineStringFlat(geom.XY, []float64{1, 1, 2, 2}), true)
	outside := gpkgBlob(t, geom.NewLineStringFlat(geom.XY, []float64{100, 100, 101, 101}), true)
	if withUpstream {
		_, err = db.Exec(`INSERT INTO rivers (geom, UPLAND_SKM) VALUES (?, ?), (?, NULL)`, inside, 42.5, outside)
	} else {
		_, err = db.Exec(`INSERT INTO rivers (geom) VALUES (?), (?)`, inside, outside)
	}
	require.NoError(t, err)
	return path
}

func TestOpenRiversDiscoversSchema(t *testing.T) {
	r, err := OpenRivers(writeTestGPKG(t, true))
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	assert.Equal(t, "rivers", r.table)
	assert.Equal(t, "geom", r.geomColumn)
	assert.True(t, r.HasUpstreamColumn())
}

func TestOpenRiversWithoutUpstreamColumn(t *testing.T) {
	r, err := OpenRivers(writeTestGPKG(t, false))
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	assert.False(t, r.HasUpstreamColumn())
}

func TestReadMaskedFiltersAndCoercesNulls(t *testing.T) {
	r, err := OpenRivers(writeTestGPKG(t, true))
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	got, err := r.ReadMasked(context.Background(), NewMask(maskSquare(0, 0, 10)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 42.5, got[0].UpstreamSqKm, 1e-12)
}

func TestReadMaskedEmptyMaskReadsAll(t *testing.T) {
	r, err := OpenRivers(writeTestGPKG(t, true))
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	got, err := r.ReadMasked(context.Background(), NewMask(nil))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	// NULL upstream values come back as zero.
	assert.Zero(t, got[1].UpstreamSqKm)
}
