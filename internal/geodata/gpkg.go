package geodata

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkb"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // GeoPackage files are sqlite databases

	"github.com/cartolab/rivermap/internal/rivers"
)

// upstreamColumn is the HydroRIVERS upstream drainage area attribute (sq km).
const upstreamColumn = "UPLAND_SKM"

// RiverReader reads river linestrings out of a GeoPackage.
type RiverReader struct {
	db          *sql.DB
	table       string
	geomColumn  string
	hasUpstream bool
}

// OpenRivers opens a GeoPackage and locates its feature table and geometry
// column via the gpkg_contents and gpkg_geometry_columns registry tables.
func OpenRivers(path string) (*RiverReader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open geopackage %s", path)
	}

	r := &RiverReader{db: db}
	row := db.QueryRow(`
		SELECT c.table_name, g.column_name
		FROM gpkg_contents c
		JOIN gpkg_geometry_columns g ON g.table_name = c.table_name
		WHERE c.data_type = 'features'
		LIMIT 1`)
	if err := row.Scan(&r.table, &r.geomColumn); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "geodata: locate feature table")
	}

	var n int
	row = db.QueryRow(`SELECT count(*) FROM pragma_table_info(?) WHERE name = ?`, r.table, upstreamColumn)
	if err := row.Scan(&n); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "geodata: inspect feature table schema")
	}
	r.hasUpstream = n > 0

	return r, nil
}

// HasUpstreamColumn reports whether the dataset schema carries UPLAND_SKM.
func (r *RiverReader) HasUpstreamColumn() bool { return r.hasUpstream }

// Close releases the underlying database handle.
func (r *RiverReader) Close() error { return r.db.Close() }

// ReadMasked returns the rivers intersecting the mask, in dataset order.
// The GeoPackage envelope header prefilters by bounding box so most
// out-of-mask rows are skipped without decoding their WKB body. Missing
// upstream values are coerced to zero.
func (r *RiverReader) ReadMasked(ctx context.Context, mask *Mask) ([]rivers.River, error) {
	query := fmt.Sprintf(`SELECT %q FROM %q`, r.geomColumn, r.table)
	if r.hasUpstream {
		query = fmt.Sprintf(`SELECT %q, %q FROM %q`, r.geomColumn, upstreamColumn, r.table)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "geodata: query rivers")
	}
	defer rows.Close() //nolint:errcheck

	var out []rivers.River
	var scanned, malformed int
	for rows.Next() {
		var blob []byte
		var upstream sql.NullFloat64
		if r.hasUpstream {
			err = rows.Scan(&blob, &upstream)
		} else {
			err = rows.Scan(&blob)
		}
		if err != nil {
			return nil, eris.Wrap(err, "geodata: scan river row")
		}
		scanned++

		env, body, err := splitGPKGBlob(blob)
		if err != nil {
			malformed++
			continue
		}
		if env != nil && !mask.OverlapsBounds(env.minX, env.minY, env.maxX, env.maxY) {
			continue
		}

		g, err := wkb.Unmarshal(body)
		if err != nil {
			malformed++
			continue
		}
		if !mask.ContainsLine(g) {
			continue
		}

		out = append(out, rivers.River{
			Geometry:     g,
			UpstreamSqKm: upstream.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "geodata: iterate river rows")
	}

	if malformed > 0 {
		zap.L().Debug("geodata: skipped malformed river geometries", zap.Int("count", malformed))
	}
	zap.L().Info("rivers dataset read",
		zap.Int("scanned", scanned),
		zap.Int("selected", len(out)),
		zap.Bool("upstream_column", r.hasUpstream),
	)
	return out, nil
}

// envelope is the bounding box carried in a GeoPackage geometry header.
type envelope struct {
	minX, maxX, minY, maxY float64
}

// splitGPKGBlob parses the GeoPackage binary header and returns the optional
// envelope plus the WKB body. Header layout: "GP" magic, version byte, flags
// byte (bit 0 byte order, bits 1-3 envelope indicator), int32 srs_id, then
// the envelope doubles.
func splitGPKGBlob(blob []byte) (*envelope, []byte, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, nil, eris.New("geodata: not a geopackage geometry blob")
	}

	flags := blob[3]
	var order binary.ByteOrder = binary.BigEndian
	if flags&0x01 != 0 {
		order = binary.LittleEndian
	}

	var envDoubles int
	switch (flags >> 1) & 0x07 {
	case 0:
		envDoubles = 0
	case 1:
		envDoubles = 4
	case 2, 3:
		envDoubles = 6
	case 4:
		envDoubles = 8
	default:
		return nil, nil, eris.New("geodata: invalid envelope indicator")
	}

	headerLen := 8 + envDoubles*8
	if len(blob) < headerLen {
		return nil, nil, eris.New("geodata: truncated geometry header")
	}

	var env *envelope
	if envDoubles >= 4 {
		// Envelope order is minx, maxx, miny, maxy.
		env = &envelope{
			minX: math.Float64frombits(order.Uint64(blob[8:16])),
			maxX: math.Float64frombits(order.Uint64(blob[16:24])),
			minY: math.Float64frombits(order.Uint64(blob[24:32])),
			maxY: math.Float64frombits(order.Uint64(blob[32:40])),
		}
	}

	return env, blob[headerLen:], nil
}
