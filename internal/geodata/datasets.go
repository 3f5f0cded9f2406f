package geodata

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/fetcher"
)

// Paths locates the on-disk source datasets after Ensure.
type Paths struct {
	// CountriesShp is the extracted admin-0 shapefile.
	CountriesShp string
	// RiversGPKG is the HydroRIVERS GeoPackage.
	RiversGPKG string
}

// Datasets downloads the source datasets once and resolves their local paths.
// Files are written at most once and never rewritten; concurrent requests
// after the initial download only read.
type Datasets struct {
	fetcher      fetcher.Fetcher
	dataDir      string
	countriesURL string
	riversURL    string
}

// NewDatasets creates a dataset manager rooted at dataDir.
func NewDatasets(f fetcher.Fetcher, dataDir, countriesURL, riversURL string) *Datasets {
	return &Datasets{
		fetcher:      f,
		dataDir:      dataDir,
		countriesURL: countriesURL,
		riversURL:    riversURL,
	}
}

// Ensure downloads any missing dataset and returns the local paths. The
// countries archive is extracted next to its ZIP; the rivers GeoPackage is
// used in place.
func (d *Datasets) Ensure(ctx context.Context) (Paths, error) {
	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return Paths{}, eris.Wrap(err, "geodata: create data dir")
	}

	shpPath, err := d.ensureCountries(ctx)
	if err != nil {
		return Paths{}, err
	}

	gpkgPath := filepath.Join(d.dataDir, baseName(d.riversURL))
	if _, err := d.fetcher.DownloadIfAbsent(ctx, d.riversURL, gpkgPath); err != nil {
		return Paths{}, eris.Wrap(err, "geodata: fetch rivers dataset")
	}

	return Paths{CountriesShp: shpPath, RiversGPKG: gpkgPath}, nil
}

// ensureCountries downloads and extracts the admin-0 archive, returning the
// path to its .shp file.
func (d *Datasets) ensureCountries(ctx context.Context) (string, error) {
	zipName := baseName(d.countriesURL)
	zipPath := filepath.Join(d.dataDir, zipName)

	if _, err := d.fetcher.DownloadIfAbsent(ctx, d.countriesURL, zipPath); err != nil {
		return "", eris.Wrap(err, "geodata: fetch countries dataset")
	}

	extractDir := filepath.Join(d.dataDir, strings.TrimSuffix(zipName, ".zip"))
	if shpPath, err := fetcher.FindByExt(extractDir, ".shp"); err == nil {
		return shpPath, nil
	}

	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "geodata: create extract dir")
	}
	extracted, err := fetcher.ExtractZIP(zipPath, extractDir)
	if err != nil {
		return "", eris.Wrap(err, "geodata: extract countries archive")
	}
	zap.L().Debug("countries archive extracted", zap.Int("files", len(extracted)))

	shpPath, err := fetcher.FindByExt(extractDir, ".shp")
	if err != nil {
		return "", eris.Wrap(err, "geodata: find countries shapefile")
	}
	return shpPath, nil
}

// baseName returns the final path segment of a URL.
func baseName(url string) string {
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
