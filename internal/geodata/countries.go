// Package geodata loads the two source datasets: the admin-0 countries
// shapefile and the HydroRIVERS GeoPackage.
package geodata

import (
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartolab/rivermap/internal/country"
)

// Attribute names in the Natural Earth admin-0 dataset.
const (
	fieldSovereignty = "SOVEREIGNT"
	fieldType        = "TYPE"
	fieldName        = "NAME"
)

// LoadCountries reads the admin-0 shapefile into country features.
func LoadCountries(shpPath string) ([]country.Feature, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	sovIdx := fieldIndex(reader, fieldSovereignty)
	typeIdx := fieldIndex(reader, fieldType)
	nameIdx := fieldIndex(reader, fieldName)
	if sovIdx < 0 || typeIdx < 0 {
		return nil, eris.Errorf("geodata: required shapefile fields (%s, %s) not found", fieldSovereignty, fieldType)
	}

	var features []country.Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		f := country.Feature{
			Sovereignty: attribute(reader, sovIdx),
			Type:        attribute(reader, typeIdx),
			Geometry:    shapeToGeom(shape),
		}
		if nameIdx >= 0 {
			f.Name = attribute(reader, nameIdx)
		}
		if f.Name == "" {
			f.Name = f.Sovereignty
		}

		if f.Geometry == nil {
			skipped++
		}
		features = append(features, f)
	}

	if skipped > 0 {
		zap.L().Debug("geodata: country records without usable geometry", zap.Int("count", skipped))
	}
	zap.L().Info("countries dataset loaded", zap.Int("features", len(features)))
	return features, nil
}

// SovereigntyNames returns the sorted distinct sovereignty names of the dataset.
func SovereigntyNames(features []country.Feature) []string {
	seen := make(map[string]struct{}, len(features))
	var names []string
	for _, f := range features {
		if f.Sovereignty == "" {
			continue
		}
		if _, ok := seen[f.Sovereignty]; ok {
			continue
		}
		seen[f.Sovereignty] = struct{}{}
		names = append(names, f.Sovereignty)
	}
	sort.Strings(names)
	return names
}

// attribute reads and trims a dbf attribute.
func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
