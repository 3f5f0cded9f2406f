// Package country resolves country records from the admin-0 dataset and
// extracts the mainland (largest landmass) polygon for use as a spatial mask.
package country

import "github.com/twpayne/go-geom"

// TypeDependency marks territory records administratively dependent on
// another sovereign entity; they are excluded from resolution.
const TypeDependency = "Dependency"

// Feature is one record of the countries dataset.
type Feature struct {
	// Sovereignty is the SOVEREIGNT attribute. Multiple features may share
	// one sovereignty name (disputed and dependent territories).
	Sovereignty string
	// Name is the display name (NAME attribute).
	Name string
	// Type is the TYPE attribute, e.g. "Sovereign country" or "Dependency".
	Type string
	// Geometry is a polygon or multi-polygon in geographic coordinates.
	Geometry geom.T
}

// Mainland is the largest contiguous landmass of a resolved country.
type Mainland struct {
	// Region is the mainland geometry in the original geographic CRS. In the
	// normal path this is a single polygon; in the empty-geometry fallback it
	// is the original selection's geometry collection.
	Region geom.T
	// Mask is the geometry used for mask-restricted dataset reads. Identical
	// to Region except in the fallback, where it covers everything available.
	Mask geom.T
}
