// Package geoprep prepares raster and point data for geospatial analysis: it
// extracts fixed-size pixel windows around world coordinates, samples raster
// values at points into tables, and checks that datasets share a coordinate
// reference system.
package geoprep

import "errors"

var (
	ErrCoordinatesOutOfBounds = errors.New("coordinates out of bounds")
	ErrDegenerateTransform    = errors.New("degenerate transform")
	ErrInvalidParameterValue  = errors.New("invalid parameter value")
	ErrInvalidWindowSize      = errors.New("invalid window size")
	ErrNonMatchingCRS         = errors.New("non-matching CRS")
)

// A Georeferenced is anything with an optional coordinate reference system,
// identified by its EPSG code.
type Georeferenced interface {
	CRS() (int, bool)
}
