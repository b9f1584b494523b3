package geoprep

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// A PointSet is a sequence of points in a common coordinate reference system.
type PointSet struct {
	Points []orb.Point
	EPSG   int // Zero if unknown.
}

// NewPointSet returns a new PointSet.
func NewPointSet(points []orb.Point, epsg int) *PointSet {
	return &PointSet{
		Points: points,
		EPSG:   epsg,
	}
}

// PointSetFromFeatureCollection returns the points of fc. Every feature must
// have a point geometry.
func PointSetFromFeatureCollection(fc *geojson.FeatureCollection, epsg int) (*PointSet, error) {
	points := make([]orb.Point, 0, len(fc.Features))
	for i, feature := range fc.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d: %T is not a point", ErrInvalidParameterValue, i, feature.Geometry)
		}
		points = append(points, point)
	}
	return NewPointSet(points, epsg), nil
}

// ReadGeoJSONPoints parses a GeoJSON FeatureCollection of points.
func ReadGeoJSONPoints(data []byte, epsg int) (*PointSet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	return PointSetFromFeatureCollection(fc, epsg)
}

func (s *PointSet) CRS() (int, bool) {
	return s.EPSG, s.EPSG != 0
}

// Len returns the number of points in s.
func (s *PointSet) Len() int {
	return len(s.Points)
}
