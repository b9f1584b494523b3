package geoprep

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-proj/v11"
)

// Reproject returns points transformed from the coordinate reference system
// fromEPSG to toEPSG. X is always easting or longitude, whatever the axis
// order of the coordinate reference systems.
func Reproject(points []orb.Point, fromEPSG, toEPSG int) ([]orb.Point, error) {
	result := make([]orb.Point, len(points))
	if fromEPSG == toEPSG {
		copy(result, points)
		return result, nil
	}

	pj, err := proj.NewCRSToCRS(epsgString(fromEPSG), epsgString(toEPSG), nil)
	if err != nil {
		return nil, err
	}
	defer pj.Destroy()
	normalizedPJ, err := pj.NormalizeForVisualization()
	if err != nil {
		return nil, err
	}
	defer normalizedPJ.Destroy()

	coords := make([][]float64, len(points))
	for i, point := range points {
		coords[i] = []float64{point.X(), point.Y()}
	}
	if err := normalizedPJ.ForwardFloat64Slices(coords); err != nil {
		return nil, err
	}
	for i, coord := range coords {
		result[i] = orb.Point{coord[0], coord[1]}
	}
	return result, nil
}

func epsgString(epsg int) string {
	return fmt.Sprintf("EPSG:%d", epsg)
}
