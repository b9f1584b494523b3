package geoprep

import (
	"context"
	"fmt"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// sampleFillValues are values that rasters use for missing data and that are
// replaced with missing values in sample tables.
var sampleFillValues = []float64{-999.999, -999999.0}

// A SampleOption sets an option on ExtractValuesFromRasters.
type SampleOption func(*sampleOptions)

type sampleOptions struct {
	bilinear  bool
	reproject bool
}

// WithBilinear interpolates between the four nearest pixel centers instead of
// using the value of the pixel containing each point.
func WithBilinear() SampleOption {
	return func(o *sampleOptions) {
		o.bilinear = true
	}
}

// WithReprojection transforms the points into each raster's coordinate
// reference system before sampling when both are known and they differ.
func WithReprojection() SampleOption {
	return func(o *sampleOptions) {
		o.reproject = true
	}
}

// ExtractValuesFromRasters samples every band of every raster at points and
// returns a table with columns x, y and one column per band.
//
// Columns are named after columnNames, if given, or else after the raster's
// name without directory or extension. Rasters with more than one band get
// one column per band, suffixed with _ and the one-based band number. The fill
// values -999.999 and -999999 and points outside a raster are returned as
// missing values.
func ExtractValuesFromRasters(ctx context.Context, rasters []Raster, points *PointSet, columnNames []string, options ...SampleOption) (*Table, error) {
	if columnNames != nil {
		if len(columnNames) == 0 {
			return nil, fmt.Errorf("%w: empty column names", ErrInvalidParameterValue)
		}
		if len(columnNames) < len(rasters) {
			return nil, fmt.Errorf("%w: %d column names for %d rasters", ErrInvalidParameterValue, len(columnNames), len(rasters))
		}
	}
	if rasters == nil {
		return nil, fmt.Errorf("%w: no raster list", ErrInvalidParameterValue)
	}
	for i, raster := range rasters {
		if raster == nil {
			return nil, fmt.Errorf("%w: raster %d is nil", ErrInvalidParameterValue, i)
		}
	}
	if points == nil {
		return nil, fmt.Errorf("%w: no points", ErrInvalidParameterValue)
	}

	o := sampleOptions{}
	for _, option := range options {
		option(&o)
	}

	table := newTable(points.Len())
	xs := make([]Value, points.Len())
	ys := make([]Value, points.Len())
	for i, point := range points.Points {
		xs[i] = Value{Float64: point.X(), Valid: true}
		ys[i] = Value{Float64: point.Y(), Valid: true}
	}
	table.setColumn("x", xs)
	table.setColumn("y", ys)

	for i, raster := range rasters {
		rasterPoints := points.Points
		if o.reproject {
			pointsCRS, ok1 := points.CRS()
			rasterCRS, ok2 := raster.CRS()
			if ok1 && ok2 && pointsCRS != rasterCRS {
				var err error
				rasterPoints, err = Reproject(rasterPoints, pointsCRS, rasterCRS)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", raster.Name(), err)
				}
			}
		}

		var samples [][]float64
		var err error
		if o.bilinear {
			samples, err = InterpolateBilinear(ctx, raster, rasterPoints)
		} else {
			samples, err = sampleNearest(ctx, raster, rasterPoints)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raster.Name(), err)
		}

		baseName := ""
		if columnNames != nil {
			baseName = columnNames[i]
		} else {
			baseName = sourceBaseName(raster.Name())
		}
		count := raster.Meta().Count
		for band := range count {
			name := baseName
			if count > 1 {
				name += "_" + strconv.Itoa(band+1)
			}
			values := make([]Value, len(samples))
			for j, bandSamples := range samples {
				if sample := bandSamples[band]; !math.IsNaN(sample) {
					values[j] = Value{Float64: sample, Valid: true}
				}
			}
			table.setColumn(name, values)
			table.replace(name, sampleFillValues)
		}
	}

	return table, nil
}

// sampleNearest returns the values of all bands of the pixels of raster
// containing points.
func sampleNearest(ctx context.Context, raster Raster, points []orb.Point) ([][]float64, error) {
	pixels, err := pointPixels(raster.Meta().Transform, points)
	if err != nil {
		return nil, err
	}
	return samplePixels(ctx, raster, pixels)
}

// pointPixels returns the pixels of the grid georeferenced by transform that
// contain points.
func pointPixels(transform Affine, points []orb.Point) ([]Pixel, error) {
	inv, err := transform.Inverse()
	if err != nil {
		return nil, err
	}
	pixels := make([]Pixel, len(points))
	for i, point := range points {
		col, row := inv.Forward(point.X(), point.Y())
		pixels[i] = floorPixel(row, col)
	}
	return pixels, nil
}

// floorPixel returns the pixel containing the fractional pixel coordinate
// (row, col). Non-finite coordinates map to a pixel outside every raster.
func floorPixel(row, col float64) Pixel {
	if math.IsNaN(row) || math.IsNaN(col) || math.IsInf(row, 0) || math.IsInf(col, 0) {
		return Pixel{Row: -1, Col: -1}
	}
	return Pixel{Row: int(math.Floor(row)), Col: int(math.Floor(col))}
}

// sourceBaseName returns name without its directory or extension.
func sourceBaseName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	if ext := path.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
