package geoprep

import (
	"context"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// InterpolateBilinear returns the values of all bands of raster at points,
// interpolated bilinearly between the four nearest pixel centers. The result
// is NaN if any of the four pixels is outside raster, holds a fill value, or
// holds raster's nodata value.
func InterpolateBilinear(ctx context.Context, raster Raster, points []orb.Point) ([][]float64, error) {
	inv, err := raster.Meta().Transform.Inverse()
	if err != nil {
		return nil, err
	}

	pixels := make([]Pixel, 4*len(points))
	dxs := make([]float64, len(points))
	dys := make([]float64, len(points))
	for i, point := range points {
		col, row := inv.Forward(point.X(), point.Y())
		col -= 0.5
		row -= 0.5
		p0 := floorPixel(row, col)
		dxs[i] = col - float64(p0.Col)
		dys[i] = row - float64(p0.Row)
		pixels[4*i+0] = p0
		pixels[4*i+1] = Pixel{Row: p0.Row, Col: p0.Col + 1}
		pixels[4*i+2] = Pixel{Row: p0.Row + 1, Col: p0.Col}
		pixels[4*i+3] = Pixel{Row: p0.Row + 1, Col: p0.Col + 1}
	}

	samples, err := samplePixels(ctx, raster, pixels)
	if err != nil {
		return nil, err
	}

	meta := raster.Meta()
	isMissing := func(sample float64) bool {
		return isFillValue(meta, sample)
	}
	result := make([][]float64, len(points))
	for i := range points {
		result[i] = make([]float64, meta.Count)
		dx, dy := dxs[i], dys[i]
		for band := range meta.Count {
			s00 := samples[4*i+0][band]
			s01 := samples[4*i+1][band]
			s10 := samples[4*i+2][band]
			s11 := samples[4*i+3][band]
			if slices.ContainsFunc([]float64{s00, s01, s10, s11}, isMissing) {
				result[i][band] = math.NaN()
				continue
			}
			result[i][band] = 0 +
				s00*(1-dx)*(1-dy) +
				s01*dx*(1-dy) +
				s10*(1-dx)*dy +
				s11*dx*dy
		}
	}
	return result, nil
}

// isFillValue returns whether sample is missing in a raster with meta.
func isFillValue(meta Metadata, sample float64) bool {
	if meta.HasNoData && sample == meta.NoData {
		return true
	}
	return math.IsNaN(sample) || slices.Contains(sampleFillValues, sample)
}
