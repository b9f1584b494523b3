package geoprep

import (
	"context"
	"math"
)

// A Window is a rectangular region of a raster in pixel coordinates. Offsets
// may be negative and the window may extend past the raster.
type Window struct {
	ColOff int
	RowOff int
	Width  int
	Height int
}

// A Pixel is the position of a pixel in a raster.
type Pixel struct {
	Row int
	Col int
}

// A Raster is a georeferenced grid of samples with one or more bands.
type Raster interface {
	Georeferenced

	// Name returns the name of the raster's source, typically a filename.
	Name() string

	// Meta returns the raster's metadata.
	Meta() Metadata

	// ReadWindow reads all bands in window. Samples outside the raster are
	// set to fill.
	ReadWindow(ctx context.Context, window Window, fill float64) (*Array, error)
}

// A PixelSampler is a Raster that can read individual pixels more efficiently
// than one window per pixel.
type PixelSampler interface {
	Raster

	// SamplePixels returns the values of all bands at each pixel. Pixels
	// outside the raster have all bands set to NaN.
	SamplePixels(ctx context.Context, pixels []Pixel) ([][]float64, error)
}

// samplePixels returns the values of all bands of raster at pixels.
func samplePixels(ctx context.Context, raster Raster, pixels []Pixel) ([][]float64, error) {
	if pixelSampler, ok := raster.(PixelSampler); ok {
		return pixelSampler.SamplePixels(ctx, pixels)
	}
	samples := make([][]float64, len(pixels))
	for i, pixel := range pixels {
		array, err := raster.ReadWindow(ctx, Window{
			ColOff: pixel.Col,
			RowOff: pixel.Row,
			Width:  1,
			Height: 1,
		}, math.NaN())
		if err != nil {
			return nil, err
		}
		samples[i] = array.Data
	}
	return samples, nil
}

// inside returns whether pixel lies within meta's grid.
func (m Metadata) inside(pixel Pixel) bool {
	return 0 <= pixel.Row && pixel.Row < m.Height && 0 <= pixel.Col && pixel.Col < m.Width
}

func nanSamples(count int) []float64 {
	samples := make([]float64, count)
	for i := range samples {
		samples[i] = math.NaN()
	}
	return samples
}
