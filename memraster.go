package geoprep

import (
	"context"
	"fmt"
)

// A MemRaster is a Raster held in memory.
type MemRaster struct {
	name  string
	meta  Metadata
	array *Array
}

// NewMemRaster returns a new MemRaster. The shape of array must match meta.
func NewMemRaster(name string, meta Metadata, array *Array) (*MemRaster, error) {
	if bands, height, width := array.Shape(); bands != meta.Count || height != meta.Height || width != meta.Width {
		return nil, fmt.Errorf("%w: array shape (%d, %d, %d) does not match metadata (%d, %d, %d)",
			ErrInvalidParameterValue, bands, height, width, meta.Count, meta.Height, meta.Width)
	}
	if len(array.Data) != array.Bands*array.Height*array.Width {
		return nil, fmt.Errorf("%w: array has %d samples, expected %d",
			ErrInvalidParameterValue, len(array.Data), array.Bands*array.Height*array.Width)
	}
	if meta.Driver == "" {
		meta.Driver = "MEM"
	}
	if meta.DType == "" {
		meta.DType = "float64"
	}
	return &MemRaster{
		name:  name,
		meta:  meta,
		array: array,
	}, nil
}

func (r *MemRaster) Name() string {
	return r.name
}

func (r *MemRaster) Meta() Metadata {
	return r.meta
}

func (r *MemRaster) CRS() (int, bool) {
	return r.meta.CRS, r.meta.CRS != 0
}

// ReadWindow implements Raster.ReadWindow.
func (r *MemRaster) ReadWindow(ctx context.Context, window Window, fill float64) (*Array, error) {
	if window.Width < 0 || window.Height < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidWindowSize, window)
	}
	out := NewArray(r.meta.Count, window.Height, window.Width, fill)
	for band := range r.meta.Count {
		for row := range window.Height {
			for col := range window.Width {
				pixel := Pixel{Row: window.RowOff + row, Col: window.ColOff + col}
				if !r.meta.inside(pixel) {
					continue
				}
				out.Set(band, row, col, r.array.At(band, pixel.Row, pixel.Col))
			}
		}
	}
	return out, nil
}

// SamplePixels implements PixelSampler.SamplePixels.
func (r *MemRaster) SamplePixels(ctx context.Context, pixels []Pixel) ([][]float64, error) {
	samples := make([][]float64, len(pixels))
	for i, pixel := range pixels {
		if !r.meta.inside(pixel) {
			samples[i] = nanSamples(r.meta.Count)
			continue
		}
		samples[i] = make([]float64, r.meta.Count)
		for band := range r.meta.Count {
			samples[i][band] = r.array.At(band, pixel.Row, pixel.Col)
		}
	}
	return samples, nil
}
