package geoprep

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// WindowFillValue is the value of window samples outside the source raster.
const WindowFillValue = -9999

// ExtractWindow extracts a height by width pixel window from raster centered
// on center, which must be in the coordinate reference system with EPSG code
// centerCRS. The window may extend past the edges of raster, in which case the
// samples outside are set to WindowFillValue. It returns the window and its
// metadata, which is raster's metadata with the size and transform replaced.
//
// When height or width is even there is no center pixel along that axis, and
// the window is shifted by one pixel toward the side of the center pixel that
// contains center.
func ExtractWindow(ctx context.Context, raster Raster, center orb.Point, centerCRS, height, width int) (*Array, Metadata, error) {
	if height < 1 || width < 1 {
		return nil, Metadata{}, fmt.Errorf("%w: %dx%d", ErrInvalidWindowSize, height, width)
	}
	if crs, ok := raster.CRS(); !ok || crs != centerCRS {
		return nil, Metadata{}, fmt.Errorf("%w: raster %s is not in EPSG:%d", ErrNonMatchingCRS, raster.Name(), centerCRS)
	}
	meta := raster.Meta()
	if !meta.Bounds().Contains(center.X(), center.Y()) {
		return nil, Metadata{}, fmt.Errorf("%w: %v outside %s", ErrCoordinatesOutOfBounds, center, raster.Name())
	}

	window, err := centeredWindow(meta.Transform, center, height, width)
	if err != nil {
		return nil, Metadata{}, err
	}

	array, err := raster.ReadWindow(ctx, window, WindowFillValue)
	if err != nil {
		return nil, Metadata{}, err
	}

	originX, originY := meta.Transform.XY(window.RowOff, window.ColOff, OffsetUL)
	transform := meta.Transform.WithOrigin(originX, originY)
	return array, meta.WithWindow(height, width, transform), nil
}

// centeredWindow returns the height by width window of the grid georeferenced
// by transform that is centered on center.
func centeredWindow(transform Affine, center orb.Point, height, width int) (Window, error) {
	centerRow, centerCol, err := transform.RowCol(center.X(), center.Y())
	if err != nil {
		return Window{}, err
	}

	rowOff := centerRow - height/2
	colOff := centerCol - width/2

	if height%2 == 0 || width%2 == 0 {
		pixelX, pixelY := transform.XY(centerRow, centerCol, OffsetCenter)
		if height%2 == 0 && center.Y() < pixelY {
			rowOff++
		}
		if width%2 == 0 && center.X() > pixelX {
			colOff++
		}
	}

	return Window{
		ColOff: colOff,
		RowOff: rowOff,
		Width:  width,
		Height: height,
	}, nil
}
