package geoprep

import (
	"fmt"
	"math"
)

// An Offset selects which point of a pixel a coordinate refers to.
type Offset int

const (
	OffsetCenter Offset = iota
	OffsetUL
	OffsetUR
	OffsetLL
	OffsetLR
)

// An Affine maps pixel coordinates to world coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// FromGDAL returns the Affine equivalent to a GDAL geotransform.
func FromGDAL(gt [6]float64) Affine {
	return Affine{
		A: gt[1], B: gt[2], C: gt[0],
		D: gt[4], E: gt[5], F: gt[3],
	}
}

// GDAL returns a as a GDAL geotransform.
func (a Affine) GDAL() [6]float64 {
	return [6]float64{a.C, a.A, a.B, a.F, a.D, a.E}
}

func (a Affine) determinant() float64 {
	return a.A*a.E - a.B*a.D
}

// Forward returns the world coordinate of the fractional pixel coordinate
// (col, row).
func (a Affine) Forward(col, row float64) (float64, float64) {
	return a.A*col + a.B*row + a.C, a.D*col + a.E*row + a.F
}

// Inverse returns the inverse of a.
func (a Affine) Inverse() (Affine, error) {
	det := a.determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, ErrDegenerateTransform
	}
	idet := 1 / det
	ia := a.E * idet
	ib := -a.B * idet
	id := -a.D * idet
	ie := a.A * idet
	return Affine{
		A: ia, B: ib, C: -a.C*ia - a.F*ib,
		D: id, E: ie, F: -a.C*id - a.F*ie,
	}, nil
}

// XY returns the world coordinate of the given point of the pixel at (row,
// col).
func (a Affine) XY(row, col int, offset Offset) (float64, float64) {
	var dc, dr float64
	switch offset {
	case OffsetUL:
	case OffsetUR:
		dc = 1
	case OffsetLL:
		dr = 1
	case OffsetLR:
		dc, dr = 1, 1
	default:
		dc, dr = 0.5, 0.5
	}
	return a.Forward(float64(col)+dc, float64(row)+dr)
}

// RowCol returns the row and column of the pixel containing the world
// coordinate (x, y).
func (a Affine) RowCol(x, y float64) (int, int, error) {
	inv, err := a.Inverse()
	if err != nil {
		return 0, 0, err
	}
	col, row := inv.Forward(x, y)
	return int(math.Floor(row)), int(math.Floor(col)), nil
}

// WithOrigin returns a copy of a with its translation replaced by (x, y).
func (a Affine) WithOrigin(x, y float64) Affine {
	a.C = x
	a.F = y
	return a
}

// Resolution returns the absolute pixel size of a.
func (a Affine) Resolution() (float64, float64) {
	return math.Hypot(a.A, a.D), math.Hypot(a.B, a.E)
}

func (a Affine) String() string {
	return fmt.Sprintf("Affine(%v, %v, %v, %v, %v, %v)", a.A, a.B, a.C, a.D, a.E, a.F)
}
