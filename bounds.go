package geoprep

import "math"

// Bounds is a world-coordinate bounding box.
type Bounds struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// Contains returns whether (x, y) is inside b. Points on the edges are inside.
func (b Bounds) Contains(x, y float64) bool {
	return b.Left <= x && x <= b.Right && b.Bottom <= y && y <= b.Top
}

// boundsOf returns the bounds of a width by height grid georeferenced by t.
func boundsOf(t Affine, width, height int) Bounds {
	b := Bounds{
		Left:   math.Inf(1),
		Bottom: math.Inf(1),
		Right:  math.Inf(-1),
		Top:    math.Inf(-1),
	}
	for _, corner := range [][2]float64{
		{0, 0},
		{float64(width), 0},
		{0, float64(height)},
		{float64(width), float64(height)},
	} {
		x, y := t.Forward(corner[0], corner[1])
		b.Left = min(b.Left, x)
		b.Right = max(b.Right, x)
		b.Bottom = min(b.Bottom, y)
		b.Top = max(b.Top, y)
	}
	return b
}
