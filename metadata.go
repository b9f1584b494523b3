package geoprep

// Metadata describes a raster.
type Metadata struct {
	Driver    string
	DType     string
	NoData    float64
	HasNoData bool
	Width     int
	Height    int
	Count     int
	CRS       int // EPSG code, zero if unknown.
	Transform Affine
}

// Bounds returns the world-coordinate bounds of m.
func (m Metadata) Bounds() Bounds {
	return boundsOf(m.Transform, m.Width, m.Height)
}

// WithWindow returns a copy of m describing a height by width grid
// georeferenced by transform. All other fields are unchanged.
func (m Metadata) WithWindow(height, width int, transform Affine) Metadata {
	m.Height = height
	m.Width = width
	m.Transform = transform
	return m
}
