package geoprep

// An Array is a dense grid of samples with shape (bands, height, width).
type Array struct {
	Bands  int
	Height int
	Width  int
	Data   []float64
}

// NewArray returns a new Array with all samples set to fill.
func NewArray(bands, height, width int, fill float64) *Array {
	data := make([]float64, bands*height*width)
	if fill != 0 {
		for i := range data {
			data[i] = fill
		}
	}
	return &Array{
		Bands:  bands,
		Height: height,
		Width:  width,
		Data:   data,
	}
}

// Shape returns the number of bands, rows and columns in a.
func (a *Array) Shape() (int, int, int) {
	return a.Bands, a.Height, a.Width
}

// At returns the sample at (band, row, col). Bands are zero-based.
func (a *Array) At(band, row, col int) float64 {
	return a.Data[a.index(band, row, col)]
}

// Set sets the sample at (band, row, col).
func (a *Array) Set(band, row, col int, value float64) {
	a.Data[a.index(band, row, col)] = value
}

// Band returns the samples of band in row-major order. The returned slice
// shares a's storage.
func (a *Array) Band(band int) []float64 {
	n := a.Height * a.Width
	return a.Data[band*n : (band+1)*n]
}

func (a *Array) index(band, row, col int) int {
	return (band*a.Height+row)*a.Width + col
}
