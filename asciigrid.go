package geoprep

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadESRIASCIIGrid reads a single band ESRI ASCII grid from r. The format
// carries no coordinate reference system, so it is given by epsg.
func ReadESRIASCIIGrid(r io.Reader, name string, epsg int) (*MemRaster, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	scanner.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var firstValue string
	for scanner.Scan() {
		word := scanner.Text()
		key := strings.ToLower(word)
		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		default:
			firstValue = word
		}
		if firstValue != "" {
			break
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("%s: missing value for %s", name, word)
		}
		value, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", name, word, err)
		}
		header[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	ncols, nrows, cellSize := int(header["ncols"]), int(header["nrows"]), header["cellsize"]
	if ncols <= 0 || nrows <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("%s: invalid header", name)
	}
	var left, bottom float64
	switch xllCorner, ok := header["xllcorner"]; {
	case ok:
		left = xllCorner
	default:
		xllCenter, ok := header["xllcenter"]
		if !ok {
			return nil, fmt.Errorf("%s: missing xllcorner", name)
		}
		left = xllCenter - cellSize/2
	}
	switch yllCorner, ok := header["yllcorner"]; {
	case ok:
		bottom = yllCorner
	default:
		yllCenter, ok := header["yllcenter"]
		if !ok {
			return nil, fmt.Errorf("%s: missing yllcorner", name)
		}
		bottom = yllCenter - cellSize/2
	}

	meta := Metadata{
		Driver: "AAIGrid",
		DType:  "float64",
		Width:  ncols,
		Height: nrows,
		Count:  1,
		CRS:    epsg,
		Transform: Affine{
			A: cellSize, B: 0, C: left,
			D: 0, E: -cellSize, F: bottom + float64(nrows)*cellSize,
		},
	}
	if noData, ok := header["nodata_value"]; ok {
		meta.NoData = noData
		meta.HasNoData = true
	}

	array := NewArray(1, nrows, ncols, 0)
	for i := range array.Data {
		word := firstValue
		if i > 0 || word == "" {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("%s: %w: got %d values, expected %d", name, io.ErrUnexpectedEOF, i, len(array.Data))
			}
			word = scanner.Text()
		}
		value, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: value %d: %w", name, i, err)
		}
		array.Data[i] = value
	}

	return NewMemRaster(name, meta, array)
}

// WriteESRIASCIIGrid writes band of array, georeferenced by meta, to w as an
// ESRI ASCII grid. The grid must have square, unrotated pixels.
func WriteESRIASCIIGrid(w io.Writer, meta Metadata, array *Array, band int, noData float64) error {
	t := meta.Transform
	if t.B != 0 || t.D != 0 || t.A <= 0 || t.E >= 0 || t.A != -t.E {
		return fmt.Errorf("%v: %w", t, errors.ErrUnsupported)
	}
	if band < 0 || band >= array.Bands {
		return fmt.Errorf("%w: band %d", ErrInvalidParameterValue, band)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", array.Width)
	fmt.Fprintf(bw, "nrows %d\n", array.Height)
	fmt.Fprintf(bw, "xllcorner %s\n", formatFloat(t.C))
	fmt.Fprintf(bw, "yllcorner %s\n", formatFloat(t.F+float64(array.Height)*t.E))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(t.A))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(noData))
	values := array.Band(band)
	for row := range array.Height {
		for col := range array.Width {
			if col > 0 {
				bw.WriteByte(' ')
			}
			value := values[row*array.Width+col]
			if math.IsNaN(value) {
				value = noData
			}
			bw.WriteString(formatFloat(value))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
