package geoprep

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/paulmach/orb"
)

const (
	tiffTypeASCII  = 2
	tiffTypeShort  = 3
	tiffTypeLong   = 4
	tiffTypeDouble = 12
)

type testTIFFEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// A testTIFFBuilder builds little-endian classic TIFF files.
type testTIFFBuilder struct {
	buffer  bytes.Buffer
	entries []testTIFFEntry
}

func newTestTIFFBuilder() *testTIFFBuilder {
	b := &testTIFFBuilder{}
	b.buffer.Write([]byte{'I', 'I', 42, 0, 0, 0, 0, 0})
	return b
}

// appendData appends data to b, returning its offset.
func (b *testTIFFBuilder) appendData(data []byte) uint32 {
	if b.buffer.Len()%2 == 1 {
		b.buffer.WriteByte(0)
	}
	offset := uint32(b.buffer.Len())
	b.buffer.Write(data)
	return offset
}

func (b *testTIFFBuilder) shorts(tag uint16, values ...uint16) {
	data := make([]byte, 2*len(values))
	for i, value := range values {
		binary.LittleEndian.PutUint16(data[2*i:], value)
	}
	b.entries = append(b.entries, testTIFFEntry{tag: tag, typ: tiffTypeShort, count: uint32(len(values)), data: data})
}

func (b *testTIFFBuilder) longs(tag uint16, values ...uint32) {
	data := make([]byte, 4*len(values))
	for i, value := range values {
		binary.LittleEndian.PutUint32(data[4*i:], value)
	}
	b.entries = append(b.entries, testTIFFEntry{tag: tag, typ: tiffTypeLong, count: uint32(len(values)), data: data})
}

func (b *testTIFFBuilder) doubles(tag uint16, values ...float64) {
	data := make([]byte, 8*len(values))
	for i, value := range values {
		binary.LittleEndian.PutUint64(data[8*i:], math.Float64bits(value))
	}
	b.entries = append(b.entries, testTIFFEntry{tag: tag, typ: tiffTypeDouble, count: uint32(len(values)), data: data})
}

func (b *testTIFFBuilder) ascii(tag uint16, value string) {
	data := append([]byte(value), 0)
	b.entries = append(b.entries, testTIFFEntry{tag: tag, typ: tiffTypeASCII, count: uint32(len(data)), data: data})
}

// chunks appends chunks and adds their offsets and byte counts. Nil chunks
// are sparse.
func (b *testTIFFBuilder) chunks(offsetsTag, byteCountsTag uint16, chunks [][]byte) {
	offsets := make([]uint32, len(chunks))
	byteCounts := make([]uint32, len(chunks))
	for i, chunk := range chunks {
		if chunk == nil {
			continue
		}
		offsets[i] = b.appendData(chunk)
		byteCounts[i] = uint32(len(chunk))
	}
	b.longs(offsetsTag, offsets...)
	b.longs(byteCountsTag, byteCounts...)
}

func (b *testTIFFBuilder) bytes() []byte {
	slices.SortFunc(b.entries, func(a, b testTIFFEntry) int {
		return int(a.tag) - int(b.tag)
	})
	valueOffsets := make([]uint32, len(b.entries))
	for i, entry := range b.entries {
		if len(entry.data) > 4 {
			valueOffsets[i] = b.appendData(entry.data)
		}
	}
	ifdOffset := b.appendData(nil)
	ifd := make([]byte, 2+12*len(b.entries)+4)
	binary.LittleEndian.PutUint16(ifd, uint16(len(b.entries)))
	for i, entry := range b.entries {
		e := ifd[2+12*i:]
		binary.LittleEndian.PutUint16(e[0:], entry.tag)
		binary.LittleEndian.PutUint16(e[2:], entry.typ)
		binary.LittleEndian.PutUint32(e[4:], entry.count)
		if len(entry.data) > 4 {
			binary.LittleEndian.PutUint32(e[8:], valueOffsets[i])
		} else {
			copy(e[8:12], entry.data)
		}
	}
	b.buffer.Write(ifd)
	data := b.buffer.Bytes()
	binary.LittleEndian.PutUint32(data[4:], ifdOffset)
	return data
}

func compressDeflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buffer bytes.Buffer
	w := zlib.NewWriter(&buffer)
	_, err := w.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return buffer.Bytes()
}

func writeTestTIFF(t *testing.T, name string, data []byte) fs.FS {
	t.Helper()
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o666))
	return os.DirFS(dir)
}

// newTiledTestTIFF returns a 5x4 two band float32 GeoTIFF in EPSG:3067 with
// 4x4 Deflate-compressed tiles stored in separate planes. The sample at (band,
// row, col) is 100*band + 10*row + col, except that the second tile of the
// second band is sparse.
func newTiledTestTIFF(t *testing.T) []byte {
	t.Helper()
	const width, height, tileSize = 5, 4, 4
	b := newTestTIFFBuilder()
	var chunks [][]byte
	for band := range 2 {
		for tileC := range 2 {
			if band == 1 && tileC == 1 {
				chunks = append(chunks, nil)
				continue
			}
			tile := make([]byte, 4*tileSize*tileSize)
			for row := range tileSize {
				for c := range tileSize {
					col := tileC*tileSize + c
					if col >= width {
						continue
					}
					value := float32(100*band + 10*row + col)
					binary.LittleEndian.PutUint32(tile[4*(row*tileSize+c):], math.Float32bits(value))
				}
			}
			chunks = append(chunks, compressDeflate(t, tile))
		}
	}
	b.chunks(324, 325, chunks)
	b.longs(256, width)
	b.longs(257, height)
	b.shorts(258, 32, 32)
	b.shorts(259, compressionDeflate)
	b.shorts(262, 1)
	b.shorts(277, 2)
	b.shorts(284, planarConfigurationSeparate)
	b.shorts(322, tileSize)
	b.shorts(323, tileSize)
	b.shorts(339, sampleFormatFloat, sampleFormatFloat)
	b.doubles(33550, 10, 10, 0)
	b.doubles(33922, 0, 0, 0, 1000, 2000, 0)
	b.shorts(34735,
		1, 1, 0, 3,
		1024, 0, 1, ModelTypeProjected,
		1025, 0, 1, RasterPixelIsArea,
		3072, 0, 1, 3067,
	)
	b.ascii(42113, "-9999")
	return b.bytes()
}

// newStrippedTestTIFF returns a 3x4 three band uint16 GeoTIFF in EPSG:4326
// with pixel-is-point georeferencing, uncompressed strips of three rows, and
// the horizontal predictor. The sample at (band, row, col) is 1000*band +
// 10*row + col.
func newStrippedTestTIFF(t *testing.T) []byte {
	t.Helper()
	const width, height, bands, rowsPerStrip = 3, 4, 3, 3
	b := newTestTIFFBuilder()
	var chunks [][]byte
	for strip := range 2 {
		rows := min(rowsPerStrip, height-strip*rowsPerStrip)
		data := make([]byte, 2*bands*width*rows)
		for r := range rows {
			row := strip*rowsPerStrip + r
			// Store differences from the previous pixel.
			for col := width - 1; col >= 0; col-- {
				for band := range bands {
					value := uint16(1000*band + 10*row + col)
					if col > 0 {
						value -= uint16(1000*band + 10*row + col - 1)
					}
					binary.LittleEndian.PutUint16(data[2*((r*width+col)*bands+band):], value)
				}
			}
		}
		chunks = append(chunks, data)
	}
	b.chunks(273, 279, chunks)
	b.shorts(256, width)
	b.shorts(257, height)
	b.shorts(258, 16, 16, 16)
	b.shorts(259, compressionNone)
	b.shorts(262, 2)
	b.shorts(277, bands)
	b.shorts(278, rowsPerStrip)
	b.shorts(284, planarConfigurationChunky)
	b.shorts(317, predictorHorizontal)
	b.doubles(33550, 0.5, 0.25, 0)
	b.doubles(33922, 0, 0, 0, 20, 60, 0)
	b.shorts(34735,
		1, 1, 0, 3,
		1024, 0, 1, ModelTypeGeographic,
		1025, 0, 1, RasterPixelIsPoint,
		2048, 0, 1, 4326,
	)
	return b.bytes()
}

func TestGeoTIFFRaster_Tiled(t *testing.T) {
	fsys := writeTestTIFF(t, "tiled.tif", newTiledTestTIFF(t))
	raster, err := NewGeoTIFFRaster(fsys, "tiled.tif")
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, raster.Close())
	}()

	assert.Equal(t, Metadata{
		Driver:    "GTiff",
		DType:     "float32",
		NoData:    -9999,
		HasNoData: true,
		Width:     5,
		Height:    4,
		Count:     2,
		CRS:       3067,
		Transform: Affine{
			A: 10, B: 0, C: 1000,
			D: 0, E: -10, F: 2000,
		},
	}, raster.Meta())

	array, err := raster.ReadWindow(t.Context(), Window{ColOff: 2, RowOff: -1, Width: 4, Height: 3}, -1)
	assert.NoError(t, err)
	assert.Equal(t, &Array{
		Bands:  2,
		Height: 3,
		Width:  4,
		Data: []float64{
			-1, -1, -1, -1,
			2, 3, 4, -1,
			12, 13, 14, -1,

			-1, -1, -1, -1,
			102, 103, -9999, -1,
			112, 113, -9999, -1,
		},
	}, array)

	samples, err := raster.SamplePixels(t.Context(), []Pixel{
		{Row: 3, Col: 4},
		{Row: 2, Col: 1},
		{Row: 4, Col: 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, []float64{34, -9999}, samples[0])
	assert.Equal(t, []float64{21, 121}, samples[1])
	assert.True(t, math.IsNaN(samples[2][0]))

	window, meta, err := ExtractWindow(t.Context(), raster, orb.Point{1045, 1965}, 3067, 3, 3)
	assert.NoError(t, err)
	assert.Equal(t, []float64{
		23, 24, WindowFillValue,
		33, 34, WindowFillValue,
		WindowFillValue, WindowFillValue, WindowFillValue,
	}, window.Band(0))
	assert.Equal(t, Affine{A: 10, C: 1030, E: -10, F: 1980}, meta.Transform)
}

func TestGeoTIFFRaster_Stripped(t *testing.T) {
	fsys := writeTestTIFF(t, "stripped.tif", newStrippedTestTIFF(t))
	raster, err := NewGeoTIFFRaster(fsys, "stripped.tif", WithChunkCacheSize(0))
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, raster.Close())
	}()

	meta := raster.Meta()
	assert.Equal(t, "uint16", meta.DType)
	assert.False(t, meta.HasNoData)
	assert.Equal(t, 3, meta.Count)
	assert.Equal(t, 4326, meta.CRS)
	assert.Equal(t, Affine{
		A: 0.5, B: 0, C: 19.75,
		D: 0, E: -0.25, F: 60.125,
	}, meta.Transform)

	array, err := raster.ReadWindow(t.Context(), Window{ColOff: 0, RowOff: 0, Width: 3, Height: 4}, 0)
	assert.NoError(t, err)
	for band := range 3 {
		for row := range 4 {
			for col := range 3 {
				assert.Equal(t, float64(1000*band+10*row+col), array.At(band, row, col))
			}
		}
	}
}

func TestNewGeoTIFFRaster_Errors(t *testing.T) {
	_, err := NewGeoTIFFRaster(os.DirFS(t.TempDir()), "missing.tif")
	assert.IsError(t, err, fs.ErrNotExist)

	fsys := writeTestTIFF(t, "text.tif", []byte("not a TIFF file"))
	_, err = NewGeoTIFFRaster(fsys, "text.tif")
	assert.Error(t, err)
}

func TestGeoTIFFRaster_File(t *testing.T) {
	raster, err := NewGeoTIFFRaster(os.DirFS("testdata"), "dem.tif")
	if errors.Is(err, fs.ErrNotExist) {
		t.Skip(err)
	}
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, raster.Close())
	}()

	meta := raster.Meta()
	bounds := meta.Bounds()
	center := orb.Point{(bounds.Left + bounds.Right) / 2, (bounds.Bottom + bounds.Top) / 2}
	array, _, err := ExtractWindow(t.Context(), raster, center, meta.CRS, 33, 32)
	assert.NoError(t, err)
	bands, height, width := array.Shape()
	assert.Equal(t, meta.Count, bands)
	assert.Equal(t, 33, height)
	assert.Equal(t, 32, width)
}

func TestDecodeSamples(t *testing.T) {
	for _, tc := range []struct {
		name           string
		data           []byte
		byteOrder      binary.ByteOrder
		sampleFormat   int
		bytesPerSample int
		expected       []float64
	}{
		{
			name:           "uint8",
			data:           []byte{0, 255},
			byteOrder:      binary.LittleEndian,
			sampleFormat:   sampleFormatUint,
			bytesPerSample: 1,
			expected:       []float64{0, 255},
		},
		{
			name:           "int8",
			data:           []byte{0x7f, 0x80},
			byteOrder:      binary.LittleEndian,
			sampleFormat:   sampleFormatInt,
			bytesPerSample: 1,
			expected:       []float64{127, -128},
		},
		{
			name:           "int16_big_endian",
			data:           []byte{0xff, 0xfe, 0x01, 0x00},
			byteOrder:      binary.BigEndian,
			sampleFormat:   sampleFormatInt,
			bytesPerSample: 2,
			expected:       []float64{-2, 256},
		},
		{
			name:           "float32",
			data:           binary.LittleEndian.AppendUint32(nil, math.Float32bits(-999.5)),
			byteOrder:      binary.LittleEndian,
			sampleFormat:   sampleFormatFloat,
			bytesPerSample: 4,
			expected:       []float64{-999.5},
		},
		{
			name:           "float64",
			data:           binary.BigEndian.AppendUint64(nil, math.Float64bits(-999.999)),
			byteOrder:      binary.BigEndian,
			sampleFormat:   sampleFormatFloat,
			bytesPerSample: 8,
			expected:       []float64{-999.999},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual := make([]float64, len(tc.expected))
			decodeSamples(actual, tc.data, tc.byteOrder, tc.sampleFormat, tc.bytesPerSample)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestUndoHorizontalPredictor(t *testing.T) {
	// Two rows of three two-sample pixels.
	data := []byte{
		1, 10, 1, 1, 1, 255,
		5, 0, 0, 1, 2, 3,
	}
	undoHorizontalPredictor(data, binary.LittleEndian, 6, 2, 1)
	assert.Equal(t, []byte{
		1, 10, 2, 11, 3, 10,
		5, 0, 5, 1, 7, 4,
	}, data)
}

func TestDataType(t *testing.T) {
	dtype, err := dataType(sampleFormatInt, 16)
	assert.NoError(t, err)
	assert.Equal(t, "int16", dtype)

	_, err = dataType(sampleFormatFloat, 16)
	assert.IsError(t, err, errors.ErrUnsupported)
}

func TestCatalog_GeoTIFFRasterOptions(t *testing.T) {
	catalog, err := NewCatalog(
		WithFS(writeTestTIFF(t, "tiled.tif", newTiledTestTIFF(t))),
		WithGeoTIFFRasterOptions(
			WithChunkCacheSize(1<<10),
		),
	)
	assert.NoError(t, err)
	defer catalog.Close()

	raster, err := catalog.Open("tiled.tif")
	assert.NoError(t, err)
	geoTIFFRaster, ok := raster.(*GeoTIFFRaster)
	assert.True(t, ok)
	assert.Equal(t, 1<<10, geoTIFFRaster.chunkCacheSizeBytes)

	samples, err := geoTIFFRaster.SamplePixels(t.Context(), []Pixel{{Row: 1, Col: 2}})
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{12, 112}}, samples)
}
