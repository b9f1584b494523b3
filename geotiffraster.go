package geoprep

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	"github.com/maypok86/otter/v2"
	"golang.org/x/image/tiff/lzw"
)

const (
	compressionNone         = 1
	compressionLZW          = 5
	compressionDeflate      = 8
	compressionAdobeDeflate = 32946

	predictorNone       = 1
	predictorHorizontal = 2

	planarConfigurationChunky   = 1
	planarConfigurationSeparate = 2

	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

var errShortRead = errors.New("short read")

// A tileCoord is the coordinate of a tile or strip.
type tileCoord struct {
	C int // Column.
	R int // Row.
}

// A chunkKey identifies a tile or strip in one plane of a GeoTIFF.
type chunkKey struct {
	Plane int
	tileCoord
}

// A GeoTIFFRaster is an open GeoTIFF file. Strips are treated as tiles that
// are as wide as the image.
type GeoTIFFRaster struct {
	name                   string
	file                   readAtReadSeekCloser
	byteOrder              binary.ByteOrder
	meta                   Metadata
	defaultCRS             int
	chunkWidth             int
	chunkLength            int
	chunksAcross           int
	chunksDown             int
	planes                 int
	chunkOffsets           []uint64
	chunkByteCounts        []uint64
	smallestChunkByteCount uint64
	samplesPerChunkPixel   int
	bytesPerSample         int
	sampleFormat           int
	compression            int
	predictor              int
	chunkSampleCount       int
	chunkCacheSizeBytes    int
	chunkSamplesCache      *otter.Cache[chunkKey, []float64]
	emptyChunkBytesMutex   sync.Mutex
	emptyChunkBytes        []byte
}

type readAtReadSeekCloser interface {
	io.ReaderAt
	io.ReadSeeker
	io.Closer
}

// A GeoTIFFRasterOption sets an option on a GeoTIFFRaster.
type GeoTIFFRasterOption func(*GeoTIFFRaster)

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal an
// IFD.
type geoTIFFIFD struct {
	ImageWidth             uint32    `tiff:"field,tag=256"`
	ImageLength            uint32    `tiff:"field,tag=257"`
	BitsPerSample          []uint16  `tiff:"field,tag=258"`
	Compression            uint16    `tiff:"field,tag=259"`
	StripOffsets           []uint64  `tiff:"field,tag=273"`
	SamplesPerPixel        uint16    `tiff:"field,tag=277"`
	RowsPerStrip           uint32    `tiff:"field,tag=278"`
	StripByteCounts        []uint64  `tiff:"field,tag=279"`
	PlanarConfiguration    uint16    `tiff:"field,tag=284"`
	Predictor              uint16    `tiff:"field,tag=317"`
	TileWidth              uint32    `tiff:"field,tag=322"`
	TileLength             uint32    `tiff:"field,tag=323"`
	TileOffsets            []uint64  `tiff:"field,tag=324"`
	TileByteCounts         []uint64  `tiff:"field,tag=325"`
	SampleFormat           []uint16  `tiff:"field,tag=339"`
	ModelPixelScaleTag     []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag       []float64 `tiff:"field,tag=33922"`
	ModelTransformationTag []float64 `tiff:"field,tag=34264"`
	GeoKeyDirectoryTag     []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag     []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag      string    `tiff:"field,tag=34737"`
	GDALNoData             string    `tiff:"field,tag=42113"`
}

// NewGeoTIFFRaster opens filename in fsys as a GeoTIFFRaster. Only the first
// IFD is read, so overviews are ignored.
func NewGeoTIFFRaster(fsys fs.FS, filename string, options ...GeoTIFFRasterOption) (*GeoTIFFRaster, error) {
	var err error
	ok := false

	r := &GeoTIFFRaster{
		name:                filename,
		chunkCacheSizeBytes: 128 << 20, // 128MB.
	}
	for _, option := range options {
		option(r)
	}

	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	if r.file, ok = file.(readAtReadSeekCloser); !ok {
		_ = file.Close()
		return nil, errors.ErrUnsupported
	}
	ok = false
	defer func() {
		if !ok {
			_ = r.file.Close()
		}
	}()

	header := make([]byte, 2)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return nil, err
	}
	switch string(header) {
	case "II":
		r.byteOrder = binary.LittleEndian
	case "MM":
		r.byteOrder = binary.BigEndian
	default:
		return nil, fmt.Errorf("%s: not a TIFF file", filename)
	}

	tiffTIFF, err := tiff.Parse(r.file, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}
	if len(tiffTIFF.IFDs()) == 0 {
		return nil, fmt.Errorf("%s: no IFDs", filename)
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if err := r.initLayout(&ifd); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := r.initMetadata(&ifd); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	chunkCacheCount := max(r.chunkCacheSizeBytes/max(8*r.chunkSampleCount, 1), 1)
	r.chunkSamplesCache, err = otter.New(&otter.Options[chunkKey, []float64]{
		MaximumSize: chunkCacheCount,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return r, nil
}

// WithChunkCacheSize sets the size in bytes of the decoded tile cache.
func WithChunkCacheSize(chunkCacheSize int) GeoTIFFRasterOption {
	return func(r *GeoTIFFRaster) {
		r.chunkCacheSizeBytes = chunkCacheSize
	}
}

// WithDefaultCRS sets the CRS of GeoTIFFs whose GeoKeys do not identify an
// EPSG code.
func WithDefaultCRS(epsg int) GeoTIFFRasterOption {
	return func(r *GeoTIFFRaster) {
		r.defaultCRS = epsg
	}
}

// initLayout sets r's sample encoding and tile or strip layout from ifd.
func (r *GeoTIFFRaster) initLayout(ifd *geoTIFFIFD) error {
	samplesPerPixel := max(int(ifd.SamplesPerPixel), 1)

	if len(ifd.BitsPerSample) == 0 {
		return errors.New("missing BitsPerSample")
	}
	bitsPerSample := int(ifd.BitsPerSample[0])
	for _, bits := range ifd.BitsPerSample[1:] {
		if int(bits) != bitsPerSample {
			return errors.ErrUnsupported
		}
	}
	r.sampleFormat = sampleFormatUint
	if len(ifd.SampleFormat) > 0 {
		r.sampleFormat = int(ifd.SampleFormat[0])
	}
	dtype, err := dataType(r.sampleFormat, bitsPerSample)
	if err != nil {
		return err
	}
	r.meta.DType = dtype
	r.bytesPerSample = bitsPerSample / 8

	switch r.compression = max(int(ifd.Compression), compressionNone); r.compression {
	case compressionNone, compressionLZW, compressionDeflate, compressionAdobeDeflate:
	default:
		return fmt.Errorf("compression %d: %w", r.compression, errors.ErrUnsupported)
	}
	switch r.predictor = max(int(ifd.Predictor), predictorNone); r.predictor {
	case predictorNone:
	case predictorHorizontal:
		if r.sampleFormat == sampleFormatFloat {
			return fmt.Errorf("horizontal predictor with floating point samples: %w", errors.ErrUnsupported)
		}
	default:
		return fmt.Errorf("predictor %d: %w", r.predictor, errors.ErrUnsupported)
	}

	switch planarConfiguration := max(int(ifd.PlanarConfiguration), planarConfigurationChunky); planarConfiguration {
	case planarConfigurationChunky:
		r.planes = 1
		r.samplesPerChunkPixel = samplesPerPixel
	case planarConfigurationSeparate:
		r.planes = samplesPerPixel
		r.samplesPerChunkPixel = 1
	default:
		return fmt.Errorf("planar configuration %d: %w", planarConfiguration, errors.ErrUnsupported)
	}

	r.meta.Width = int(ifd.ImageWidth)
	r.meta.Height = int(ifd.ImageLength)
	r.meta.Count = samplesPerPixel
	if r.meta.Width == 0 || r.meta.Height == 0 {
		return errors.New("empty image")
	}

	if ifd.TileWidth != 0 {
		r.chunkWidth = int(ifd.TileWidth)
		r.chunkLength = int(ifd.TileLength)
		r.chunkOffsets = ifd.TileOffsets
		r.chunkByteCounts = ifd.TileByteCounts
	} else {
		r.chunkWidth = r.meta.Width
		r.chunkLength = int(ifd.RowsPerStrip)
		if r.chunkLength == 0 || r.chunkLength > r.meta.Height {
			r.chunkLength = r.meta.Height
		}
		r.chunkOffsets = ifd.StripOffsets
		r.chunkByteCounts = ifd.StripByteCounts
	}
	if r.chunkWidth == 0 || r.chunkLength == 0 {
		return errors.New("zero tile size")
	}
	r.chunksAcross = (r.meta.Width + r.chunkWidth - 1) / r.chunkWidth
	r.chunksDown = (r.meta.Height + r.chunkLength - 1) / r.chunkLength
	chunksPerImage := r.chunksAcross * r.chunksDown * r.planes
	if len(r.chunkByteCounts) != chunksPerImage || len(r.chunkOffsets) != chunksPerImage {
		return errors.New("incorrect number of tile byte counts or offsets")
	}
	r.smallestChunkByteCount = slices.Min(r.chunkByteCounts)
	r.chunkSampleCount = r.chunkWidth * r.chunkLength * r.samplesPerChunkPixel
	return nil
}

// initMetadata sets r's georeferencing and nodata value from ifd.
func (r *GeoTIFFRaster) initMetadata(ifd *geoTIFFIFD) error {
	r.meta.Driver = "GTiff"

	var geoKeys *ParsedGeoKeys
	if len(ifd.GeoKeyDirectoryTag) > 0 {
		var err error
		geoKeys, err = ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return err
		}
		if epsg, ok := geoKeys.EPSG(); ok {
			r.meta.CRS = epsg
		}
	}
	if r.meta.CRS == 0 {
		r.meta.CRS = r.defaultCRS
	}

	switch {
	case len(ifd.ModelTransformationTag) == 16:
		m := ifd.ModelTransformationTag
		r.meta.Transform = Affine{
			A: m[0], B: m[1], C: m[3],
			D: m[4], E: m[5], F: m[7],
		}
	case len(ifd.ModelPixelScaleTag) >= 2 && len(ifd.ModelTiepointTag) >= 6:
		scaleX, scaleY := ifd.ModelPixelScaleTag[0], ifd.ModelPixelScaleTag[1]
		i, j := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1]
		x, y := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]
		r.meta.Transform = Affine{
			A: scaleX, B: 0, C: x - i*scaleX,
			D: 0, E: -scaleY, F: y + j*scaleY,
		}
	default:
		return errors.New("missing georeferencing")
	}

	// GDAL's convention is that pixel-is-point coordinates refer to pixel
	// centers, so shift the transform to refer to pixel corners.
	if geoKeys != nil && geoKeys.RasterType() == RasterPixelIsPoint {
		x, y := r.meta.Transform.Forward(-0.5, -0.5)
		r.meta.Transform = r.meta.Transform.WithOrigin(x, y)
	}

	if noData := strings.TrimRight(ifd.GDALNoData, "\x00 "); noData != "" {
		value, err := strconv.ParseFloat(noData, 64)
		if err != nil {
			return fmt.Errorf("GDAL_NODATA: %w", err)
		}
		r.meta.NoData = value
		r.meta.HasNoData = true
	}
	return nil
}

func (r *GeoTIFFRaster) Close() error {
	return r.file.Close()
}

func (r *GeoTIFFRaster) Name() string {
	return r.name
}

func (r *GeoTIFFRaster) Meta() Metadata {
	return r.meta
}

func (r *GeoTIFFRaster) CRS() (int, bool) {
	return r.meta.CRS, r.meta.CRS != 0
}

// ReadWindow implements Raster.ReadWindow.
func (r *GeoTIFFRaster) ReadWindow(ctx context.Context, window Window, fill float64) (*Array, error) {
	if window.Width < 0 || window.Height < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidWindowSize, window)
	}
	out := NewArray(r.meta.Count, window.Height, window.Width, fill)

	row0, row1 := max(window.RowOff, 0), min(window.RowOff+window.Height, r.meta.Height)
	col0, col1 := max(window.ColOff, 0), min(window.ColOff+window.Width, r.meta.Width)
	for plane := range r.planes {
		for row := row0; row < row1; row++ {
			for col := col0; col < col1; {
				key := r.chunkKey(plane, Pixel{Row: row, Col: col})
				chunkSamples, err := r.getChunkSamplesCached(ctx, key)
				switch {
				case errors.Is(err, otter.ErrNotFound):
					chunkSamples = nil
				case err != nil:
					return nil, err
				}
				chunkColEnd := min((key.C+1)*r.chunkWidth, col1)
				for ; col < chunkColEnd; col++ {
					r.chunkPixelSamples(plane, chunkSamples, Pixel{Row: row, Col: col}, func(band int, sample float64) {
						out.Set(band, row-window.RowOff, col-window.ColOff, sample)
					})
				}
			}
		}
	}
	return out, nil
}

// SamplePixels implements PixelSampler.SamplePixels. It reads each tile at
// most once, so it is significantly faster than reading one window per pixel.
func (r *GeoTIFFRaster) SamplePixels(ctx context.Context, pixels []Pixel) ([][]float64, error) {
	samples := make([][]float64, len(pixels))

	// Group indexes by chunk key.
	indexesByChunkKey := make(map[chunkKey][]int)
	for index, pixel := range pixels {
		if !r.meta.inside(pixel) {
			samples[index] = nanSamples(r.meta.Count)
			continue
		}
		samples[index] = make([]float64, r.meta.Count)
		for plane := range r.planes {
			key := r.chunkKey(plane, pixel)
			indexesByChunkKey[key] = append(indexesByChunkKey[key], index)
		}
	}

	// Populate samples one chunk at a time.
	for key, indexes := range indexesByChunkKey {
		chunkSamples, err := r.getChunkSamplesCached(ctx, key)
		switch {
		case errors.Is(err, otter.ErrNotFound):
			chunkSamples = nil
		case err != nil:
			return nil, err
		}
		for _, index := range indexes {
			r.chunkPixelSamples(key.Plane, chunkSamples, pixels[index], func(band int, sample float64) {
				samples[index][band] = sample
			})
		}
	}

	return samples, nil
}

// chunkKey returns the key of the chunk in plane containing pixel.
func (r *GeoTIFFRaster) chunkKey(plane int, pixel Pixel) chunkKey {
	return chunkKey{
		Plane: plane,
		tileCoord: tileCoord{
			C: pixel.Col / r.chunkWidth,
			R: pixel.Row / r.chunkLength,
		},
	}
}

// chunkPixelSamples calls f with the band and value of every sample of pixel
// in chunkSamples. A nil chunkSamples is an empty chunk.
func (r *GeoTIFFRaster) chunkPixelSamples(plane int, chunkSamples []float64, pixel Pixel, f func(int, float64)) {
	offset := r.samplesPerChunkPixel * ((pixel.Row%r.chunkLength)*r.chunkWidth + pixel.Col%r.chunkWidth)
	firstBand := plane * r.samplesPerChunkPixel
	for i := range r.samplesPerChunkPixel {
		if chunkSamples == nil {
			f(firstBand+i, r.emptyValue())
		} else {
			f(firstBand+i, chunkSamples[offset+i])
		}
	}
}

// emptyValue returns the value of samples in empty chunks.
func (r *GeoTIFFRaster) emptyValue() float64 {
	if r.meta.HasNoData {
		return r.meta.NoData
	}
	return 0
}

// getCompressedChunkData returns the compressed data for the chunk at key. If
// the chunk is known to be empty, it returns the error otter.ErrNotFound.
func (r *GeoTIFFRaster) getCompressedChunkData(key chunkKey) ([]byte, error) {
	chunkIndex := key.Plane*r.chunksAcross*r.chunksDown + key.R*r.chunksAcross + key.C
	chunkByteCount := r.chunkByteCounts[chunkIndex]
	chunkOffset := r.chunkOffsets[chunkIndex]
	if chunkByteCount == 0 {
		return nil, otter.ErrNotFound
	}
	compressedData := make([]byte, chunkByteCount)
	n, err := r.file.ReadAt(compressedData, int64(chunkOffset))
	switch {
	case n != int(chunkByteCount):
		if err == nil || errors.Is(err, io.EOF) {
			return nil, errShortRead
		}
		return nil, err
	case r.isEmptyChunk(compressedData):
		return nil, otter.ErrNotFound
	default:
		return compressedData, nil
	}
}

func (r *GeoTIFFRaster) isEmptyChunk(compressedData []byte) bool {
	r.emptyChunkBytesMutex.Lock()
	defer r.emptyChunkBytesMutex.Unlock()
	return r.emptyChunkBytes != nil && bytes.Equal(compressedData, r.emptyChunkBytes)
}

// decompressChunkData decompresses the chunk data in compressedData into
// uncompressedByteCount bytes.
func (r *GeoTIFFRaster) decompressChunkData(compressedData []byte, uncompressedByteCount int) ([]byte, error) {
	var reader io.Reader
	switch r.compression {
	case compressionNone:
		if len(compressedData) < uncompressedByteCount {
			return nil, errShortRead
		}
		return compressedData[:uncompressedByteCount], nil
	case compressionLZW:
		lzwReader := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
		defer lzwReader.Close()
		reader = lzwReader
	case compressionDeflate, compressionAdobeDeflate:
		zlibReader, err := zlib.NewReader(bytes.NewReader(compressedData))
		if err != nil {
			return nil, err
		}
		defer zlibReader.Close()
		reader = zlibReader
	}
	chunkData := make([]byte, uncompressedByteCount)
	if _, err := io.ReadFull(reader, chunkData); err != nil {
		return nil, err
	}
	return chunkData, nil
}

// getChunkSamples returns the decoded samples of the chunk at key.
func (r *GeoTIFFRaster) getChunkSamples(ctx context.Context, key chunkKey) ([]float64, error) {
	// Retrieve the compressed chunk data.
	compressedChunkData, err := r.getCompressedChunkData(key)
	if err != nil {
		return nil, err
	}

	// The last strip may be shorter than the others.
	rows := min(r.chunkLength, r.meta.Height-key.R*r.chunkLength)
	rowByteCount := r.chunkWidth * r.samplesPerChunkPixel * r.bytesPerSample
	chunkData, err := r.decompressChunkData(compressedChunkData, rows*rowByteCount)
	if err != nil {
		return nil, err
	}
	if r.predictor == predictorHorizontal {
		chunkData = slices.Clone(chunkData)
		undoHorizontalPredictor(chunkData, r.byteOrder, rowByteCount, r.samplesPerChunkPixel, r.bytesPerSample)
	}
	chunkSamples := make([]float64, r.chunkSampleCount)
	decodeSamples(chunkSamples, chunkData, r.byteOrder, r.sampleFormat, r.bytesPerSample)

	// If we do not know what an empty chunk looks like compressed, check to
	// see if this is an empty chunk, and, if so, use its bytes to detect empty
	// chunks before they are decompressed. We assume that the empty chunk is
	// the smallest chunk.
	if r.meta.HasNoData && len(compressedChunkData) == int(r.smallestChunkByteCount) && rows == r.chunkLength {
		isEmptyChunk := true
		for _, sample := range chunkSamples {
			if sample != r.meta.NoData {
				isEmptyChunk = false
				break
			}
		}
		if isEmptyChunk {
			r.emptyChunkBytesMutex.Lock()
			if r.emptyChunkBytes == nil {
				r.emptyChunkBytes = compressedChunkData
			}
			r.emptyChunkBytesMutex.Unlock()
			return nil, otter.ErrNotFound
		}
	}

	return chunkSamples, nil
}

// getChunkSamplesCached returns the samples of the chunk at key using r's
// cache.
func (r *GeoTIFFRaster) getChunkSamplesCached(ctx context.Context, key chunkKey) ([]float64, error) {
	return r.chunkSamplesCache.Get(ctx, key, otter.LoaderFunc[chunkKey, []float64](r.getChunkSamples))
}

// dataType returns the name of the sample data type.
func dataType(sampleFormat, bitsPerSample int) (string, error) {
	switch {
	case sampleFormat == sampleFormatUint && slices.Contains([]int{8, 16, 32, 64}, bitsPerSample):
		return "uint" + strconv.Itoa(bitsPerSample), nil
	case sampleFormat == sampleFormatInt && slices.Contains([]int{8, 16, 32, 64}, bitsPerSample):
		return "int" + strconv.Itoa(bitsPerSample), nil
	case sampleFormat == sampleFormatFloat && (bitsPerSample == 32 || bitsPerSample == 64):
		return "float" + strconv.Itoa(bitsPerSample), nil
	default:
		return "", fmt.Errorf("sample format %d with %d bits: %w", sampleFormat, bitsPerSample, errors.ErrUnsupported)
	}
}

// decodeSamples decodes data into samples. Samples beyond the end of data are
// left unchanged.
func decodeSamples(samples []float64, data []byte, byteOrder binary.ByteOrder, sampleFormat, bytesPerSample int) {
	n := min(len(samples), len(data)/bytesPerSample)
	for i := range n {
		b := data[i*bytesPerSample : (i+1)*bytesPerSample]
		switch bytesPerSample {
		case 1:
			if sampleFormat == sampleFormatInt {
				samples[i] = float64(int8(b[0]))
			} else {
				samples[i] = float64(b[0])
			}
		case 2:
			if sampleFormat == sampleFormatInt {
				samples[i] = float64(int16(byteOrder.Uint16(b)))
			} else {
				samples[i] = float64(byteOrder.Uint16(b))
			}
		case 4:
			switch sampleFormat {
			case sampleFormatFloat:
				samples[i] = float64(math.Float32frombits(byteOrder.Uint32(b)))
			case sampleFormatInt:
				samples[i] = float64(int32(byteOrder.Uint32(b)))
			default:
				samples[i] = float64(byteOrder.Uint32(b))
			}
		case 8:
			switch sampleFormat {
			case sampleFormatFloat:
				samples[i] = math.Float64frombits(byteOrder.Uint64(b))
			case sampleFormatInt:
				samples[i] = float64(int64(byteOrder.Uint64(b)))
			default:
				samples[i] = float64(byteOrder.Uint64(b))
			}
		}
	}
}

// undoHorizontalPredictor reverses TIFF predictor 2 in place. Each row of
// rowByteCount bytes stores the differences between each sample and the
// corresponding sample of the previous pixel.
func undoHorizontalPredictor(data []byte, byteOrder binary.ByteOrder, rowByteCount, samplesPerPixel, bytesPerSample int) {
	stride := samplesPerPixel * bytesPerSample
	for rowStart := 0; rowStart+rowByteCount <= len(data); rowStart += rowByteCount {
		row := data[rowStart : rowStart+rowByteCount]
		for i := stride; i+bytesPerSample <= len(row); i += bytesPerSample {
			cur, prev := row[i:i+bytesPerSample], row[i-stride:i-stride+bytesPerSample]
			switch bytesPerSample {
			case 1:
				cur[0] += prev[0]
			case 2:
				byteOrder.PutUint16(cur, byteOrder.Uint16(cur)+byteOrder.Uint16(prev))
			case 4:
				byteOrder.PutUint32(cur, byteOrder.Uint32(cur)+byteOrder.Uint32(prev))
			case 8:
				byteOrder.PutUint64(cur, byteOrder.Uint64(cur)+byteOrder.Uint64(prev))
			}
		}
	}
}
