package geoprep

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	missingRasterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoprep_missing_raster_cache_hits_total",
		Help: "The total number of hits on the missing raster cache",
	})
	missingRasterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoprep_missing_raster_cache_misses_total",
		Help: "The total number of misses on the missing raster cache",
	})
	rasterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoprep_raster_cache_hits_total",
		Help: "The total number of hits on the open raster cache",
	})
	rasterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoprep_raster_cache_misses_total",
		Help: "The total number of misses on the open raster cache",
	})
	rasterCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoprep_raster_cache_evictions_total",
		Help: "The total number of evictions from the open raster cache",
	})
)

// A Catalog opens rasters by name from a filesystem and keeps recently used
// rasters open. GeoTIFFs (.tif, .tiff) and ESRI ASCII grids (.asc) are
// supported.
type Catalog struct {
	mutex                sync.Mutex
	fsys                 fs.FS
	srid                 int
	missingRasters       sync.Map
	geoTIFFRasterOptions []GeoTIFFRasterOption
	cacheSize            int
	rasterCache          *lru.Cache[string, Raster]
}

// A CatalogOption sets an option on a Catalog.
type CatalogOption func(*Catalog)

// NewCatalog returns a new Catalog with the given options.
func NewCatalog(options ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		cacheSize: 32,
	}
	for _, option := range options {
		option(c)
	}
	if c.fsys == nil {
		return nil, fmt.Errorf("%w: no filesystem", ErrInvalidParameterValue)
	}

	var err error
	c.rasterCache, err = lru.NewWithEvict(c.cacheSize, func(key string, value Raster) {
		if closer, ok := value.(io.Closer); ok {
			_ = closer.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func WithCacheSize(cacheSize int) CatalogOption {
	return func(c *Catalog) {
		c.cacheSize = cacheSize
	}
}

func WithFS(fsys fs.FS) CatalogOption {
	return func(c *Catalog) {
		c.fsys = fsys
	}
}

func WithGeoTIFFRasterOptions(geoTIFFRasterOptions ...GeoTIFFRasterOption) CatalogOption {
	return func(c *Catalog) {
		c.geoTIFFRasterOptions = geoTIFFRasterOptions
	}
}

// WithSRID sets the EPSG code of rasters whose files do not identify one.
func WithSRID(srid int) CatalogOption {
	return func(c *Catalog) {
		c.srid = srid
	}
}

// Open returns the raster called name. It returns an error wrapping
// fs.ErrNotExist if there is no such raster. The returned raster is owned by
// c and must not be closed by the caller.
func (c *Catalog) Open(name string) (Raster, error) {
	if _, ok := c.missingRasters.Load(name); ok {
		missingRasterCacheHits.Inc()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	if raster, ok := c.rasterCache.Get(name); ok {
		rasterCacheHits.Inc()
		return raster, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if raster, ok := c.rasterCache.Get(name); ok {
		rasterCacheHits.Inc()
		return raster, nil
	}

	rasterCacheMisses.Inc()

	raster, err := c.open(name)
	if errors.Is(err, fs.ErrNotExist) {
		c.missingRasters.Store(name, struct{}{})
		missingRasterCacheMisses.Inc()
	}
	if err != nil {
		return nil, err
	}

	if eviction := c.rasterCache.Add(name, raster); eviction {
		rasterCacheEvictions.Inc()
	}

	return raster, nil
}

// OpenAll opens every raster in names.
func (c *Catalog) OpenAll(names []string) ([]Raster, error) {
	rasters := make([]Raster, 0, len(names))
	for _, name := range names {
		raster, err := c.Open(name)
		if err != nil {
			return nil, err
		}
		rasters = append(rasters, raster)
	}
	return rasters, nil
}

// Close closes all open rasters.
func (c *Catalog) Close() {
	c.rasterCache.Purge()
}

// open opens the raster called name, choosing the format by extension.
func (c *Catalog) open(name string) (Raster, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".tif", ".tiff":
		options := append([]GeoTIFFRasterOption{WithDefaultCRS(c.srid)}, c.geoTIFFRasterOptions...)
		return NewGeoTIFFRaster(c.fsys, name, options...)
	case ".asc":
		file, err := c.fsys.Open(name)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return ReadESRIASCIIGrid(file, name, c.srid)
	default:
		return nil, fmt.Errorf("%s: %w", name, errors.ErrUnsupported)
	}
}
