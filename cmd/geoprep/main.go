package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twpayne/go-geoprep"
)

type app struct {
	config *viper.Viper
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	config := viper.New()
	config.SetEnvPrefix("GEOPREP")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()
	return &app{
		config: config,
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
		stdout: stdout,
		stderr: stderr,
	}
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geoprep",
		Short: "Prepare raster data for analysis",
		Long: `geoprep extracts fixed-size pixel windows around coordinates, samples
raster values at points, and checks that datasets share a coordinate reference
system.

Rasters are GeoTIFF (.tif, .tiff) or ESRI ASCII grid (.asc) files, named
relative to --data-dir.

Examples:
  # Extract a 64x64 window centered on a point
  geoprep window --raster dem.tif --x 385000 --y 6672000 --crs 3067 --height 64 --width 64 -o dem_window.asc

  # Sample two rasters at GeoJSON points
  geoprep sample --raster dem.tif --raster slope.asc --points sites.geojson --reproject -o sites.csv

  # Check that rasters share a CRS
  geoprep check-crs --raster dem.tif --raster slope.asc`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	persistentFlags := rootCmd.PersistentFlags()
	persistentFlags.String("config", "", "config file")
	persistentFlags.String("data-dir", ".", "directory containing rasters")
	persistentFlags.Int("srid", 0, "EPSG code of rasters without a CRS")
	persistentFlags.Int("cache-size", 32, "number of open rasters to cache")
	persistentFlags.Int("chunk-cache-size", 128<<20, "bytes of decoded GeoTIFF tiles to cache per raster")
	persistentFlags.BoolP("verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(
		a.newWindowCmd(),
		a.newSampleCmd(),
		a.newCheckCRSCmd(),
	)
	return rootCmd
}

// initConfig binds the flags of cmd and reads the config file, if any.
func (a *app) initConfig(cmd *cobra.Command) error {
	if err := a.config.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if configFile := a.config.GetString("config"); configFile != "" {
		a.config.SetConfigFile(configFile)
		if err := a.config.ReadInConfig(); err != nil {
			return err
		}
	}
	level := slog.LevelInfo
	if a.config.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level: level,
	}))
	if configFile := a.config.ConfigFileUsed(); configFile != "" {
		a.logger.Debug("config", slog.String("file", configFile))
	}
	return nil
}

// newCatalog returns a new catalog of the rasters in the data directory.
func (a *app) newCatalog() (*geoprep.Catalog, error) {
	return geoprep.NewCatalog(
		geoprep.WithFS(os.DirFS(a.config.GetString("data-dir"))),
		geoprep.WithSRID(a.config.GetInt("srid")),
		geoprep.WithCacheSize(a.config.GetInt("cache-size")),
		geoprep.WithGeoTIFFRasterOptions(
			geoprep.WithChunkCacheSize(a.config.GetInt("chunk-cache-size")),
		),
	)
}

// createOutput returns a writer to filename, or to standard output if
// filename is empty or "-".
func (a *app) createOutput(filename string) (io.WriteCloser, error) {
	if filename == "" || filename == "-" {
		return nopWriteCloser{a.stdout}, nil
	}
	return os.Create(filename)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return newApp(os.Stdout, os.Stderr).newRootCmd().ExecuteContext(ctx)
}

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
