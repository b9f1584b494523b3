package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-geoprep"
)

func (a *app) newWindowCmd() *cobra.Command {
	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "Extract a pixel window centered on a coordinate",
		Long: `Extract a height by width pixel window centered on a coordinate and
write it as an ESRI ASCII grid. Pixels outside the raster are set to -9999.
Multi-band rasters are written as one grid per band, with the band number
appended to the output filename.`,
		Args: cobra.NoArgs,
		RunE: a.runWindow,
	}
	flags := windowCmd.Flags()
	flags.String("raster", "", "raster name")
	flags.Float64("x", 0, "center x coordinate")
	flags.Float64("y", 0, "center y coordinate")
	flags.Int("crs", 0, "EPSG code of the center coordinate")
	flags.Int("height", 0, "window height in pixels")
	flags.Int("width", 0, "window width in pixels")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	return windowCmd
}

func (a *app) runWindow(cmd *cobra.Command, args []string) error {
	rasterName := a.config.GetString("raster")
	if rasterName == "" {
		return errors.New("raster is required (use --raster)")
	}
	center := orb.Point{a.config.GetFloat64("x"), a.config.GetFloat64("y")}
	centerCRS := a.config.GetInt("crs")
	height := a.config.GetInt("height")
	width := a.config.GetInt("width")

	catalog, err := a.newCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	raster, err := catalog.Open(rasterName)
	if err != nil {
		return err
	}

	array, meta, err := geoprep.ExtractWindow(cmd.Context(), raster, center, centerCRS, height, width)
	if err != nil {
		return err
	}
	a.logger.Debug("window",
		slog.String("raster", rasterName),
		slog.Any("center", center),
		slog.Int("height", height),
		slog.Int("width", width),
		slog.String("transform", meta.Transform.String()),
	)

	output := a.config.GetString("output")
	for band := range array.Bands {
		filename := output
		if array.Bands > 1 && output != "" && output != "-" {
			ext := filepath.Ext(output)
			filename = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(output, ext), band+1, ext)
		}
		if err := a.writeWindowBand(filename, meta, array, band); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeWindowBand(filename string, meta geoprep.Metadata, array *geoprep.Array, band int) (err error) {
	w, err := a.createOutput(filename)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()
	return geoprep.WriteESRIASCIIGrid(w, meta, array, band, geoprep.WindowFillValue)
}
