package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/twpayne/go-geoprep"
)

func (a *app) newSampleCmd() *cobra.Command {
	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample raster values at points",
		Long: `Sample raster values at the points of a GeoJSON FeatureCollection and
write them as CSV with columns x, y, and one column per raster band. Values
that are outside the raster or equal to -999.999 or -999999 are written as
empty fields.`,
		Args: cobra.NoArgs,
		RunE: a.runSample,
	}
	flags := sampleCmd.Flags()
	flags.StringArray("raster", nil, "raster name (may be repeated)")
	flags.StringArray("name", nil, "column name for each raster (default: raster base name)")
	flags.String("points", "", "GeoJSON file of points")
	flags.Int("points-crs", 4326, "EPSG code of points")
	flags.Bool("bilinear", false, "interpolate between pixel centers")
	flags.Bool("reproject", false, "reproject points to each raster's CRS")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	return sampleCmd
}

func (a *app) runSample(cmd *cobra.Command, args []string) (err error) {
	rasterNames := a.config.GetStringSlice("raster")
	if len(rasterNames) == 0 {
		return errors.New("at least one raster is required (use --raster)")
	}
	pointsFilename := a.config.GetString("points")
	if pointsFilename == "" {
		return errors.New("points are required (use --points)")
	}

	data, err := os.ReadFile(pointsFilename)
	if err != nil {
		return err
	}
	points, err := geoprep.ReadGeoJSONPoints(data, a.config.GetInt("points-crs"))
	if err != nil {
		return err
	}

	catalog, err := a.newCatalog()
	if err != nil {
		return err
	}
	defer catalog.Close()

	rasters, err := catalog.OpenAll(rasterNames)
	if err != nil {
		return err
	}

	var options []geoprep.SampleOption
	if a.config.GetBool("bilinear") {
		options = append(options, geoprep.WithBilinear())
	}
	if a.config.GetBool("reproject") {
		options = append(options, geoprep.WithReprojection())
	}
	var columnNames []string
	if names := a.config.GetStringSlice("name"); len(names) > 0 {
		columnNames = names
	}

	table, err := geoprep.ExtractValuesFromRasters(cmd.Context(), rasters, points, columnNames, options...)
	if err != nil {
		return err
	}
	a.logger.Debug("sample",
		slog.Int("points", points.Len()),
		slog.Int("rasters", len(rasters)),
		slog.Any("columns", table.Columns()),
	)

	w, err := a.createOutput(a.config.GetString("output"))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()
	return table.WriteCSV(w)
}
