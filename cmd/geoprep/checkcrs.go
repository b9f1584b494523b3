package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twpayne/go-geoprep"
)

func (a *app) newCheckCRSCmd() *cobra.Command {
	checkCRSCmd := &cobra.Command{
		Use:   "check-crs",
		Short: "Check that rasters and points share a CRS",
		Long: `Print true if every raster and point set has the same CRS, and false
otherwise, including when any of them has no CRS.`,
		Args: cobra.NoArgs,
		RunE: a.runCheckCRS,
	}
	flags := checkCRSCmd.Flags()
	flags.StringArray("raster", nil, "raster name (may be repeated)")
	flags.StringArray("points", nil, "GeoJSON file of points (may be repeated)")
	flags.Int("points-crs", 4326, "EPSG code of points")
	return checkCRSCmd
}

func (a *app) runCheckCRS(cmd *cobra.Command, args []string) error {
	rasterNames := a.config.GetStringSlice("raster")
	pointsFilenames := a.config.GetStringSlice("points")
	if len(rasterNames) == 0 && len(pointsFilenames) == 0 {
		return errors.New("at least one raster or points file is required (use --raster or --points)")
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
	objects := make([]geoprep.Georeferenced, 0, len(rasters)+len(pointsFilenames))
	for _, raster := range rasters {
		objects = append(objects, raster)
	}
	for _, pointsFilename := range pointsFilenames {
		data, err := os.ReadFile(pointsFilename)
		if err != nil {
			return err
		}
		points, err := geoprep.ReadGeoJSONPoints(data, a.config.GetInt("points-crs"))
		if err != nil {
			return err
		}
		objects = append(objects, points)
	}

	_, err = fmt.Fprintln(a.stdout, geoprep.CheckMatchingCRS(objects))
	return err
}
