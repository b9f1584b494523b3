package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const testGrid = `ncols 3
nrows 2
xllcorner 0
yllcorner 0
cellsize 10
NODATA_value -1
1 2 3
4 5 -999.999
`

const testPoints = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [5, 15]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [25, 5]}, "properties": {}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [100, 100]}, "properties": {}}
  ]
}`

func newTestDataDir(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dataDir, "grid.asc"), []byte(testGrid), 0o666))
	assert.NoError(t, os.WriteFile(filepath.Join(dataDir, "points.geojson"), []byte(testPoints), 0o666))
	return dataDir
}

func runTestCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	rootCmd := newApp(stdout, &bytes.Buffer{}).newRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func TestWindowCmd(t *testing.T) {
	dataDir := newTestDataDir(t)
	stdout, err := runTestCmd(t, "window",
		"--data-dir", dataDir,
		"--srid", "3067",
		"--raster", "grid.asc",
		"--x", "15",
		"--y", "15",
		"--crs", "3067",
		"--height", "1",
		"--width", "1",
	)
	assert.NoError(t, err)
	assert.Equal(t, "ncols 1\n"+
		"nrows 1\n"+
		"xllcorner 10\n"+
		"yllcorner 10\n"+
		"cellsize 10\n"+
		"NODATA_value -9999\n"+
		"2\n", stdout)

	_, err = runTestCmd(t, "window",
		"--data-dir", dataDir,
		"--raster", "grid.asc",
		"--crs", "3067",
		"--height", "1",
		"--width", "1",
	)
	assert.Error(t, err)
}

func TestSampleCmd(t *testing.T) {
	dataDir := newTestDataDir(t)
	output := filepath.Join(t.TempDir(), "samples.csv")
	_, err := runTestCmd(t, "sample",
		"--data-dir", dataDir,
		"--raster", "grid.asc",
		"--points", filepath.Join(dataDir, "points.geojson"),
		"--chunk-cache-size", "1024",
		"--output", output,
	)
	assert.NoError(t, err)
	actual, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "x,y,grid\n"+
		"5,15,1\n"+
		"25,5,\n"+
		"100,100,\n", string(actual))
}

func TestCheckCRSCmd(t *testing.T) {
	dataDir := newTestDataDir(t)
	for _, tc := range []struct {
		name      string
		srid      string
		pointsCRS string
		expected  string
	}{
		{
			name:      "matching",
			srid:      "4326",
			pointsCRS: "4326",
			expected:  "true\n",
		},
		{
			name:      "non_matching",
			srid:      "3067",
			pointsCRS: "4326",
			expected:  "false\n",
		},
		{
			name:      "missing",
			pointsCRS: "4326",
			expected:  "false\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("GEOPREP_SRID", tc.srid)
			stdout, err := runTestCmd(t, "check-crs",
				"--data-dir", dataDir,
				"--raster", "grid.asc",
				"--points", filepath.Join(dataDir, "points.geojson"),
				"--points-crs", tc.pointsCRS,
			)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, stdout)
		})
	}
}
