// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - Tuning is threaded through component options, never read ambiently.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration for one pipeline run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BathymetryPath is the bathymetry contour shapefile (.shp).
	BathymetryPath string `koanf:"bathymetry_path"`

	// SurveyPath is the fish survey outline shapefile (.shp).
	SurveyPath string `koanf:"survey_path"`

	// OutputDir is the root directory for all exported files.
	OutputDir string `koanf:"output_dir"`

	// BufferDistance is the merge tolerance in meters. Fragments farther
	// apart than twice this distance stay disjoint after merging.
	BufferDistance float64 `koanf:"buffer_distance"`

	// TargetCRS is the projected CRS all geometry is aligned to before any
	// area or buffer computation. Must be metric.
	TargetCRS string `koanf:"target_crs"`

	// ExportCRS is the CRS merged geometry is written in. CRS84 is WGS84
	// with longitude/latitude axis order, matching GeoJSON.
	ExportCRS string `koanf:"export_crs"`

	// MinLakeArea and MaxLakeArea bound the admission filter, in acres,
	// inclusive on both ends.
	MinLakeArea float64 `koanf:"min_lake_area"`
	MaxLakeArea float64 `koanf:"max_lake_area"`

	// WorkerCount sets the number of merge workers.
	WorkerCount int `koanf:"worker_count"`

	// MetricsAddr, when non-empty, serves Prometheus metrics on this
	// address for the duration of the run, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		BathymetryPath: "data/raw/bathymetry_contours.shp",
		SurveyPath:     "data/raw/fish_survey.shp",
		OutputDir:      "output",
		BufferDistance: 10.0,
		TargetCRS:      "EPSG:26915", // UTM 15N / NAD83
		ExportCRS:      "OGC:CRS84",
		MinLakeArea:    1.0,
		MaxLakeArea:    1_000_000.0,
		WorkerCount:    runtime.NumCPU(),
		MetricsAddr:    "",
	}
}
