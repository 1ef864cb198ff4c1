// Package shapefile loads the two input layers from ESRI shapefiles into
// in-memory feature tables, aligning every geometry onto the configured
// target CRS as it is read. The source CRS comes from the .prj sidecar.
package shapefile

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/align"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// Attribute names used by the Minnesota DNR layers.
const (
	fieldDowlknum  = "DOWLKNUM"
	fieldDepth     = "DEPTH"
	fieldLakeName  = "LAKE_NAME"
	fieldAcres     = "ACRES"
	fieldCityName  = "CTY_NAME"
	fieldSurveyURL = "SURVEY_URL"
	fieldBasinName = "PW_BASIN_N"
)

// Stats describes one layer load.
type Stats struct {
	Loaded  int // features loaded
	Invalid int // rows skipped for an unrecoverable lake identifier
}

// Loader reads shapefiles into feature tables.
type Loader struct {
	engine    *geometry.Engine
	targetCRS string
	log       logger.Logger
}

// NewLoader creates a Loader that aligns geometry onto targetCRS.
func NewLoader(targetCRS string, opts ...Option) *Loader {
	l := &Loader{
		engine:    geometry.NewEngine(),
		targetCRS: targetCRS,
		log:       logger.Named("loader"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadContours reads the bathymetry contour layer. DOWLKNUM and DEPTH are
// required attributes; LAKE_NAME is optional. Rows whose identifier cannot
// be normalized are counted and skipped, not fatal. A depth that fails to
// parse is carried as NaN and excluded from extrema downstream.
func (l *Loader) LoadContours(ctx context.Context, path string) ([]feature.ContourFeature, *Stats, error) {
	reader, transformer, err := l.open(path)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	cols, err := columnIndex(reader, fieldDowlknum, fieldDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("bathymetry layer %s: %w", path, err)
	}

	stats := &Stats{}
	var features []feature.ContourFeature
	for reader.Next() {
		row, shape := reader.Shape()

		id, err := feature.NormalizeDowlknum(reader.ReadAttribute(row, cols[fieldDowlknum]))
		if err != nil {
			stats.Invalid++
			metrics.RecordInvalidIdentifier("bathymetry")
			continue
		}

		depthRaw := reader.ReadAttribute(row, cols[fieldDepth])
		depth, err := strconv.ParseFloat(strings.TrimSpace(depthRaw), 64)
		if err != nil {
			l.log.Warn(ctx, "contour depth is not numeric",
				logger.String("dowlknum", id),
				logger.String("depth", depthRaw),
			)
			depth = math.NaN()
		} else {
			depth = feature.NormalizeDepth(depth)
		}

		wkt, err := l.geometryWKT(shape, transformer)
		if err != nil {
			return nil, nil, fmt.Errorf("bathymetry row %d: %w", row, err)
		}

		features = append(features, feature.ContourFeature{
			Dowlknum: id,
			Depth:    depth,
			LakeName: optional(reader, cols, row, fieldLakeName),
			Geometry: wkt,
		})
		stats.Loaded++
	}

	metrics.RecordContourFeaturesLoaded(stats.Loaded)
	l.log.Info(ctx, "loaded bathymetry contours",
		logger.String("path", path),
		logger.Int("loaded", stats.Loaded),
		logger.Int("invalid_identifiers", stats.Invalid),
	)
	return features, stats, nil
}

// LoadSurveys reads the fish survey outline layer. DOWLKNUM and ACRES are
// required; CTY_NAME, SURVEY_URL and PW_BASIN_N are optional.
func (l *Loader) LoadSurveys(ctx context.Context, path string) ([]feature.SurveyFeature, *Stats, error) {
	reader, transformer, err := l.open(path)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	cols, err := columnIndex(reader, fieldDowlknum, fieldAcres)
	if err != nil {
		return nil, nil, fmt.Errorf("survey layer %s: %w", path, err)
	}

	stats := &Stats{}
	var features []feature.SurveyFeature
	for reader.Next() {
		row, shape := reader.Shape()

		id, err := feature.NormalizeDowlknum(reader.ReadAttribute(row, cols[fieldDowlknum]))
		if err != nil {
			stats.Invalid++
			metrics.RecordInvalidIdentifier("survey")
			continue
		}

		acres, err := strconv.ParseFloat(strings.TrimSpace(reader.ReadAttribute(row, cols[fieldAcres])), 64)
		if err != nil {
			l.log.Warn(ctx, "survey acreage is not numeric, treated as zero",
				logger.String("dowlknum", id),
			)
			acres = 0
		}

		wkt, err := l.geometryWKT(shape, transformer)
		if err != nil {
			return nil, nil, fmt.Errorf("survey row %d: %w", row, err)
		}

		features = append(features, feature.SurveyFeature{
			Dowlknum:  id,
			Acres:     acres,
			CityName:  optional(reader, cols, row, fieldCityName),
			SurveyURL: optional(reader, cols, row, fieldSurveyURL),
			BasinName: optional(reader, cols, row, fieldBasinName),
			Geometry:  wkt,
		})
		stats.Loaded++
	}

	metrics.RecordSurveyFeaturesLoaded(stats.Loaded)
	l.log.Info(ctx, "loaded fish survey outlines",
		logger.String("path", path),
		logger.Int("loaded", stats.Loaded),
		logger.Int("invalid_identifiers", stats.Invalid),
	)
	return features, stats, nil
}

// open opens the .shp and builds the CRS transformer from the .prj sidecar.
func (l *Loader) open(path string) (*shp.Reader, *align.Transformer, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}

	transformer, err := align.NewTransformer(readPrj(path), l.targetCRS)
	if err != nil {
		reader.Close()
		return nil, nil, fmt.Errorf("layer %s: %w", path, err)
	}
	return reader, transformer, nil
}

// readPrj returns the WKT CRS description next to the .shp, or "" when the
// sidecar is absent; the transformer turns "" into a ProjectionError.
func readPrj(shpPath string) string {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// columnIndex maps required and optional attribute names to DBF columns.
// Missing required fields are an error; the caller cannot proceed without
// the join key or the admission attribute.
func columnIndex(reader *shp.Reader, required ...string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, f := range reader.Fields() {
		cols[strings.ToUpper(f.String())] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	return cols, nil
}

// optional reads a possibly-absent attribute, returning "" when the column
// does not exist.
func optional(reader *shp.Reader, cols map[string]int, row int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(reader.ReadAttribute(row, i))
}
