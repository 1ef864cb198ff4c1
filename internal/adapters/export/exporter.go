// Package export writes the pipeline's output artifacts: per-lake GeoJSON
// and metadata documents, the combined lake collection, the run summary,
// and the lake index in CSV and JSON form.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/align"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

const (
	geojsonDir  = "geojson"
	metadataDir = "metadata"
	dirPerm     = 0o755
	filePerm    = 0o644
)

// Exporter renders admitted lake records to disk. Geometries arrive in the
// working CRS and leave in the export CRS, so everything written is ready
// for a web map without further reprojection. Not safe for concurrent use;
// the export stage runs after the worker pool has finished.
type Exporter struct {
	outputDir   string
	transformer *align.Transformer
	log         logger.Logger
}

// NewExporter builds an exporter writing under outputDir. The geometry
// reprojection from the working CRS to the export CRS is set up once here;
// a CRS that cannot be resolved fails the run before any file is touched.
func NewExporter(outputDir, workingCRS, exportCRS string, opts ...Option) (*Exporter, error) {
	transformer, err := align.NewTransformer(workingCRS, exportCRS)
	if err != nil {
		return nil, err
	}

	e := &Exporter{
		outputDir:   outputDir,
		transformer: transformer,
		log:         logger.Named("exporter"),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := os.MkdirAll(filepath.Join(outputDir, geojsonDir), dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := os.MkdirAll(filepath.Join(outputDir, metadataDir), dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return e, nil
}

// ExportLake writes the per-lake GeoJSON document and metadata JSON.
func (e *Exporter) ExportLake(ctx context.Context, record *feature.LakeRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordExportLatency(float64(time.Since(start).Milliseconds()))
	}()

	f, err := e.lakeFeature(record)
	if err != nil {
		return err
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(f)

	path := filepath.Join(e.outputDir, geojsonDir, lakeGeoJSONName(record.Dowlknum))
	if err := writeJSON(path, fc); err != nil {
		return err
	}
	metrics.RecordFileExported()

	meta := lakeMetadata{
		Dowlknum:     record.Dowlknum,
		LakeName:     record.LakeName,
		ContourCount: record.ContourCount,
		DepthRange:   depthRange{Min: record.MinDepth, Max: record.MaxDepth},
		Acres:        record.Acres,
		CityName:     record.CityName,
		SurveyURL:    record.SurveyURL,
		GeometryType: record.GeometryType,
		AreaSqMeters: record.AreaSqMeters,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	path = filepath.Join(e.outputDir, metadataDir, lakeMetadataName(record.Dowlknum))
	if err := writeJSON(path, meta); err != nil {
		return err
	}
	metrics.RecordFileExported()

	e.log.Debug(ctx, "exported lake",
		logger.String("dowlknum", record.Dowlknum),
	)
	return nil
}

// ExportCollection writes the single FeatureCollection covering every
// admitted lake.
func (e *Exporter) ExportCollection(ctx context.Context, records []*feature.LakeRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordExportLatency(float64(time.Since(start).Milliseconds()))
	}()

	fc := geojson.NewFeatureCollection()
	for _, record := range records {
		f, err := e.lakeFeature(record)
		if err != nil {
			return err
		}
		fc.Append(f)
	}

	path := filepath.Join(e.outputDir, "merged_lakes.geojson")
	if err := writeJSON(path, fc); err != nil {
		return err
	}
	metrics.RecordFileExported()

	e.log.Info(ctx, "exported merged lake collection",
		logger.Int("lakes", len(records)),
		logger.String("path", path),
	)
	return nil
}

// indexRow is one line of the lake index, shared by the CSV and JSON forms.
type indexRow struct {
	Dowlknum     string  `json:"dowlknum"`
	LakeName     string  `json:"lake_name"`
	Acres        float64 `json:"acres"`
	CityName     string  `json:"city_name"`
	ContourCount int     `json:"contour_count"`
	MinDepth     float64 `json:"min_depth"`
	MaxDepth     float64 `json:"max_depth"`
	GeoJSONFile  string  `json:"geojson_file"`
	MetadataFile string  `json:"metadata_file"`
}

// ExportIndex writes lake_index.csv and lake_index.json, ordered by acres
// descending so the largest lakes list first.
func (e *Exporter) ExportIndex(ctx context.Context, records []*feature.LakeRecord) error {
	rows := make([]indexRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, indexRow{
			Dowlknum:     r.Dowlknum,
			LakeName:     r.LakeName,
			Acres:        r.Acres,
			CityName:     r.CityName,
			ContourCount: r.ContourCount,
			MinDepth:     r.MinDepth,
			MaxDepth:     r.MaxDepth,
			GeoJSONFile:  filepath.Join(geojsonDir, lakeGeoJSONName(r.Dowlknum)),
			MetadataFile: filepath.Join(metadataDir, lakeMetadataName(r.Dowlknum)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Acres != rows[j].Acres {
			return rows[i].Acres > rows[j].Acres
		}
		return rows[i].Dowlknum < rows[j].Dowlknum
	})

	if err := e.writeIndexCSV(rows); err != nil {
		return err
	}
	metrics.RecordFileExported()

	if err := writeJSON(filepath.Join(e.outputDir, "lake_index.json"), rows); err != nil {
		return err
	}
	metrics.RecordFileExported()

	e.log.Info(ctx, "exported lake index", logger.Int("rows", len(rows)))
	return nil
}

func (e *Exporter) writeIndexCSV(rows []indexRow) error {
	f, err := os.OpenFile(filepath.Join(e.outputDir, "lake_index.csv"),
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"dowlknum", "lake_name", "acres", "city_name",
		"contour_count", "min_depth", "max_depth", "geojson_file", "metadata_file"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	for _, r := range rows {
		rec := []string{
			r.Dowlknum,
			r.LakeName,
			strconv.FormatFloat(r.Acres, 'f', -1, 64),
			r.CityName,
			strconv.Itoa(r.ContourCount),
			strconv.FormatFloat(r.MinDepth, 'f', -1, 64),
			strconv.FormatFloat(r.MaxDepth, 'f', -1, 64),
			r.GeoJSONFile,
			r.MetadataFile,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// lakeFeature converts one record into a GeoJSON feature in the export CRS.
func (e *Exporter) lakeFeature(record *feature.LakeRecord) (*geojson.Feature, error) {
	g, err := wkt.Unmarshal(record.Geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: lake %s: %w", ErrEncodeGeometry, record.Dowlknum, err)
	}
	g, err = e.reproject(g)
	if err != nil {
		return nil, fmt.Errorf("lake %s: %w", record.Dowlknum, err)
	}

	f := geojson.NewFeature(g)
	f.Properties = geojson.Properties{
		"dowlknum":      record.Dowlknum,
		"lake_name":     record.LakeName,
		"contour_count": record.ContourCount,
		"min_depth":     record.MinDepth,
		"max_depth":     record.MaxDepth,
		"acres":         record.Acres,
		"city_name":     record.CityName,
	}
	return f, nil
}

// reproject maps an orb geometry from the working CRS into the export CRS.
func (e *Exporter) reproject(g orb.Geometry) (orb.Geometry, error) {
	switch geom := g.(type) {
	case orb.Point:
		pts, err := e.transformer.TransformCoords([][]float64{{geom[0], geom[1]}})
		if err != nil {
			return nil, err
		}
		return orb.Point{pts[0][0], pts[0][1]}, nil
	case orb.LineString:
		ls, err := e.reprojectLine(geom)
		if err != nil {
			return nil, err
		}
		return ls, nil
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(geom))
		for _, ls := range geom {
			r, err := e.reprojectLine(ls)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case orb.Polygon:
		return e.reprojectPolygon(geom)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(geom))
		for _, p := range geom {
			r, err := e.reprojectPolygon(p)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case orb.Collection:
		out := make(orb.Collection, 0, len(geom))
		for _, member := range geom {
			r, err := e.reproject(member)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: geometry type %s", ErrEncodeGeometry, g.GeoJSONType())
	}
}

func (e *Exporter) reprojectLine(ls orb.LineString) (orb.LineString, error) {
	coords := make([][]float64, 0, len(ls))
	for _, p := range ls {
		coords = append(coords, []float64{p[0], p[1]})
	}
	aligned, err := e.transformer.TransformCoords(coords)
	if err != nil {
		return nil, err
	}
	out := make(orb.LineString, 0, len(aligned))
	for _, c := range aligned {
		out = append(out, orb.Point{c[0], c[1]})
	}
	return out, nil
}

func (e *Exporter) reprojectPolygon(p orb.Polygon) (orb.Polygon, error) {
	out := make(orb.Polygon, 0, len(p))
	for _, ring := range p {
		aligned, err := e.reprojectLine(orb.LineString(ring))
		if err != nil {
			return nil, err
		}
		out = append(out, orb.Ring(aligned))
	}
	return out, nil
}

func lakeGeoJSONName(dowlknum string) string {
	return "lake_" + dowlknum + ".geojson"
}

func lakeMetadataName(dowlknum string) string {
	return "lake_" + dowlknum + ".json"
}

// writeJSON marshals v with indentation and writes it atomically enough for
// a batch run: full buffer first, single write after.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// lakeMetadata is the per-lake metadata document.
type lakeMetadata struct {
	Dowlknum     string     `json:"dowlknum"`
	LakeName     string     `json:"lake_name"`
	ContourCount int        `json:"contour_count"`
	DepthRange   depthRange `json:"depth_range"`
	Acres        float64    `json:"acres"`
	CityName     string     `json:"city_name"`
	SurveyURL    string     `json:"survey_url"`
	GeometryType string     `json:"geometry_type"`
	AreaSqMeters float64    `json:"area_sq_meters"`
	ExportedAt   string     `json:"export_timestamp"`
}

type depthRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
