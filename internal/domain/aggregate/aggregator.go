// Package aggregate combines a lake's merged bathymetry with its survey
// record into the final logical lake record, applying the area-based
// admission filter and deriving summary statistics.
package aggregate

import (
	"context"
	"math"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/merge"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// Default admission bounds in acres, inclusive. They guard against
// obviously corrupt survey records: zero or negative areas on the low end,
// continental-scale bounding errors on the high end.
const (
	defaultMinLakeArea = 1.0
	defaultMaxLakeArea = 1_000_000.0
)

// Aggregator builds LakeRecords and applies the admission filter.
type Aggregator struct {
	minArea float64
	maxArea float64
	log     logger.Logger
}

// NewAggregator creates an Aggregator with default admission bounds.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		minArea: defaultMinLakeArea,
		maxArea: defaultMaxLakeArea,
		log:     logger.Named("aggregator"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ResolveSurvey picks one survey record when a lake identifier carries
// several. The largest-acreage record wins; equal acreages keep the first
// occurrence, so the choice is stable for a given input file. Returns the
// chosen record and whether a collision was resolved. The collision is
// ambiguous input, not a fatal error.
func (a *Aggregator) ResolveSurvey(
	ctx context.Context,
	dowlknum string,
	surveys []feature.SurveyFeature,
) (feature.SurveyFeature, bool) {
	chosen := surveys[0]
	if len(surveys) == 1 {
		return chosen, false
	}

	for _, s := range surveys[1:] {
		if s.Acres > chosen.Acres {
			chosen = s
		}
	}

	metrics.RecordDuplicateSurvey()
	a.log.Warn(ctx, "multiple survey records for lake, keeping largest",
		logger.String("dowlknum", dowlknum),
		logger.Int("records", len(surveys)),
		logger.Float64("acres", chosen.Acres),
	)
	return chosen, true
}

// Admit reports whether a survey-reported acreage falls inside the
// configured inclusive admission range.
func (a *Aggregator) Admit(acres float64) bool {
	return acres >= a.minArea && acres <= a.maxArea
}

// Aggregate combines merged bathymetry with the lake's single survey
// record. Depth extrema come from the depth-band keys; values that are not
// finite numbers are logged and skipped, never fatal. The geometry area is
// computed independently of the survey's reported acreage and serves as a
// cross-check, not a substitute.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	merged *merge.MergedLake,
	survey feature.SurveyFeature,
) *feature.LakeRecord {
	minDepth := math.Inf(1)
	maxDepth := math.Inf(-1)
	valid := 0
	for _, d := range merged.Depths {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			a.log.Warn(ctx, "skipping non-numeric depth value",
				logger.String("dowlknum", merged.Dowlknum),
			)
			continue
		}
		minDepth = math.Min(minDepth, d)
		maxDepth = math.Max(maxDepth, d)
		valid++
	}
	if valid == 0 {
		a.log.Warn(ctx, "lake has no valid depth values",
			logger.String("dowlknum", merged.Dowlknum),
		)
		minDepth, maxDepth = 0, 0
	}

	areaSqMeters := merged.Flattened.Area()

	name := merged.LakeName
	if name == "" {
		name = survey.BasinName
	}

	a.log.Debug(ctx, "aggregated lake record",
		logger.String("dowlknum", merged.Dowlknum),
		logger.Int("contours", merged.ContourCount),
		logger.Float64("min_depth", minDepth),
		logger.Float64("max_depth", maxDepth),
		logger.Float64("area_sq_meters", areaSqMeters),
	)

	return &feature.LakeRecord{
		Dowlknum:     merged.Dowlknum,
		LakeName:     name,
		Acres:        survey.Acres,
		CityName:     survey.CityName,
		SurveyURL:    survey.SurveyURL,
		ContourCount: merged.ContourCount,
		MinDepth:     minDepth,
		MaxDepth:     maxDepth,
		DepthBands:   merged.DepthBands,
		Geometry:     merged.Flattened.WKT(),
		GeometryType: merged.GeometryType,
		AreaSqMeters: areaSqMeters,
	}
}
