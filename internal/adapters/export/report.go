package export

import (
	"context"
	"path/filepath"
	"time"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// Summary is the run-level accounting written to summary_report.json.
type Summary struct {
	RunID                   string  `json:"run_id"`
	StartedAt               string  `json:"started_at"`
	FinishedAt              string  `json:"finished_at"`
	ContourFeaturesLoaded   int     `json:"contour_features_loaded"`
	SurveyFeaturesLoaded    int     `json:"survey_features_loaded"`
	MatchedLakes            int     `json:"matched_lakes"`
	MatchPercentage         float64 `json:"match_percentage"`
	AdmittedLakes           int     `json:"admitted_lakes"`
	RejectedByArea          int     `json:"rejected_by_area"`
	RejectedByGeometryError int     `json:"rejected_by_geometry_error"`
	UnmatchedContourOnly    int     `json:"unmatched_contour_only"`
	UnmatchedSurveyOnly     int     `json:"unmatched_survey_only"`
	DuplicateSurveys        int     `json:"duplicate_surveys"`
	DisjointOutlineWarnings int     `json:"disjoint_outline_warnings"`

	Stats AggregateStats `json:"stats"`
}

// AggregateStats describes the admitted lakes as a population.
type AggregateStats struct {
	TotalAcres    float64 `json:"total_acres"`
	MeanAcres     float64 `json:"mean_acres"`
	MaxAcres      float64 `json:"max_acres"`
	MinAcres      float64 `json:"min_acres"`
	MaxDepth      float64 `json:"max_depth"`
	MeanMaxDepth  float64 `json:"mean_max_depth"`
	TotalContours int     `json:"total_contours"`
}

// ComputeStats derives the population statistics over admitted records.
func ComputeStats(records []*feature.LakeRecord) AggregateStats {
	var s AggregateStats
	if len(records) == 0 {
		return s
	}

	var sumMaxDepth float64
	s.MinAcres = records[0].Acres
	for _, r := range records {
		s.TotalAcres += r.Acres
		if r.Acres > s.MaxAcres {
			s.MaxAcres = r.Acres
		}
		if r.Acres < s.MinAcres {
			s.MinAcres = r.Acres
		}
		if r.MaxDepth > s.MaxDepth {
			s.MaxDepth = r.MaxDepth
		}
		sumMaxDepth += r.MaxDepth
		s.TotalContours += r.ContourCount
	}
	n := float64(len(records))
	s.MeanAcres = s.TotalAcres / n
	s.MeanMaxDepth = sumMaxDepth / n
	return s
}

// ExportSummary writes summary_report.json.
func (e *Exporter) ExportSummary(ctx context.Context, summary *Summary) error {
	start := time.Now()
	defer func() {
		metrics.RecordExportLatency(float64(time.Since(start).Milliseconds()))
	}()

	path := filepath.Join(e.outputDir, "summary_report.json")
	if err := writeJSON(path, summary); err != nil {
		return err
	}
	metrics.RecordFileExported()

	e.log.Info(ctx, "exported run summary",
		logger.String("run_id", summary.RunID),
		logger.Int("admitted", summary.AdmittedLakes),
		logger.String("path", path),
	)
	return nil
}
