// Package service orchestrates one batch run: load both shapefile layers,
// match lake identifiers, merge each matched lake's bathymetry on a worker
// pool, and export the results.
package service

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chrisfahey1010/LakeMapper/internal/adapters/batch/queue"
	"github.com/chrisfahey1010/LakeMapper/internal/adapters/batch/worker"
	"github.com/chrisfahey1010/LakeMapper/internal/adapters/export"
	"github.com/chrisfahey1010/LakeMapper/internal/adapters/shapefile"
	"github.com/chrisfahey1010/LakeMapper/internal/adapters/spatial"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/identity"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// Service runs the lake reconciliation pipeline end to end. Build one with
// New, call Run once; the service holds no state between runs.
type Service struct {
	bathymetryPath string
	surveyPath     string
	outputDir      string
	targetCRS      string
	exportCRS      string
	bufferDistance float64
	minArea        float64
	maxArea        float64
	workerCount    int

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		targetCRS:      "EPSG:26915",
		exportCRS:      "OGC:CRS84",
		bufferDistance: 10.0,
		minArea:        1.0,
		maxArea:        1_000_000.0,
		workerCount:    runtime.NumCPU(),
		logger:         logger.Named("service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes one batch. Load, match, and projection setup failures abort
// the run before any output file exists; per-lake failures inside the
// worker pool become counted rejections in the returned summary.
func (s *Service) Run(ctx context.Context) (*export.Summary, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	s.logger.Info(ctx, "starting pipeline run",
		logger.String("run_id", runID),
		logger.String("bathymetry", s.bathymetryPath),
		logger.String("surveys", s.surveyPath),
		logger.Int("workers", s.workerCount),
	)

	loader := shapefile.NewLoader(s.targetCRS, shapefile.WithLogger(s.logger.Named("loader")))

	contours, _, err := loader.LoadContours(ctx, s.bathymetryPath)
	if err != nil {
		return nil, err
	}
	surveys, _, err := loader.LoadSurveys(ctx, s.surveyPath)
	if err != nil {
		return nil, err
	}

	matcher := identity.NewMatcher(identity.WithLogger(s.logger.Named("matcher")))
	match, err := matcher.FindMatches(ctx, contours, surveys)
	if err != nil {
		return nil, err
	}
	metrics.UpdateLakesMatched(len(match.Dowlknums))
	metrics.UpdateUnmatched("contour", match.ContourOnly)
	metrics.UpdateUnmatched("survey", match.SurveyOnly)

	index, err := s.buildOutlineIndex(match)
	if err != nil {
		return nil, err
	}

	records, tally := s.mergeAll(ctx, match, index)

	sort.Slice(records, func(i, j int) bool {
		return records[i].Dowlknum < records[j].Dowlknum
	})

	exporter, err := export.NewExporter(s.outputDir, s.targetCRS, s.exportCRS,
		export.WithLogger(s.logger.Named("exporter")))
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := exporter.ExportLake(ctx, record); err != nil {
			return nil, err
		}
	}
	if err := exporter.ExportCollection(ctx, records); err != nil {
		return nil, err
	}
	if err := exporter.ExportIndex(ctx, records); err != nil {
		return nil, err
	}

	summary := &export.Summary{
		RunID:                   runID,
		StartedAt:               startedAt.Format(time.RFC3339),
		FinishedAt:              time.Now().UTC().Format(time.RFC3339),
		ContourFeaturesLoaded:   len(contours),
		SurveyFeaturesLoaded:    len(surveys),
		MatchedLakes:            len(match.Dowlknums),
		MatchPercentage:         match.MatchPercentage,
		AdmittedLakes:           len(records),
		RejectedByArea:          tally.rejectedArea,
		RejectedByGeometryError: tally.rejectedGeometry,
		UnmatchedContourOnly:    match.ContourOnly,
		UnmatchedSurveyOnly:     match.SurveyOnly,
		DuplicateSurveys:        tally.duplicateSurveys,
		DisjointOutlineWarnings: tally.disjointWarnings,
		Stats:                   export.ComputeStats(records),
	}
	if err := exporter.ExportSummary(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "pipeline run finished",
		logger.String("run_id", runID),
		logger.Int("admitted", summary.AdmittedLakes),
		logger.Int("rejected_area", summary.RejectedByArea),
		logger.Int("rejected_geometry", summary.RejectedByGeometryError),
	)

	return summary, nil
}

// tally accumulates the per-lake outcomes the summary report counts.
type tally struct {
	rejectedArea     int
	rejectedGeometry int
	duplicateSurveys int
	disjointWarnings int
}

// mergeAll fans the matched lakes out over the worker pool and reduces the
// results. Order of results is nondeterministic; the caller sorts.
func (s *Service) mergeAll(ctx context.Context, match *identity.Match, index *spatial.OutlineIndex) ([]*feature.LakeRecord, tally) {
	q := queue.NewInMemoryQueue(queue.WithBufferSize(len(match.Dowlknums)))
	pool := worker.NewPool(s.workerCount, q,
		worker.WithBufferDistance(s.bufferDistance),
		worker.WithAreaBounds(s.minArea, s.maxArea),
	)
	pool.Start(ctx)

	go func() {
		defer q.Close()
		for _, id := range match.Dowlknums {
			ok := q.Enqueue(ctx, queue.Job{
				Dowlknum: id,
				Contours: match.ContoursByLake[id],
				Surveys:  match.SurveysByLake[id],
			})
			if !ok {
				return
			}
		}
	}()

	var records []*feature.LakeRecord
	var t tally
	for res := range pool.Results() {
		if res.DuplicateSurvey {
			t.duplicateSurveys++
		}
		switch res.Rejection {
		case worker.RejectionArea:
			t.rejectedArea++
			continue
		case worker.RejectionGeometry:
			t.rejectedGeometry++
			continue
		}

		if index.Disjoint(res.Dowlknum, res.Bounds) {
			metrics.RecordDisjointOutline()
			t.disjointWarnings++
			s.logger.Warn(ctx, "merged bathymetry does not overlap survey outline",
				logger.String("dowlknum", res.Dowlknum),
			)
		}
		records = append(records, res.Record)
	}

	return records, t
}

// buildOutlineIndex loads every matched lake's survey outline bounds into
// the spatial index used for the disjoint-outline sanity check. Bounds of
// multiple survey records for one identifier are unioned.
func (s *Service) buildOutlineIndex(match *identity.Match) (*spatial.OutlineIndex, error) {
	engine := geometry.NewEngine()
	index := spatial.NewOutlineIndex()

	for _, id := range match.Dowlknums {
		var box geometry.Bounds
		first := true
		for _, survey := range match.SurveysByLake[id] {
			g, err := engine.FromWKT(survey.Geometry)
			if err != nil {
				return nil, err
			}
			b := g.Bounds()
			if first {
				box = b
				first = false
				continue
			}
			if b.MinX < box.MinX {
				box.MinX = b.MinX
			}
			if b.MinY < box.MinY {
				box.MinY = b.MinY
			}
			if b.MaxX > box.MaxX {
				box.MaxX = b.MaxX
			}
			if b.MaxY > box.MaxY {
				box.MaxY = b.MaxY
			}
		}
		if !first {
			index.Insert(id, box)
		}
	}

	return index, nil
}
