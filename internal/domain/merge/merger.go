// Package merge reconstructs one coherent geometry per lake from an
// arbitrary number of possibly-disjoint, possibly-overlapping contour
// fragments sharing a lake identifier.
package merge

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// defaultBufferDistance is the merge tolerance in meters.
const defaultBufferDistance = 10.0

// MergedLake is the consolidated bathymetry for one lake: a unified
// multi-polygon per depth band plus a flattened whole-lake geometry.
type MergedLake struct {
	Dowlknum     string
	LakeName     string             // resolved fragment name, may be empty
	ContourCount int                // fragments consumed by the merge
	Depths       []float64          // band keys, ascending
	DepthBands   map[float64]string // depth -> merged WKT
	Flattened    *geometry.Geometry // union across all depths
	GeometryType string
	Bounds       geometry.Bounds
}

// Merger consolidates contour fragments with buffer-dissolve topology repair.
type Merger struct {
	engine         *geometry.Engine
	bufferDistance float64
	log            logger.Logger
}

// NewMerger creates a Merger bound to a geometry engine. The engine must
// not be shared with merges running on other goroutines.
func NewMerger(engine *geometry.Engine, opts ...Option) *Merger {
	m := &Merger{
		engine:         engine,
		bufferDistance: defaultBufferDistance,
		log:            logger.Named("merger"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// MergeLake consolidates all contour fragments for one lake.
//
// Fragments whose depths failed numeric parsing are excluded, and fragments
// that do not intersect the survey outline buffered by the merge distance
// are discarded: the latter carry this lake's identifier but lie outside
// any plausible digitizing tolerance of its outline. The survivors are
// grouped by depth and each group is dissolved with a positive buffer,
// union, negative buffer sequence that bridges digitizing gaps of up to
// twice the buffer distance. Fragments farther apart stay disjoint; that is
// the boundary between "same feature, digitizing gap" and "genuinely
// separate water body".
func (m *Merger) MergeLake(
	ctx context.Context,
	dowlknum string,
	contours []feature.ContourFeature,
	survey feature.SurveyFeature,
) (*MergedLake, error) {
	if len(contours) == 0 {
		return nil, fmt.Errorf("%w: lake %s has no contour fragments", ErrGeometryRepair, dowlknum)
	}

	outline, err := m.loadRepaired(survey.Geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: lake %s survey outline: %w", ErrGeometryRepair, dowlknum, err)
	}
	gate, err := outline.Buffer(m.bufferDistance)
	if err != nil {
		return nil, fmt.Errorf("%w: lake %s: %w", ErrGeometryRepair, dowlknum, err)
	}

	bands := make(map[float64][]*geometry.Geometry)
	names := make([]string, 0, len(contours))
	consumed := 0
	for _, c := range contours {
		// A NaN depth never equals itself, so it can never share a band
		// with another fragment; exclude it before grouping.
		if math.IsNaN(c.Depth) {
			m.log.Warn(ctx, "fragment depth is not numeric, skipped",
				logger.String("dowlknum", dowlknum),
			)
			continue
		}
		frag, err := m.loadRepaired(c.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: lake %s fragment at depth %g: %w", ErrGeometryRepair, dowlknum, c.Depth, err)
		}
		hit, err := frag.Intersects(gate)
		if err != nil {
			return nil, fmt.Errorf("%w: lake %s: %w", ErrGeometryRepair, dowlknum, err)
		}
		if !hit {
			m.log.Debug(ctx, "fragment outside survey outline tolerance, skipped",
				logger.String("dowlknum", dowlknum),
				logger.Float64("depth", c.Depth),
			)
			continue
		}
		bands[c.Depth] = append(bands[c.Depth], frag)
		names = append(names, c.LakeName)
		consumed++
	}

	if consumed == 0 {
		return nil, fmt.Errorf("%w: lake %s has no mergeable contour fragments", ErrGeometryRepair, dowlknum)
	}

	depths := make([]float64, 0, len(bands))
	bandWKT := make(map[float64]string, len(bands))
	flattenedParts := make([]*geometry.Geometry, 0, len(bands))
	for depth := range bands {
		depths = append(depths, depth)
	}
	sort.Float64s(depths)

	for _, depth := range depths {
		merged, err := m.dissolve(bands[depth])
		if err != nil {
			return nil, fmt.Errorf("%w: lake %s depth band %g: %w", ErrGeometryRepair, dowlknum, depth, err)
		}
		bandWKT[depth] = merged.WKT()
		flattenedParts = append(flattenedParts, merged)
	}

	flattened, err := m.engine.Union(flattenedParts)
	if err != nil {
		return nil, fmt.Errorf("%w: lake %s flatten: %w", ErrGeometryRepair, dowlknum, err)
	}
	if flattened.IsEmpty() {
		return nil, fmt.Errorf("%w: lake %s merged geometry is empty", ErrGeometryRepair, dowlknum)
	}
	flattened, err = flattened.AsMultiPolygon()
	if err != nil {
		return nil, fmt.Errorf("%w: lake %s: %w", ErrGeometryRepair, dowlknum, err)
	}

	name := ResolveName(names, survey.BasinName)

	m.log.Debug(ctx, "merged contour fragments",
		logger.String("dowlknum", dowlknum),
		logger.Int("fragments", consumed),
		logger.Int("depth_bands", len(depths)),
	)

	return &MergedLake{
		Dowlknum:     dowlknum,
		LakeName:     name,
		ContourCount: consumed,
		Depths:       depths,
		DepthBands:   bandWKT,
		Flattened:    flattened,
		GeometryType: flattened.Type(),
		Bounds:       flattened.Bounds(),
	}, nil
}

// dissolve applies the buffer-union-unbuffer sequence to one depth band.
// When the negative buffer erodes the result away entirely (open polyline
// fragments have no interior to give back), the pre-erosion union is kept
// so a band never vanishes while its inputs exist.
func (m *Merger) dissolve(frags []*geometry.Geometry) (*geometry.Geometry, error) {
	buffered := make([]*geometry.Geometry, 0, len(frags))
	for _, f := range frags {
		b, err := f.Buffer(m.bufferDistance)
		if err != nil {
			return nil, err
		}
		buffered = append(buffered, b)
	}

	union, err := m.engine.Union(buffered)
	if err != nil {
		return nil, err
	}

	merged, err := union.Buffer(-m.bufferDistance)
	if err != nil {
		return nil, err
	}
	if merged.IsEmpty() && !union.IsEmpty() {
		merged = union
	}
	if !merged.IsValid() {
		merged, err = merged.MakeValid()
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// loadRepaired parses WKT and, when the geometry is invalid, applies a
// single validity-fixing pass before giving up.
func (m *Merger) loadRepaired(wkt string) (*geometry.Geometry, error) {
	g, err := m.engine.FromWKT(wkt)
	if err != nil {
		return nil, err
	}
	if g.IsValid() {
		return g, nil
	}
	repaired, err := g.MakeValid()
	if err != nil {
		return nil, err
	}
	if !repaired.IsValid() {
		return nil, fmt.Errorf("geometry unrepairable after validity pass")
	}
	metrics.RecordGeometryRepair()
	return repaired, nil
}
