// Package identity resolves which raw features belong to the same
// real-world lake by intersecting the identifier sets of the two layers.
package identity

import (
	"context"
	"sort"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
)

// Match is the authoritative set of lakes to process, plus the discrepancy
// counts the summary report requires. Lakes present in only one layer are
// excluded and counted, never silently dropped.
type Match struct {
	// Dowlknums is the sorted intersection of both layers' identifiers.
	Dowlknums []string

	// ContourLakes and SurveyLakes count distinct identifiers per layer.
	ContourLakes int
	SurveyLakes  int

	// ContourOnly and SurveyOnly count identifiers found in exactly one layer.
	ContourOnly int
	SurveyOnly  int

	// MatchPercentage is matched lakes over survey lakes.
	MatchPercentage float64

	// Per-lake views over the raw features, keyed by normalized identifier.
	ContoursByLake map[string][]feature.ContourFeature
	SurveysByLake  map[string][]feature.SurveyFeature
}

// Matcher intersects the identifier sets of both layers.
type Matcher struct {
	log logger.Logger
}

// NewMatcher creates a Matcher.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		log: logger.Named("matcher"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// FindMatches returns the intersection of the two layers' identifier sets.
// Identifiers are assumed normalized at load time, so comparison is plain
// string equality. An empty intersection is ErrNoMatch: the run halts with
// a diagnostic instead of producing zero output files silently.
func (m *Matcher) FindMatches(
	ctx context.Context,
	contours []feature.ContourFeature,
	surveys []feature.SurveyFeature,
) (*Match, error) {
	contoursByLake := make(map[string][]feature.ContourFeature)
	for _, c := range contours {
		contoursByLake[c.Dowlknum] = append(contoursByLake[c.Dowlknum], c)
	}

	surveysByLake := make(map[string][]feature.SurveyFeature)
	for _, s := range surveys {
		surveysByLake[s.Dowlknum] = append(surveysByLake[s.Dowlknum], s)
	}

	matched := make([]string, 0, len(surveysByLake))
	for id := range contoursByLake {
		if _, ok := surveysByLake[id]; ok {
			matched = append(matched, id)
		}
	}
	sort.Strings(matched)

	result := &Match{
		Dowlknums:      matched,
		ContourLakes:   len(contoursByLake),
		SurveyLakes:    len(surveysByLake),
		ContourOnly:    len(contoursByLake) - len(matched),
		SurveyOnly:     len(surveysByLake) - len(matched),
		ContoursByLake: contoursByLake,
		SurveysByLake:  surveysByLake,
	}
	if result.SurveyLakes > 0 {
		result.MatchPercentage = float64(len(matched)) / float64(result.SurveyLakes) * 100
	}

	m.log.Info(ctx, "matched lake identifiers across layers",
		logger.Int("matched", len(matched)),
		logger.Int("contour_only", result.ContourOnly),
		logger.Int("survey_only", result.SurveyOnly),
		logger.Float64("match_percentage", result.MatchPercentage),
	)

	if len(matched) == 0 {
		return nil, ErrNoMatch
	}
	return result, nil
}
