// Package feature contains the domain models passed between pipeline stages.
package feature

import (
	"fmt"
	"math"
	"strings"
)

// dowlknumLen is the fixed width of a normalized lake identifier.
const dowlknumLen = 8

// squareMetersPerAcre is the international acre.
const squareMetersPerAcre = 4046.8564224

// ContourFeature is one raw bathymetry record: a polygon or line at a single
// depth, possibly one of many fragments composing a lake's true geometry.
// Immutable once loaded; geometry is WKT in the aligned target CRS.
type ContourFeature struct {
	Dowlknum string  // normalized 8-digit lake identifier, the join key
	Depth    float64 // depth in feet, normalized non-negative
	LakeName string  // free text, may be empty or inconsistent across fragments
	Geometry string  // WKT polygon or line
}

// SurveyFeature is one fish-survey record: a single outline polygon per
// surveyed lake with administrative metadata. Immutable once loaded.
type SurveyFeature struct {
	Dowlknum  string
	Acres     float64
	CityName  string
	SurveyURL string
	BasinName string // fallback lake name from the survey layer, may be empty
	Geometry  string // WKT outline polygon
}

// LakeRecord is the final logical entity for one matched, admitted lake.
// It owns its derived geometry outright and is never mutated after creation.
type LakeRecord struct {
	Dowlknum     string
	LakeName     string // resolved by majority vote, may be empty
	Acres        float64
	CityName     string
	SurveyURL    string
	ContourCount int                // raw contour fragments consumed by the merge
	MinDepth     float64            // feet
	MaxDepth     float64            // feet
	DepthBands   map[float64]string // depth -> merged WKT multi-polygon
	Geometry     string             // all depth bands flattened to one WKT multi-polygon
	GeometryType string             // e.g. "MultiPolygon"
	AreaSqMeters float64            // computed from Geometry, not from Acres
}

// NormalizeDowlknum reconciles the identifier spellings the two layers use:
// bare numbers, zero-padded strings, and numeric exports with a trailing
// ".0" all normalize to the same fixed-width form. Returns an error when no
// 8-digit identifier can be recovered.
func NormalizeDowlknum(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	// DBF numeric columns sometimes surface as "27013300.0".
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" || len(d) > dowlknumLen {
		return "", fmt.Errorf("invalid lake identifier %q", raw)
	}
	return strings.Repeat("0", dowlknumLen-len(d)) + d, nil
}

// ValidDowlknum reports whether s is already a normalized identifier:
// exactly eight digits.
func ValidDowlknum(s string) bool {
	if len(s) != dowlknumLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeDepth maps signed source depths onto the non-negative convention
// used throughout the pipeline.
func NormalizeDepth(d float64) float64 {
	return math.Abs(d)
}

// AcresToSquareMeters converts a survey-reported acreage to square meters.
func AcresToSquareMeters(acres float64) float64 {
	return acres * squareMetersPerAcre
}

// SquareMetersToAcres converts a computed area to acres for cross-checks.
func SquareMetersToAcres(sqm float64) float64 {
	return sqm / squareMetersPerAcre
}
