// Package align normalizes input layers onto one coordinate reference
// system. All downstream area, length, and buffer computations assume a
// common metric CRS; mixing geographic degrees with projected meters
// silently corrupts every one of them, so alignment happens exactly once,
// before matching.
package align

import (
	"fmt"
	"math"

	"github.com/twpayne/go-proj/v10"
)

// Transformer reprojects coordinates from one declared CRS to another.
// It is a pure transform with no side effects. A Transformer is not safe
// for concurrent use; create one per goroutine if needed.
type Transformer struct {
	source   string
	target   string
	pj       *proj.PJ
	identity bool
}

// NewTransformer builds a transform from sourceCRS to targetCRS. Both are
// PROJ-recognizable CRS descriptions: an authority code ("EPSG:26915") or
// the WKT from a shapefile's .prj sidecar. An empty source CRS is a
// projection error: a source that cannot be determined is never guessed.
func NewTransformer(sourceCRS, targetCRS string) (*Transformer, error) {
	if sourceCRS == "" {
		return nil, fmt.Errorf("%w: source CRS is not determinable", ErrProjection)
	}
	if targetCRS == "" {
		return nil, fmt.Errorf("%w: target CRS is empty", ErrProjection)
	}
	if sourceCRS == targetCRS {
		return &Transformer{source: sourceCRS, target: targetCRS, identity: true}, nil
	}

	pj, err := proj.NewCRSToCRS(sourceCRS, targetCRS, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s -> %s: %w", ErrProjection, sourceCRS, targetCRS, err)
	}

	return &Transformer{source: sourceCRS, target: targetCRS, pj: pj}, nil
}

// Source returns the declared source CRS.
func (t *Transformer) Source() string { return t.source }

// Target returns the configured target CRS.
func (t *Transformer) Target() string { return t.target }

// TransformCoords reprojects a sequence of [x, y] points. The input is not
// modified. Fails with a ProjectionError when the transform is undefined
// for the coordinate range.
func (t *Transformer) TransformCoords(coords [][]float64) ([][]float64, error) {
	if t.identity {
		out := make([][]float64, len(coords))
		for i, c := range coords {
			out[i] = []float64{c[0], c[1]}
		}
		return out, nil
	}

	in := make([][]float64, len(coords))
	for i, c := range coords {
		in[i] = []float64{c[0], c[1]}
	}
	if err := t.pj.ForwardFloat64Slices(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProjection, err)
	}
	out := in
	for _, c := range out {
		if len(c) < 2 || !finite(c[0]) || !finite(c[1]) {
			return nil, fmt.Errorf("%w: transform undefined for coordinate range", ErrProjection)
		}
	}
	return out, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
