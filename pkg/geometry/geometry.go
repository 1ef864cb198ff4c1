// Package geometry wraps the GEOS bindings behind a small capability
// surface: buffer, union, validity repair, area, bounds, intersection.
//
// GEOS reports failures by panicking; every method here recovers at the
// package boundary and returns a plain error instead, so callers never see
// a panic cross a package line. Geometries are bound to the Engine that
// created them and must not be mixed across engines. An Engine serializes
// access to its GEOS context, so per-worker engines are the way to get
// parallelism.
package geometry

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geos"
)

// ErrEmptyInput is returned when an operation receives no geometries.
var ErrEmptyInput = errors.New("no input geometries")

// Engine owns a GEOS context and constructs geometries bound to it.
type Engine struct {
	ctx      *geos.Context
	quadSegs int
}

// NewEngine creates a geometry engine with its own GEOS context.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ctx:      geos.NewContext(),
		quadSegs: 8, // GEOS default quadrant segments for buffer arcs
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Geometry is a GEOS geometry bound to its creating engine.
type Geometry struct {
	g      *geos.Geom
	engine *Engine
}

// Bounds is an axis-aligned bounding box in CRS units.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether two boxes overlap (touching counts).
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Expand grows the box by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	return Bounds{
		MinX: b.MinX - d,
		MinY: b.MinY - d,
		MaxX: b.MaxX + d,
		MaxY: b.MaxY + d,
	}
}

// safely runs a GEOS operation and converts its panic, if any, to an error.
func safely(op string, fn func() *geos.Geom) (g *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			g = nil
			err = fmt.Errorf("geos %s: %v", op, r)
		}
	}()
	return fn(), nil
}

// FromWKT parses a WKT string into a geometry.
func (e *Engine) FromWKT(wkt string) (*Geometry, error) {
	g, err := e.ctx.NewGeomFromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}
	return &Geometry{g: g, engine: e}, nil
}

// Polygon builds a polygon from rings; the first ring is the outer
// boundary, the rest are holes. Each point is an [x, y] pair.
func (e *Engine) Polygon(rings [][][]float64) (*Geometry, error) {
	g, err := safely("polygon", func() *geos.Geom {
		return e.ctx.NewPolygon(rings)
	})
	if err != nil {
		return nil, err
	}
	return &Geometry{g: g, engine: e}, nil
}

// LineString builds a line from a sequence of [x, y] points.
func (e *Engine) LineString(coords [][]float64) (*Geometry, error) {
	g, err := safely("linestring", func() *geos.Geom {
		return e.ctx.NewLineString(coords)
	})
	if err != nil {
		return nil, err
	}
	return &Geometry{g: g, engine: e}, nil
}

// Union folds a non-empty set of geometries into one.
func (e *Engine) Union(geoms []*Geometry) (*Geometry, error) {
	if len(geoms) == 0 {
		return nil, ErrEmptyInput
	}
	acc := geoms[0].g
	for _, next := range geoms[1:] {
		other := next.g
		g, err := safely("union", func() *geos.Geom {
			return acc.Union(other)
		})
		if err != nil {
			return nil, err
		}
		acc = g
	}
	return &Geometry{g: acc, engine: e}, nil
}

// Buffer returns the geometry dilated (dist > 0) or eroded (dist < 0) by
// dist CRS units.
func (gm *Geometry) Buffer(dist float64) (*Geometry, error) {
	g, err := safely("buffer", func() *geos.Geom {
		return gm.g.Buffer(dist, gm.engine.quadSegs)
	})
	if err != nil {
		return nil, err
	}
	return &Geometry{g: g, engine: gm.engine}, nil
}

// MakeValid repairs self-intersections and other validity defects.
func (gm *Geometry) MakeValid() (*Geometry, error) {
	g, err := safely("make_valid", func() *geos.Geom {
		return gm.g.MakeValid()
	})
	if err != nil {
		return nil, err
	}
	return &Geometry{g: g, engine: gm.engine}, nil
}

// IsValid reports topological validity. A GEOS failure during the check
// counts as invalid.
func (gm *Geometry) IsValid() bool {
	valid := false
	_, err := safely("is_valid", func() *geos.Geom {
		valid = gm.g.IsValid()
		return gm.g
	})
	return err == nil && valid
}

// IsEmpty reports whether the geometry has no points.
func (gm *Geometry) IsEmpty() bool {
	return gm.g.IsEmpty()
}

// Area returns the planar area in squared CRS units.
func (gm *Geometry) Area() float64 {
	return gm.g.Area()
}

// Bounds returns the axis-aligned bounding box.
func (gm *Geometry) Bounds() Bounds {
	b := gm.g.Bounds()
	return Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// Intersects reports whether two geometries share any point.
func (gm *Geometry) Intersects(o *Geometry) (bool, error) {
	result := false
	_, err := safely("intersects", func() *geos.Geom {
		result = gm.g.Intersects(o.g)
		return gm.g
	})
	if err != nil {
		return false, err
	}
	return result, nil
}

// WKT serializes the geometry to well-known text.
func (gm *Geometry) WKT() string {
	return gm.g.String()
}

// Type returns the geometry type name, e.g. "MultiPolygon".
func (gm *Geometry) Type() string {
	switch gm.g.TypeID() {
	case geos.TypeIDPoint:
		return "Point"
	case geos.TypeIDLineString:
		return "LineString"
	case geos.TypeIDLinearRing:
		return "LinearRing"
	case geos.TypeIDPolygon:
		return "Polygon"
	case geos.TypeIDMultiPoint:
		return "MultiPoint"
	case geos.TypeIDMultiLineString:
		return "MultiLineString"
	case geos.TypeIDMultiPolygon:
		return "MultiPolygon"
	case geos.TypeIDGeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// IsPolygonal reports whether the geometry is a polygon or multi-polygon.
func (gm *Geometry) IsPolygonal() bool {
	id := gm.g.TypeID()
	return id == geos.TypeIDPolygon || id == geos.TypeIDMultiPolygon
}

// AsMultiPolygon promotes a single polygon to a one-member multi-polygon.
// Multi-polygons pass through unchanged; non-polygonal geometries are
// returned as-is.
func (gm *Geometry) AsMultiPolygon() (*Geometry, error) {
	if gm.g.TypeID() != geos.TypeIDPolygon {
		return gm, nil
	}
	g, err := safely("as_multipolygon", func() *geos.Geom {
		return gm.engine.ctx.NewCollection(geos.TypeIDMultiPolygon, []*geos.Geom{gm.g})
	})
	if err != nil {
		return nil, err
	}
	return &Geometry{g: g, engine: gm.engine}, nil
}
