package shapefile

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/align"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
)

// geometryWKT converts one shapefile record into aligned WKT. Polygon and
// polyline records are both accepted; a closed polyline ring is treated as
// a polygon, since both layers digitize the same kind of water boundary.
func (l *Loader) geometryWKT(shape shp.Shape, transformer *align.Transformer) (string, error) {
	switch s := shape.(type) {
	case *shp.Polygon:
		parts, err := transformParts(s.Points, s.Parts, transformer)
		if err != nil {
			return "", err
		}
		return l.assemblePolygons(parts)
	case *shp.PolyLine:
		parts, err := transformParts(s.Points, s.Parts, transformer)
		if err != nil {
			return "", err
		}
		return l.assembleLines(parts)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedShape, shape)
	}
}

// transformParts splits the flat point array on part offsets and reprojects
// each part onto the target CRS.
func transformParts(points []shp.Point, offsets []int32, transformer *align.Transformer) ([][][]float64, error) {
	parts := make([][][]float64, 0, len(offsets))
	for p := 0; p < len(offsets); p++ {
		start := int(offsets[p])
		end := len(points)
		if p+1 < len(offsets) {
			end = int(offsets[p+1])
		}

		coords := make([][]float64, 0, end-start)
		for _, pt := range points[start:end] {
			coords = append(coords, []float64{pt.X, pt.Y})
		}
		aligned, err := transformer.TransformCoords(coords)
		if err != nil {
			return nil, err
		}
		parts = append(parts, aligned)
	}
	return parts, nil
}

// assemblePolygons groups rings into polygons using shapefile winding:
// clockwise rings open a new polygon, counter-clockwise rings are holes in
// the polygon most recently opened. Multiple polygons are unioned into one
// geometry so every record yields exactly one WKT string.
func (l *Loader) assemblePolygons(parts [][][]float64) (string, error) {
	var polygons [][][][]float64
	for _, ring := range parts {
		ring = closeRing(ring)
		if len(ring) < 4 {
			continue
		}
		if len(polygons) == 0 || !counterClockwise(ring) {
			polygons = append(polygons, [][][]float64{ring})
			continue
		}
		polygons[len(polygons)-1] = append(polygons[len(polygons)-1], ring)
	}
	if len(polygons) == 0 {
		return "", fmt.Errorf("%w: polygon record has no usable rings", ErrUnsupportedShape)
	}

	geoms := make([]*geometry.Geometry, 0, len(polygons))
	for _, rings := range polygons {
		g, err := l.engine.Polygon(rings)
		if err != nil {
			return "", err
		}
		geoms = append(geoms, g)
	}
	if len(geoms) == 1 {
		return geoms[0].WKT(), nil
	}
	union, err := l.engine.Union(geoms)
	if err != nil {
		return "", err
	}
	return union.WKT(), nil
}

// assembleLines converts polyline parts: closed rings become polygons,
// open parts stay lines, and multi-part records are unioned.
func (l *Loader) assembleLines(parts [][][]float64) (string, error) {
	geoms := make([]*geometry.Geometry, 0, len(parts))
	for _, coords := range parts {
		if len(coords) < 2 {
			continue
		}
		if isClosed(coords) && len(coords) >= 4 {
			g, err := l.engine.Polygon([][][]float64{coords})
			if err != nil {
				return "", err
			}
			geoms = append(geoms, g)
			continue
		}
		g, err := l.engine.LineString(coords)
		if err != nil {
			return "", err
		}
		geoms = append(geoms, g)
	}
	if len(geoms) == 0 {
		return "", fmt.Errorf("%w: polyline record has no usable parts", ErrUnsupportedShape)
	}
	if len(geoms) == 1 {
		return geoms[0].WKT(), nil
	}
	union, err := l.engine.Union(geoms)
	if err != nil {
		return "", err
	}
	return union.WKT(), nil
}

// closeRing appends the first point when a ring does not end where it began.
func closeRing(ring [][]float64) [][]float64 {
	if len(ring) == 0 || isClosed(ring) {
		return ring
	}
	return append(ring, []float64{ring[0][0], ring[0][1]})
}

func isClosed(coords [][]float64) bool {
	if len(coords) < 2 {
		return false
	}
	first, last := coords[0], coords[len(coords)-1]
	return first[0] == last[0] && first[1] == last[1]
}

// counterClockwise computes ring orientation with the shoelace formula.
// Shapefile outer rings wind clockwise; counter-clockwise rings are holes.
func counterClockwise(ring [][]float64) bool {
	sum := 0.0
	for i := 0; i < len(ring)-1; i++ {
		sum += (ring[i+1][0] - ring[i][0]) * (ring[i+1][1] + ring[i][1])
	}
	return sum < 0
}
