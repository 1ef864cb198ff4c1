package geometry_test

import (
	"testing"

	geometry "github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngine_FromWKT(t *testing.T) {
	Convey("Given a geometry engine", t, func() {
		engine := geometry.NewEngine()

		Convey("When parsing valid WKT", func() {
			g, err := engine.FromWKT("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
			So(err, ShouldBeNil)
			So(g.Type(), ShouldEqual, "Polygon")
			So(g.Area(), ShouldEqual, 100.0)
		})

		Convey("When parsing garbage", func() {
			_, err := engine.FromWKT("POLYGON ((oops")

			Convey("Then the failure is an error, not a panic", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestEngine_Constructors(t *testing.T) {
	Convey("Given a geometry engine", t, func() {
		engine := geometry.NewEngine()

		Convey("When building a polygon with a hole", func() {
			g, err := engine.Polygon([][][]float64{
				{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
				{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
			})
			So(err, ShouldBeNil)
			So(g.Area(), ShouldEqual, 96.0)
		})

		Convey("When building a line string", func() {
			g, err := engine.LineString([][]float64{{0, 0}, {10, 0}, {10, 10}})
			So(err, ShouldBeNil)
			So(g.Type(), ShouldEqual, "LineString")
			So(g.IsPolygonal(), ShouldBeFalse)
		})
	})
}

func TestEngine_Union(t *testing.T) {
	Convey("Given two disjoint squares", t, func() {
		engine := geometry.NewEngine()
		a, err := engine.FromWKT("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
		So(err, ShouldBeNil)
		b, err := engine.FromWKT("POLYGON ((20 0, 30 0, 30 10, 20 10, 20 0))")
		So(err, ShouldBeNil)

		Convey("When unioning them", func() {
			u, err := engine.Union([]*geometry.Geometry{a, b})
			So(err, ShouldBeNil)
			So(u.Area(), ShouldEqual, 200.0)
			So(u.Type(), ShouldEqual, "MultiPolygon")
		})

		Convey("When unioning nothing", func() {
			_, err := engine.Union(nil)
			So(err, ShouldEqual, geometry.ErrEmptyInput)
		})

		Convey("When unioning a single geometry", func() {
			u, err := engine.Union([]*geometry.Geometry{a})
			So(err, ShouldBeNil)
			So(u.Area(), ShouldEqual, 100.0)
		})
	})
}

func TestGeometry_BufferAndRepair(t *testing.T) {
	Convey("Given a unit square", t, func() {
		engine := geometry.NewEngine()
		g, err := engine.FromWKT("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
		So(err, ShouldBeNil)

		Convey("When dilating", func() {
			b, err := g.Buffer(5)
			So(err, ShouldBeNil)
			So(b.Area(), ShouldBeGreaterThan, g.Area())
		})

		Convey("When eroding past the shape's extent", func() {
			b, err := g.Buffer(-20)
			So(err, ShouldBeNil)
			So(b.IsEmpty(), ShouldBeTrue)
		})

		Convey("When repairing a self-intersecting ring", func() {
			bowtie, err := engine.FromWKT("POLYGON ((0 0, 10 10, 10 0, 0 10, 0 0))")
			So(err, ShouldBeNil)
			So(bowtie.IsValid(), ShouldBeFalse)

			fixed, err := bowtie.MakeValid()
			So(err, ShouldBeNil)
			So(fixed.IsValid(), ShouldBeTrue)
			So(fixed.IsEmpty(), ShouldBeFalse)
		})
	})
}

func TestGeometry_BoundsAndPredicates(t *testing.T) {
	Convey("Given two overlapping squares", t, func() {
		engine := geometry.NewEngine()
		a, err := engine.FromWKT("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
		So(err, ShouldBeNil)
		b, err := engine.FromWKT("POLYGON ((5 5, 15 5, 15 15, 5 15, 5 5))")
		So(err, ShouldBeNil)

		Convey("Then bounds reflect the extent", func() {
			So(a.Bounds(), ShouldResemble, geometry.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
		})

		Convey("Then intersection is detected", func() {
			hit, err := a.Intersects(b)
			So(err, ShouldBeNil)
			So(hit, ShouldBeTrue)
		})

		Convey("Then a polygon promotes to a one-member multi-polygon", func() {
			mp, err := a.AsMultiPolygon()
			So(err, ShouldBeNil)
			So(mp.Type(), ShouldEqual, "MultiPolygon")
			So(mp.Area(), ShouldEqual, a.Area())
		})
	})
}

func TestBounds(t *testing.T) {
	Convey("Given bounding boxes", t, func() {
		a := geometry.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

		Convey("Then touching boxes intersect", func() {
			So(a.Intersects(geometry.Bounds{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}), ShouldBeTrue)
		})

		Convey("Then separated boxes do not", func() {
			So(a.Intersects(geometry.Bounds{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}), ShouldBeFalse)
		})

		Convey("Then Expand grows every side", func() {
			So(a.Expand(5), ShouldResemble, geometry.Bounds{MinX: -5, MinY: -5, MaxX: 15, MaxY: 15})
		})
	})
}
