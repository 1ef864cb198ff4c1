package spatial_test

import (
	"testing"

	spatial "github.com/chrisfahey1010/LakeMapper/internal/adapters/spatial"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func box(minX, minY, maxX, maxY float64) geometry.Bounds {
	return geometry.Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func TestOutlineIndex(t *testing.T) {
	Convey("Given an index of survey outline bounds", t, func() {
		ix := spatial.NewOutlineIndex()
		ix.Insert("00000001", box(0, 0, 100, 100))
		ix.Insert("00000002", box(500, 500, 600, 600))
		ix.Insert("00000003", box(90, 90, 200, 200))

		So(ix.Len(), ShouldEqual, 3)

		Convey("When querying a window overlapping two outlines", func() {
			ids := ix.Query(box(80, 80, 120, 120))

			Convey("Then exactly those outlines are returned", func() {
				So(ids, ShouldHaveLength, 2)
				So(ids, ShouldContain, "00000001")
				So(ids, ShouldContain, "00000003")
			})
		})

		Convey("When querying an empty region", func() {
			So(ix.Query(box(1000, 1000, 1100, 1100)), ShouldBeEmpty)
		})

		Convey("When the merged geometry overlaps its outline", func() {
			So(ix.Disjoint("00000001", box(10, 10, 50, 50)), ShouldBeFalse)
		})

		Convey("When the merged geometry lands nowhere near its outline", func() {
			So(ix.Disjoint("00000002", box(0, 0, 10, 10)), ShouldBeTrue)
		})

		Convey("When the merged geometry barely crosses the outline edge", func() {
			// Outline 00000002 starts at x=500; box reaches to 502.
			So(ix.Disjoint("00000002", box(400, 500, 502, 600)), ShouldBeFalse)
		})

		Convey("When the merged geometry stops just short of the outline", func() {
			// Outline 00000002 starts at x=500; box ends at 495, 5 away.
			So(ix.Disjoint("00000002", box(400, 500, 495, 600)), ShouldBeTrue)
		})

		Convey("When the identifier was never indexed", func() {
			Convey("Then no warning is raised", func() {
				So(ix.Disjoint("99999999", box(0, 0, 1, 1)), ShouldBeFalse)
			})
		})

		Convey("When an outline is degenerate (a point)", func() {
			ix.Insert("00000004", box(300, 300, 300, 300))

			Convey("Then it is still queryable", func() {
				So(ix.Query(box(299, 299, 301, 301)), ShouldContain, "00000004")
			})
		})
	})
}
