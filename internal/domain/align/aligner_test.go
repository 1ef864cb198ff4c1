package align_test

import (
	"testing"

	align "github.com/chrisfahey1010/LakeMapper/internal/domain/align"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewTransformer(t *testing.T) {
	Convey("Given CRS declarations", t, func() {
		Convey("When the source CRS is empty", func() {
			_, err := align.NewTransformer("", "EPSG:26915")

			Convey("Then the transform is refused, never guessed", func() {
				So(err, ShouldWrap, align.ErrProjection)
			})
		})

		Convey("When the target CRS is empty", func() {
			_, err := align.NewTransformer("EPSG:26915", "")
			So(err, ShouldWrap, align.ErrProjection)
		})

		Convey("When source and target are the same", func() {
			tr, err := align.NewTransformer("EPSG:26915", "EPSG:26915")
			So(err, ShouldBeNil)
			So(tr.Source(), ShouldEqual, "EPSG:26915")
			So(tr.Target(), ShouldEqual, "EPSG:26915")

			Convey("Then coordinates pass through untouched", func() {
				in := [][]float64{{481234.5, 5012345.6}, {0, 0}}
				out, err := tr.TransformCoords(in)
				So(err, ShouldBeNil)
				So(out, ShouldResemble, in)
			})

			Convey("Then the output never aliases the input", func() {
				in := [][]float64{{1, 2}}
				out, err := tr.TransformCoords(in)
				So(err, ShouldBeNil)
				out[0][0] = 99
				So(in[0][0], ShouldEqual, 1)
			})
		})
	})
}

func TestTransformCoords_Reprojection(t *testing.T) {
	Convey("Given a geographic to projected transform", t, func() {
		tr, err := align.NewTransformer("EPSG:4326", "EPSG:26915")
		So(err, ShouldBeNil)

		Convey("When reprojecting a point inside the UTM 15N zone", func() {
			// EPSG:4326 uses latitude/longitude axis order.
			out, err := tr.TransformCoords([][]float64{{45.0, -93.0}})
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)

			Convey("Then the result lands in plausible UTM meters", func() {
				So(out[0][0], ShouldBeBetween, 100_000.0, 900_000.0)
				So(out[0][1], ShouldBeBetween, 4_000_000.0, 6_000_000.0)
			})
		})
	})
}
