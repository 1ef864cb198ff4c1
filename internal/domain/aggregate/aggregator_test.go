package aggregate_test

import (
	"context"
	"math"
	"testing"

	aggregate "github.com/chrisfahey1010/LakeMapper/internal/domain/aggregate"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/merge"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func mergedLake(t *testing.T, dowlknum string, depths []float64) *merge.MergedLake {
	t.Helper()
	engine := geometry.NewEngine()
	g, err := engine.FromWKT("POLYGON ((0 0, 100 0, 100 100, 0 100, 0 0))")
	if err != nil {
		t.Fatalf("building fixture geometry: %v", err)
	}
	g, err = g.AsMultiPolygon()
	if err != nil {
		t.Fatalf("building fixture geometry: %v", err)
	}

	bands := make(map[float64]string, len(depths))
	for _, d := range depths {
		bands[d] = g.WKT()
	}
	return &merge.MergedLake{
		Dowlknum:     dowlknum,
		LakeName:     "Fixture Lake",
		ContourCount: len(depths),
		Depths:       depths,
		DepthBands:   bands,
		Flattened:    g,
		GeometryType: g.Type(),
		Bounds:       g.Bounds(),
	}
}

func TestAggregator_Admit(t *testing.T) {
	Convey("Given the default admission range", t, func() {
		a := aggregate.NewAggregator()

		Convey("Then both bounds are inclusive", func() {
			So(a.Admit(1.0), ShouldBeTrue)
			So(a.Admit(1_000_000.0), ShouldBeTrue)
		})

		Convey("Then values outside the range are rejected", func() {
			So(a.Admit(0.99), ShouldBeFalse)
			So(a.Admit(1_000_000.01), ShouldBeFalse)
			So(a.Admit(0), ShouldBeFalse)
		})

		Convey("Then interior values are admitted", func() {
			So(a.Admit(523.7), ShouldBeTrue)
		})
	})

	Convey("Given a custom admission range", t, func() {
		a := aggregate.NewAggregator(aggregate.WithAreaBounds(10, 100))
		So(a.Admit(9.9), ShouldBeFalse)
		So(a.Admit(10), ShouldBeTrue)
		So(a.Admit(100), ShouldBeTrue)
		So(a.Admit(100.1), ShouldBeFalse)
	})
}

func TestAggregator_ResolveSurvey(t *testing.T) {
	Convey("Given survey records sharing one identifier", t, func() {
		a := aggregate.NewAggregator()
		ctx := context.Background()

		Convey("When only one record exists", func() {
			s, collided := a.ResolveSurvey(ctx, "00000001", []feature.SurveyFeature{
				{Dowlknum: "00000001", Acres: 50},
			})
			So(collided, ShouldBeFalse)
			So(s.Acres, ShouldEqual, 50)
		})

		Convey("When several records collide", func() {
			s, collided := a.ResolveSurvey(ctx, "00000001", []feature.SurveyFeature{
				{Dowlknum: "00000001", Acres: 50, CityName: "Alpha"},
				{Dowlknum: "00000001", Acres: 200, CityName: "Bravo"},
				{Dowlknum: "00000001", Acres: 120, CityName: "Charlie"},
			})

			Convey("Then the largest acreage wins and the collision is flagged", func() {
				So(collided, ShouldBeTrue)
				So(s.Acres, ShouldEqual, 200)
				So(s.CityName, ShouldEqual, "Bravo")
			})
		})

		Convey("When colliding records tie on acreage", func() {
			s, collided := a.ResolveSurvey(ctx, "00000001", []feature.SurveyFeature{
				{Dowlknum: "00000001", Acres: 75, CityName: "First"},
				{Dowlknum: "00000001", Acres: 75, CityName: "Second"},
			})

			Convey("Then the first occurrence is kept, stably", func() {
				So(collided, ShouldBeTrue)
				So(s.CityName, ShouldEqual, "First")
			})
		})
	})
}

func TestAggregator_Aggregate(t *testing.T) {
	Convey("Given merged bathymetry and a survey record", t, func() {
		a := aggregate.NewAggregator()
		ctx := context.Background()
		survey := feature.SurveyFeature{
			Dowlknum:  "00000001",
			Acres:     500,
			CityName:  "Duluth",
			SurveyURL: "https://example.org/survey/1",
		}

		Convey("When depths are well-formed", func() {
			merged := mergedLake(t, "00000001", []float64{0, 20, 40})
			record := a.Aggregate(ctx, merged, survey)

			Convey("Then the extrema come from the depth band keys", func() {
				So(record.MinDepth, ShouldEqual, 0)
				So(record.MaxDepth, ShouldEqual, 40)
			})

			Convey("Then survey metadata is carried across", func() {
				So(record.Acres, ShouldEqual, 500)
				So(record.CityName, ShouldEqual, "Duluth")
				So(record.SurveyURL, ShouldEqual, "https://example.org/survey/1")
			})

			Convey("Then the area is computed from the geometry", func() {
				So(record.AreaSqMeters, ShouldAlmostEqual, 10000, 1e-6)
			})

			Convey("Then the record keeps the merged identity", func() {
				So(record.Dowlknum, ShouldEqual, "00000001")
				So(record.LakeName, ShouldEqual, "Fixture Lake")
				So(record.ContourCount, ShouldEqual, 3)
				So(record.GeometryType, ShouldEqual, "MultiPolygon")
			})
		})

		Convey("When some depth values are not numbers", func() {
			merged := mergedLake(t, "00000001", []float64{math.NaN(), 15, 30})
			record := a.Aggregate(ctx, merged, survey)

			Convey("Then the bad value is skipped, not fatal", func() {
				So(record.MinDepth, ShouldEqual, 15)
				So(record.MaxDepth, ShouldEqual, 30)
			})
		})

		Convey("When no depth value is usable", func() {
			merged := mergedLake(t, "00000001", []float64{math.NaN()})
			record := a.Aggregate(ctx, merged, survey)

			Convey("Then the extrema collapse to zero", func() {
				So(record.MinDepth, ShouldEqual, 0)
				So(record.MaxDepth, ShouldEqual, 0)
			})
		})

		Convey("When the resolved fragment name is empty", func() {
			merged := mergedLake(t, "00000001", []float64{5})
			merged.LakeName = ""
			withBasin := survey
			withBasin.BasinName = "North Basin"
			record := a.Aggregate(ctx, merged, withBasin)

			Convey("Then the survey basin name fills in", func() {
				So(record.LakeName, ShouldEqual, "North Basin")
			})
		})
	})
}
