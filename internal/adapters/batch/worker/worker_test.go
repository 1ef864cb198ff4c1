package worker_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/chrisfahey1010/LakeMapper/internal/adapters/batch/queue"
	worker "github.com/chrisfahey1010/LakeMapper/internal/adapters/batch/worker"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func squareWKT(x, y, s float64) string {
	return fmt.Sprintf("POLYGON ((%g %g, %g %g, %g %g, %g %g, %g %g))",
		x, y, x+s, y, x+s, y+s, x, y+s, x, y)
}

func lakeJob(id string, acres float64) queue.Job {
	return queue.Job{
		Dowlknum: id,
		Contours: []feature.ContourFeature{
			{Dowlknum: id, Depth: 0, LakeName: "Test Lake", Geometry: squareWKT(0, 0, 100)},
			{Dowlknum: id, Depth: 20, LakeName: "Test Lake", Geometry: squareWKT(20, 20, 60)},
		},
		Surveys: []feature.SurveyFeature{
			{Dowlknum: id, Acres: acres, CityName: "Testville", Geometry: squareWKT(-5, -5, 110)},
		},
	}
}

func runPool(ctx context.Context, jobs []queue.Job, workers int) []worker.Result {
	q := queue.NewInMemoryQueue(queue.WithBufferSize(len(jobs) + 1))
	pool := worker.NewPool(workers, q,
		worker.WithBufferDistance(10),
		worker.WithAreaBounds(1, 1_000_000),
	)
	pool.Start(ctx)

	for _, j := range jobs {
		q.Enqueue(ctx, j)
	}
	q.Close()

	var results []worker.Result
	for res := range pool.Results() {
		results = append(results, res)
	}
	return results
}

func TestPool_ProcessesLakes(t *testing.T) {
	Convey("Given a pool of two workers and three well-formed lakes", t, func() {
		ctx := context.Background()
		jobs := []queue.Job{
			lakeJob("00000001", 500),
			lakeJob("00000002", 50),
			lakeJob("00000003", 2500),
		}

		results := runPool(ctx, jobs, 2)

		Convey("Then every lake yields exactly one admitted result", func() {
			So(results, ShouldHaveLength, 3)
			for _, res := range results {
				So(res.Rejection, ShouldEqual, worker.RejectionNone)
				So(res.Record, ShouldNotBeNil)
				So(res.Record.ContourCount, ShouldEqual, 2)
				So(res.Record.MinDepth, ShouldEqual, 0)
				So(res.Record.MaxDepth, ShouldEqual, 20)
				So(res.DuplicateSurvey, ShouldBeFalse)
			}
		})
	})
}

func TestPool_AreaRejection(t *testing.T) {
	Convey("Given a lake below the admission range", t, func() {
		ctx := context.Background()
		results := runPool(ctx, []queue.Job{lakeJob("00000001", 0.5)}, 1)

		Convey("Then it is counted as an area rejection, not an error", func() {
			So(results, ShouldHaveLength, 1)
			So(results[0].Rejection, ShouldEqual, worker.RejectionArea)
			So(results[0].Record, ShouldBeNil)
			So(results[0].Err, ShouldBeNil)
		})
	})
}

func TestPool_GeometryRejection(t *testing.T) {
	Convey("Given a lake whose geometry cannot be repaired", t, func() {
		ctx := context.Background()
		bad := queue.Job{
			Dowlknum: "00000001",
			Contours: []feature.ContourFeature{
				{Dowlknum: "00000001", Depth: 5, Geometry: "POLYGON ((broken"},
			},
			Surveys: []feature.SurveyFeature{
				{Dowlknum: "00000001", Acres: 100, Geometry: squareWKT(0, 0, 100)},
			},
		}
		good := lakeJob("00000002", 100)

		results := runPool(ctx, []queue.Job{bad, good}, 2)

		Convey("Then the failure stays contained to that lake", func() {
			So(results, ShouldHaveLength, 2)

			byID := map[string]worker.Result{}
			for _, res := range results {
				byID[res.Dowlknum] = res
			}
			So(byID["00000001"].Rejection, ShouldEqual, worker.RejectionGeometry)
			So(byID["00000001"].Err, ShouldNotBeNil)
			So(byID["00000002"].Rejection, ShouldEqual, worker.RejectionNone)
			So(byID["00000002"].Record, ShouldNotBeNil)
		})
	})
}

func TestPool_DuplicateSurveys(t *testing.T) {
	Convey("Given a lake identifier with colliding survey records", t, func() {
		ctx := context.Background()
		j := lakeJob("00000001", 500)
		j.Surveys = append(j.Surveys, feature.SurveyFeature{
			Dowlknum: "00000001", Acres: 900, CityName: "Bigger", Geometry: squareWKT(-5, -5, 110),
		})

		results := runPool(ctx, []queue.Job{j}, 1)

		Convey("Then the largest record wins and the collision is flagged", func() {
			So(results, ShouldHaveLength, 1)
			So(results[0].DuplicateSurvey, ShouldBeTrue)
			So(results[0].Record.Acres, ShouldEqual, 900)
			So(results[0].Record.CityName, ShouldEqual, "Bigger")
		})
	})
}
