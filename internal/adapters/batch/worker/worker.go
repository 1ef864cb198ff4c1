// Package worker runs the per-lake merge stage over a pool of goroutines.
//
// Each worker owns a private geometry engine: GEOS contexts are not safe
// for concurrent use, so sharing one across goroutines is never attempted.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/chrisfahey1010/LakeMapper/internal/adapters/batch/queue"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/aggregate"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/merge"
	"github.com/chrisfahey1010/LakeMapper/pkg/geometry"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

// Job aliases the queue payload for convenience.
type Job = queue.Job

// Rejection classifies why a matched lake produced no record. A rejection
// is a counted pipeline outcome, never a run failure.
type Rejection int

const (
	RejectionNone Rejection = iota
	RejectionArea
	RejectionGeometry
)

// Result is one worker's verdict on one lake.
type Result struct {
	Dowlknum        string
	Record          *feature.LakeRecord // nil unless admitted
	Bounds          geometry.Bounds     // merged geometry bounds, zero unless admitted
	Rejection       Rejection
	DuplicateSurvey bool
	Err             error // rejection detail, informational only
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker consumes lake jobs until its job channel closes.
type Worker struct {
	queue      Queue
	results    chan<- Result
	merger     *merge.Merger
	aggregator *aggregate.Aggregator
	name       string
	log        logger.Logger
}

// newWorker builds a worker with its own geometry engine and merge stack.
func newWorker(q Queue, results chan<- Result, name string, bufferDistance, minArea, maxArea float64) *Worker {
	log := logger.Named(name)
	engine := geometry.NewEngine()
	return &Worker{
		queue:      q,
		results:    results,
		merger:     merge.NewMerger(engine, merge.WithBufferDistance(bufferDistance), merge.WithLogger(log)),
		aggregator: aggregate.NewAggregator(aggregate.WithAreaBounds(minArea, maxArea), aggregate.WithLogger(log)),
		name:       name,
		log:        log,
	}
}

// run drains the job channel, emitting one Result per job.
func (w *Worker) run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := w.process(ctx, job)
			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// process runs one lake through survey resolution, area admission, merge,
// and aggregation. Failures become classified rejections in the Result;
// nothing a single lake does can abort the batch.
func (w *Worker) process(ctx context.Context, job Job) Result {
	start := time.Now()
	defer func() {
		metrics.RecordMergeLatency(float64(time.Since(start).Milliseconds()))
	}()

	survey, collided := w.aggregator.ResolveSurvey(ctx, job.Dowlknum, job.Surveys)

	if !w.aggregator.Admit(survey.Acres) {
		metrics.RecordLakeRejectedArea()
		w.log.Debug(ctx, "lake outside admission area range",
			logger.String("dowlknum", job.Dowlknum),
			logger.Float64("acres", survey.Acres),
		)
		return Result{
			Dowlknum:        job.Dowlknum,
			Rejection:       RejectionArea,
			DuplicateSurvey: collided,
		}
	}

	merged, err := w.merger.MergeLake(ctx, job.Dowlknum, job.Contours, survey)
	if err != nil {
		metrics.RecordLakeRejectedGeometry()
		w.log.Error(ctx, "lake skipped, geometry unrecoverable",
			logger.String("dowlknum", job.Dowlknum),
			logger.Error(err),
		)
		return Result{
			Dowlknum:        job.Dowlknum,
			Rejection:       RejectionGeometry,
			DuplicateSurvey: collided,
			Err:             err,
		}
	}

	record := w.aggregator.Aggregate(ctx, merged, survey)
	metrics.RecordLakeAdmitted()

	return Result{
		Dowlknum:        job.Dowlknum,
		Record:          record,
		Bounds:          merged.Bounds,
		DuplicateSurvey: collided,
	}
}

// Pool manages a fixed set of workers over one shared queue.
type Pool struct {
	workers []*Worker
	results chan Result
	wg      sync.WaitGroup
	log     logger.Logger
}

// NewPool creates a worker pool. Each worker gets an independent merge
// stack configured with the given buffer distance and admission bounds.
func NewPool(workerCount int, q Queue, opts ...Option) *Pool {
	cfg := poolConfig{
		bufferDistance: 10.0,
		minArea:        1.0,
		maxArea:        1_000_000.0,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		results: make(chan Result, workerCount),
		log:     logger.Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = newWorker(q, p.results, "worker-"+strconv.Itoa(i),
			cfg.bufferDistance, cfg.minArea, cfg.maxArea)
	}

	metrics.UpdateActiveWorkers(workerCount)

	return p
}

// Start launches all workers. The results channel closes once every worker
// has drained the queue, so callers can range over Results until done.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.run(ctx)
		}(w)
	}

	go func() {
		p.wg.Wait()
		metrics.UpdateActiveWorkers(0)
		close(p.results)
	}()
}

// Results returns the channel of per-lake outcomes.
func (p *Pool) Results() <-chan Result {
	return p.results
}
