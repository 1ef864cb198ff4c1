package queue

import (
	"context"
	"strconv"
	"testing"

	"github.com/chrisfahey1010/LakeMapper/internal/domain/feature"
)

func job(id string) Job {
	return Job{
		Dowlknum: id,
		Contours: []feature.ContourFeature{{Dowlknum: id, Depth: 5}},
		Surveys:  []feature.SurveyFeature{{Dowlknum: id, Acres: 10}},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithBufferSize(4))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("00000001")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobs := q.Dequeue(ctx)
	got := <-jobs
	if got.Dowlknum != "00000001" {
		t.Errorf("expected 00000001, got %s", got.Dowlknum)
	}
	if len(got.Contours) != 1 || len(got.Surveys) != 1 {
		t.Error("job payload lost in transit")
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithBufferSize(8))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !q.Enqueue(ctx, job(strconv.Itoa(i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Closed queue refuses new jobs but still drains queued ones.
	if q.Enqueue(ctx, job("99999999")) {
		t.Error("expected enqueue to fail after close")
	}

	count := 0
	for range q.Dequeue(ctx) {
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 drained jobs, got %d", count)
	}

	// Double close is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestInMemoryQueue_ContextCancel(t *testing.T) {
	q := NewInMemoryQueue(WithBufferSize(1))
	ctx, cancel := context.WithCancel(context.Background())

	if !q.Enqueue(ctx, job("00000001")) {
		t.Fatal("first enqueue failed")
	}

	// Buffer full and nobody consuming: a cancelled context unblocks.
	cancel()
	if q.Enqueue(ctx, job("00000002")) {
		t.Error("expected enqueue to fail on cancelled context")
	}
}
