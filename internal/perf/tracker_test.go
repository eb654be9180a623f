package perf

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStopRecordsDuration(t *testing.T) {
	tracker := NewTracker(nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	tracker.Start("discover")
	now = now.Add(150 * time.Millisecond)
	tracker.Stop("discover", map[string]any{"modules": 3})

	metric, ok := tracker.Metric("discover")
	if !ok {
		t.Fatalf("metric not recorded")
	}
	if metric.Duration != 150*time.Millisecond {
		t.Fatalf("unexpected duration %s", metric.Duration)
	}
	if metric.Context["modules"] != 3 {
		t.Fatalf("context lost: %v", metric.Context)
	}
}

func TestStopWithoutStartIsIgnored(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Stop("ghost", nil)
	if _, ok := tracker.Metric("ghost"); ok {
		t.Fatalf("unstarted operation should not be recorded")
	}
}

func TestSummary(t *testing.T) {
	tracker := NewTracker(nil)
	now := time.Now()
	tracker.now = func() time.Time { return now }

	done := tracker.Track("create")
	now = now.Add(300 * time.Millisecond)
	done(nil)

	done = tracker.Track("discover")
	now = now.Add(100 * time.Millisecond)
	done(nil)

	summary := tracker.Summary()
	if summary.TotalOperations != 2 {
		t.Fatalf("unexpected operation count %d", summary.TotalOperations)
	}
	if summary.TotalDuration != 400*time.Millisecond || summary.AverageDuration != 200*time.Millisecond {
		t.Fatalf("unexpected totals %s / %s", summary.TotalDuration, summary.AverageDuration)
	}
	if diff := cmp.Diff([]string{"create", "discover"}, summary.Operations); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	tracker.Reset()
	if got := tracker.Summary(); got.TotalOperations != 0 || got.AverageDuration != 0 {
		t.Fatalf("reset should clear metrics: %+v", got)
	}
}

func TestNilTrackerIsNoop(t *testing.T) {
	var tracker *Tracker
	tracker.Start("x")
	tracker.Stop("x", nil)
	if got := tracker.Summary(); got.TotalOperations != 0 {
		t.Fatalf("nil tracker should report nothing")
	}
}

func TestHeapAllocReadsLiveHeap(t *testing.T) {
	if heapAlloc() == 0 {
		t.Fatalf("live heap size should be reported")
	}
}
