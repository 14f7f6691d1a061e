package tracking

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"mboga/internal/types"
)

func testTracker(createdAt time.Time) *Tracker {
	return NewTracker(TrackerConfig{
		OrderID:         42,
		CreatedAt:       createdAt,
		Origin:          trmHub,
		FreshnessWindow: time.Minute,
	})
}

func TestTracker_HeuristicBeforeAnyEvent(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := testTracker(createdAt)

	v := tr.View(createdAt.Add(9 * time.Minute))
	if v.Freshness != FreshnessHeuristic {
		t.Fatalf("freshness = %v, want heuristic", v.Freshness)
	}
	if v.Stage != StageOnTheWay {
		t.Errorf("stage = %d, want %d", v.Stage, StageOnTheWay)
	}
	want := RiderPosition(StageOnTheWay, trmHub, tr.Destination())
	if math.Abs(v.Position.Lat-want.Lat) > 1e-9 || math.Abs(v.Position.Lng-want.Lng) > 1e-9 {
		t.Errorf("position = %v, want %v", v.Position, want)
	}
}

func TestTracker_LiveEventTakesPrecedence(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := testTracker(createdAt)

	lat, lng := -1.2222, 36.8888
	now := createdAt.Add(2 * time.Minute)
	tr.Apply(Event{Type: EventLocation, RiderLat: &lat, RiderLng: &lng, Timestamp: now})

	v := tr.View(now.Add(10 * time.Second))
	if v.Freshness != FreshnessLive {
		t.Fatalf("freshness = %v, want live", v.Freshness)
	}
	if v.Position.Lat != lat || v.Position.Lng != lng {
		t.Errorf("position = %v, want pushed coordinate", v.Position)
	}
}

func TestTracker_FallsBackWhenEventGoesStale(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := testTracker(createdAt)

	tr.Apply(Event{Type: EventStatus, Status: "preparing", Timestamp: createdAt.Add(time.Minute)})

	// Inside the window: live.
	if f := tr.Freshness(createdAt.Add(90 * time.Second)); f != FreshnessLive {
		t.Errorf("freshness inside window = %v, want live", f)
	}
	// Outside the window: back to the heuristic.
	v := tr.View(createdAt.Add(20 * time.Minute))
	if v.Freshness != FreshnessHeuristic {
		t.Errorf("freshness after window = %v, want heuristic", v.Freshness)
	}
	if v.Stage != StageNearYou {
		t.Errorf("stage = %d, want %d from elapsed time", v.Stage, StageNearYou)
	}
}

func TestTracker_StatusMappedThroughStageFor(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(TrackerConfig{
		OrderID:         1,
		CreatedAt:       createdAt,
		Origin:          trmHub,
		FreshnessWindow: time.Minute,
		StageFor: func(status string) (Stage, bool) {
			if status == "dispatched" {
				return StageOnTheWay, true
			}
			return 0, false
		},
	})

	now := createdAt.Add(time.Minute)
	tr.Apply(Event{Type: EventStatus, Status: "dispatched", Timestamp: now})

	v := tr.View(now.Add(time.Second))
	if v.Status != "dispatched" {
		t.Errorf("status = %q", v.Status)
	}
	if v.Stage != StageOnTheWay {
		t.Errorf("stage = %d, want mapped %d", v.Stage, StageOnTheWay)
	}
	// No pushed coordinate yet: position interpolated from the mapped stage.
	want := PositionAlong([]types.Point{trmHub, tr.Destination()}, Fraction(StageOnTheWay))
	if v.Position != want {
		t.Errorf("position = %v, want %v", v.Position, want)
	}
}

func TestTracker_HeartbeatsAreNotDomainEvents(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := testTracker(createdAt)

	tr.Apply(Event{Type: EventHeartbeat, Timestamp: createdAt.Add(time.Minute)})
	if f := tr.Freshness(createdAt.Add(61 * time.Second)); f != FreshnessHeuristic {
		t.Errorf("freshness after heartbeat = %v, want heuristic (heartbeats are inert)", f)
	}
}

func TestTracker_DestinationStableAcrossInstances(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	// Two separate renders minutes apart must compute the same destination.
	a := testTracker(createdAt).Destination()
	b := testTracker(createdAt).Destination()
	if a != b {
		t.Errorf("destinations differ across instances: %v vs %v", a, b)
	}
}

func TestTracker_RunStopsOnCancel(t *testing.T) {
	tr := testTracker(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	frames := 0

	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.Run(ctx, 5*time.Millisecond, func(View) {
			mu.Lock()
			frames++
			mu.Unlock()
		})
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	mu.Lock()
	got := frames
	mu.Unlock()
	if got < 1 {
		t.Errorf("expected at least the immediate frame, got %d", got)
	}
}
