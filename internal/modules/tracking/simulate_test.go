package tracking

import (
	"context"
	"errors"
	"math"
	"testing"

	"mboga/internal/types"
)

var (
	trmHub   = types.Point{Lat: -1.2186, Lng: 36.8933}
	kasarani = types.Point{Lat: -1.2250, Lng: 36.9000}
)

func TestRiderPosition_Endpoints(t *testing.T) {
	if got := RiderPosition(StageReceived, trmHub, kasarani); got != trmHub {
		t.Errorf("stage 1 position = %v, want origin %v", got, trmHub)
	}
	if got := RiderPosition(StagePlaced, trmHub, kasarani); got != trmHub {
		t.Errorf("stage 0 position = %v, want origin %v", got, trmHub)
	}
	if got := RiderPosition(StageNearYou, trmHub, kasarani); got != kasarani {
		t.Errorf("stage 4 position = %v, want destination %v", got, kasarani)
	}
}

func TestRiderPosition_Interpolates(t *testing.T) {
	for _, stage := range []Stage{StagePreparing, StageOnTheWay} {
		got := RiderPosition(stage, trmHub, kasarani)
		f := float64(stage-1) / 3
		wantLat := trmHub.Lat + f*(kasarani.Lat-trmHub.Lat)
		wantLng := trmHub.Lng + f*(kasarani.Lng-trmHub.Lng)
		if math.Abs(got.Lat-wantLat) > 1e-12 || math.Abs(got.Lng-wantLng) > 1e-12 {
			t.Errorf("stage %d position = %v, want (%f, %f)", stage, got, wantLat, wantLng)
		}
	}
}

func TestDestinationFor_Deterministic(t *testing.T) {
	first := DestinationFor(1234, trmHub)
	for i := 0; i < 5; i++ {
		if got := DestinationFor(1234, trmHub); got != first {
			t.Fatalf("destination not stable: %v vs %v", got, first)
		}
	}
}

func TestDestinationFor_OffsetFormula(t *testing.T) {
	got := DestinationFor(7, trmHub)
	wantLat := trmHub.Lat + float64(7%10)*0.005 - 0.025
	wantLng := trmHub.Lng + float64((7*7)%10)*0.005 - 0.025
	if math.Abs(got.Lat-wantLat) > 1e-12 || math.Abs(got.Lng-wantLng) > 1e-12 {
		t.Errorf("DestinationFor(7) = %v, want (%f, %f)", got, wantLat, wantLng)
	}
}

func TestDestinationFor_DiffersByOrder(t *testing.T) {
	a := DestinationFor(1, trmHub)
	b := DestinationFor(2, trmHub)
	if a == b {
		t.Error("expected different destinations for different order ids")
	}
}

type stubPlanner struct {
	points []types.Point
	err    error
}

func (s *stubPlanner) RoutePoints(_ context.Context, _, _ types.Point) ([]types.Point, error) {
	return s.points, s.err
}

func TestPathFor_FallsBackToStraightLine(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		planner RoutePlanner
	}{
		{"nil planner", nil},
		{"planner error", &stubPlanner{err: errors.New("routing down")}},
		{"empty result", &stubPlanner{points: nil}},
		{"single point", &stubPlanner{points: []types.Point{trmHub}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := PathFor(ctx, tc.planner, trmHub, kasarani)
			if len(path) != 2 || path[0] != trmHub || path[1] != kasarani {
				t.Errorf("path = %v, want straight [origin destination]", path)
			}
		})
	}
}

func TestPathFor_UsesPlannedRoute(t *testing.T) {
	mid := types.Point{Lat: -1.2200, Lng: 36.8960}
	planned := []types.Point{trmHub, mid, kasarani}
	path := PathFor(context.Background(), &stubPlanner{points: planned}, trmHub, kasarani)
	if len(path) != 3 || path[1] != mid {
		t.Errorf("path = %v, want planned route", path)
	}
}

func TestPositionAlong_Endpoints(t *testing.T) {
	path := []types.Point{trmHub, kasarani}
	if got := PositionAlong(path, 0); got != trmHub {
		t.Errorf("f=0 position = %v, want start", got)
	}
	if got := PositionAlong(path, 1); got != kasarani {
		t.Errorf("f=1 position = %v, want end", got)
	}
	if got := PositionAlong(path, -0.5); got != trmHub {
		t.Errorf("f<0 position = %v, want start", got)
	}
	if got := PositionAlong(path, 2); got != kasarani {
		t.Errorf("f>1 position = %v, want end", got)
	}
}

func TestPositionAlong_Midpoint(t *testing.T) {
	path := []types.Point{trmHub, kasarani}
	got := PositionAlong(path, 0.5)
	wantLat := (trmHub.Lat + kasarani.Lat) / 2
	wantLng := (trmHub.Lng + kasarani.Lng) / 2
	if math.Abs(got.Lat-wantLat) > 1e-6 || math.Abs(got.Lng-wantLng) > 1e-6 {
		t.Errorf("midpoint = %v, want (%f, %f)", got, wantLat, wantLng)
	}
}

func TestPositionAlong_DegenerateInputs(t *testing.T) {
	if got := PositionAlong(nil, 0.5); got != (types.Point{}) {
		t.Errorf("empty path position = %v", got)
	}
	if got := PositionAlong([]types.Point{trmHub}, 0.5); got != trmHub {
		t.Errorf("single-point path position = %v", got)
	}
	// Zero-length path (all points identical) must not divide by zero.
	if got := PositionAlong([]types.Point{trmHub, trmHub}, 0.5); got != trmHub {
		t.Errorf("zero-length path position = %v", got)
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// TRM to Westlands is roughly 11km across Nairobi.
	westlands := types.Point{Lat: -1.2634, Lng: 36.8025}
	got := haversineKm(trmHub, westlands)
	if got < 9 || got > 13 {
		t.Errorf("haversineKm = %f, want ~11", got)
	}
	if d := haversineKm(trmHub, trmHub); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}
