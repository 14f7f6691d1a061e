// README: Simulated rider position: deterministic destination offset and path interpolation.
package tracking

import (
	"context"
	"math"

	"mboga/internal/types"
)

// DestinationFor derives a simulated destination from the origin hub and a
// small offset seeded by the order id, so the same order always renders the
// same destination across reloads.
func DestinationFor(orderID int64, origin types.Point) types.Point {
	offsetLat := float64(orderID%10)*0.005 - 0.025
	offsetLng := float64((orderID*7)%10)*0.005 - 0.025
	return types.Point{Lat: origin.Lat + offsetLat, Lng: origin.Lng + offsetLng}
}

// Fraction maps a stage to the fraction of the route covered: the rider
// waits at the hub through stage 1 and arrives at stage 4.
func Fraction(stage Stage) float64 {
	if stage <= StageReceived {
		return 0
	}
	if stage >= StageNearYou {
		return 1
	}
	return float64(stage-StageReceived) / 3
}

// RiderPosition interpolates the simulated rider coordinate on the straight
// segment between origin and destination.
func RiderPosition(stage Stage, origin, destination types.Point) types.Point {
	switch {
	case stage <= StageReceived:
		return origin
	case stage >= StageNearYou:
		return destination
	}
	f := Fraction(stage)
	return types.Point{
		Lat: origin.Lat + f*(destination.Lat-origin.Lat),
		Lng: origin.Lng + f*(destination.Lng-origin.Lng),
	}
}

// RoutePlanner asks an external routing service for a road-following path.
// The lookup is best-effort; any failure falls back to a straight line.
type RoutePlanner interface {
	RoutePoints(ctx context.Context, origin, destination types.Point) ([]types.Point, error)
}

// PathFor returns the path the simulated rider follows. planner may be nil.
func PathFor(ctx context.Context, planner RoutePlanner, origin, destination types.Point) []types.Point {
	straight := []types.Point{origin, destination}
	if planner == nil {
		return straight
	}
	points, err := planner.RoutePoints(ctx, origin, destination)
	if err != nil || len(points) < 2 {
		return straight
	}
	return points
}

// PositionAlong walks the path by fraction f of its cumulative great-circle
// length. f <= 0 pins the start, f >= 1 the end.
func PositionAlong(path []types.Point, f float64) types.Point {
	if len(path) == 0 {
		return types.Point{}
	}
	if f <= 0 || len(path) == 1 {
		return path[0]
	}
	if f >= 1 {
		return path[len(path)-1]
	}

	total := 0.0
	legs := make([]float64, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		legs[i] = haversineKm(path[i], path[i+1])
		total += legs[i]
	}
	if total == 0 {
		return path[0]
	}

	target := f * total
	covered := 0.0
	for i, leg := range legs {
		if covered+leg >= target {
			var lf float64
			if leg > 0 {
				lf = (target - covered) / leg
			}
			return types.Point{
				Lat: path[i].Lat + lf*(path[i+1].Lat-path[i].Lat),
				Lng: path[i].Lng + lf*(path[i+1].Lng-path[i].Lng),
			}
		}
		covered += leg
	}
	return path[len(path)-1]
}

const earthRadiusKm = 6371.0

func haversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
