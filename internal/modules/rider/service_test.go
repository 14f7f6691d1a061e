package rider

import (
	"context"
	"errors"
	"testing"
	"time"

	"mboga/internal/modules/order"
)

type fakeOrders struct {
	lastID    int64
	lastRider string
	lastLat   float64
	lastLng   float64
	err       error
}

func (f *fakeOrders) UpdateRiderLocation(_ context.Context, orderID int64, riderID string, lat, lng float64) (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastID = orderID
	f.lastRider = riderID
	f.lastLat = lat
	f.lastLng = lng
	return &order.Order{ID: orderID, RiderID: &riderID, RiderLat: &lat, RiderLng: &lng}, nil
}

type fakeLocations struct {
	latest Location
	err    error
	nearby []NearbyRider
}

func (f *fakeLocations) Latest(_ context.Context, riderID string) (Location, error) {
	if f.err != nil {
		return Location{}, f.err
	}
	return f.latest, nil
}

func (f *fakeLocations) Nearby(_ context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyRider, error) {
	return f.nearby, f.err
}

func TestServiceReport(t *testing.T) {
	orders := &fakeOrders{}
	svc := NewService(orders, &fakeLocations{})

	o, err := svc.Report(context.Background(), ReportCommand{
		OrderID: 7, RiderID: "rider-9", Lat: -1.25, Lng: 36.85,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID != 7 || orders.lastRider != "rider-9" || orders.lastLat != -1.25 {
		t.Fatalf("report not forwarded: order=%+v orders=%+v", o, orders)
	}

	orders.err = order.ErrNotFound
	if _, err := svc.Report(context.Background(), ReportCommand{OrderID: 999, RiderID: "rider-9"}); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceLatest(t *testing.T) {
	locs := &fakeLocations{latest: Location{
		RiderID: "rider-9", Lat: -1.25, Lng: 36.85, UpdatedAt: time.Now(),
	}}
	svc := NewService(&fakeOrders{}, locs)

	loc, err := svc.Latest(context.Background(), "rider-9")
	if err != nil || loc.RiderID != "rider-9" {
		t.Fatalf("unexpected result: %+v err=%v", loc, err)
	}

	if _, err := svc.Latest(context.Background(), ""); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("expected no location for empty id, got %v", err)
	}
}

func TestServiceNearby(t *testing.T) {
	locs := &fakeLocations{nearby: []NearbyRider{
		{RiderID: "rider-1", DistanceKm: 0.4},
		{RiderID: "rider-2", DistanceKm: 1.1},
	}}
	svc := NewService(&fakeOrders{}, locs)

	riders, err := svc.Nearby(context.Background(), -1.29, 36.82, 5, 10)
	if err != nil || len(riders) != 2 || riders[0].RiderID != "rider-1" {
		t.Fatalf("unexpected result: %v err=%v", riders, err)
	}
}
