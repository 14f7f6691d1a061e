// README: Rider service: position reports via the order module, latest/nearby reads.
package rider

import (
	"context"

	"mboga/internal/modules/order"
)

// Orders is the slice of the order module the rider flow needs: applying a
// position report to the order being delivered. Satisfied by *order.Service.
type Orders interface {
	UpdateRiderLocation(ctx context.Context, orderID int64, riderID string, lat, lng float64) (*order.Order, error)
}

// Locations is the store surface the service reads from.
type Locations interface {
	Latest(ctx context.Context, riderID string) (Location, error)
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyRider, error)
}

type Service struct {
	orders    Orders
	locations Locations
}

func NewService(orders Orders, locations Locations) *Service {
	return &Service{orders: orders, locations: locations}
}

// ReportCommand is one position report from a rider working an order.
type ReportCommand struct {
	OrderID int64
	RiderID string
	Lat     float64
	Lng     float64
}

// Report applies a rider position to the order. Validation, persistence and
// the live broadcast all happen inside the order module; the order module
// also writes the per-rider record through the store.
func (s *Service) Report(ctx context.Context, cmd ReportCommand) (*order.Order, error) {
	return s.orders.UpdateRiderLocation(ctx, cmd.OrderID, cmd.RiderID, cmd.Lat, cmd.Lng)
}

// Latest returns the rider's last known position.
func (s *Service) Latest(ctx context.Context, riderID string) (Location, error) {
	if riderID == "" {
		return Location{}, ErrNoLocation
	}
	return s.locations.Latest(ctx, riderID)
}

// Nearby lists riders within radiusKm of the origin, closest first.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyRider, error) {
	return s.locations.Nearby(ctx, lat, lng, radiusKm, limit)
}
