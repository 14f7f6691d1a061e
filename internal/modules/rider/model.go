// README: Rider location records.
package rider

import (
	"errors"
	"time"
)

// Location is a rider's last reported position.
type Location struct {
	RiderID   string    `json:"riderId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NearbyRider is a rider with its distance from a queried origin.
type NearbyRider struct {
	RiderID    string  `json:"riderId"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distanceKm"`
}

// ErrNoLocation means the rider has never reported a position.
var ErrNoLocation = errors.New("rider location unknown")
