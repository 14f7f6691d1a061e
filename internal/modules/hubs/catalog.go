// README: Static catalog of fulfilment hubs with haversine nearest-hub lookup.
package hubs

import (
	"errors"
	"math"
)

// Hub is one fulfilment hub. Stock counts are indicative, not reservations.
type Hub struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Areas        []string       `json:"areas"`
	EtaMinutes   int            `json:"etaMinutes"`
	Lat          float64        `json:"lat"`
	Lng          float64        `json:"lng"`
	WalkInOffers []string       `json:"walkInOffers"`
	Stock        map[string]int `json:"stock"`
}

var ErrUnknownHub = errors.New("unknown hub")

// Catalog holds the hub set. Immutable after construction.
type Catalog struct {
	hubs []Hub
	byID map[string]int
}

func NewCatalog(hubs []Hub) *Catalog {
	c := &Catalog{hubs: hubs, byID: make(map[string]int, len(hubs))}
	for i, h := range hubs {
		c.byID[h.ID] = i
	}
	return c
}

// DefaultCatalog seeds the Nairobi hub network.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Hub{
		{
			ID:         "trm",
			Name:       "TRM Hub",
			Areas:      []string{"Thika Road", "Kasarani", "Roysambu"},
			EtaMinutes: 8,
			Lat:        -1.2186,
			Lng:        36.8933,
			WalkInOffers: []string{
				"Buy 2 loaves, get 1 free",
				"Flash greens at 15% off",
			},
			Stock: map[string]int{
				"sukuma":   48,
				"tomatoes": 36,
				"onions":   22,
				"eggs":     14,
				"milk":     60,
			},
		},
		{
			ID:         "westlands",
			Name:       "Westlands Hub",
			Areas:      []string{"Parklands", "Lavington", "Riverside"},
			EtaMinutes: 12,
			Lat:        -1.2634,
			Lng:        36.8025,
			WalkInOffers: []string{
				"Morning milk bundle · save KSh 40",
			},
			Stock: map[string]int{
				"sukuma":   30,
				"tomatoes": 28,
				"onions":   18,
				"eggs":     20,
				"milk":     40,
			},
		},
		{
			ID:         "cbd",
			Name:       "CBD Hub",
			Areas:      []string{"Upper Hill", "Ngara", "South B"},
			EtaMinutes: 10,
			Lat:        -1.2921,
			Lng:        36.8219,
			WalkInOffers: []string{
				"Lunch-time veggie trays at 10% off",
			},
			Stock: map[string]int{
				"sukuma":   40,
				"tomatoes": 32,
				"onions":   25,
				"eggs":     18,
				"milk":     55,
			},
		},
	})
}

// All returns the hubs in catalog order.
func (c *Catalog) All() []Hub {
	out := make([]Hub, len(c.hubs))
	copy(out, c.hubs)
	return out
}

// Get looks a hub up by id.
func (c *Catalog) Get(id string) (Hub, error) {
	i, ok := c.byID[id]
	if !ok {
		return Hub{}, ErrUnknownHub
	}
	return c.hubs[i], nil
}

// Known reports whether id names a hub in the catalog.
func (c *Catalog) Known(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Nearest returns the hub closest to the given point.
func (c *Catalog) Nearest(lat, lng float64) (Hub, error) {
	if len(c.hubs) == 0 {
		return Hub{}, ErrUnknownHub
	}
	best := c.hubs[0]
	bestDist := haversineKm(lat, lng, best.Lat, best.Lng)
	for _, h := range c.hubs[1:] {
		if d := haversineKm(lat, lng, h.Lat, h.Lng); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best, nil
}

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
