// README: Common value objects (coordinates, money) used across modules.
package types

import "math"

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Money is an amount in KSh cents. The API speaks whole KSh as floats;
// storage and arithmetic stay in integer cents.
type Money int64

// FromKSh converts a KSh amount from the wire into cents, rounding to the
// nearest cent.
func FromKSh(v float64) Money {
	return Money(math.Round(v * 100))
}

// KSh returns the amount in whole KSh for the wire.
func (m Money) KSh() float64 {
	return float64(m) / 100
}
