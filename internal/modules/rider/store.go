// README: Rider location store: Redis GEO index with Postgres fallback.
package rider

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"mboga/internal/infra"
)

const (
	geoKey        = "mboga:riders:geo"
	lastKeyPrefix = "mboga:riders:last:"
)

// Store keeps rider positions in Redis (GEO set plus a per-rider hash for
// O(1) reads) with a Postgres snapshot as the durable fallback.
type Store struct {
	db  infra.DB
	rdb *redis.Client
}

func NewStore(db infra.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS rider_locations (
            rider_id TEXT PRIMARY KEY,
            lat DOUBLE PRECISION NOT NULL,
            lng DOUBLE PRECISION NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`)
	return err
}

// RecordLocation upserts the rider's position. Postgres is the source of
// truth; the Redis mirror is refreshed afterwards and its failure still
// fails the call so callers can decide how loudly to complain.
func (s *Store) RecordLocation(ctx context.Context, riderID string, lat, lng float64, at time.Time) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO rider_locations (rider_id, lat, lng, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (rider_id) DO UPDATE
        SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, updated_at = EXCLUDED.updated_at`,
		riderID, lat, lng, at,
	)
	if err != nil {
		return err
	}
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      riderID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}
	return s.rdb.HSet(ctx, lastKeyPrefix+riderID, map[string]interface{}{
		"lat":        strconv.FormatFloat(lat, 'f', -1, 64),
		"lng":        strconv.FormatFloat(lng, 'f', -1, 64),
		"updated_at": at.UTC().Format(time.RFC3339Nano),
	}).Err()
}

// Latest returns the rider's last known position, preferring the Redis hash
// and falling back to the Postgres snapshot.
func (s *Store) Latest(ctx context.Context, riderID string) (Location, error) {
	if s.rdb != nil {
		fields, err := s.rdb.HGetAll(ctx, lastKeyPrefix+riderID).Result()
		if err == nil && len(fields) > 0 {
			if loc, ok := locationFromHash(riderID, fields); ok {
				return loc, nil
			}
		}
	}

	var loc Location
	loc.RiderID = riderID
	err := s.db.QueryRow(ctx, `
        SELECT lat, lng, updated_at
        FROM rider_locations
        WHERE rider_id = $1`, riderID,
	).Scan(&loc.Lat, &loc.Lng, &loc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, ErrNoLocation
	}
	if err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Nearby returns riders within radiusKm of the origin, closest first. It
// needs the Redis GEO set; without Redis there is nothing to search.
func (s *Store) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyRider, error) {
	if s.rdb == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	locs, err := s.rdb.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	riders := make([]NearbyRider, 0, len(locs))
	for _, l := range locs {
		riders = append(riders, NearbyRider{
			RiderID:    l.Name,
			Lat:        l.Latitude,
			Lng:        l.Longitude,
			DistanceKm: l.Dist,
		})
	}
	return riders, nil
}

func locationFromHash(riderID string, fields map[string]string) (Location, bool) {
	lat, errLat := strconv.ParseFloat(fields["lat"], 64)
	lng, errLng := strconv.ParseFloat(fields["lng"], 64)
	at, errAt := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if errLat != nil || errLng != nil || errAt != nil {
		return Location{}, false
	}
	return Location{RiderID: riderID, Lat: lat, Lng: lng, UpdatedAt: at}, true
}
