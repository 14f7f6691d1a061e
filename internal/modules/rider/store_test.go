package rider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(mock, nil), mock
}

func TestStoreInitSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rider_locations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestStoreRecordLocation(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO rider_locations").
		WithArgs("rider-9", -1.25, 36.85, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.RecordLocation(context.Background(), "rider-9", -1.25, 36.85, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO rider_locations").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("upsert"))
	if err := store.RecordLocation(context.Background(), "rider-9", -1.25, 36.85, now); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestStoreLatestFallsBackToPostgres(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT lat, lng, updated_at FROM rider_locations").
		WithArgs("rider-9").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lng", "updated_at"}).
			AddRow(-1.25, 36.85, now))
	loc, err := store.Latest(context.Background(), "rider-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.RiderID != "rider-9" || loc.Lat != -1.25 || loc.Lng != 36.85 {
		t.Fatalf("unexpected location: %+v", loc)
	}

	mock.ExpectQuery("SELECT lat, lng, updated_at FROM rider_locations").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	if _, err := store.Latest(context.Background(), "ghost"); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("expected no location, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestStoreNearbyWithoutRedis(t *testing.T) {
	store, _ := newMockStore(t)
	riders, err := store.Nearby(context.Background(), -1.29, 36.82, 5, 10)
	if err != nil || riders != nil {
		t.Fatalf("expected empty result without redis, got %v err=%v", riders, err)
	}
}

func TestLocationFromHash(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	fields := map[string]string{
		"lat":        "-1.25",
		"lng":        "36.85",
		"updated_at": now.Format(time.RFC3339Nano),
	}
	loc, ok := locationFromHash("rider-9", fields)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if loc.Lat != -1.25 || loc.Lng != 36.85 || !loc.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected location: %+v", loc)
	}

	broken := []map[string]string{
		{"lat": "x", "lng": "36.85", "updated_at": now.Format(time.RFC3339Nano)},
		{"lat": "-1.25", "lng": "x", "updated_at": now.Format(time.RFC3339Nano)},
		{"lat": "-1.25", "lng": "36.85", "updated_at": "yesterday"},
		{},
	}
	for _, fields := range broken {
		if _, ok := locationFromHash("rider-9", fields); ok {
			t.Fatalf("expected parse to fail for %v", fields)
		}
	}
}
