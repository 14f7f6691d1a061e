// README: Order persistence on Postgres, including the tracking snapshot read.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"mboga/internal/infra"
	"mboga/internal/modules/tracking"
)

// Store persists orders in PostgreSQL.
type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

// InitSchema creates the orders table if missing.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            owner_email TEXT NOT NULL,
            items JSONB NOT NULL DEFAULT '[]',
            delivery_method TEXT NOT NULL DEFAULT 'delivery',
            payment_method TEXT NOT NULL DEFAULT 'cod',
            subtotal BIGINT NOT NULL DEFAULT 0,
            discounts BIGINT NOT NULL DEFAULT 0,
            delivery_fee BIGINT NOT NULL DEFAULT 0,
            total BIGINT NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            rider_id TEXT,
            rider_lat DOUBLE PRECISION,
            rider_lng DOUBLE PRECISION,
            hub_id TEXT NOT NULL,
            delivery_address TEXT NOT NULL DEFAULT '',
            last_status_update TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders (owner_email, created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const orderColumns = `id, owner_email, items, delivery_method, payment_method,
               subtotal, discounts, delivery_fee, total,
               status, rider_id, rider_lat, rider_lng,
               hub_id, delivery_address, last_status_update, created_at`

func (s *Store) Create(ctx context.Context, o *Order) (int64, error) {
	row := s.db.QueryRow(ctx, `
        INSERT INTO orders (
            owner_email, items, delivery_method, payment_method,
            subtotal, discounts, delivery_fee, total,
            status, hub_id, delivery_address, last_status_update, created_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8,
            $9, $10, $11, $12, $13
        ) RETURNING id`,
		o.OwnerEmail,
		o.Items,
		o.DeliveryMethod,
		o.PaymentMethod,
		o.Subtotal, o.Discounts, o.DeliveryFee, o.Total,
		string(o.Status),
		o.HubID,
		o.DeliveryAddress,
		o.LastStatusUpdate,
		o.CreatedAt,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE id = $1`, id,
	)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OwnerEmail, &o.Items, &o.DeliveryMethod, &o.PaymentMethod,
		&o.Subtotal, &o.Discounts, &o.DeliveryFee, &o.Total,
		&o.Status, &o.RiderID, &o.RiderLat, &o.RiderLng,
		&o.HubID, &o.DeliveryAddress, &o.LastStatusUpdate, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus applies a status (and optional rider fields) in a single
// statement, stamping last_status_update. Rider fields are only overwritten
// when supplied.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status, riderID *string, riderLat, riderLng *float64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET status = $1,
            rider_id = COALESCE($2, rider_id),
            rider_lat = COALESCE($3, rider_lat),
            rider_lng = COALESCE($4, rider_lng),
            last_status_update = $5
        WHERE id = $6`,
		string(status), riderID, riderLat, riderLng, at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRiderLocation applies a reported rider coordinate to the order.
func (s *Store) UpdateRiderLocation(ctx context.Context, id int64, riderID string, lat, lng float64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET rider_id = $1,
            rider_lat = $2,
            rider_lng = $3,
            last_status_update = $4
        WHERE id = $5`,
		riderID, lat, lng, at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's most recent orders, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerEmail string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE owner_email = $1
        ORDER BY created_at DESC
        LIMIT $2`, ownerEmail, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID, &o.OwnerEmail, &o.Items, &o.DeliveryMethod, &o.PaymentMethod,
			&o.Subtotal, &o.Discounts, &o.DeliveryFee, &o.Total,
			&o.Status, &o.RiderID, &o.RiderLat, &o.RiderLng,
			&o.HubID, &o.DeliveryAddress, &o.LastStatusUpdate, &o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// Snapshot serves the broadcast hub: current tracking-relevant state plus
// the owner for the subscription authorization check.
func (s *Store) Snapshot(ctx context.Context, id int64) (tracking.OrderSnapshot, error) {
	row := s.db.QueryRow(ctx, `
        SELECT owner_email, status, rider_id, rider_lat, rider_lng, last_status_update, created_at
        FROM orders
        WHERE id = $1`, id,
	)
	var snap tracking.OrderSnapshot
	err := row.Scan(&snap.Owner, &snap.Status, &snap.RiderID, &snap.RiderLat, &snap.RiderLng, &snap.UpdatedAt, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracking.OrderSnapshot{}, ErrNotFound
	}
	if err != nil {
		return tracking.OrderSnapshot{}, err
	}
	return snap, nil
}
