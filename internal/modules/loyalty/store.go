// README: Loyalty account persistence (Postgres upsert per customer).
package loyalty

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mboga/internal/infra"
)

// Store persists loyalty accounts in PostgreSQL.
type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS loyalty_accounts (
            email TEXT PRIMARY KEY,
            points BIGINT NOT NULL DEFAULT 0,
            streak INT NOT NULL DEFAULT 0,
            last_order_date DATE,
            updated_at TIMESTAMPTZ NOT NULL
        )`)
	return err
}

// Get returns the account, or a zero-valued account for an email that has
// never accrued.
func (s *Store) Get(ctx context.Context, email string) (Account, error) {
	acc := Account{Email: email}
	err := s.db.QueryRow(ctx, `
        SELECT points, streak, last_order_date, updated_at
        FROM loyalty_accounts
        WHERE email = $1`, email,
	).Scan(&acc.Points, &acc.Streak, &acc.LastOrderDate, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{Email: email}, nil
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Save upserts the account.
func (s *Store) Save(ctx context.Context, acc Account) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO loyalty_accounts (email, points, streak, last_order_date, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO UPDATE
        SET points = EXCLUDED.points,
            streak = EXCLUDED.streak,
            last_order_date = EXCLUDED.last_order_date,
            updated_at = EXCLUDED.updated_at`,
		acc.Email, acc.Points, acc.Streak, acc.LastOrderDate, acc.UpdatedAt,
	)
	return err
}
