// README: Loyalty service; accrues on delivery and serves the points summary.
package loyalty

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Accounts is the store surface the service needs. *Store satisfies it.
type Accounts interface {
	Get(ctx context.Context, email string) (Account, error)
	Save(ctx context.Context, acc Account) error
}

type Service struct {
	store  Accounts
	logger *zap.Logger

	// Serializes the read-modify-write of concurrent accruals for the same
	// customer. Accrual traffic is one call per delivered order, so a single
	// lock is plenty.
	mu sync.Mutex
}

func NewService(store Accounts, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// OrderCompleted accrues points and advances the streak for one delivered
// order. Called by the order module on the first transition into delivered.
func (s *Service) OrderCompleted(ctx context.Context, ownerEmail string, total int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.store.Get(ctx, ownerEmail)
	if err != nil {
		return err
	}
	acc, br := Accrue(acc, total, at)
	acc.UpdatedAt = at
	if err := s.store.Save(ctx, acc); err != nil {
		return err
	}

	s.logger.Info("loyalty accrued",
		zap.String("email", ownerEmail),
		zap.Int64("base", br.Base),
		zap.Int64("bonus", br.Bonus),
		zap.Int("streak", br.Streak))
	return nil
}

// Summary returns the customer-facing balance.
func (s *Service) Summary(ctx context.Context, email string) (Summary, error) {
	acc, err := s.store.Get(ctx, email)
	if err != nil {
		return Summary{}, err
	}
	toNext := nextRewardAt - acc.Points
	if toNext < 0 {
		toNext = 0
	}
	return Summary{
		Points:        acc.Points,
		Streak:        acc.Streak,
		LastOrderDate: acc.LastOrderDate,
		NextRewardAt:  nextRewardAt,
		ToNextReward:  toNext,
	}, nil
}
