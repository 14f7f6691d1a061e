// README: Pure loyalty accrual math: base points, daily streak, every-5th-day bonus.
package loyalty

import (
	"math"
	"time"
)

// centsPerPoint: one point per KSh 50 of order total, rounded to nearest.
const centsPerPoint = 5000

// streakBonusEvery awards bonusPoints each time the streak hits a multiple
// of this length.
const (
	streakBonusEvery = 5
	bonusPoints      = 20
)

// Breakdown explains one accrual.
type Breakdown struct {
	Base   int64
	Bonus  int64
	Streak int
}

// Accrue applies one completed order to the account and returns the updated
// account with a breakdown. Pure: no clock, no storage.
//
// Streak rules: the first ever order starts a streak of 1; an order on the
// day after the last one extends it; a gap of more than a day resets it to
// 1; a second order on the same day leaves it unchanged. The bonus depends
// only on where the streak lands, so a same-day repeat while the streak
// sits at a multiple of 5 earns it again.
func Accrue(acc Account, totalCents int64, today time.Time) (Account, Breakdown) {
	day := midnightUTC(today)
	base := int64(math.Round(float64(totalCents) / centsPerPoint))

	streak := acc.Streak
	if acc.LastOrderDate == nil {
		streak = 1
	} else if gap := daysBetween(*acc.LastOrderDate, day); gap == 1 {
		streak++
	} else if gap > 1 {
		streak = 1
	}
	// gap <= 0 (same day, or a report dated in the past) leaves the streak
	// untouched.

	var bonus int64
	if streak > 0 && streak%streakBonusEvery == 0 {
		bonus = bonusPoints
	}

	acc.Points += base + bonus
	acc.Streak = streak
	if acc.LastOrderDate == nil || day.After(*acc.LastOrderDate) {
		acc.LastOrderDate = &day
	}

	return acc, Breakdown{Base: base, Bonus: bonus, Streak: streak}
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(midnightUTC(to).Sub(midnightUTC(from)).Hours() / 24)
}
