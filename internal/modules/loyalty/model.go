// README: Loyalty account and summary records.
package loyalty

import "time"

// Account is one customer's loyalty balance. LastOrderDate is a calendar
// date (midnight UTC); the streak counts consecutive such dates.
type Account struct {
	Email         string
	Points        int64
	Streak        int
	LastOrderDate *time.Time
	UpdatedAt     time.Time
}

// Summary is the customer-facing balance.
type Summary struct {
	Points        int64      `json:"points"`
	Streak        int        `json:"streak"`
	LastOrderDate *time.Time `json:"lastOrderDate"`
	NextRewardAt  int64      `json:"nextRewardAt"`
	ToNextReward  int64      `json:"toNextReward"`
}

// nextRewardAt is the fixed points milestone surfaced to customers.
const nextRewardAt = 100
