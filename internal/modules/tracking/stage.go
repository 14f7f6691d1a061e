// README: Elapsed-time 0-4 progress stage with labels and descriptions.
package tracking

import "time"

// Stage is the 0-4 progress indicator derived purely from elapsed time
// since order placement. It is the fallback renderer used before any push
// event arrives and is independent of the authoritative status field.
type Stage int

const (
	StagePlaced    Stage = 0
	StageReceived  Stage = 1
	StagePreparing Stage = 2
	StageOnTheWay  Stage = 3
	StageNearYou   Stage = 4
)

// Elapsed-minute thresholds for each stage, inclusive on the lower side.
const (
	preparingAfterMin = 3
	onTheWayAfterMin  = 8
	nearYouAfterMin   = 15
)

// StageOf derives the progress stage from wall-clock time alone. It is
// reproducible bit-for-bit from createdAt, which lets a view render the
// same progress across reloads with no server contact.
func StageOf(now, createdAt time.Time) Stage {
	minutes := int(now.Sub(createdAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	stage := StageReceived
	if minutes >= preparingAfterMin {
		stage = StagePreparing
	}
	if minutes >= onTheWayAfterMin {
		stage = StageOnTheWay
	}
	if minutes >= nearYouAfterMin {
		stage = StageNearYou
	}
	return stage
}

// Label returns the short progress caption for a stage.
func (s Stage) Label() string {
	switch s {
	case StagePlaced, StageReceived:
		return "Order received"
	case StagePreparing:
		return "Being prepared"
	case StageOnTheWay:
		return "Order dispatched"
	case StageNearYou:
		return "Almost there"
	}
	return "Order received"
}

// Description returns the tracking-card sentence for a stage.
func (s Stage) Description() string {
	switch s {
	case StagePlaced, StageReceived:
		return "We've received your order at the nearest hub."
	case StagePreparing:
		return "Your order is being picked & packed."
	case StageOnTheWay:
		return "Your rider has left the hub and is on the way."
	case StageNearYou:
		return "Your rider is near your place. Tafadhali keep your phone close."
	}
	return "We've received your order at the nearest hub."
}

// Progress is the 0..1 bar fill fraction for a stage.
func (s Stage) Progress() float64 {
	return float64(s) / 4
}
