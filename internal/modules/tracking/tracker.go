// README: Tracking-view state machine: heuristic fallback vs live-event rendering.
package tracking

import (
	"context"
	"sync"
	"time"

	"mboga/internal/types"
)

// Freshness names the tracking view's data source state. The view starts
// with no data, renders from the elapsed-time heuristic, and switches to
// live once a push event arrives; it drops back to the heuristic when the
// last live event ages out of the freshness window.
type Freshness int

const (
	FreshnessNone Freshness = iota
	FreshnessHeuristic
	FreshnessLive
)

func (f Freshness) String() string {
	switch f {
	case FreshnessLive:
		return "live"
	case FreshnessHeuristic:
		return "heuristic"
	}
	return "none"
}

// View is one rendered frame of the tracking screen.
type View struct {
	OrderID   int64
	Freshness Freshness
	// Status is the last pushed status, empty while rendering heuristically.
	Status   string
	Stage    Stage
	Label    string
	Desc     string
	Position types.Point
	Progress float64
}

// TrackerConfig configures a tracking view model for one order.
type TrackerConfig struct {
	OrderID   int64
	CreatedAt time.Time
	Origin    types.Point
	// Destination is optional; derived from the order id when zero.
	Destination *types.Point
	// Path is the simulated route; defaults to the straight origin->dest
	// segment. Callers with a road planner pass PathFor's result.
	Path []types.Point
	// FreshnessWindow bounds how long a live event keeps precedence over
	// the heuristic.
	FreshnessWindow time.Duration
	// StageFor maps a pushed status to a progress stage. The order module
	// supplies the exhaustive mapping; the default keeps the last
	// heuristic stage.
	StageFor func(status string) (Stage, bool)
}

const defaultFreshnessWindow = 60 * time.Second

// Tracker holds the client-side state of one tracking view: it consumes
// hub events and falls back to the stage heuristic when pushes go quiet.
// Safe for concurrent Apply/View calls.
type Tracker struct {
	orderID   int64
	createdAt time.Time
	origin    types.Point
	dest      types.Point
	path      []types.Point
	window    time.Duration
	stageFor  func(string) (Stage, bool)

	mu         sync.Mutex
	lastStatus string
	lastStage  Stage
	lastPos    *types.Point
	lastAt     time.Time
	haveLive   bool
}

func NewTracker(cfg TrackerConfig) *Tracker {
	dest := DestinationFor(cfg.OrderID, cfg.Origin)
	if cfg.Destination != nil {
		dest = *cfg.Destination
	}
	path := cfg.Path
	if len(path) < 2 {
		path = []types.Point{cfg.Origin, dest}
	}
	window := cfg.FreshnessWindow
	if window <= 0 {
		window = defaultFreshnessWindow
	}
	return &Tracker{
		orderID:   cfg.OrderID,
		createdAt: cfg.CreatedAt,
		origin:    cfg.Origin,
		dest:      dest,
		path:      path,
		window:    window,
		stageFor:  cfg.StageFor,
	}
}

// Destination reports the (possibly derived) destination coordinate.
func (t *Tracker) Destination() types.Point {
	return t.dest
}

// Apply feeds a pushed event into the view state. Events are idempotent
// "set current state" updates, so missed events never corrupt the view.
// Heartbeats are ignored.
func (t *Tracker) Apply(ev Event) {
	if ev.Type == EventHeartbeat {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.haveLive = true
	if ev.Timestamp.After(t.lastAt) {
		t.lastAt = ev.Timestamp
	}
	if ev.Type == EventStatus && ev.Status != "" {
		t.lastStatus = ev.Status
		if t.stageFor != nil {
			if st, ok := t.stageFor(ev.Status); ok {
				t.lastStage = st
			}
		}
	}
	if ev.RiderLat != nil && ev.RiderLng != nil {
		t.lastPos = &types.Point{Lat: *ev.RiderLat, Lng: *ev.RiderLng}
	}
}

// Freshness reports which source a render at the given instant would use.
func (t *Tracker) Freshness(now time.Time) Freshness {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freshnessLocked(now)
}

func (t *Tracker) freshnessLocked(now time.Time) Freshness {
	if t.haveLive && now.Sub(t.lastAt) <= t.window {
		return FreshnessLive
	}
	if t.haveLive || now.After(t.createdAt) || now.Equal(t.createdAt) {
		return FreshnessHeuristic
	}
	return FreshnessNone
}

// View renders the tracking frame for the given instant.
func (t *Tracker) View(now time.Time) View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View{OrderID: t.orderID, Freshness: t.freshnessLocked(now)}

	if v.Freshness == FreshnessLive {
		v.Status = t.lastStatus
		v.Stage = t.lastStage
		if t.lastPos != nil {
			v.Position = *t.lastPos
		} else {
			v.Position = PositionAlong(t.path, Fraction(v.Stage))
		}
	} else {
		v.Stage = StageOf(now, t.createdAt)
		v.Position = PositionAlong(t.path, Fraction(v.Stage))
	}

	v.Label = v.Stage.Label()
	v.Desc = v.Stage.Description()
	v.Progress = v.Stage.Progress()
	return v
}

// Run re-renders the view on a fixed tick until ctx is cancelled. The
// ticker is torn down with the view; closing the context stops it
// deterministically. One frame renders immediately.
func (t *Tracker) Run(ctx context.Context, tick time.Duration, render func(View)) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	render(t.View(time.Now()))
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			render(t.View(now))
		}
	}
}
