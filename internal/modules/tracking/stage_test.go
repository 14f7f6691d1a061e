package tracking

import (
	"testing"
	"time"
)

func TestStageOf_Boundaries(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    Stage
	}{
		{"minute 0", 0, StageReceived},
		{"just placed", 30 * time.Second, StageReceived},
		{"minute 2", 2 * time.Minute, StageReceived},
		{"minute 3 boundary", 3 * time.Minute, StagePreparing},
		{"minute 7", 7 * time.Minute, StagePreparing},
		{"minute 8 boundary", 8 * time.Minute, StageOnTheWay},
		{"minute 14", 14 * time.Minute, StageOnTheWay},
		{"minute 15 boundary", 15 * time.Minute, StageNearYou},
		{"an hour later", time.Hour, StageNearYou},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StageOf(createdAt.Add(tt.elapsed), createdAt)
			if got != tt.want {
				t.Errorf("StageOf(+%v) = %d, want %d", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestStageOf_ClockSkewClampsToZero(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	got := StageOf(createdAt.Add(-5*time.Minute), createdAt)
	if got != StageReceived {
		t.Errorf("StageOf with now before createdAt = %d, want %d", got, StageReceived)
	}
}

func TestStageOf_Deterministic(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := createdAt.Add(9 * time.Minute)
	first := StageOf(now, createdAt)
	for i := 0; i < 10; i++ {
		if got := StageOf(now, createdAt); got != first {
			t.Fatalf("StageOf not deterministic: %d vs %d", got, first)
		}
	}
}

func TestStage_LabelsExhaustive(t *testing.T) {
	for s := StagePlaced; s <= StageNearYou; s++ {
		if s.Label() == "" {
			t.Errorf("stage %d has empty label", s)
		}
		if s.Description() == "" {
			t.Errorf("stage %d has empty description", s)
		}
	}
	if StageReceived.Label() != "Order received" {
		t.Errorf("stage 1 label = %q", StageReceived.Label())
	}
	if StageNearYou.Label() != "Almost there" {
		t.Errorf("stage 4 label = %q", StageNearYou.Label())
	}
}

func TestStage_Progress(t *testing.T) {
	if StagePlaced.Progress() != 0 {
		t.Errorf("stage 0 progress = %f", StagePlaced.Progress())
	}
	if StageNearYou.Progress() != 1 {
		t.Errorf("stage 4 progress = %f", StageNearYou.Progress())
	}
	if StagePreparing.Progress() != 0.5 {
		t.Errorf("stage 2 progress = %f", StagePreparing.Progress())
	}
}
