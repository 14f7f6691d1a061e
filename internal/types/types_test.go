package types

import "testing"

func TestFromKSh(t *testing.T) {
	cases := []struct {
		ksh   float64
		cents Money
	}{
		{0, 0},
		{550, 55000},
		{0.004, 0},
		{99.5, 9950},
		{120.75, 12075},
		{24.99, 2499},
	}
	for _, tc := range cases {
		if got := FromKSh(tc.ksh); got != tc.cents {
			t.Errorf("FromKSh(%v) = %d, want %d", tc.ksh, got, tc.cents)
		}
	}
}

func TestMoneyKSh(t *testing.T) {
	if got := Money(55000).KSh(); got != 550 {
		t.Errorf("KSh() = %v, want 550", got)
	}
	if got := Money(2499).KSh(); got != 24.99 {
		t.Errorf("KSh() = %v, want 24.99", got)
	}
}
