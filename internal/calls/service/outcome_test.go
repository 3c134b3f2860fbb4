package service

import "testing"

func TestClassifyOutcome_Boundaries(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{-5, OutcomeNoAnswer},
		{0, OutcomeNoAnswer},
		{9, OutcomeNoAnswer},
		{10, OutcomeBrief},
		{29, OutcomeBrief},
		{30, OutcomeConnected},
		{3600, OutcomeConnected},
	}

	for _, tc := range cases {
		if got := ClassifyOutcome(tc.seconds); got != tc.want {
			t.Fatalf("ClassifyOutcome(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestClassifyOutcome_NegativeTreatedAsZero(t *testing.T) {
	if ClassifyOutcome(-1) != ClassifyOutcome(0) {
		t.Fatalf("negative duration should classify like zero")
	}
}

func TestDurationMinutes_RoundsToNearest(t *testing.T) {
	cases := []struct {
		seconds int
		want    int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{45, 1},
		{89, 1},
		{90, 2},
		{3600, 60},
	}

	for _, tc := range cases {
		if got := DurationMinutes(tc.seconds); got != tc.want {
			t.Fatalf("DurationMinutes(%d) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestDurationMinutes_NegativeIsZero(t *testing.T) {
	if got := DurationMinutes(-10); got != 0 {
		t.Fatalf("DurationMinutes(-10) = %d, want 0", got)
	}
}
