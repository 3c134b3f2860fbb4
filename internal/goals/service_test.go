package goals

import (
	"testing"
	"time"
)

func TestPeriodStart_WeeklyStartsMonday(t *testing.T) {
	// Wednesday 2025-06-11.
	now := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)
	start := periodStart(PeriodWeekly, now)

	want := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected week start %v, got %v", want, start)
	}
}

func TestPeriodStart_WeeklyOnSunday(t *testing.T) {
	// Sunday 2025-06-15 still belongs to the week starting Monday 2025-06-09.
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	start := periodStart(PeriodWeekly, now)

	want := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected week start %v, got %v", want, start)
	}
}

func TestPeriodStart_Monthly(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	start := periodStart(PeriodMonthly, now)

	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected month start %v, got %v", want, start)
	}
}
