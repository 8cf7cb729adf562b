package models

import (
	"testing"
	"time"
)

func TestNextRenewalWithoutInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := Plan{StartDate: start}

	if got := plan.NextRenewal(); !got.Equal(start) {
		t.Errorf("NextRenewal = %v, want start date %v", got, start)
	}
}

func TestNextRenewalDaily(t *testing.T) {
	daily := "FREQ=DAILY"
	plan := Plan{
		StartDate:       time.Now().Add(-48 * time.Hour),
		RenewalInterval: &daily,
	}

	next := plan.NextRenewal()
	if !next.After(time.Now().Add(-time.Minute)) {
		t.Errorf("NextRenewal = %v, want a date at or after now", next)
	}
	if next.After(time.Now().Add(25 * time.Hour)) {
		t.Errorf("NextRenewal = %v, want within the next day", next)
	}
}

func TestNextRenewalBadRule(t *testing.T) {
	bad := "NOT-A-RULE"
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := Plan{StartDate: start, RenewalInterval: &bad}

	if got := plan.NextRenewal(); !got.Equal(start) {
		t.Errorf("NextRenewal = %v, want fallback to start date", got)
	}
}
