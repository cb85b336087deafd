package services

import (
	"testing"
	"time"

	"github.com/Hexoro/Hexward-sub000/models"
)

func TestNextDoseAfterElapsedIntervals(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)

	next, err := NextDose(start, models.Every8Hours, now)
	if err != nil {
		t.Fatalf("NextDose failed: %v", err)
	}

	want := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected next dose %v, got %v", want, next)
	}
}

func TestNextDoseFutureStart(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	start := now.Add(3 * time.Hour)

	next, err := NextDose(start, models.Every4Hours, now)
	if err != nil {
		t.Fatalf("NextDose failed: %v", err)
	}
	if !next.Equal(start) {
		t.Errorf("Future start should be the next dose, got %v", next)
	}
}

func TestNextDoseStrictlyAfterNow(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	// now exactly on a dose boundary must return the following dose, not
	// the boundary itself
	now := start.Add(24 * time.Hour)
	next, err := NextDose(start, models.Every8Hours, now)
	if err != nil {
		t.Fatalf("NextDose failed: %v", err)
	}
	want := now.Add(8 * time.Hour)
	if !next.Equal(want) {
		t.Errorf("Expected %v for on-boundary now, got %v", want, next)
	}
}

// TestNextDoseMatchesIteration checks the closed form against naive
// interval stepping across all frequencies.
func TestNextDoseMatchesIteration(t *testing.T) {
	start := time.Date(2023, 6, 10, 6, 15, 0, 0, time.UTC)
	now := time.Date(2023, 6, 14, 21, 47, 0, 0, time.UTC)

	frequencies := []models.MedicationFrequency{
		models.Every4Hours,
		models.Every6Hours,
		models.Every8Hours,
		models.TwiceDaily,
		models.ThreeTimesDaily,
		models.OnceDaily,
	}

	for _, freq := range frequencies {
		interval, err := DoseInterval(freq)
		if err != nil {
			t.Fatalf("DoseInterval(%s) failed: %v", freq, err)
		}

		expected := start
		for !expected.After(now) {
			expected = expected.Add(interval)
		}

		got, err := NextDose(start, freq, now)
		if err != nil {
			t.Fatalf("NextDose(%s) failed: %v", freq, err)
		}
		if !got.Equal(expected) {
			t.Errorf("%s: expected %v, got %v", freq, expected, got)
		}
	}
}

func TestDoseIntervalAliases(t *testing.T) {
	three, _ := DoseInterval(models.ThreeTimesDaily)
	eight, _ := DoseInterval(models.Every8Hours)
	if three != eight {
		t.Errorf("three_times_daily should equal every_8_hours, got %v vs %v", three, eight)
	}

	twice, _ := DoseInterval(models.TwiceDaily)
	if twice != 12*time.Hour {
		t.Errorf("twice_daily should be 12h, got %v", twice)
	}
}

func TestDoseIntervalUnknown(t *testing.T) {
	if _, err := DoseInterval("weekly"); err == nil {
		t.Error("Expected error for unknown frequency")
	}
	if _, err := NextDose(time.Now(), "weekly", time.Now()); err == nil {
		t.Error("Expected error for unknown frequency")
	}
}
