package services

import (
	"fmt"
	"time"

	"github.com/Hexoro/Hexward-sub000/models"
)

// DoseInterval returns the dosing interval for a frequency
func DoseInterval(freq models.MedicationFrequency) (time.Duration, error) {
	switch freq {
	case models.Every4Hours:
		return 4 * time.Hour, nil
	case models.Every6Hours:
		return 6 * time.Hour, nil
	case models.Every8Hours, models.ThreeTimesDaily:
		return 8 * time.Hour, nil
	case models.TwiceDaily:
		return 12 * time.Hour, nil
	case models.OnceDaily:
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown medication frequency: %s", freq)
}

// NextDose computes the first dose time strictly after now. A start time
// in the future is itself the next dose. Uses the closed form
// start + ceil((now-start)/interval) * interval instead of stepping
// interval by interval from the start time.
func NextDose(start time.Time, freq models.MedicationFrequency, now time.Time) (time.Time, error) {
	interval, err := DoseInterval(freq)
	if err != nil {
		return time.Time{}, err
	}

	if start.After(now) {
		return start, nil
	}

	steps := int64(now.Sub(start)/interval) + 1
	return start.Add(time.Duration(steps) * interval), nil
}
