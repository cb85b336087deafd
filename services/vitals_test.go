package services

import (
	"strings"
	"testing"

	"github.com/Hexoro/Hexward-sub000/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestHeartRateStatus(t *testing.T) {
	cases := []struct {
		bpm  int
		want VitalStatus
	}{
		{59, VitalAbnormal},
		{60, VitalNormal},
		{100, VitalNormal},
		{101, VitalAbnormal},
	}
	for _, tc := range cases {
		if got := HeartRateStatus(tc.bpm); got != tc.want {
			t.Errorf("HeartRateStatus(%d) = %s, want %s", tc.bpm, got, tc.want)
		}
	}
}

func TestOxygenStatus(t *testing.T) {
	if OxygenStatus(94) != VitalAbnormal {
		t.Error("94% should be abnormal")
	}
	if OxygenStatus(95) != VitalNormal {
		t.Error("95% should be normal")
	}
}

func TestTemperatureStatus(t *testing.T) {
	cases := []struct {
		f    float64
		want VitalStatus
	}{
		{96.9, VitalWarning},
		{97.0, VitalNormal},
		{99.5, VitalNormal},
		{99.6, VitalWarning},
	}
	for _, tc := range cases {
		if got := TemperatureStatus(tc.f); got != tc.want {
			t.Errorf("TemperatureStatus(%.1f) = %s, want %s", tc.f, got, tc.want)
		}
	}
}

func TestAssessVitalsSkipsAbsentMetrics(t *testing.T) {
	assessment := AssessVitals(models.Vitals{HeartRate: intPtr(72)})
	if !assessment.Normal() {
		t.Errorf("Expected normal assessment, concerns: %v", assessment.Concerns)
	}
	if assessment.Temperature != "" || assessment.OxygenSaturation != "" {
		t.Error("Absent metrics should not be classified")
	}
}

func TestAssessVitalsCollectsConcerns(t *testing.T) {
	assessment := AssessVitals(models.Vitals{
		HeartRate:        intPtr(118),
		OxygenSaturation: intPtr(90),
		Temperature:      floatPtr(98.6),
	})

	if len(assessment.Concerns) != 2 {
		t.Fatalf("Expected 2 concerns, got %d: %v", len(assessment.Concerns), assessment.Concerns)
	}
	summary := assessment.ConcernSummary()
	if !strings.Contains(summary, "Heart rate") || !strings.Contains(summary, "oxygen") {
		t.Errorf("Unexpected summary: %s", summary)
	}
	if !strings.Contains(summary, "; ") {
		t.Errorf("Concerns should be joined with '; ': %s", summary)
	}
}
