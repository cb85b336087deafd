package services

import (
	"strings"
	"testing"

	"github.com/Hexoro/Hexward-sub000/models"
)

func TestOfflineClientNotAvailable(t *testing.T) {
	g := NewGPTClient("", "")
	if g.Available() {
		t.Error("Client without API key should not be available")
	}
	if g.LastSummaryTime() != nil {
		t.Error("Fresh client should have no last summary time")
	}
}

func TestOfflineDetectionAnalysisFall(t *testing.T) {
	g := NewGPTClient("", "")

	fall := models.Detection{DetectionType: "fall", Confidence: 0.85, Room: "102"}
	analysis := g.AnalyzeDetection(fall)
	if !analysis.AlertNeeded {
		t.Fatal("High-confidence fall must need an alert")
	}
	if analysis.AlertType != string(models.AlertCritical) {
		t.Errorf("Fall alert should be critical, got %s", analysis.AlertType)
	}

	lowFall := models.Detection{DetectionType: "fall", Confidence: 0.3, Room: "102"}
	if g.AnalyzeDetection(lowFall).AlertNeeded {
		t.Error("Low-confidence fall should not alert")
	}

	motion := models.Detection{DetectionType: "motion", Confidence: 0.99, Room: "102"}
	if g.AnalyzeDetection(motion).AlertNeeded {
		t.Error("Plain motion should not alert")
	}
}

func TestOfflinePatientSummaryMentionsConcerns(t *testing.T) {
	g := NewGPTClient("", "")

	hr := 130
	patient := models.Patient{
		Name:   "Test Patient",
		Room:   "101",
		Status: models.PatientCritical,
		Vitals: models.Vitals{HeartRate: &hr},
	}

	summary := g.SummarizePatient(patient, nil)
	if !strings.Contains(summary, "Heart rate") {
		t.Errorf("Summary should flag the abnormal heart rate: %s", summary)
	}
	if !strings.Contains(summary, "101") {
		t.Errorf("Summary should name the room: %s", summary)
	}
}

func TestOfflineShiftSummaryCounts(t *testing.T) {
	g := NewGPTClient("", "")

	patients := []models.Patient{
		{Status: models.PatientCritical},
		{Status: models.PatientStable},
	}
	alerts := []models.Alert{
		{Resolved: false},
		{Resolved: true},
	}

	summary := g.ShiftSummary(patients, alerts, 8)
	if !strings.Contains(summary, "2 patients") || !strings.Contains(summary, "1 critical") {
		t.Errorf("Unexpected shift summary: %s", summary)
	}
	if !strings.Contains(summary, "1 still unresolved") {
		t.Errorf("Unexpected unresolved count: %s", summary)
	}
}
