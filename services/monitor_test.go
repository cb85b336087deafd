package services

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
)

func setupMonitorTest(t *testing.T) (*Monitor, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	ns := startTestBus(t)
	feed := NewChangeFeed(ns)
	gpt := NewGPTClient("", "")

	return NewMonitor(db, feed, gpt, time.Minute, time.Minute), db
}

func TestSweepVitalsRaisesOneAlert(t *testing.T) {
	m, db := setupMonitorTest(t)

	hr := 130
	spo2 := 90
	patient := models.Patient{
		Name:   "Sweep Target",
		Room:   "102",
		Status: models.PatientCritical,
		Vitals: models.Vitals{HeartRate: &hr, OxygenSaturation: &spo2},
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	if err := m.SweepVitals(); err != nil {
		t.Fatalf("SweepVitals failed: %v", err)
	}

	var alerts []models.Alert
	db.Where("patient_id = ?", patient.ID).Find(&alerts)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Priority != 1 {
		t.Errorf("Two concerns should raise a critical alert, got priority %d", alerts[0].Priority)
	}

	// Second sweep must not duplicate while the alert stays open
	if err := m.SweepVitals(); err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	db.Where("patient_id = ?", patient.ID).Find(&alerts)
	if len(alerts) != 1 {
		t.Errorf("Repeat sweep duplicated the alert: %d alerts", len(alerts))
	}

	if m.LastSweepTime() == nil {
		t.Error("Sweep should record its completion time")
	}
}

func TestSweepVitalsSkipsNormalPatients(t *testing.T) {
	m, db := setupMonitorTest(t)

	hr := 75
	patient := models.Patient{
		Name:   "Healthy",
		Room:   "103",
		Vitals: models.Vitals{HeartRate: &hr},
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	if err := m.SweepVitals(); err != nil {
		t.Fatalf("SweepVitals failed: %v", err)
	}

	var count int64
	db.Model(&models.Alert{}).Count(&count)
	if count != 0 {
		t.Errorf("Normal vitals should raise no alerts, got %d", count)
	}
}

func TestProcessDetectionFall(t *testing.T) {
	m, db := setupMonitorTest(t)

	camera := models.Camera{Name: "Cam", Room: "104", Status: models.CameraActive, AIMonitoringEnabled: true}
	if err := db.Create(&camera).Error; err != nil {
		t.Fatalf("Failed to create camera: %v", err)
	}

	detection := models.Detection{
		CameraID:      camera.ID,
		Room:          camera.Room,
		DetectionType: "fall",
		Confidence:    0.9,
	}
	if err := db.Create(&detection).Error; err != nil {
		t.Fatalf("Failed to create detection: %v", err)
	}

	alert, err := m.ProcessDetection(&detection)
	if err != nil {
		t.Fatalf("ProcessDetection failed: %v", err)
	}
	if alert == nil {
		t.Fatal("High-confidence fall should raise an alert")
	}
	if alert.Priority != 1 {
		t.Errorf("Fall alert should be priority 1, got %d", alert.Priority)
	}

	var stored models.Detection
	if err := db.First(&stored, "id = ?", detection.ID).Error; err != nil {
		t.Fatalf("Failed to reload detection: %v", err)
	}
	if !stored.Processed {
		t.Error("Detection should be marked processed")
	}
	if stored.GPTAnalysis == nil || *stored.GPTAnalysis == "" {
		t.Error("Detection should carry the triage reason")
	}
	if m.DetectionCount() != 1 {
		t.Errorf("Detection counter should be 1, got %d", m.DetectionCount())
	}
}

func TestProcessDetectionMotionNoAlert(t *testing.T) {
	m, db := setupMonitorTest(t)

	detection := models.Detection{
		CameraID:      "cam-1",
		Room:          "105",
		DetectionType: "motion",
		Confidence:    0.95,
	}
	if err := db.Create(&detection).Error; err != nil {
		t.Fatalf("Failed to create detection: %v", err)
	}

	alert, err := m.ProcessDetection(&detection)
	if err != nil {
		t.Fatalf("ProcessDetection failed: %v", err)
	}
	if alert != nil {
		t.Errorf("Plain motion should not alert, got %+v", alert)
	}
}
