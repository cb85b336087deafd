// Seeds the database with demo patients, cameras, and alerts for local
// development. Safe to re-run: existing rows are left alone.
package main

import (
	"log"
	"time"

	"github.com/Hexoro/Hexward-sub000/config"
	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/handlers"
	"github.com/Hexoro/Hexward-sub000/models"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func main() {
	cfg := config.Load()

	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	handlers.ConfigureAuth(cfg.JWTSecret, cfg.TokenExpireMinutes)
	handlers.SeedAdminUser()

	var patientCount int64
	database.DB.Model(&models.Patient{}).Count(&patientCount)
	if patientCount > 0 {
		log.Printf("Database already has %d patients, skipping seed", patientCount)
		return
	}

	now := time.Now().UTC()

	patients := []models.Patient{
		{
			Name:       "Margaret Chen",
			Age:        intPtr(72),
			Room:       "101",
			Status:     models.PatientStable,
			Conditions: models.StringList{"Hypertension", "Type 2 Diabetes"},
			Vitals: models.Vitals{
				HeartRate:        intPtr(74),
				BloodPressure:    strPtr("128/82"),
				Temperature:      floatPtr(98.4),
				OxygenSaturation: intPtr(97),
			},
			AdmissionDate: now.Add(-72 * time.Hour),
		},
		{
			Name:       "Robert Okafor",
			Age:        intPtr(58),
			Room:       "102",
			Status:     models.PatientCritical,
			Conditions: models.StringList{"Pneumonia", "COPD"},
			Vitals: models.Vitals{
				HeartRate:        intPtr(112),
				BloodPressure:    strPtr("145/95"),
				Temperature:      floatPtr(101.2),
				OxygenSaturation: intPtr(91),
			},
			AdmissionDate: now.Add(-18 * time.Hour),
		},
		{
			Name:       "Elena Vasquez",
			Age:        intPtr(45),
			Room:       "103",
			Status:     models.PatientMonitoring,
			Conditions: models.StringList{"Post-surgical recovery"},
			Vitals: models.Vitals{
				HeartRate:        intPtr(68),
				BloodPressure:    strPtr("118/76"),
				Temperature:      floatPtr(98.6),
				OxygenSaturation: intPtr(99),
			},
			AdmissionDate: now.Add(-120 * time.Hour),
		},
	}

	for i := range patients {
		if err := database.DB.Create(&patients[i]).Error; err != nil {
			log.Fatalf("❌ Failed to seed patient %s: %v", patients[i].Name, err)
		}
	}
	log.Printf("✅ Seeded %d patients", len(patients))

	cameras := []models.Camera{
		{Name: "Room 101 Overhead", Room: "101", Status: models.CameraActive, AIMonitoringEnabled: true},
		{Name: "Room 102 Overhead", Room: "102", Status: models.CameraActive, AIMonitoringEnabled: true},
		{Name: "Room 103 Overhead", Room: "103", Status: models.CameraMaintenance, AIMonitoringEnabled: false},
		{Name: "Hallway East", Room: "hallway-e", Status: models.CameraActive, AIMonitoringEnabled: true},
	}
	for i := range cameras {
		if err := database.DB.Create(&cameras[i]).Error; err != nil {
			log.Fatalf("❌ Failed to seed camera %s: %v", cameras[i].Name, err)
		}
	}
	log.Printf("✅ Seeded %d cameras", len(cameras))

	alerts := []models.Alert{
		{
			AlertType: models.AlertCritical,
			Title:     "Low oxygen saturation",
			Message:   "SpO2 at 91% for Robert Okafor",
			Room:      "102",
			PatientID: &patients[1].ID,
			Priority:  1,
		},
		{
			AlertType: models.AlertWarning,
			Title:     "Medication due",
			Message:   "Antibiotic dose due for Robert Okafor",
			Room:      "102",
			PatientID: &patients[1].ID,
			Priority:  2,
		},
	}
	for i := range alerts {
		if err := database.DB.Create(&alerts[i]).Error; err != nil {
			log.Fatalf("❌ Failed to seed alert %s: %v", alerts[i].Title, err)
		}
	}
	log.Printf("✅ Seeded %d alerts", len(alerts))

	medication := models.Medication{
		PatientID: patients[1].ID,
		Name:      "Azithromycin",
		Dosage:    "500mg",
		Frequency: models.OnceDaily,
		StartTime: now.Add(-18 * time.Hour),
		Active:    true,
	}
	if err := database.DB.Create(&medication).Error; err != nil {
		log.Fatalf("❌ Failed to seed medication: %v", err)
	}
	log.Println("✅ Seeded demo medication")

	log.Println("🌱 Seed complete")
}
