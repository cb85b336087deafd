// Retention tool: prunes resolved alerts, processed detections, and old
// system logs. Intended to run from cron.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/Hexoro/Hexward-sub000/config"
	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
)

func main() {
	alertDays := flag.Int("alert-days", 30, "delete resolved alerts older than this many days")
	detectionDays := flag.Int("detection-days", 14, "delete processed detections older than this many days")
	logDays := flag.Int("log-days", 90, "delete system logs older than this many days")
	dryRun := flag.Bool("dry-run", false, "report what would be deleted without deleting")
	flag.Parse()

	cfg := config.Load()
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	now := time.Now().UTC()

	alertCutoff := now.AddDate(0, 0, -*alertDays)
	detectionCutoff := now.AddDate(0, 0, -*detectionDays)
	logCutoff := now.AddDate(0, 0, -*logDays)

	var alerts, detections, logs int64
	database.DB.Model(&models.Alert{}).
		Where("resolved = ? AND resolved_at < ?", true, alertCutoff).Count(&alerts)
	database.DB.Model(&models.Detection{}).
		Where("processed = ? AND timestamp < ?", true, detectionCutoff).Count(&detections)
	database.DB.Model(&models.SystemLog{}).
		Where("timestamp < ?", logCutoff).Count(&logs)

	log.Printf("Resolved alerts older than %dd: %d", *alertDays, alerts)
	log.Printf("Processed detections older than %dd: %d", *detectionDays, detections)
	log.Printf("System logs older than %dd: %d", *logDays, logs)

	if *dryRun {
		log.Println("Dry run, nothing deleted")
		return
	}

	if err := database.DB.
		Where("resolved = ? AND resolved_at < ?", true, alertCutoff).
		Delete(&models.Alert{}).Error; err != nil {
		log.Fatalf("❌ Failed to delete alerts: %v", err)
	}
	if err := database.DB.
		Where("processed = ? AND timestamp < ?", true, detectionCutoff).
		Delete(&models.Detection{}).Error; err != nil {
		log.Fatalf("❌ Failed to delete detections: %v", err)
	}
	if err := database.DB.
		Where("timestamp < ?", logCutoff).
		Delete(&models.SystemLog{}).Error; err != nil {
		log.Fatalf("❌ Failed to delete system logs: %v", err)
	}

	log.Printf("🧹 Cleanup complete: %d alerts, %d detections, %d logs removed", alerts, detections, logs)
}
