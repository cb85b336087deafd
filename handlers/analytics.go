package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// GetSystemStats handles GET /api/analytics/system-stats - the dashboard
// headline counters
func GetSystemStats(c *gin.Context) {
	var totalPatients, criticalPatients int64
	database.DB.Model(&models.Patient{}).Count(&totalPatients)
	database.DB.Model(&models.Patient{}).Where("status = ?", models.PatientCritical).Count(&criticalPatients)

	var openAlerts, unacknowledgedAlerts int64
	database.DB.Model(&models.Alert{}).Where("resolved = ?", false).Count(&openAlerts)
	database.DB.Model(&models.Alert{}).Where("acknowledged = ?", false).Count(&unacknowledgedAlerts)

	var activeCameras, totalCameras int64
	database.DB.Model(&models.Camera{}).Count(&totalCameras)
	database.DB.Model(&models.Camera{}).Where("status = ?", models.CameraActive).Count(&activeCameras)

	since := time.Now().UTC().Add(-24 * time.Hour)
	var detections24h, vitals24h int64
	database.DB.Model(&models.Detection{}).Where("timestamp >= ?", since).Count(&detections24h)
	database.DB.Model(&models.VitalsRecord{}).Where("timestamp >= ?", since).Count(&vitals24h)

	c.JSON(http.StatusOK, gin.H{
		"patients": gin.H{
			"total":    totalPatients,
			"critical": criticalPatients,
		},
		"alerts": gin.H{
			"open":           openAlerts,
			"unacknowledged": unacknowledgedAlerts,
		},
		"cameras": gin.H{
			"total":  totalCameras,
			"active": activeCameras,
		},
		"last24h": gin.H{
			"detections":    detections24h,
			"vitalsRecords": vitals24h,
		},
		"generatedAt": time.Now().UTC(),
	})
}

// GetAlertsTimeline handles GET /api/analytics/alerts-timeline - per-hour
// alert counts over the requested window
func GetAlertsTimeline(c *gin.Context) {
	hours := 24
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsed, err := strconv.Atoi(hoursStr); err == nil && parsed > 0 && parsed <= 168 {
			hours = parsed
		}
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(hours) * time.Hour)

	var alerts []models.Alert
	if err := database.DB.Where("created_at >= ?", since).
		Order("created_at ASC").Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	type bucket struct {
		Hour     time.Time `json:"hour"`
		Total    int       `json:"total"`
		Critical int       `json:"critical"`
	}

	buckets := make([]bucket, hours)
	start := since.Truncate(time.Hour)
	for i := range buckets {
		buckets[i].Hour = start.Add(time.Duration(i) * time.Hour)
	}
	for _, alert := range alerts {
		idx := int(alert.CreatedAt.Sub(start) / time.Hour)
		if idx < 0 || idx >= hours {
			continue
		}
		buckets[idx].Total++
		if alert.Priority == 1 {
			buckets[idx].Critical++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"hours":    hours,
		"timeline": buckets,
	})
}

// GetRoomActivity handles GET /api/analytics/room-activity - recent
// activity rollup per room, with a humanized last-event age
func GetRoomActivity(c *gin.Context) {
	since := time.Now().UTC().Add(-24 * time.Hour)

	var alerts []models.Alert
	database.DB.Where("created_at >= ?", since).Find(&alerts)

	var detections []models.Detection
	database.DB.Where("timestamp >= ?", since).Find(&detections)

	type roomStats struct {
		Room         string     `json:"room"`
		Alerts       int        `json:"alerts"`
		Detections   int        `json:"detections"`
		LastActivity *time.Time `json:"lastActivity,omitempty"`
		LastSeen     string     `json:"lastSeen"`
	}

	byRoom := map[string]*roomStats{}
	touch := func(room string, at time.Time) *roomStats {
		stats, ok := byRoom[room]
		if !ok {
			stats = &roomStats{Room: room}
			byRoom[room] = stats
		}
		if stats.LastActivity == nil || at.After(*stats.LastActivity) {
			t := at
			stats.LastActivity = &t
		}
		return stats
	}

	for _, alert := range alerts {
		touch(alert.Room, alert.CreatedAt).Alerts++
	}
	for _, detection := range detections {
		touch(detection.Room, detection.Timestamp).Detections++
	}

	now := time.Now().UTC()
	rooms := make([]roomStats, 0, len(byRoom))
	for _, stats := range byRoom {
		if stats.LastActivity != nil {
			stats.LastSeen = services.TimeAgo(*stats.LastActivity, now)
		}
		rooms = append(rooms, *stats)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GenerateShiftReport handles POST /api/analytics/shift-report. Builds a
// narrative handoff summary for the last shift and stores it as a Report.
func GenerateShiftReport(c *gin.Context) {
	hours := 8
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsed, err := strconv.Atoi(hoursStr); err == nil && parsed > 0 && parsed <= 24 {
			hours = parsed
		}
	}

	var patients []models.Patient
	if err := database.DB.Find(&patients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var alerts []models.Alert
	database.DB.Where("created_at >= ?", since).Order("created_at DESC").Find(&alerts)

	summary := gptClient.ShiftSummary(patients, alerts, hours)

	user := CurrentUser(c)
	report := models.Report{
		Title:      "Shift Report " + time.Now().UTC().Format("2006-01-02 15:04"),
		ReportType: "shift_summary",
		Data: models.NewJSONB(map[string]interface{}{
			"summary":    summary,
			"hours":      hours,
			"patients":   len(patients),
			"alertCount": len(alerts),
		}),
		CreatedBy: &user.ID,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store report"})
		return
	}

	publishChange("reports", services.ActionInsert, report)
	c.JSON(http.StatusCreated, gin.H{
		"report":  report,
		"summary": summary,
	})
}
