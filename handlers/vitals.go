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

// GetPatientVitals handles GET /api/patients/:id/vitals - newest first
func GetPatientVitals(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	query := database.DB.Where("patient_id = ?", c.Param("id"))
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if sinceStr := c.Query("since"); sinceStr != "" {
		if since, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			query = query.Where("timestamp >= ?", since)
		}
	}

	var records []models.VitalsRecord
	if err := query.Order("timestamp DESC").Limit(limit).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vitals"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// RecordPatientVitals handles POST /api/patients/:id/vitals. Appends a
// vitals record, updates the patient's current vitals snapshot, and
// returns the threshold assessment alongside the stored record.
func RecordPatientVitals(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var req struct {
		Vitals models.Vitals `json:"vitals" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Vitals.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vitals payload"})
		return
	}

	user := CurrentUser(c)
	record := models.VitalsRecord{
		PatientID:  patient.ID,
		Vitals:     req.Vitals,
		Source:     models.SourceManual,
		RecordedBy: &user.ID,
		Timestamp:  time.Now().UTC(),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vitals"})
		return
	}

	patient.Vitals = req.Vitals
	if err := database.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient vitals"})
		return
	}

	publishChange("vitals_records", services.ActionInsert, record)
	publishChange("patients", services.ActionUpdate, patient)

	assessment := services.AssessVitals(req.Vitals)
	c.JSON(http.StatusCreated, gin.H{
		"record":     record,
		"assessment": assessment,
	})
}
