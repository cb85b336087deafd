package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// GetConsultations handles GET /api/consultations
func GetConsultations(c *gin.Context) {
	query := database.DB.Model(&models.Consultation{}).Preload("Patient").Preload("Doctor")

	if patientID := c.Query("patientId"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var consultations []models.Consultation
	if err := query.Order("start_time ASC").Find(&consultations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch consultations"})
		return
	}

	c.JSON(http.StatusOK, consultations)
}

// GetConsultation handles GET /api/consultations/:id
func GetConsultation(c *gin.Context) {
	var consultation models.Consultation
	if err := database.DB.Preload("Patient").Preload("Doctor").
		First(&consultation, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch consultation"})
		return
	}
	c.JSON(http.StatusOK, consultation)
}

// CreateConsultation handles POST /api/consultations. A booking that
// overlaps another non-cancelled booking for the same doctor is rejected.
func CreateConsultation(c *gin.Context) {
	var req struct {
		PatientID string                  `json:"patientId" binding:"required"`
		DoctorID  string                  `json:"doctorId" binding:"required"`
		StartTime time.Time               `json:"startTime" binding:"required"`
		EndTime   time.Time               `json:"endTime" binding:"required"`
		Type      models.ConsultationType `json:"type"`
		Notes     *string                 `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be after startTime"})
		return
	}

	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var doctor models.User
	if err := database.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
		return
	}

	var conflicts int64
	database.DB.Model(&models.Consultation{}).
		Where("doctor_id = ? AND status NOT IN ?", req.DoctorID,
			[]models.ConsultationStatus{models.ConsultationCancelled, models.ConsultationCompleted}).
		Where("start_time < ? AND end_time > ?", req.EndTime, req.StartTime).
		Count(&conflicts)
	if conflicts > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Doctor already booked for this time slot"})
		return
	}

	consultationType := req.Type
	if consultationType == "" {
		consultationType = models.ConsultationRemote
	}

	consultation := models.Consultation{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.ConsultationScheduled,
		Type:      consultationType,
		Notes:     req.Notes,
	}
	if err := database.DB.Create(&consultation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create consultation"})
		return
	}

	publishChange("consultations", services.ActionInsert, consultation)
	c.JSON(http.StatusCreated, consultation)
}

// UpdateConsultation handles PUT /api/consultations/:id - status moves
// and outcome notes
func UpdateConsultation(c *gin.Context) {
	var consultation models.Consultation
	if err := database.DB.First(&consultation, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch consultation"})
		return
	}

	var req struct {
		Status        *models.ConsultationStatus `json:"status"`
		Diagnosis     *string                    `json:"diagnosis"`
		TreatmentPlan *string                    `json:"treatmentPlan"`
		Notes         *string                    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Status != nil {
		consultation.Status = *req.Status
	}
	if req.Diagnosis != nil {
		consultation.Diagnosis = req.Diagnosis
	}
	if req.TreatmentPlan != nil {
		consultation.TreatmentPlan = req.TreatmentPlan
	}
	if req.Notes != nil {
		consultation.Notes = req.Notes
	}

	if err := database.DB.Save(&consultation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update consultation"})
		return
	}

	publishChange("consultations", services.ActionUpdate, consultation)
	c.JSON(http.StatusOK, consultation)
}

// DeleteConsultation handles DELETE /api/consultations/:id (admin only)
func DeleteConsultation(c *gin.Context) {
	var consultation models.Consultation
	if err := database.DB.First(&consultation, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Consultation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch consultation"})
		return
	}

	if err := database.DB.Delete(&consultation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete consultation"})
		return
	}

	publishChange("consultations", services.ActionDelete, consultation)
	c.JSON(http.StatusOK, gin.H{"message": "Consultation deleted successfully"})
}
