package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// ConditionList accepts either a JSON array of strings or a single
// comma-separated string, the two shapes intake forms submit.
type ConditionList []string

func (l *ConditionList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		cleaned := make([]string, 0, len(asList))
		for _, c := range asList {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		*l = cleaned
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	*l = ParseConditions(asString)
	return nil
}

// ParseConditions splits a comma-separated conditions string, trimming
// whitespace and dropping empty entries
func ParseConditions(raw string) []string {
	parts := strings.Split(raw, ",")
	conditions := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			conditions = append(conditions, trimmed)
		}
	}
	return conditions
}

// GetPatients handles GET /api/patients
func GetPatients(c *gin.Context) {
	query := database.DB.Model(&models.Patient{})

	// Case-insensitive substring match on name or room
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(room) LIKE ?", pattern, pattern)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if room := c.Query("room"); room != "" {
		query = query.Where("room = ?", room)
	}

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var patients []models.Patient
	if err := query.Order("created_at DESC").Limit(limit).Find(&patients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	c.JSON(http.StatusOK, patients)
}

// GetPatient handles GET /api/patients/:id
func GetPatient(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}
	c.JSON(http.StatusOK, patient)
}

// CreatePatient handles POST /api/patients
func CreatePatient(c *gin.Context) {
	var req struct {
		Name       string               `json:"name" binding:"required"`
		Age        *int                 `json:"age"`
		Room       string               `json:"room" binding:"required"`
		Status     models.PatientStatus `json:"status"`
		Conditions ConditionList        `json:"conditions"`
		Vitals     models.Vitals        `json:"vitals"`
		Notes      *string              `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.PatientStable
	}

	patient := models.Patient{
		Name:          req.Name,
		Age:           req.Age,
		Room:          req.Room,
		Status:        status,
		Conditions:    models.StringList(req.Conditions),
		Vitals:        req.Vitals,
		Notes:         req.Notes,
		AdmissionDate: time.Now().UTC(),
	}

	if err := database.DB.Create(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create patient"})
		return
	}

	publishChange("patients", services.ActionInsert, patient)
	c.JSON(http.StatusCreated, patient)
}

// UpdatePatient handles PUT /api/patients/:id
func UpdatePatient(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}

	var req struct {
		Name       *string               `json:"name"`
		Age        *int                  `json:"age"`
		Room       *string               `json:"room"`
		Status     *models.PatientStatus `json:"status"`
		Conditions *ConditionList        `json:"conditions"`
		Vitals     *models.Vitals        `json:"vitals"`
		Notes      *string               `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = req.Age
	}
	if req.Room != nil {
		patient.Room = *req.Room
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}
	if req.Conditions != nil {
		patient.Conditions = models.StringList(*req.Conditions)
	}
	if req.Vitals != nil {
		patient.Vitals = *req.Vitals
	}
	if req.Notes != nil {
		patient.Notes = req.Notes
	}

	if err := database.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient"})
		return
	}

	publishChange("patients", services.ActionUpdate, patient)
	c.JSON(http.StatusOK, patient)
}

// DeletePatient handles DELETE /api/patients/:id (admin only)
func DeletePatient(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}

	if err := database.DB.Delete(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete patient"})
		return
	}

	publishChange("patients", services.ActionDelete, patient)
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}

// UploadPatientPhoto handles POST /api/patients/:id/photo. The image is
// saved under the static dir and its public URL stored on the patient.
func UploadPatientPhoto(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing photo upload"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	filename := fmt.Sprintf("patients/%s_%s%s", patient.ID, uuid.NewString()[:8], ext)
	dest := filepath.Join(staticDir, filename)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	url := "/static/" + filename
	patient.ImageURL = &url
	if err := database.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update patient"})
		return
	}

	publishChange("patients", services.ActionUpdate, patient)
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// GetPatientEvents handles GET /api/patients/:id/events
func GetPatientEvents(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var events []models.PatientEvent
	if err := database.DB.Where("patient_id = ?", c.Param("id")).
		Order("timestamp DESC").Limit(limit).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// CreatePatientEvent handles POST /api/patients/:id/events
func CreatePatientEvent(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var req struct {
		EventType   string       `json:"eventType" binding:"required"`
		Description string       `json:"description" binding:"required"`
		Metadata    models.JSONB `json:"metadata"`
		Source      string       `json:"source"`
		Confidence  *float64     `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	event := models.PatientEvent{
		PatientID:   patient.ID,
		EventType:   req.EventType,
		Description: req.Description,
		Metadata:    req.Metadata,
		Source:      source,
		Confidence:  req.Confidence,
		Timestamp:   time.Now().UTC(),
	}
	if err := database.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	publishChange("patient_events", services.ActionInsert, event)
	c.JSON(http.StatusCreated, event)
}

// GeneratePatientSummary handles POST /api/patients/:id/summary
func GeneratePatientSummary(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var events []models.PatientEvent
	database.DB.Where("patient_id = ?", patient.ID).
		Order("timestamp DESC").Limit(20).Find(&events)

	summary := gptClient.SummarizePatient(patient, events)

	patient.Summary = &summary
	if err := database.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store summary"})
		return
	}

	publishChange("patients", services.ActionUpdate, patient)
	c.JSON(http.StatusOK, gin.H{"summary": summary, "generatedAt": time.Now().UTC()})
}

// GetPatientMedications handles GET /api/patients/:id/medications. Each
// active medication is returned with its computed next dose time.
func GetPatientMedications(c *gin.Context) {
	var medications []models.Medication
	if err := database.DB.Where("patient_id = ?", c.Param("id")).
		Order("created_at DESC").Find(&medications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch medications"})
		return
	}

	type MedicationWithDose struct {
		models.Medication
		NextDose *time.Time `json:"nextDose,omitempty"`
	}

	now := time.Now().UTC()
	out := make([]MedicationWithDose, 0, len(medications))
	for _, med := range medications {
		entry := MedicationWithDose{Medication: med}
		if med.Active {
			if next, err := services.NextDose(med.StartTime, med.Frequency, now); err == nil {
				entry.NextDose = &next
			}
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, out)
}

// CreatePatientMedication handles POST /api/patients/:id/medications
func CreatePatientMedication(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var req struct {
		Name      string                     `json:"name" binding:"required"`
		Dosage    string                     `json:"dosage"`
		Frequency models.MedicationFrequency `json:"frequency" binding:"required"`
		StartTime time.Time                  `json:"startTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := services.DoseInterval(req.Frequency); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown medication frequency"})
		return
	}

	medication := models.Medication{
		PatientID: patient.ID,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		StartTime: req.StartTime,
		Active:    true,
	}
	if err := database.DB.Create(&medication).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create medication"})
		return
	}

	publishChange("medications", services.ActionInsert, medication)
	c.JSON(http.StatusCreated, medication)
}

var staticDir = "static"

// SetStaticDir configures where uploads are stored
func SetStaticDir(dir string) {
	if dir != "" {
		staticDir = dir
	}
}
