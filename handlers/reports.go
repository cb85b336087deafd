package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// GetReports handles GET /api/reports
func GetReports(c *gin.Context) {
	query := database.DB.Model(&models.Report{})

	if reportType := c.Query("type"); reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReport handles GET /api/reports/:id
func GetReport(c *gin.Context) {
	var report models.Report
	if err := database.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateReport handles POST /api/reports
func CreateReport(c *gin.Context) {
	var req struct {
		Title       string       `json:"title" binding:"required"`
		ReportType  string       `json:"reportType" binding:"required"`
		Description *string      `json:"description"`
		Data        models.JSONB `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user := CurrentUser(c)
	report := models.Report{
		Title:       req.Title,
		ReportType:  req.ReportType,
		Description: req.Description,
		Data:        req.Data,
		CreatedBy:   &user.ID,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		return
	}

	publishChange("reports", services.ActionInsert, report)
	c.JSON(http.StatusCreated, report)
}

// DeleteReport handles DELETE /api/reports/:id (admin only)
func DeleteReport(c *gin.Context) {
	var report models.Report
	if err := database.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}

	if err := database.DB.Delete(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	publishChange("reports", services.ActionDelete, report)
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// ExportAlertsXLSX handles GET /api/reports/export/alerts - spreadsheet
// download of the alert log for the requested window
func ExportAlertsXLSX(c *gin.Context) {
	hours := 168
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsed, err := strconv.Atoi(hoursStr); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	var alerts []models.Alert
	if err := database.DB.Where("created_at >= ?", since).
		Order("created_at DESC").Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Alerts"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Type", "Title", "Room", "Priority", "Acknowledged", "Resolved", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, alert := range alerts {
		values := []interface{}{
			alert.ID,
			string(alert.AlertType),
			alert.Title,
			alert.Room,
			alert.Priority,
			alert.Acknowledged,
			alert.Resolved,
			alert.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("hexward_alerts_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
		return
	}
}

// ExportVitalsXLSX handles GET /api/reports/export/vitals/:patientId
func ExportVitalsXLSX(c *gin.Context) {
	var patient models.Patient
	if err := database.DB.First(&patient, "id = ?", c.Param("patientId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var records []models.VitalsRecord
	if err := database.DB.Where("patient_id = ?", patient.ID).
		Order("timestamp DESC").Limit(1000).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vitals"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Vitals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Timestamp", "Heart Rate", "Blood Pressure", "Temperature", "SpO2", "Respiratory Rate", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, record := range records {
		values := []interface{}{record.Timestamp.Format(time.RFC3339)}
		appendOpt := func(v interface{}, ok bool) {
			if ok {
				values = append(values, v)
			} else {
				values = append(values, "")
			}
		}
		appendOpt(derefInt(record.Vitals.HeartRate))
		appendOpt(derefStr(record.Vitals.BloodPressure))
		appendOpt(derefFloat(record.Vitals.Temperature))
		appendOpt(derefInt(record.Vitals.OxygenSaturation))
		appendOpt(derefInt(record.Vitals.RespiratoryRate))
		values = append(values, string(record.Source))

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("hexward_vitals_%s.xlsx", patient.ID[:8])
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
		return
	}
}

func derefInt(v *int) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func derefStr(v *string) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func derefFloat(v *float64) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}
