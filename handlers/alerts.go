package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// SortAlerts orders alerts for the dashboard feed: unacknowledged before
// acknowledged, then ascending priority (1 is most urgent), then newest
// first within the same priority.
func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Acknowledged != b.Acknowledged {
			return !a.Acknowledged
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// GetAlerts handles GET /api/alerts
func GetAlerts(c *gin.Context) {
	query := database.DB.Model(&models.Alert{})

	if alertType := c.Query("type"); alertType != "" {
		query = query.Where("alert_type = ?", alertType)
	}
	if room := c.Query("room"); room != "" {
		query = query.Where("room = ?", room)
	}
	if ack := c.Query("acknowledged"); ack != "" {
		if parsed, err := strconv.ParseBool(ack); err == nil {
			query = query.Where("acknowledged = ?", parsed)
		}
	}
	if resolved := c.Query("resolved"); resolved != "" {
		if parsed, err := strconv.ParseBool(resolved); err == nil {
			query = query.Where("resolved = ?", parsed)
		}
	}

	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var alerts []models.Alert
	if err := query.Order("created_at DESC").Limit(limit).Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	SortAlerts(alerts)
	c.JSON(http.StatusOK, alerts)
}

// GetAlert handles GET /api/alerts/:id
func GetAlert(c *gin.Context) {
	var alert models.Alert
	if err := database.DB.First(&alert, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// CreateAlert handles POST /api/alerts
func CreateAlert(c *gin.Context) {
	var req struct {
		AlertType models.AlertType `json:"alertType" binding:"required"`
		Title     string           `json:"title" binding:"required"`
		Message   string           `json:"message" binding:"required"`
		Room      string           `json:"room" binding:"required"`
		PatientID *string          `json:"patientId"`
		Priority  int              `json:"priority"`
		Metadata  models.JSONB     `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	priority := req.Priority
	if priority < 1 || priority > 3 {
		priority = 2
	}

	alert := models.Alert{
		AlertType: req.AlertType,
		Title:     req.Title,
		Message:   req.Message,
		Room:      req.Room,
		PatientID: req.PatientID,
		Priority:  priority,
		Metadata:  req.Metadata,
	}
	if err := database.DB.Create(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	publishChange("alerts", services.ActionInsert, alert)
	c.JSON(http.StatusCreated, alert)
}

// AcknowledgeAlert handles POST /api/alerts/:id/acknowledge. Acknowledging
// an already acknowledged alert is a no-op, not an error.
func AcknowledgeAlert(c *gin.Context) {
	var alert models.Alert
	if err := database.DB.First(&alert, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	if alert.Acknowledged {
		c.JSON(http.StatusOK, alert)
		return
	}

	user := CurrentUser(c)
	now := time.Now().UTC()
	alert.Acknowledged = true
	alert.AcknowledgedBy = &user.ID
	alert.AcknowledgedAt = &now

	if err := database.DB.Save(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acknowledge alert"})
		return
	}

	publishChange("alerts", services.ActionUpdate, alert)
	c.JSON(http.StatusOK, alert)
}

// ResolveAlert handles POST /api/alerts/:id/resolve. Resolving implies
// acknowledging, so an unacknowledged alert gets both stamps at once.
func ResolveAlert(c *gin.Context) {
	var alert models.Alert
	if err := database.DB.First(&alert, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	if alert.Resolved {
		c.JSON(http.StatusOK, alert)
		return
	}

	user := CurrentUser(c)
	now := time.Now().UTC()

	if !alert.Acknowledged {
		alert.Acknowledged = true
		alert.AcknowledgedBy = &user.ID
		alert.AcknowledgedAt = &now
	}
	alert.Resolved = true
	alert.ResolvedBy = &user.ID
	alert.ResolvedAt = &now

	if err := database.DB.Save(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		return
	}

	publishChange("alerts", services.ActionUpdate, alert)
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert handles DELETE /api/alerts/:id (admin only)
func DeleteAlert(c *gin.Context) {
	var alert models.Alert
	if err := database.DB.First(&alert, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert"})
		return
	}

	if err := database.DB.Delete(&alert).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete alert"})
		return
	}

	publishChange("alerts", services.ActionDelete, alert)
	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}

// GetAlertStats handles GET /api/alerts/stats
func GetAlertStats(c *gin.Context) {
	var total, unacknowledged, unresolved, critical int64
	database.DB.Model(&models.Alert{}).Count(&total)
	database.DB.Model(&models.Alert{}).Where("acknowledged = ?", false).Count(&unacknowledged)
	database.DB.Model(&models.Alert{}).Where("resolved = ?", false).Count(&unresolved)
	database.DB.Model(&models.Alert{}).Where("priority = ? AND resolved = ?", 1, false).Count(&critical)

	c.JSON(http.StatusOK, gin.H{
		"total":          total,
		"unacknowledged": unacknowledged,
		"unresolved":     unresolved,
		"criticalOpen":   critical,
	})
}
