package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// GetCameras handles GET /api/cameras
func GetCameras(c *gin.Context) {
	query := database.DB.Model(&models.Camera{})

	if room := c.Query("room"); room != "" {
		query = query.Where("room = ?", room)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var cameras []models.Camera
	if err := query.Order("room ASC").Find(&cameras).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cameras"})
		return
	}

	c.JSON(http.StatusOK, cameras)
}

// GetCamera handles GET /api/cameras/:id
func GetCamera(c *gin.Context) {
	var camera models.Camera
	if err := database.DB.First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		return
	}
	c.JSON(http.StatusOK, camera)
}

// CreateCamera handles POST /api/cameras (admin only)
func CreateCamera(c *gin.Context) {
	var req struct {
		Name                string  `json:"name" binding:"required"`
		Room                string  `json:"room" binding:"required"`
		IP                  *string `json:"ip"`
		RTSPUrl             *string `json:"rtspUrl"`
		AIMonitoringEnabled *bool   `json:"aiMonitoringEnabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	camera := models.Camera{
		Name:                req.Name,
		Room:                req.Room,
		IP:                  req.IP,
		RTSPUrl:             req.RTSPUrl,
		Status:              models.CameraActive,
		AIMonitoringEnabled: true,
	}
	if req.AIMonitoringEnabled != nil {
		camera.AIMonitoringEnabled = *req.AIMonitoringEnabled
	}

	if err := database.DB.Create(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create camera"})
		return
	}

	publishChange("cameras", services.ActionInsert, camera)
	c.JSON(http.StatusCreated, camera)
}

// UpdateCamera handles PUT /api/cameras/:id (admin only)
func UpdateCamera(c *gin.Context) {
	var camera models.Camera
	if err := database.DB.First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		return
	}

	var req struct {
		Name                *string              `json:"name"`
		Room                *string              `json:"room"`
		IP                  *string              `json:"ip"`
		RTSPUrl             *string              `json:"rtspUrl"`
		Status              *models.CameraStatus `json:"status"`
		Recording           *bool                `json:"recording"`
		AIMonitoringEnabled *bool                `json:"aiMonitoringEnabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name != nil {
		camera.Name = *req.Name
	}
	if req.Room != nil {
		camera.Room = *req.Room
	}
	if req.IP != nil {
		camera.IP = req.IP
	}
	if req.RTSPUrl != nil {
		camera.RTSPUrl = req.RTSPUrl
	}
	if req.Status != nil {
		camera.Status = *req.Status
	}
	if req.Recording != nil {
		camera.Recording = *req.Recording
	}
	if req.AIMonitoringEnabled != nil {
		camera.AIMonitoringEnabled = *req.AIMonitoringEnabled
	}

	if err := database.DB.Save(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update camera"})
		return
	}

	publishChange("cameras", services.ActionUpdate, camera)
	c.JSON(http.StatusOK, camera)
}

// DeleteCamera handles DELETE /api/cameras/:id (admin only)
func DeleteCamera(c *gin.Context) {
	var camera models.Camera
	if err := database.DB.First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch camera"})
		return
	}

	if err := database.DB.Delete(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete camera"})
		return
	}

	publishChange("cameras", services.ActionDelete, camera)
	c.JSON(http.StatusOK, gin.H{"message": "Camera deleted successfully"})
}

// GetCameraDetections handles GET /api/cameras/:id/detections
func GetCameraDetections(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var detections []models.Detection
	if err := database.DB.Where("camera_id = ?", c.Param("id")).
		Order("timestamp DESC").Limit(limit).Find(&detections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch detections"})
		return
	}

	c.JSON(http.StatusOK, detections)
}

// ReportDetection handles POST /api/cameras/:id/detections. Detection
// events from edge analyzers come in here; the monitor runs the analysis
// pipeline and may raise an alert.
func ReportDetection(c *gin.Context) {
	var camera models.Camera
	if err := database.DB.First(&camera, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Camera not found"})
		return
	}

	if !camera.AIMonitoringEnabled {
		c.JSON(http.StatusConflict, gin.H{"error": "AI monitoring disabled for this camera"})
		return
	}

	var req struct {
		DetectionType string       `json:"detectionType" binding:"required"`
		Confidence    float64      `json:"confidence" binding:"required"`
		BoundingBox   models.JSONB `json:"boundingBox"`
		Metadata      models.JSONB `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	detection := models.Detection{
		CameraID:      camera.ID,
		Room:          camera.Room,
		DetectionType: req.DetectionType,
		Confidence:    req.Confidence,
		BoundingBox:   req.BoundingBox,
		Metadata:      req.Metadata,
		Timestamp:     time.Now().UTC(),
	}
	if err := database.DB.Create(&detection).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store detection"})
		return
	}

	now := time.Now().UTC()
	camera.LastMotionDetected = &now
	if err := database.DB.Save(&camera).Error; err != nil {
		log.Printf("⚠️ Failed to stamp last motion on camera %s: %v", camera.ID, err)
	}

	publishChange("detections", services.ActionInsert, detection)

	var alert *models.Alert
	if monitor != nil {
		alert, _ = monitor.ProcessDetection(&detection)
	}

	c.JSON(http.StatusCreated, gin.H{
		"detection": detection,
		"alert":     alert,
	})
}
