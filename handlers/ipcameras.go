package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// GetSupportedBrands handles GET /api/ip-cameras/brands
func GetSupportedBrands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": services.SupportedBrands})
}

// ScanNetwork handles POST /api/ip-cameras/scan (admin only). The scan is
// simulated; no packets leave the host.
func ScanNetwork(c *gin.Context) {
	var req struct {
		Network string `json:"network" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	results, err := scanner.ScanNetwork(req.Network)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid network range: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"network": req.Network,
		"found":   len(results),
		"cameras": results,
	})
}

// TestStream handles POST /api/ip-cameras/test (admin only)
func TestStream(c *gin.Context) {
	var req struct {
		RTSPUrl string `json:"rtspUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ok, detail := scanner.TestStream(req.RTSPUrl)
	c.JSON(http.StatusOK, gin.H{
		"rtspUrl": req.RTSPUrl,
		"success": ok,
		"detail":  detail,
	})
}

// AddIPCamera handles POST /api/ip-cameras/add (admin only). Registers a
// discovered camera as a monitored Camera row after a stream check.
func AddIPCamera(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Room    string `json:"room" binding:"required"`
		IP      string `json:"ip" binding:"required"`
		RTSPUrl string `json:"rtspUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ok, detail := scanner.TestStream(req.RTSPUrl)
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Stream check failed", "detail": detail})
		return
	}

	camera := models.Camera{
		Name:                req.Name,
		Room:                req.Room,
		IP:                  &req.IP,
		RTSPUrl:             &req.RTSPUrl,
		Status:              models.CameraActive,
		AIMonitoringEnabled: true,
	}
	if err := database.DB.Create(&camera).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register camera"})
		return
	}

	publishChange("cameras", services.ActionInsert, camera)
	c.JSON(http.StatusCreated, camera)
}
