package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/models"
)

var startTime = time.Now()

// HealthCheck handles GET /health - liveness probe, no auth
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "hexward-backend",
		"time":    time.Now().UTC(),
	})
}

// GetSystemStatus handles GET /api/status - service health plus host
// resource usage for the admin status page
func GetSystemStatus(c *gin.Context) {
	dbStatus := "ok"
	var userCount int64
	if err := database.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		dbStatus = "error"
	}

	hostInfo := gin.H{}
	if info, err := host.Info(); err == nil {
		hostInfo["hostname"] = info.Hostname
		hostInfo["platform"] = info.Platform
		hostInfo["uptimeSeconds"] = info.Uptime
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		hostInfo["cpuPercent"] = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		hostInfo["memoryPercent"] = vm.UsedPercent
		hostInfo["memoryTotalMB"] = vm.Total / 1024 / 1024
	}

	status := gin.H{
		"service":       "hexward-backend",
		"uptimeSeconds": int(time.Since(startTime).Seconds()),
		"database":      dbStatus,
		"host":          hostInfo,
		"time":          time.Now().UTC(),
	}

	if monitor != nil {
		status["monitor"] = monitor.Status()
	}
	if eventHub != nil {
		status["events"] = eventHub.Stats()
	}
	if natsBus != nil {
		status["bus"] = gin.H{
			"address": natsBus.Address(),
			"stats":   natsBus.GetStats(),
		}
	}
	if gptClient != nil {
		status["gpt"] = gin.H{
			"available":   gptClient.Available(),
			"lastSummary": gptClient.LastSummaryTime(),
		}
	}

	c.JSON(http.StatusOK, status)
}

// GetSystemLogs handles GET /api/status/logs (admin only)
func GetSystemLogs(c *gin.Context) {
	query := database.DB.Model(&models.SystemLog{})

	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if service := c.Query("service"); service != "" {
		query = query.Where("service = ?", service)
	}

	var logs []models.SystemLog
	if err := query.Order("timestamp DESC").Limit(200).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// StartMonitor handles POST /api/status/monitor/start (admin only)
func StartMonitor(c *gin.Context) {
	if monitor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitor not configured"})
		return
	}
	monitor.Start()
	c.JSON(http.StatusOK, gin.H{"running": monitor.Running()})
}

// StopMonitor handles POST /api/status/monitor/stop (admin only)
func StopMonitor(c *gin.Context) {
	if monitor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitor not configured"})
		return
	}
	monitor.Stop()
	c.JSON(http.StatusOK, gin.H{"running": monitor.Running()})
}
