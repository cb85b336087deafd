package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Hexoro/Hexward-sub000/config"
	"github.com/Hexoro/Hexward-sub000/database"
	"github.com/Hexoro/Hexward-sub000/handlers"
	"github.com/Hexoro/Hexward-sub000/ingest"
	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/natsserver"
	"github.com/Hexoro/Hexward-sub000/services"
)

func main() {
	cfg := config.Load()

	// Optional rotating log file alongside console output
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Start embedded NATS server for the internal change feed bus
	natsServer, err := natsserver.New(natsserver.Config{
		Port: cfg.NATSPort,
	})
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()
	log.Printf("📡 Internal NATS server started on port %d", natsServer.Port())

	// Change feed publisher and WebSocket event hub
	changeFeed := services.NewChangeFeed(natsServer)
	eventHub := services.NewEventHub(natsServer)
	go eventHub.Run()
	handlers.SetChangeFeed(changeFeed)
	handlers.SetEventHub(eventHub)
	handlers.SetNATSBus(natsServer)
	log.Println("📺 Event hub initialized")

	// GPT client - canned offline summaries when no API key is set
	gptClient := services.NewGPTClient(cfg.OpenAIKey, cfg.OpenAIModel)
	handlers.SetGPTClient(gptClient)
	if gptClient.Available() {
		log.Println("🤖 GPT client ready")
	} else {
		log.Println("🤖 GPT client in offline mode (no API key)")
	}

	// AI monitor background loops
	monitor := services.NewMonitor(
		database.DB,
		changeFeed,
		gptClient,
		time.Duration(cfg.AlertCheckInterval)*time.Second,
		time.Duration(cfg.HeartbeatInterval)*time.Second,
	)
	monitor.Start()
	defer monitor.Stop()
	handlers.SetMonitor(monitor)
	log.Println("🩺 Patient monitor started")

	// Camera discovery scanner (simulated hardware)
	handlers.SetScanner(services.NewCameraScanner())

	// Optional MQTT vitals ingest from bedside sensors
	if cfg.MQTTBroker != "" {
		ingester, err := ingest.NewVitalsIngester(ingest.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.VitalsTopic,
		}, database.DB, changeFeed)
		if err != nil {
			log.Printf("⚠️ MQTT vitals ingest unavailable: %v", err)
		} else {
			defer ingester.Close()
			log.Printf("📡 MQTT vitals ingest subscribed to %s", cfg.VitalsTopic)
		}
	}

	// Auth setup and first-run admin account
	handlers.ConfigureAuth(cfg.JWTSecret, cfg.TokenExpireMinutes)
	handlers.SeedAdminUser()
	handlers.SetStaticDir(cfg.StaticDir)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check and uploaded files
	router.GET("/health", handlers.HealthCheck)
	if err := os.MkdirAll(cfg.StaticDir, 0o755); err == nil {
		router.Static("/static", cfg.StaticDir)
	} else {
		log.Printf("⚠️ Static dir unavailable: %v", err)
	}

	// Public auth routes
	router.POST("/api/auth/login", handlers.Login)

	// API routes - all behind JWT auth
	api := router.Group("/api")
	api.Use(handlers.AuthMiddleware())
	{
		// Session
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.GET("/me", handlers.Me)
			auth.POST("/logout", handlers.Logout)
		}

		// Change feed WebSocket and hub stats
		events := api.Group("/events")
		{
			events.GET("/ws", handlers.EventStream)
			events.GET("/stats", handlers.RequireRole(models.RoleAdmin), handlers.GetEventHubStats)
		}

		// Patients
		patients := api.Group("/patients")
		{
			patients.GET("", handlers.GetPatients)
			patients.POST("", handlers.CreatePatient)
			patients.GET("/:id", handlers.GetPatient)
			patients.PUT("/:id", handlers.UpdatePatient)
			patients.DELETE("/:id", handlers.RequireRole(models.RoleAdmin), handlers.DeletePatient)
			patients.POST("/:id/photo", handlers.UploadPatientPhoto)
			patients.GET("/:id/events", handlers.GetPatientEvents)
			patients.POST("/:id/events", handlers.CreatePatientEvent)
			patients.POST("/:id/summary", handlers.GeneratePatientSummary)
			patients.GET("/:id/vitals", handlers.GetPatientVitals)
			patients.POST("/:id/vitals", handlers.RecordPatientVitals)
			patients.GET("/:id/medications", handlers.GetPatientMedications)
			patients.POST("/:id/medications", handlers.CreatePatientMedication)
		}

		// Alerts
		alerts := api.Group("/alerts")
		{
			alerts.GET("", handlers.GetAlerts)
			alerts.POST("", handlers.CreateAlert)
			alerts.GET("/stats", handlers.GetAlertStats)
			alerts.GET("/:id", handlers.GetAlert)
			alerts.POST("/:id/acknowledge", handlers.AcknowledgeAlert)
			alerts.POST("/:id/resolve", handlers.ResolveAlert)
			alerts.DELETE("/:id", handlers.RequireRole(models.RoleAdmin), handlers.DeleteAlert)
		}

		// Cameras and detections
		cameras := api.Group("/cameras")
		{
			cameras.GET("", handlers.GetCameras)
			cameras.POST("", handlers.RequireRole(models.RoleAdmin), handlers.CreateCamera)
			cameras.GET("/:id", handlers.GetCamera)
			cameras.PUT("/:id", handlers.RequireRole(models.RoleAdmin), handlers.UpdateCamera)
			cameras.DELETE("/:id", handlers.RequireRole(models.RoleAdmin), handlers.DeleteCamera)
			cameras.GET("/:id/detections", handlers.GetCameraDetections)
			cameras.POST("/:id/detections", handlers.ReportDetection)
		}

		// IP camera discovery (admin only, simulated hardware)
		ipCameras := api.Group("/ip-cameras")
		{
			ipCameras.GET("/brands", handlers.GetSupportedBrands)
			ipCameras.POST("/scan", handlers.RequireRole(models.RoleAdmin), handlers.ScanNetwork)
			ipCameras.POST("/test", handlers.RequireRole(models.RoleAdmin), handlers.TestStream)
			ipCameras.POST("/add", handlers.RequireRole(models.RoleAdmin), handlers.AddIPCamera)
		}

		// Consultations
		consultations := api.Group("/consultations")
		{
			consultations.GET("", handlers.GetConsultations)
			consultations.POST("", handlers.CreateConsultation)
			consultations.GET("/:id", handlers.GetConsultation)
			consultations.PUT("/:id", handlers.UpdateConsultation)
			consultations.DELETE("/:id", handlers.RequireRole(models.RoleAdmin), handlers.DeleteConsultation)
		}

		// Analytics
		analytics := api.Group("/analytics")
		{
			analytics.GET("/system-stats", handlers.GetSystemStats)
			analytics.GET("/alerts-timeline", handlers.GetAlertsTimeline)
			analytics.GET("/room-activity", handlers.GetRoomActivity)
			analytics.POST("/shift-report", handlers.GenerateShiftReport)
		}

		// Reports and exports
		reports := api.Group("/reports")
		{
			reports.GET("", handlers.GetReports)
			reports.POST("", handlers.CreateReport)
			reports.GET("/export/alerts", handlers.ExportAlertsXLSX)
			reports.GET("/export/vitals/:patientId", handlers.ExportVitalsXLSX)
			reports.GET("/:id", handlers.GetReport)
			reports.DELETE("/:id", handlers.RequireRole(models.RoleAdmin), handlers.DeleteReport)
		}

		// Service status
		status := api.Group("/status")
		{
			status.GET("", handlers.GetSystemStatus)
			status.GET("/logs", handlers.RequireRole(models.RoleAdmin), handlers.GetSystemLogs)
			status.POST("/monitor/start", handlers.RequireRole(models.RoleAdmin), handlers.StartMonitor)
			status.POST("/monitor/stop", handlers.RequireRole(models.RoleAdmin), handlers.StopMonitor)
		}
	}

	// Start server
	go func() {
		log.Printf("🚀 %s backend running on http://localhost:%s", cfg.HospitalName, cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("👋 Shutting down")
}
