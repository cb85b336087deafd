package services

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/models"
)

// Monitor runs the background monitoring loops: a periodic vitals sweep
// that raises alerts for out-of-range readings, a heartbeat broadcast for
// connected dashboards, and detection triage for camera events.
type Monitor struct {
	db   *gorm.DB
	feed *ChangeFeed
	gpt  *GPTClient

	checkInterval     time.Duration
	heartbeatInterval time.Duration

	detectionCount uint64
	lastSweep      atomic.Value // time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// NewMonitor creates a monitor service
func NewMonitor(db *gorm.DB, feed *ChangeFeed, gpt *GPTClient, checkInterval, heartbeatInterval time.Duration) *Monitor {
	return &Monitor{
		db:                db,
		feed:              feed,
		gpt:               gpt,
		checkInterval:     checkInterval,
		heartbeatInterval: heartbeatInterval,
	}
}

// Start launches the background loops
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})

	go m.vitalsLoop()
	go m.heartbeatLoop()
	log.Println("🧠 Monitor service started")
}

// Stop terminates the background loops
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stop)
	log.Println("🧠 Monitor service stopped")
}

// Running reports whether the loops are active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// DetectionCount returns how many detections were processed since start
func (m *Monitor) DetectionCount() uint64 {
	return atomic.LoadUint64(&m.detectionCount)
}

// LastSweepTime returns when the vitals sweep last completed
func (m *Monitor) LastSweepTime() *time.Time {
	if v, ok := m.lastSweep.Load().(time.Time); ok {
		return &v
	}
	return nil
}

func (m *Monitor) vitalsLoop() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if err := m.SweepVitals(); err != nil {
				log.Printf("⚠️ Vitals sweep failed: %v", err)
			}
		}
	}
}

func (m *Monitor) heartbeatLoop() {
	ticker := time.NewTicker(m.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.feed.Publish("system", ActionUpdate, m.Status())
		}
	}
}

// Status is the live monitor snapshot pushed with each heartbeat
func (m *Monitor) Status() map[string]interface{} {
	var last interface{}
	if t := m.LastSweepTime(); t != nil {
		last = t
	}
	return map[string]interface{}{
		"running":        m.Running(),
		"detectionCount": m.DetectionCount(),
		"lastSweep":      last,
		"gptAvailable":   m.gpt.Available(),
	}
}

// SweepVitals assesses every patient's current vitals and raises one
// unresolved alert per concerning patient. Patients that already have an
// open vitals alert are skipped so the sweep stays idempotent.
func (m *Monitor) SweepVitals() error {
	var patients []models.Patient
	if err := m.db.Find(&patients).Error; err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}

	for _, patient := range patients {
		assessment := AssessVitals(patient.Vitals)
		if assessment.Normal() {
			continue
		}

		var open int64
		m.db.Model(&models.Alert{}).
			Where("patient_id = ? AND resolved = ? AND title = ?", patient.ID, false, vitalsAlertTitle).
			Count(&open)
		if open > 0 {
			continue
		}

		alertType := models.AlertWarning
		priority := 2
		if len(assessment.Concerns) > 1 {
			alertType = models.AlertCritical
			priority = 1
		}

		patientID := patient.ID
		alert := models.Alert{
			AlertType: alertType,
			Title:     vitalsAlertTitle,
			Message:   assessment.ConcernSummary(),
			Room:      patient.Room,
			PatientID: &patientID,
			Priority:  priority,
			Metadata:  models.NewJSONB(map[string]interface{}{"triggers": assessment.Concerns, "source": "vitals_monitor"}),
		}
		if err := m.db.Create(&alert).Error; err != nil {
			log.Printf("⚠️ Failed to create vitals alert for %s: %v", patient.Name, err)
			continue
		}

		m.feed.Publish("alerts", ActionInsert, alert)
		log.Printf("🚨 Vitals alert for %s (room %s): %s", patient.Name, patient.Room, alert.Message)
	}

	m.lastSweep.Store(time.Now().UTC())
	return nil
}

const vitalsAlertTitle = "Vital Signs Alert"

// ProcessDetection triages one camera detection, storing the analysis and
// raising an alert when warranted. Returns the created alert, if any.
func (m *Monitor) ProcessDetection(detection *models.Detection) (*models.Alert, error) {
	atomic.AddUint64(&m.detectionCount, 1)

	analysis := m.gpt.AnalyzeDetection(*detection)

	reason := analysis.Reason
	detection.GPTAnalysis = &reason
	detection.Processed = true
	if err := m.db.Save(detection).Error; err != nil {
		return nil, fmt.Errorf("failed to store detection analysis: %w", err)
	}
	m.feed.Publish("detections", ActionUpdate, detection)

	if !analysis.AlertNeeded {
		return nil, nil
	}

	alertType := models.AlertType(analysis.AlertType)
	switch alertType {
	case models.AlertCritical, models.AlertWarning, models.AlertInfo:
	default:
		alertType = models.AlertWarning
	}
	priority := 2
	if alertType == models.AlertCritical {
		priority = 1
	} else if alertType == models.AlertInfo {
		priority = 3
	}

	alert := models.Alert{
		AlertType: alertType,
		Title:     "AI Detection Alert",
		Message:   analysis.Reason,
		Room:      detection.Room,
		Priority:  priority,
		Metadata: models.NewJSONB(map[string]interface{}{
			"detectionId":   detection.ID,
			"detectionType": detection.DetectionType,
			"confidence":    detection.Confidence,
		}),
	}
	if err := m.db.Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create detection alert: %w", err)
	}

	m.feed.Publish("alerts", ActionInsert, alert)
	log.Printf("🚨 Detection alert in %s: %s", detection.Room, alert.Message)
	return &alert, nil
}
