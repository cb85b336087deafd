package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gorm.io/gorm"

	"github.com/Hexoro/Hexward-sub000/models"
	"github.com/Hexoro/Hexward-sub000/services"
)

// vitalsMessage is the payload bedside sensors publish. Topic layout is
// hexward/vitals/<patient_id>; the body carries the readings.
type vitalsMessage struct {
	PatientID string        `json:"patientId"`
	Vitals    models.Vitals `json:"vitals"`
	DeviceID  string        `json:"deviceId"`
	Timestamp *time.Time    `json:"timestamp"`
}

// Config for the MQTT vitals subscriber
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// VitalsIngester subscribes to sensor vitals topics and appends the
// readings to each patient's vitals history.
type VitalsIngester struct {
	client mqtt.Client
	db     *gorm.DB
	feed   *services.ChangeFeed
	topic  string
}

// NewVitalsIngester connects to the broker and subscribes. Returns an
// error if the broker is unreachable; callers treat an empty broker URL
// as "sensor ingest disabled" before getting here.
func NewVitalsIngester(cfg Config, db *gorm.DB, feed *services.ChangeFeed) (*VitalsIngester, error) {
	ingester := &VitalsIngester{db: db, feed: feed, topic: cfg.Topic}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnect = func(client mqtt.Client) {
		log.Printf("📡 MQTT connected, subscribing to %s", ingester.topic)
		if token := client.Subscribe(ingester.topic, 1, ingester.handleMessage); token.Wait() && token.Error() != nil {
			log.Printf("❌ MQTT subscribe failed: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("⚠️ MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	ingester.client = client
	return ingester, nil
}

func (v *VitalsIngester) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload vitalsMessage
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		log.Printf("⚠️ Dropping malformed vitals message on %s: %v", msg.Topic(), err)
		return
	}

	if payload.PatientID == "" {
		// Fall back to the topic segment: hexward/vitals/<patient_id>
		payload.PatientID = topicPatientID(msg.Topic())
	}
	if payload.PatientID == "" || payload.Vitals.IsEmpty() {
		log.Printf("⚠️ Dropping vitals message with no patient or readings on %s", msg.Topic())
		return
	}

	var patient models.Patient
	if err := v.db.First(&patient, "id = ?", payload.PatientID).Error; err != nil {
		log.Printf("⚠️ Vitals for unknown patient %s from device %s", payload.PatientID, payload.DeviceID)
		return
	}

	timestamp := time.Now().UTC()
	if payload.Timestamp != nil {
		timestamp = payload.Timestamp.UTC()
	}

	record := models.VitalsRecord{
		PatientID: patient.ID,
		Vitals:    payload.Vitals,
		Source:    models.SourceSensor,
		Timestamp: timestamp,
	}
	if err := v.db.Create(&record).Error; err != nil {
		log.Printf("❌ Failed to store sensor vitals for %s: %v", patient.ID, err)
		return
	}

	patient.Vitals = payload.Vitals
	if err := v.db.Save(&patient).Error; err != nil {
		log.Printf("❌ Failed to update patient vitals snapshot: %v", err)
	}

	if v.feed != nil {
		v.feed.Publish("vitals_records", services.ActionInsert, record)
		v.feed.Publish("patients", services.ActionUpdate, patient)
	}
}

// topicPatientID extracts the trailing topic segment
func topicPatientID(topic string) string {
	for i := len(topic) - 1; i >= 0; i-- {
		if topic[i] == '/' {
			return topic[i+1:]
		}
	}
	return ""
}

// Close disconnects from the broker
func (v *VitalsIngester) Close() {
	if v.client != nil && v.client.IsConnected() {
		v.client.Disconnect(250)
	}
}
