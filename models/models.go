package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientStatus enum
type PatientStatus string

const (
	PatientStable     PatientStatus = "stable"
	PatientCritical   PatientStatus = "critical"
	PatientMonitoring PatientStatus = "monitoring"
)

// AlertType enum
type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

// CameraStatus enum
type CameraStatus string

const (
	CameraActive      CameraStatus = "active"
	CameraOffline     CameraStatus = "offline"
	CameraMaintenance CameraStatus = "maintenance"
)

// ConsultationStatus enum
type ConsultationStatus string

const (
	ConsultationScheduled ConsultationStatus = "scheduled"
	ConsultationOngoing   ConsultationStatus = "ongoing"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

// ConsultationType enum
type ConsultationType string

const (
	ConsultationRemote   ConsultationType = "remote"
	ConsultationInPerson ConsultationType = "in_person"
)

// MedicationFrequency enum
type MedicationFrequency string

const (
	Every4Hours     MedicationFrequency = "every_4_hours"
	Every6Hours     MedicationFrequency = "every_6_hours"
	Every8Hours     MedicationFrequency = "every_8_hours"
	TwiceDaily      MedicationFrequency = "twice_daily"
	ThreeTimesDaily MedicationFrequency = "three_times_daily"
	OnceDaily       MedicationFrequency = "once_daily"
)

// VitalsSource enum
type VitalsSource string

const (
	SourceManual VitalsSource = "manual"
	SourceSensor VitalsSource = "sensor"
)

// JSONB type for GORM - can handle both objects and arrays
type JSONB struct {
	Data interface{} `json:"-"`
}

// NewJSONB creates a new JSONB from any value
func NewJSONB(v interface{}) JSONB {
	return JSONB{Data: v}
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONB) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.Data)
}

// MarshalJSON implements json.Marshaler
func (j JSONB) MarshalJSON() ([]byte, error) {
	if j.Data == nil {
		return []byte("null"), nil
	}
	return json.Marshal(j.Data)
}

func (j JSONB) Value() (driver.Value, error) {
	if j.Data == nil {
		return nil, nil
	}
	return json.Marshal(j.Data)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		j.Data = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, &j.Data)
}

// StringList stores a list of strings as a JSON column
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, (*[]string)(l))
}

// Vitals is the typed vital-signs record stored on patients and in the
// vitals history. All fields are optional; units are bpm, mmHg string
// ("120/80"), degrees Fahrenheit, percent, breaths per minute.
type Vitals struct {
	HeartRate        *int     `json:"heartRate,omitempty"`
	BloodPressure    *string  `json:"bloodPressure,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	OxygenSaturation *int     `json:"oxygenSaturation,omitempty"`
	RespiratoryRate  *int     `json:"respiratoryRate,omitempty"`
}

func (v Vitals) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *Vitals) Scan(value interface{}) error {
	if value == nil {
		*v = Vitals{}
		return nil
	}
	var bytes []byte
	switch raw := value.(type) {
	case []byte:
		bytes = raw
	case string:
		bytes = []byte(raw)
	default:
		return nil
	}
	return json.Unmarshal(bytes, v)
}

// IsEmpty reports whether no vital sign is set
func (v Vitals) IsEmpty() bool {
	return v.HeartRate == nil && v.BloodPressure == nil && v.Temperature == nil &&
		v.OxygenSaturation == nil && v.RespiratoryRate == nil
}

// Patient model
type Patient struct {
	ID            string        `gorm:"primaryKey;column:id" json:"id"`
	Name          string        `gorm:"column:name;not null" json:"name"`
	Age           *int          `gorm:"column:age" json:"age,omitempty"`
	Room          string        `gorm:"column:room;not null;index" json:"room"`
	Status        PatientStatus `gorm:"column:status;default:stable" json:"status"`
	Conditions    StringList    `gorm:"type:jsonb;column:conditions" json:"conditions"`
	Vitals        Vitals        `gorm:"type:jsonb;column:vitals" json:"vitals"`
	Notes         *string       `gorm:"column:notes" json:"notes,omitempty"`
	Summary       *string       `gorm:"column:summary" json:"summary,omitempty"`
	ImageURL      *string       `gorm:"column:image_url" json:"imageUrl,omitempty"`
	AdmissionDate time.Time     `gorm:"column:admission_date;default:CURRENT_TIMESTAMP" json:"admissionDate"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Events        []PatientEvent `gorm:"foreignKey:PatientID" json:"events,omitempty"`
	Alerts        []Alert        `gorm:"foreignKey:PatientID" json:"alerts,omitempty"`
	VitalsHistory []VitalsRecord `gorm:"foreignKey:PatientID" json:"vitalsHistory,omitempty"`
	Medications   []Medication   `gorm:"foreignKey:PatientID" json:"medications,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PatientEvent model - append-only patient activity log
type PatientEvent struct {
	ID          string   `gorm:"primaryKey;column:id" json:"id"`
	PatientID   string   `gorm:"column:patient_id;index;not null" json:"patientId"`
	EventType   string   `gorm:"column:event_type;not null" json:"eventType"`
	Description string   `gorm:"column:description" json:"description"`
	Metadata    JSONB    `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	Source      string   `gorm:"column:source;default:manual" json:"source"`
	Confidence  *float64 `gorm:"column:confidence" json:"confidence,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (PatientEvent) TableName() string {
	return "patient_events"
}

func (e *PatientEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Alert model. Priority is 1=critical, 2=warning, 3=info; lower number
// sorts first. Resolving an alert also acknowledges it - the store never
// produces resolved=true with acknowledged=false going forward.
type Alert struct {
	ID             string     `gorm:"primaryKey;column:id" json:"id"`
	AlertType      AlertType  `gorm:"column:alert_type;not null;index" json:"alertType"`
	Title          string     `gorm:"column:title;not null" json:"title"`
	Message        string     `gorm:"column:message;not null" json:"message"`
	Room           string     `gorm:"column:room;not null;index" json:"room"`
	PatientID      *string    `gorm:"column:patient_id;index" json:"patientId,omitempty"`
	Priority       int        `gorm:"column:priority;default:2" json:"priority"`
	Acknowledged   bool       `gorm:"column:acknowledged;default:false;index" json:"acknowledged"`
	AcknowledgedBy *string    `gorm:"column:acknowledged_by" json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at" json:"acknowledgedAt,omitempty"`
	Resolved       bool       `gorm:"column:resolved;default:false;index" json:"resolved"`
	ResolvedBy     *string    `gorm:"column:resolved_by" json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	Metadata       JSONB      `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP;index" json:"createdAt"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Camera model
type Camera struct {
	ID                  string       `gorm:"primaryKey;column:id" json:"id"`
	Name                string       `gorm:"column:name;not null" json:"name"`
	Room                string       `gorm:"column:room;not null;index" json:"room"`
	IP                  *string      `gorm:"column:ip" json:"ip,omitempty"`
	RTSPUrl             *string      `gorm:"column:rtsp_url" json:"rtspUrl,omitempty"`
	Status              CameraStatus `gorm:"column:status;default:active" json:"status"`
	Recording           bool         `gorm:"column:recording;default:false" json:"recording"`
	AIMonitoringEnabled bool         `gorm:"column:ai_monitoring_enabled;default:true" json:"aiMonitoringEnabled"`
	LastMotionDetected  *time.Time   `gorm:"column:last_motion_detected" json:"lastMotionDetected,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Detections []Detection `gorm:"foreignKey:CameraID" json:"detections,omitempty"`
}

func (Camera) TableName() string {
	return "cameras"
}

func (c *Camera) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Detection model - written by the monitor service, read-only for clients
type Detection struct {
	ID            string  `gorm:"primaryKey;column:id" json:"id"`
	CameraID      string  `gorm:"column:camera_id;index;not null" json:"cameraId"`
	Room          string  `gorm:"column:room;index" json:"room"`
	DetectionType string  `gorm:"column:detection_type;not null" json:"detectionType"`
	Confidence    float64 `gorm:"column:confidence;not null" json:"confidence"`
	BoundingBox   JSONB   `gorm:"type:jsonb;column:bounding_box" json:"boundingBox,omitempty"`
	Metadata      JSONB   `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	GPTAnalysis   *string `gorm:"column:gpt_analysis" json:"gptAnalysis,omitempty"`
	Processed     bool    `gorm:"column:processed;default:false;index" json:"processed"`

	Timestamp time.Time `gorm:"column:timestamp;default:CURRENT_TIMESTAMP;index" json:"timestamp"`

	Camera *Camera `gorm:"foreignKey:CameraID" json:"camera,omitempty"`
}

func (Detection) TableName() string {
	return "detections"
}

func (d *Detection) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// VitalsRecord model - append-only vitals history, never mutated
type VitalsRecord struct {
	ID         string       `gorm:"primaryKey;column:id" json:"id"`
	PatientID  string       `gorm:"column:patient_id;index;not null" json:"patientId"`
	Vitals     Vitals       `gorm:"type:jsonb;column:vitals;not null" json:"vitals"`
	Source     VitalsSource `gorm:"column:source;default:manual" json:"source"`
	RecordedBy *string      `gorm:"column:recorded_by" json:"recordedBy,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (VitalsRecord) TableName() string {
	return "vitals_records"
}

func (r *VitalsRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Medication model
type Medication struct {
	ID        string              `gorm:"primaryKey;column:id" json:"id"`
	PatientID string              `gorm:"column:patient_id;index;not null" json:"patientId"`
	Name      string              `gorm:"column:name;not null" json:"name"`
	Dosage    string              `gorm:"column:dosage" json:"dosage"`
	Frequency MedicationFrequency `gorm:"column:frequency;not null" json:"frequency"`
	StartTime time.Time           `gorm:"column:start_time;not null" json:"startTime"`
	Active    bool                `gorm:"column:active;default:true" json:"active"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Medication) TableName() string {
	return "medications"
}

func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Consultation model - remote/in-person consultation booking
type Consultation struct {
	ID            string             `gorm:"primaryKey;column:id" json:"id"`
	PatientID     string             `gorm:"column:patient_id;index;not null" json:"patientId"`
	DoctorID      string             `gorm:"column:doctor_id;index;not null" json:"doctorId"`
	StartTime     time.Time          `gorm:"column:start_time;not null;index" json:"startTime"`
	EndTime       time.Time          `gorm:"column:end_time;not null" json:"endTime"`
	Status        ConsultationStatus `gorm:"column:status;default:scheduled;index" json:"status"`
	Type          ConsultationType   `gorm:"column:type;default:remote" json:"type"`
	Diagnosis     *string            `gorm:"column:diagnosis" json:"diagnosis,omitempty"`
	TreatmentPlan *string            `gorm:"column:treatment_plan" json:"treatmentPlan,omitempty"`
	Notes         *string            `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Report model - free-form report with an opaque JSON payload
type Report struct {
	ID          string  `gorm:"primaryKey;column:id" json:"id"`
	Title       string  `gorm:"column:title;not null" json:"title"`
	ReportType  string  `gorm:"column:report_type;not null;index" json:"reportType"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
	Data        JSONB   `gorm:"type:jsonb;column:data" json:"data,omitempty"`
	CreatedBy   *string `gorm:"column:created_by" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP;index" json:"createdAt"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SystemLog model - service audit/event log
type SystemLog struct {
	ID       string  `gorm:"primaryKey;column:id" json:"id"`
	Level    string  `gorm:"column:level;not null" json:"level"`
	Service  string  `gorm:"column:service;not null;index" json:"service"`
	Message  string  `gorm:"column:message;not null" json:"message"`
	UserID   *string `gorm:"column:user_id" json:"userId,omitempty"`
	Metadata JSONB   `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
