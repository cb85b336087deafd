package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Hexoro/Hexward-sub000/models"
)

const openAIBaseURL = "https://api.openai.com/v1"

// GPTClient talks to the OpenAI chat API for patient summaries, detection
// triage and shift reports. Without an API key it degrades to canned
// offline responses so the rest of the system keeps working.
type GPTClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string

	mu              sync.RWMutex
	lastSummaryTime *time.Time
}

// NewGPTClient creates a GPT client. An empty apiKey yields an offline client.
func NewGPTClient(apiKey, model string) *GPTClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := resty.New().
		SetBaseURL(openAIBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &GPTClient{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
	}
}

// Available reports whether real API access is configured
func (g *GPTClient) Available() bool {
	return g.apiKey != ""
}

// LastSummaryTime returns when a summary was last generated
func (g *GPTClient) LastSummaryTime() *time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastSummaryTime
}

func (g *GPTClient) markSummary() {
	now := time.Now().UTC()
	g.mu.Lock()
	g.lastSummaryTime = &now
	g.mu.Unlock()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GPTClient) chat(system, user string, maxTokens int, temperature float64) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var out chatResponse
	resp, err := g.httpClient.R().
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat request failed: %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// SummarizePatient generates a short medical summary from the patient
// record and recent events
func (g *GPTClient) SummarizePatient(patient models.Patient, events []models.PatientEvent) string {
	if !g.Available() {
		return offlinePatientSummary(patient, events)
	}

	summary, err := g.chat(
		"You are an AI medical assistant analyzing patient data in a hospital monitoring system. "+
			"Provide a concise professional summary: current status and trends, notable events, "+
			"potential concerns. At most 4 bullet points.",
		fmt.Sprintf("Analyze this patient data and provide a medical summary:\n\n%s",
			buildPatientContext(patient, events)),
		200, 0.3)
	if err != nil {
		log.Printf("⚠️ GPT patient summary failed: %v", err)
		return offlinePatientSummary(patient, events)
	}

	g.markSummary()
	return summary
}

// DetectionAnalysis is the triage verdict for a camera detection
type DetectionAnalysis struct {
	AlertNeeded bool   `json:"alert_needed"`
	AlertType   string `json:"alert_type,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// AnalyzeDetection decides whether a detection warrants an alert
func (g *GPTClient) AnalyzeDetection(detection models.Detection) DetectionAnalysis {
	if !g.Available() {
		return offlineDetectionAnalysis(detection)
	}

	raw, err := g.chat(
		"You are an AI system triaging hospital camera detections. Respond with JSON only: "+
			`{"alert_needed": bool, "alert_type": "critical|warning|info", "reason": "explanation"}`,
		fmt.Sprintf("Detection: type=%s confidence=%.2f room=%s", detection.DetectionType, detection.Confidence, detection.Room),
		150, 0.2)
	if err != nil {
		log.Printf("⚠️ GPT detection analysis failed: %v", err)
		return offlineDetectionAnalysis(detection)
	}

	var analysis DetectionAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return DetectionAnalysis{AlertNeeded: false, Reason: "analysis parsing error"}
	}
	return analysis
}

// ShiftSummary generates a shift handover narrative
func (g *GPTClient) ShiftSummary(patients []models.Patient, alerts []models.Alert, hours int) string {
	if !g.Available() {
		return offlineShiftSummary(patients, alerts, hours)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Shift length: %d hours. Patients: %d. Alerts: %d.\n", hours, len(patients), len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&sb, "- [%s] %s (%s, room %s)\n", a.AlertType, a.Title, TimeAgo(a.CreatedAt, time.Now()), a.Room)
	}

	summary, err := g.chat(
		"You are an AI assistant writing a concise hospital shift handover report. "+
			"Highlight critical patients, unresolved alerts and follow-ups.",
		sb.String(), 300, 0.3)
	if err != nil {
		log.Printf("⚠️ GPT shift summary failed: %v", err)
		return offlineShiftSummary(patients, alerts, hours)
	}

	g.markSummary()
	return summary
}

func buildPatientContext(patient models.Patient, events []models.PatientEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Patient: %s, room %s, status %s\n", patient.Name, patient.Room, patient.Status)
	if len(patient.Conditions) > 0 {
		fmt.Fprintf(&sb, "Conditions: %s\n", strings.Join(patient.Conditions, ", "))
	}
	if v := patient.Vitals; !v.IsEmpty() {
		if v.HeartRate != nil {
			fmt.Fprintf(&sb, "Heart rate: %d bpm\n", *v.HeartRate)
		}
		if v.BloodPressure != nil {
			fmt.Fprintf(&sb, "Blood pressure: %s\n", *v.BloodPressure)
		}
		if v.Temperature != nil {
			fmt.Fprintf(&sb, "Temperature: %.1f°F\n", *v.Temperature)
		}
		if v.OxygenSaturation != nil {
			fmt.Fprintf(&sb, "SpO2: %d%%\n", *v.OxygenSaturation)
		}
	}
	for _, e := range events {
		fmt.Fprintf(&sb, "Event (%s): %s\n", e.EventType, e.Description)
	}
	return sb.String()
}

func offlinePatientSummary(patient models.Patient, events []models.PatientEvent) string {
	assessment := AssessVitals(patient.Vitals)
	if !assessment.Normal() {
		return fmt.Sprintf("%s (room %s) is %s. Flagged vitals: %s. %d recent events on record.",
			patient.Name, patient.Room, patient.Status, assessment.ConcernSummary(), len(events))
	}
	return fmt.Sprintf("%s (room %s) is %s with vitals in normal range. %d recent events on record.",
		patient.Name, patient.Room, patient.Status, len(events))
}

func offlineDetectionAnalysis(detection models.Detection) DetectionAnalysis {
	// Falls always page staff; everything else stays informational
	if detection.DetectionType == "fall" && detection.Confidence >= 0.5 {
		return DetectionAnalysis{
			AlertNeeded: true,
			AlertType:   string(models.AlertCritical),
			Reason:      fmt.Sprintf("Possible fall detected in %s (confidence %.0f%%)", detection.Room, detection.Confidence*100),
		}
	}
	return DetectionAnalysis{AlertNeeded: false, Reason: "no concerning activity"}
}

func offlineShiftSummary(patients []models.Patient, alerts []models.Alert, hours int) string {
	critical := 0
	for _, p := range patients {
		if p.Status == models.PatientCritical {
			critical++
		}
	}
	unresolved := 0
	for _, a := range alerts {
		if !a.Resolved {
			unresolved++
		}
	}
	return fmt.Sprintf("Shift report (%dh): %d patients under care, %d critical. %d alerts raised, %d still unresolved.",
		hours, len(patients), critical, len(alerts), unresolved)
}
