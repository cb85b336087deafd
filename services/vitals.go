package services

import (
	"fmt"
	"strings"

	"github.com/Hexoro/Hexward-sub000/models"
)

// VitalStatus classifies one vital sign reading
type VitalStatus string

const (
	VitalNormal   VitalStatus = "normal"
	VitalWarning  VitalStatus = "warning"
	VitalAbnormal VitalStatus = "abnormal"
)

// Normal ranges used by the dashboard's vitals coloring
const (
	heartRateMin = 60
	heartRateMax = 100
	spo2Min      = 95
	tempMin      = 97.0
	tempMax      = 99.5
)

// HeartRateStatus flags heart rate outside [60,100] as abnormal
func HeartRateStatus(bpm int) VitalStatus {
	if bpm < heartRateMin || bpm > heartRateMax {
		return VitalAbnormal
	}
	return VitalNormal
}

// OxygenStatus flags oxygen saturation below 95% as abnormal
func OxygenStatus(percent int) VitalStatus {
	if percent < spo2Min {
		return VitalAbnormal
	}
	return VitalNormal
}

// TemperatureStatus flags temperature outside [97,99.5]°F as a warning
func TemperatureStatus(f float64) VitalStatus {
	if f < tempMin || f > tempMax {
		return VitalWarning
	}
	return VitalNormal
}

// VitalsAssessment is the per-metric classification of one vitals record
type VitalsAssessment struct {
	HeartRate        VitalStatus `json:"heartRate,omitempty"`
	OxygenSaturation VitalStatus `json:"oxygenSaturation,omitempty"`
	Temperature      VitalStatus `json:"temperature,omitempty"`
	Concerns         []string    `json:"concerns,omitempty"`
}

// Normal reports whether no metric was flagged
func (a VitalsAssessment) Normal() bool {
	return len(a.Concerns) == 0
}

// AssessVitals classifies every present metric and collects human-readable
// concern lines for alerting. Absent metrics are skipped.
func AssessVitals(v models.Vitals) VitalsAssessment {
	assessment := VitalsAssessment{}

	if v.HeartRate != nil {
		assessment.HeartRate = HeartRateStatus(*v.HeartRate)
		if assessment.HeartRate != VitalNormal {
			assessment.Concerns = append(assessment.Concerns,
				fmt.Sprintf("Heart rate abnormal: %d bpm", *v.HeartRate))
		}
	}

	if v.OxygenSaturation != nil {
		assessment.OxygenSaturation = OxygenStatus(*v.OxygenSaturation)
		if assessment.OxygenSaturation != VitalNormal {
			assessment.Concerns = append(assessment.Concerns,
				fmt.Sprintf("Low oxygen saturation: %d%%", *v.OxygenSaturation))
		}
	}

	if v.Temperature != nil {
		assessment.Temperature = TemperatureStatus(*v.Temperature)
		if assessment.Temperature != VitalNormal {
			assessment.Concerns = append(assessment.Concerns,
				fmt.Sprintf("Temperature out of range: %.1f°F", *v.Temperature))
		}
	}

	return assessment
}

// ConcernSummary joins concern lines into an alert message
func (a VitalsAssessment) ConcernSummary() string {
	return strings.Join(a.Concerns, "; ")
}
