package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hexoro/Hexward-sub000/models"
)

func TestCreateConsultationOverlapRejected(t *testing.T) {
	db := setupTestDB(t)
	nurse := createTestUser(t, db, models.RoleNurse)
	doctor := createTestUser(t, db, models.RoleRemoteDoctor)

	patient := models.Patient{Name: "Booked", Room: "301"}
	require.NoError(t, db.Create(&patient).Error)
	other := models.Patient{Name: "Other", Room: "302"}
	require.NoError(t, db.Create(&other).Error)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	existing := models.Consultation{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		Status:    models.ConsultationScheduled,
		Type:      models.ConsultationRemote,
	}
	require.NoError(t, db.Create(&existing).Error)

	router := newTestRouter(nurse)
	router.POST("/api/consultations", CreateConsultation)

	// Overlapping slot for the same doctor
	rec := doJSON(t, router, http.MethodPost, "/api/consultations", map[string]interface{}{
		"patientId": other.ID,
		"doctorId":  doctor.ID,
		"startTime": base.Add(30 * time.Minute).Format(time.RFC3339),
		"endTime":   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	requireStatus(t, rec, http.StatusConflict)

	// Back-to-back slot is fine
	rec = doJSON(t, router, http.MethodPost, "/api/consultations", map[string]interface{}{
		"patientId": other.ID,
		"doctorId":  doctor.ID,
		"startTime": base.Add(time.Hour).Format(time.RFC3339),
		"endTime":   base.Add(2 * time.Hour).Format(time.RFC3339),
	})
	requireStatus(t, rec, http.StatusCreated)
}

func TestCreateConsultationIgnoresCancelled(t *testing.T) {
	db := setupTestDB(t)
	nurse := createTestUser(t, db, models.RoleNurse)
	doctor := createTestUser(t, db, models.RoleRemoteDoctor)

	patient := models.Patient{Name: "Rebook", Room: "303"}
	require.NoError(t, db.Create(&patient).Error)

	base := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	cancelled := models.Consultation{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		Status:    models.ConsultationCancelled,
	}
	require.NoError(t, db.Create(&cancelled).Error)

	router := newTestRouter(nurse)
	router.POST("/api/consultations", CreateConsultation)

	rec := doJSON(t, router, http.MethodPost, "/api/consultations", map[string]interface{}{
		"patientId": patient.ID,
		"doctorId":  doctor.ID,
		"startTime": base.Format(time.RFC3339),
		"endTime":   base.Add(time.Hour).Format(time.RFC3339),
	})
	requireStatus(t, rec, http.StatusCreated)

	var created models.Consultation
	decodeBody(t, rec, &created)
	assert.Equal(t, models.ConsultationScheduled, created.Status)
	assert.Equal(t, models.ConsultationRemote, created.Type)
}

func TestCreateConsultationInvalidWindow(t *testing.T) {
	db := setupTestDB(t)
	nurse := createTestUser(t, db, models.RoleNurse)
	doctor := createTestUser(t, db, models.RoleRemoteDoctor)

	patient := models.Patient{Name: "Backward", Room: "304"}
	require.NoError(t, db.Create(&patient).Error)

	router := newTestRouter(nurse)
	router.POST("/api/consultations", CreateConsultation)

	base := time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	rec := doJSON(t, router, http.MethodPost, "/api/consultations", map[string]interface{}{
		"patientId": patient.ID,
		"doctorId":  doctor.ID,
		"startTime": base.Format(time.RFC3339),
		"endTime":   base.Add(-time.Hour).Format(time.RFC3339),
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateConsultationStatus(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleRemoteDoctor)

	patient := models.Patient{Name: "Done", Room: "305"}
	require.NoError(t, db.Create(&patient).Error)

	base := time.Date(2026, 9, 4, 11, 0, 0, 0, time.UTC)
	consultation := models.Consultation{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: base,
		EndTime:   base.Add(time.Hour),
		Status:    models.ConsultationOngoing,
	}
	require.NoError(t, db.Create(&consultation).Error)

	router := newTestRouter(doctor)
	router.PUT("/api/consultations/:id", UpdateConsultation)

	rec := doJSON(t, router, http.MethodPut, "/api/consultations/"+consultation.ID, map[string]interface{}{
		"status":    "completed",
		"diagnosis": "Recovered",
	})
	requireStatus(t, rec, http.StatusOK)

	var updated models.Consultation
	decodeBody(t, rec, &updated)
	assert.Equal(t, models.ConsultationCompleted, updated.Status)
	require.NotNil(t, updated.Diagnosis)
	assert.Equal(t, "Recovered", *updated.Diagnosis)
}
