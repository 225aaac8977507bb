package doctor_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/booking-api/internal/handler/doctor"
	"github.com/clinicdesk/booking-api/internal/model"
	"github.com/clinicdesk/booking-api/internal/repository/memory"
	"github.com/clinicdesk/booking-api/internal/service/schedule"
)

func newServer(t *testing.T) (*gin.Engine, *memory.AppointmentRepository, *model.Doctor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctors := memory.NewDoctorRepository()
	appts := memory.NewAppointmentRepository()
	doc := &model.Doctor{Name: "Dr. Mehta", WorkStart: "09:00", WorkEnd: "17:00"}
	require.NoError(t, doctors.Create(context.Background(), doc))

	svc := schedule.NewService(doctors, appts, schedule.Defaults{}, nil, zerolog.Nop())

	engine := gin.New()
	doctor.NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, appts, doc
}

func get(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetAvailableSlots(t *testing.T) {
	engine, _, doc := newServer(t)

	w, body := get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/available?date=2025-12-03", doc.ID))
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	slots := data["slots"].([]interface{})
	assert.Len(t, slots, 31)
	assert.Equal(t, float64(30), data["duration_minutes"])

	first := slots[0].(map[string]interface{})
	assert.True(t, strings.Contains(first["start"].(string), "09:00"))
}

func TestGetAvailableSlotsSkipsBusy(t *testing.T) {
	engine, appts, doc := newServer(t)

	busyStart := time.Date(2025, time.December, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, appts.Insert(context.Background(), &model.Appointment{
		DoctorID:    doc.ID,
		PatientName: "Bob",
		StartTime:   busyStart,
		EndTime:     busyStart.Add(30 * time.Minute),
		ApptType:    "General Consultation",
	}))

	w, body := get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/available?date=2025-12-03", doc.ID))
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	slots := data["slots"].([]interface{})
	assert.Len(t, slots, 28)
}

func TestGetAvailableSlotsErrors(t *testing.T) {
	engine, _, doc := newServer(t)

	w, _ := get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/available", doc.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/available?date=december", doc.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/available?date=2025-12-03&appt_type=Telepathy", doc.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = get(t, engine, "/api/v1/doctors/a2f0cf74-08d7-4be6-b0a4-55b9b2f5e66b/available?date=2025-12-03")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSchedule(t *testing.T) {
	engine, appts, doc := newServer(t)

	// metadata only without a date
	w, body := get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/schedule", doc.ID))
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	docData := data["doctor"].(map[string]interface{})
	assert.Equal(t, "Dr. Mehta", docData["name"])
	assert.Equal(t, "09:00", docData["work_start"])
	_, hasAppts := data["appointments"]
	assert.False(t, hasAppts)

	start := time.Date(2025, time.December, 3, 11, 0, 0, 0, time.UTC)
	require.NoError(t, appts.Insert(context.Background(), &model.Appointment{
		DoctorID:    doc.ID,
		PatientName: "Carol",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		ApptType:    "General Consultation",
	}))

	w, body = get(t, engine, fmt.Sprintf("/api/v1/doctors/%s/schedule?date=2025-12-03", doc.ID))
	require.Equal(t, http.StatusOK, w.Code)
	data = body["data"].(map[string]interface{})
	assert.Len(t, data["appointments"].([]interface{}), 1)
}

func TestCreateDoctor(t *testing.T) {
	engine, _, _ := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors",
		strings.NewReader(`{"name": "Dr. Rao", "work_start": "08:00", "work_end": "14:00"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// malformed working hours rejected by the hhmm validator
	req = httptest.NewRequest(http.MethodPost, "/api/v1/doctors",
		strings.NewReader(`{"name": "Dr. Rao", "work_start": "8am"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
