package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/validator"
)

func bindMood(t *testing.T, body string) (*model.CreateMoodEntryRequest, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/mood",
		bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.CreateMoodEntryRequest
	fields := validator.Bind(c, &req)
	return &req, fields
}

func TestMoodBindingAcceptsZeroSleepHours(t *testing.T) {
	req, fields := bindMood(t,
		`{"student_id":"s-1","mood":"exhausted","stress_level":9,"sleep_hours":0}`)
	if fields != nil {
		t.Fatalf("zero sleep hours must be valid, got %v", fields)
	}
	if req.SleepHours == nil || *req.SleepHours != 0 {
		t.Fatalf("expected sleep_hours 0, got %v", req.SleepHours)
	}
}

func TestMoodBindingRequiresSleepHours(t *testing.T) {
	_, fields := bindMood(t,
		`{"student_id":"s-1","mood":"fine","stress_level":3}`)
	if fields == nil {
		t.Fatal("absent sleep_hours must fail validation")
	}
	if _, ok := fields["sleep_hours"]; !ok {
		t.Fatalf("expected sleep_hours field error, got %v", fields)
	}
}

func TestMoodBindingRejectsOutOfRange(t *testing.T) {
	_, fields := bindMood(t,
		`{"student_id":"s-1","mood":"fine","stress_level":11,"sleep_hours":30}`)
	if fields == nil {
		t.Fatal("expected validation errors")
	}
	if _, ok := fields["stress_level"]; !ok {
		t.Fatalf("expected stress_level error, got %v", fields)
	}
	if _, ok := fields["sleep_hours"]; !ok {
		t.Fatalf("expected sleep_hours error, got %v", fields)
	}
}
