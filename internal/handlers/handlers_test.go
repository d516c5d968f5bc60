package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studypulse-backend/internal/models"
	"studypulse-backend/internal/services"
)

// ─── Error Envelope Tests ───

func TestErrorResp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wellbeing/stats", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "No active schedule", req)

	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Error.Code)
	}
	if resp.Error.Message != "No active schedule" {
		t.Errorf("message = %q", resp.Error.Message)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", resp.Error.RequestID)
	}
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "taken"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "missing"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "nope"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "denied"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"quota", &services.QuotaExceededError{Message: "empty tank"}, http.StatusPaymentRequired, "QUOTA_EXCEEDED"},
		{"generation", &services.GenerationError{Message: "failed"}, http.StatusInternalServerError, "GENERATION_FAILED"},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/test", nil)

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)

	handleServiceError(rr, req, &services.ValidationError{
		Fields: map[string]string{"password": "too short"},
	})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Error.Fields["password"] != "too short" {
		t.Errorf("fields = %v", resp.Error.Fields)
	}
}

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "Session started"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["message"] != "Session started" {
		t.Errorf("message = %q", result["message"])
	}
}

// ─── Request Shape Tests ───

func TestCreateCompletionRequest_Parsing(t *testing.T) {
	body := `{"schedule_id":"11111111-2222-3333-4444-555555555555","day":"Monday","subject":"Math","duration_seconds":3600,"status":"completed"}`

	var req models.CreateCompletionRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("failed to parse request: %v", err)
	}

	if req.Day != "Monday" || req.Subject != "Math" {
		t.Errorf("parsed = %+v", req)
	}
	if req.DurationSeconds != 3600 {
		t.Errorf("duration = %d, want 3600", req.DurationSeconds)
	}
}

func TestGenerateScheduleRequest_Parsing(t *testing.T) {
	body := `{"subjects":[{"subject":"Math","hours_per_week":6,"deadline":"2025-07-01"}],"institute_timetable":"Mon 09:00 lectures","start_date":"2025-06-02","end_date":"2025-06-08"}`

	var req models.GenerateScheduleRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("failed to parse request: %v", err)
	}

	if len(req.Subjects) != 1 || req.Subjects[0].HoursPerWeek != 6 {
		t.Errorf("subjects = %+v", req.Subjects)
	}
	if req.Subjects[0].Deadline == nil || *req.Subjects[0].Deadline != "2025-07-01" {
		t.Errorf("deadline = %v", req.Subjects[0].Deadline)
	}
}
