package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studypulse-backend/internal/middleware"
	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
	"studypulse-backend/internal/services"
)

type ScheduleHandler struct {
	scheduleRepo *repository.ScheduleRepo
	jobRepo      *repository.JobRepo
	redis        *redis.Client
}

func NewScheduleHandler(scheduleRepo *repository.ScheduleRepo, jobRepo *repository.JobRepo, redisClient *redis.Client) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleRepo: scheduleRepo,
		jobRepo:      jobRepo,
		redis:        redisClient,
	}
}

// Generate queues an AI schedule-generation job. The reply carries the job
// ID; progress and the finished schedule arrive over the websocket.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := make(map[string]string)
	if len(req.Subjects) == 0 {
		fields["subjects"] = "At least one subject is required"
	}
	for _, subject := range req.Subjects {
		if subject.Subject == "" {
			fields["subjects"] = "Subject name is required"
		}
		if subject.HoursPerWeek <= 0 {
			fields["subjects"] = "Weekly hours must be positive"
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	configBytes, _ := json.Marshal(req)

	job := &models.Job{
		UserID:     userID,
		Type:       "schedule-generation",
		ConfigJSON: configBytes,
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create job", r))
		return
	}

	// Push to Redis queue
	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), "queue:schedule-generation", string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue schedule-generation job %s: %v", job.ID, err)
		_ = h.jobRepo.UpdateStatus(r.Context(), job.ID, "failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue generation job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
	})
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	schedules, err := h.scheduleRepo.List(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load schedules", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

func (h *ScheduleHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	schedule, err := h.scheduleRepo.GetActive(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No active schedule", r))
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid schedule ID", r))
		return
	}

	schedule, err := h.scheduleRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Schedule not found", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if schedule.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// Activate marks a schedule active; any other active schedule for the user
// is archived in the same transaction.
func (h *ScheduleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid schedule ID", r))
		return
	}

	schedule, err := h.scheduleRepo.GetByID(r.Context(), id)
	if err != nil || schedule.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Schedule not found", r))
		return
	}

	if err := h.scheduleRepo.Activate(r.Context(), id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to activate schedule", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule activated"})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid schedule ID", r))
		return
	}

	if err := h.scheduleRepo.Delete(r.Context(), id, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete schedule", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted"})
}

// Completion handler

type CompletionHandler struct {
	completionRepo *repository.CompletionRepo
	summaryService *services.SummaryService
	redis          *redis.Client
}

func NewCompletionHandler(completionRepo *repository.CompletionRepo, summaryService *services.SummaryService, redisClient *redis.Client) *CompletionHandler {
	return &CompletionHandler{
		completionRepo: completionRepo,
		summaryService: summaryService,
		redis:          redisClient,
	}
}

// Create appends a completion record, notifies the user's sockets, then
// re-evaluates the "all planned sessions done" summary trigger.
func (h *CompletionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := make(map[string]string)
	if req.ScheduleID == uuid.Nil {
		fields["schedule_id"] = "Schedule ID is required"
	}
	if req.Day == "" {
		fields["day"] = "Day is required"
	}
	if req.Subject == "" {
		fields["subject"] = "Subject is required"
	}
	if req.DurationSeconds < 0 {
		fields["duration_seconds"] = "Duration must not be negative"
	}
	if req.Status != "" && req.Status != "completed" && req.Status != "skipped" {
		fields["status"] = "Status must be 'completed' or 'skipped'"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	completion := &models.ScheduleSessionCompletion{
		UserID:          userID,
		ScheduleID:      req.ScheduleID,
		Day:             req.Day,
		Subject:         req.Subject,
		DurationSeconds: req.DurationSeconds,
		Status:          req.Status,
	}

	if err := h.completionRepo.Create(r.Context(), completion); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save completion", r))
		return
	}

	payload, _ := json.Marshal(models.WSMessage{Type: "completion_recorded", Payload: completion})
	h.redis.Publish(r.Context(), fmt.Sprintf("user_updates:%s", userID.String()), string(payload))

	// The trigger check runs off the request path; delivery is guarded by
	// the summary service's per-day mark.
	go h.summaryService.OnCompletionRecorded(context.Background(), userID)

	writeJSON(w, http.StatusCreated, completion)
}
