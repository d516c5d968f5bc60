package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"studypulse-backend/internal/middleware"
	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
	"studypulse-backend/internal/services"
)

type EmotionHandler struct {
	emotionRepo *repository.EmotionRepo
	gemini      *services.GeminiService
}

func NewEmotionHandler(emotionRepo *repository.EmotionRepo, gemini *services.GeminiService) *EmotionHandler {
	return &EmotionHandler{emotionRepo: emotionRepo, gemini: gemini}
}

func (h *EmotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateEmotionLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := make(map[string]string)
	if req.Emotion == "" {
		fields["emotion"] = "Emotion is required"
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		fields["confidence"] = "Confidence must be between 0 and 1"
	}
	if req.FocusLevel != nil && (*req.FocusLevel < 1 || *req.FocusLevel > 10) {
		fields["focus_level"] = "Focus level must be between 1 and 10"
	}
	if req.StressLevel != nil && (*req.StressLevel < 1 || *req.StressLevel > 10) {
		fields["stress_level"] = "Stress level must be between 1 and 10"
	}
	if req.Source == "" {
		req.Source = "text"
	}
	if req.Source != "text" && req.Source != "camera" {
		fields["source"] = "Source must be 'text' or 'camera'"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	entry := &models.EmotionLog{
		UserID:      userID,
		SessionID:   req.SessionID,
		Emotion:     req.Emotion,
		Confidence:  req.Confidence,
		FocusLevel:  req.FocusLevel,
		StressLevel: req.StressLevel,
		Mood:        req.Mood,
		Notes:       req.Notes,
		Source:      req.Source,
	}

	if err := h.emotionRepo.Create(r.Context(), entry); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save emotion log", r))
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// Analyze classifies free text into an emotion label via the AI model. The
// result is returned to the client; nothing is persisted until the client
// confirms with POST /emotions.
func (h *EmotionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeEmotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text is required", r))
		return
	}

	analysis, err := h.gemini.AnalyzeEmotion(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *EmotionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 90 {
		days = 7
	}

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	logs, err := h.emotionRepo.ListSince(r.Context(), userID, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load emotion logs", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
