package handlers

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"studypulse-backend/internal/middleware"
	"studypulse-backend/internal/services"
)

type WellbeingHandler struct {
	wellbeing *services.WellbeingService
}

func NewWellbeingHandler(wellbeing *services.WellbeingService) *WellbeingHandler {
	return &WellbeingHandler{wellbeing: wellbeing}
}

func (h *WellbeingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	stats := h.wellbeing.GetStats(r.Context(), userID, time.Now())
	writeJSON(w, http.StatusOK, stats)
}

func (h *WellbeingHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	analytics := h.wellbeing.GetWeeklyAnalytics(r.Context(), userID, time.Now())
	writeJSON(w, http.StatusOK, analytics)
}

// Day summary handler

type DaySummaryHandler struct {
	summary *services.SummaryService
	redis   *redis.Client
}

func NewDaySummaryHandler(summary *services.SummaryService, redisClient *redis.Client) *DaySummaryHandler {
	return &DaySummaryHandler{summary: summary, redis: redisClient}
}

// Today recomputes today's summary on demand. The automatic-delivery mark
// is never written here, so manual reads don't suppress the evening popup;
// ?force=true additionally skips reporting whether it was already shown.
func (h *DaySummaryHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summary, err := h.summary.BuildToday(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build day summary", r))
		return
	}

	resp := map[string]interface{}{"summary": summary}

	if r.URL.Query().Get("force") != "true" {
		trigger, err := h.redis.Get(r.Context(), "summary_shown:"+userID.String()+":"+summary.Date).Result()
		resp["already_shown"] = err == nil
		if err == nil {
			resp["shown_trigger"] = trigger
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
