package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"studypulse-backend/internal/models"
)

const emotionAnalysisTimeout = 30 * time.Second

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	redis    *redis.Client
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int, redisClient *redis.Client) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		redis:    redisClient,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// PublishUpdate sends a WebSocket update via Redis pub/sub
func (s *GeminiService) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	s.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", userID.String()), string(data))
}

// GenerateSchedule forwards the constraints to the model and parses the
// reply into a weekly plan. There is no retry on transient failure.
func (s *GeminiService) GenerateSchedule(ctx context.Context, req models.GenerateScheduleRequest) (*models.GeneratedSchedule, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt := buildSchedulePrompt(req)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, mapGeminiError(err)
	}

	rawText := stripMarkdownFences(extractText(resp))

	var schedule models.GeneratedSchedule
	if err := json.Unmarshal([]byte(rawText), &schedule); err != nil {
		// Try to extract a JSON object from surrounding prose.
		start := strings.Index(rawText, "{")
		end := strings.LastIndex(rawText, "}")
		if start >= 0 && end > start {
			if err2 := json.Unmarshal([]byte(rawText[start:end+1]), &schedule); err2 == nil {
				return &schedule, nil
			}
		}
		return nil, &GenerationError{Message: "Schedule generation failed. Please try again."}
	}

	return &schedule, nil
}

// AnalyzeEmotion classifies free text into an emotion label. The call is
// bounded by a 30-second deadline; exceeding it cancels the request.
func (s *GeminiService) AnalyzeEmotion(ctx context.Context, text string) (*models.EmotionAnalysis, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	ctx, cancel := context.WithTimeout(ctx, emotionAnalysisTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`You are an emotion analyst. Classify the emotional state expressed in the text below.

CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.

JSON schema:
{"emotion": "happy"|"sad"|"anxious"|"calm"|"frustrated"|"excited"|"tired"|"neutral", "confidence": 0.0-1.0, "mood": "short free-text mood description"}

---TEXT---
%s
---END---`, text)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &GenerationError{Message: "Emotion analysis timed out. Please try again."}
		}
		return nil, mapGeminiError(err)
	}

	rawText := stripMarkdownFences(extractText(resp))

	var analysis models.EmotionAnalysis
	if err := json.Unmarshal([]byte(rawText), &analysis); err != nil {
		return nil, &GenerationError{Message: "Emotion analysis failed. Please try again."}
	}
	if analysis.Emotion == "" {
		return nil, &GenerationError{Message: "Emotion analysis failed. Please try again."}
	}

	return &analysis, nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// mapGeminiError turns remote-AI failures into the typed errors handlers
// translate to user-facing messages. Rate limits and exhausted quota get
// dedicated messages; everything else stays generic.
func mapGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return &RateLimitError{Message: "AI service is busy right now. Please try again in a moment."}
		case 402, 403:
			return &QuotaExceededError{Message: "AI usage quota has been exhausted. Please check your plan."}
		}
	}
	return fmt.Errorf("Gemini API error: %w", err)
}

func buildSchedulePrompt(req models.GenerateScheduleRequest) string {
	var b strings.Builder

	// Layer 1 — Role
	b.WriteString("You are an expert study planner. Create a weekly study schedule from the constraints below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")

	// Layer 2 — Subjects
	b.WriteString("Subjects and weekly hour targets:\n")
	for _, subject := range req.Subjects {
		if subject.Deadline != nil && *subject.Deadline != "" {
			b.WriteString(fmt.Sprintf("- %s: %.1f hours/week (deadline %s)\n", subject.Subject, subject.HoursPerWeek, *subject.Deadline))
		} else {
			b.WriteString(fmt.Sprintf("- %s: %.1f hours/week\n", subject.Subject, subject.HoursPerWeek))
		}
	}
	b.WriteString("\n")

	// Layer 3 — Fixed commitments
	if req.InstituteTimetable != "" {
		b.WriteString("Institute timetable (do not schedule over these):\n")
		b.WriteString(req.InstituteTimetable)
		b.WriteString("\n\n")
	}
	if req.PersonalEvents != "" {
		b.WriteString("Personal events (do not schedule over these):\n")
		b.WriteString(req.PersonalEvents)
		b.WriteString("\n\n")
	}

	// Layer 4 — Date range
	b.WriteString(fmt.Sprintf("Plan covers %s to %s.\n\n", req.StartDate, req.EndDate))

	// Layer 5 — Output schema
	b.WriteString(`JSON schema:
{"weeklyPlan": [{"day": "Monday", "sessions": [{"time": "HH:MM", "subject": "string", "topic": "string", "type": "study"|"revision"|"practice", "duration_minutes": int}]}], "totalHours": float, "tips": ["string"], "priorities": ["string"]}

Use full English day names. Spread sessions evenly and keep individual sessions between 30 and 120 minutes.
`)

	return b.String()
}
