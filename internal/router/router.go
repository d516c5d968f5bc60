package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studypulse-backend/internal/handlers"
	"studypulse-backend/internal/middleware"
	"studypulse-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	emotionHandler *handlers.EmotionHandler,
	scheduleHandler *handlers.ScheduleHandler,
	completionHandler *handlers.CompletionHandler,
	wellbeingHandler *handlers.WellbeingHandler,
	daySummaryHandler *handlers.DaySummaryHandler,
	userHandler *handlers.UserHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Study Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", sessionHandler.Start)
			r.Get("/current", sessionHandler.Current)
			r.Put("/{id}", sessionHandler.Update)
			r.Post("/{id}/stop", sessionHandler.Stop)
		})

		// ──── Emotion Routes ────
		r.Route("/emotions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", emotionHandler.Create)
			r.Post("/analyze", emotionHandler.Analyze)
			r.Get("/", emotionHandler.List)
		})

		// ──── Schedule Routes ────
		r.Route("/schedules", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/generate", scheduleHandler.Generate)
			r.Get("/", scheduleHandler.List)
			r.Get("/active", scheduleHandler.GetActive)
			r.Get("/{id}", scheduleHandler.Get)
			r.Put("/{id}/activate", scheduleHandler.Activate)
			r.Delete("/{id}", scheduleHandler.Delete)
		})

		// ──── Completion Routes ────
		r.Route("/completions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", completionHandler.Create)
		})

		// ──── Wellbeing Routes ────
		r.Route("/wellbeing", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/stats", wellbeingHandler.Stats)
			r.Get("/analytics", wellbeingHandler.Analytics)
		})

		// ──── Day Summary Routes ────
		r.Route("/summary", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/today", daySummaryHandler.Today)
		})

		// ──── User & Settings Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/settings", userHandler.GetSettings)
			r.Put("/settings", userHandler.UpdateSettings)
		})

		// ──── Job Routes ────
		r.Route("/jobs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", jobHandler.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
