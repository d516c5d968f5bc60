package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"studypulse-backend/internal/models"
	"studypulse-backend/internal/repository"
	"studypulse-backend/internal/services"
)

// ScheduleGenerationQueue is the Redis list the schedule handler pushes
// jobs onto and the pool pops from.
const ScheduleGenerationQueue = "queue:schedule-generation"

type Pool struct {
	redis        *redis.Client
	gemini       *services.GeminiService
	jobRepo      *repository.JobRepo
	scheduleRepo *repository.ScheduleRepo
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	jobRepo *repository.JobRepo,
	scheduleRepo *repository.ScheduleRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:        redisClient,
		gemini:       gemini,
		jobRepo:      jobRepo,
		scheduleRepo: scheduleRepo,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, ScheduleGenerationQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		// Parse job
		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID: job.ID, Step: 1, StepName: "Generating Schedule",
				EstimatedSecondsRemaining: 20,
			},
		})

		var processErr error
		switch job.Type {
		case "schedule-generation":
			processErr = p.processScheduleGeneration(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processScheduleGeneration(ctx context.Context, job *models.Job) error {
	var req models.GenerateScheduleRequest
	if err := json.Unmarshal(job.ConfigJSON, &req); err != nil {
		return fmt.Errorf("invalid job config: %w", err)
	}

	generated, err := p.gemini.GenerateSchedule(ctx, req)
	if err != nil {
		return err
	}

	schedule := &models.StudySchedule{
		UserID:     job.UserID,
		Status:     "draft",
		WeeklyPlan: generated.WeeklyPlan,
		TotalHours: generated.TotalHours,
		Tips:       generated.Tips,
		Priorities: generated.Priorities,
	}
	if err := p.scheduleRepo.Create(ctx, schedule); err != nil {
		return fmt.Errorf("failed to store schedule: %w", err)
	}

	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultID:   schedule.ID,
			ResultType: "schedule",
		},
	})

	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")
	log.Printf("Job %s completed", job.ID)
}

// handleFailure records the error and tells the client. Failed jobs are
// not retried; the user triggers a fresh generation instead.
func (p *Pool) handleFailure(ctx context.Context, job *models.Job, processErr error) {
	log.Printf("Job %s failed: %v", job.ID, processErr)

	p.jobRepo.UpdateError(ctx, job.ID, processErr.Error())
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")

	code := "GENERATION_FAILED"
	message := "Schedule generation failed. Please try again."

	var rateErr *services.RateLimitError
	var quotaErr *services.QuotaExceededError
	var genErr *services.GenerationError
	switch {
	case errors.As(processErr, &rateErr):
		code = "RATE_LIMITED"
		message = rateErr.Message
	case errors.As(processErr, &quotaErr):
		code = "QUOTA_EXCEEDED"
		message = quotaErr.Message
	case errors.As(processErr, &genErr):
		message = genErr.Message
	}

	p.gemini.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    code,
			ErrorMessage: message,
		},
	})
}
