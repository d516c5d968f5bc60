package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studypulse-backend/internal/models"
)

type CompletionRepo struct {
	pool *pgxpool.Pool
}

func NewCompletionRepo(pool *pgxpool.Pool) *CompletionRepo {
	return &CompletionRepo{pool: pool}
}

func (r *CompletionRepo) Create(ctx context.Context, c *models.ScheduleSessionCompletion) error {
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = "completed"
	}

	query := `
		INSERT INTO schedule_session_completions (id, user_id, schedule_id, day, subject, duration_seconds, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.ScheduleID, c.Day, c.Subject, c.DurationSeconds, c.Status,
	).Scan(&c.CreatedAt)
}

// ListSince returns completions created on or after the cutoff, oldest first.
func (r *CompletionRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ScheduleSessionCompletion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, schedule_id, day, subject, duration_seconds, status, created_at
		FROM schedule_session_completions
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make([]models.ScheduleSessionCompletion, 0)
	for rows.Next() {
		var c models.ScheduleSessionCompletion
		if scanErr := rows.Scan(
			&c.ID, &c.UserID, &c.ScheduleID, &c.Day, &c.Subject,
			&c.DurationSeconds, &c.Status, &c.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// CountCompletedToday counts today's completed sessions for a schedule,
// where "today" starts at the given local midnight.
func (r *CompletionRepo) CountCompletedToday(ctx context.Context, userID, scheduleID uuid.UUID, dayStart time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM schedule_session_completions
		WHERE user_id = $1
		  AND schedule_id = $2
		  AND status = 'completed'
		  AND created_at >= $3
	`, userID, scheduleID, dayStart).Scan(&count)
	return count, err
}
