package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studypulse-backend/internal/models"
)

type EmotionRepo struct {
	pool *pgxpool.Pool
}

func NewEmotionRepo(pool *pgxpool.Pool) *EmotionRepo {
	return &EmotionRepo{pool: pool}
}

func (r *EmotionRepo) Create(ctx context.Context, e *models.EmotionLog) error {
	e.ID = uuid.New()

	query := `
		INSERT INTO emotion_logs (id, user_id, session_id, emotion, confidence, focus_level, stress_level, mood, notes, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	return r.pool.QueryRow(ctx, query,
		e.ID, e.UserID, e.SessionID, e.Emotion, e.Confidence,
		e.FocusLevel, e.StressLevel, e.Mood, e.Notes, e.Source,
	).Scan(&e.CreatedAt)
}

// ListSince returns logs created on or after the cutoff, oldest first.
func (r *EmotionRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.EmotionLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, session_id, emotion, confidence, focus_level, stress_level, mood, notes, source, created_at
		FROM emotion_logs
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.EmotionLog, 0)
	for rows.Next() {
		var e models.EmotionLog
		if scanErr := rows.Scan(
			&e.ID, &e.UserID, &e.SessionID, &e.Emotion, &e.Confidence,
			&e.FocusLevel, &e.StressLevel, &e.Mood, &e.Notes, &e.Source, &e.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, e)
	}

	return logs, rows.Err()
}
