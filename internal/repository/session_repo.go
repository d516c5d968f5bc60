package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studypulse-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Start(ctx context.Context, s *models.StudySession) error {
	// Close any open session for the same user first so at most one stays
	// open (idempotent start).
	_, _ = r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET logout_timestamp = NOW(),
			duration_seconds = GREATEST(0, LEAST(86400, EXTRACT(EPOCH FROM (NOW() - login_timestamp))::INT))
		WHERE user_id = $1
		  AND logout_timestamp IS NULL
	`, s.UserID)

	if s.SubjectsStudied == nil {
		s.SubjectsStudied = []string{}
	}

	query := `
		INSERT INTO study_sessions (user_id, subjects_studied, notes, emotion_detected)
		VALUES ($1, $2, $3, $4)
		RETURNING id, login_timestamp, created_at
	`

	return r.pool.QueryRow(ctx, query, s.UserID, s.SubjectsStudied, s.Notes, s.EmotionDetected).Scan(
		&s.ID,
		&s.LoginTimestamp,
		&s.CreatedAt,
	)
}

func (r *SessionRepo) Update(ctx context.Context, sessionID, userID uuid.UUID, req models.UpdateSessionRequest) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET subjects_studied = COALESCE($1, subjects_studied),
			notes = COALESCE($2, notes),
			emotion_detected = COALESCE($3, emotion_detected)
		WHERE id = $4
		  AND user_id = $5
	`, req.SubjectsStudied, req.Notes, req.EmotionDetected, sessionID, userID)
	return err
}

// Stop closes a session exactly once. A second call leaves the original
// logout timestamp and duration untouched.
func (r *SessionRepo) Stop(ctx context.Context, sessionID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET logout_timestamp = CASE WHEN logout_timestamp IS NULL THEN NOW() ELSE logout_timestamp END,
			duration_seconds = CASE
				WHEN logout_timestamp IS NULL THEN GREATEST(0, LEAST(86400, EXTRACT(EPOCH FROM (NOW() - login_timestamp))::INT))
				ELSE duration_seconds
			END
		WHERE id = $1
		  AND user_id = $2
	`, sessionID, userID)
	return err
}

func (r *SessionRepo) GetOpen(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, login_timestamp, logout_timestamp, duration_seconds, subjects_studied, notes, emotion_detected, created_at
		FROM study_sessions
		WHERE user_id = $1 AND logout_timestamp IS NULL
		ORDER BY login_timestamp DESC
		LIMIT 1
	`, userID).Scan(
		&s.ID, &s.UserID, &s.LoginTimestamp, &s.LogoutTimestamp, &s.DurationSeconds,
		&s.SubjectsStudied, &s.Notes, &s.EmotionDetected, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSince returns sessions created on or after the cutoff, oldest first.
func (r *SessionRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, login_timestamp, logout_timestamp, duration_seconds, subjects_studied, notes, emotion_detected, created_at
		FROM study_sessions
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.StudySession, 0)
	for rows.Next() {
		var s models.StudySession
		if scanErr := rows.Scan(
			&s.ID, &s.UserID, &s.LoginTimestamp, &s.LogoutTimestamp, &s.DurationSeconds,
			&s.SubjectsStudied, &s.Notes, &s.EmotionDetected, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
