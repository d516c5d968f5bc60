package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studypulse-backend/internal/models"
)

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *models.StudySchedule) error {
	s.ID = uuid.New()
	if s.Status == "" {
		s.Status = "draft"
	}

	planJSON, err := json.Marshal(s.WeeklyPlan)
	if err != nil {
		return err
	}
	tipsJSON, _ := json.Marshal(s.Tips)
	prioritiesJSON, _ := json.Marshal(s.Priorities)

	query := `
		INSERT INTO study_schedules (id, user_id, status, weekly_plan, total_hours, tips, priorities)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.Status, planJSON, s.TotalHours, tipsJSON, prioritiesJSON,
	).Scan(&s.CreatedAt)
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySchedule, error) {
	s := &models.StudySchedule{}
	var planJSON, tipsJSON, prioritiesJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, weekly_plan, total_hours, tips, priorities, created_at
		FROM study_schedules WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.Status, &planJSON, &s.TotalHours, &tipsJSON, &prioritiesJSON, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(planJSON, &s.WeeklyPlan); err != nil {
		return nil, err
	}
	json.Unmarshal(tipsJSON, &s.Tips)
	json.Unmarshal(prioritiesJSON, &s.Priorities)

	return s, nil
}

// GetActive returns the single active schedule for the user, if any.
func (r *ScheduleRepo) GetActive(ctx context.Context, userID uuid.UUID) (*models.StudySchedule, error) {
	s := &models.StudySchedule{}
	var planJSON, tipsJSON, prioritiesJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, weekly_plan, total_hours, tips, priorities, created_at
		FROM study_schedules
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&s.ID, &s.UserID, &s.Status, &planJSON, &s.TotalHours, &tipsJSON, &prioritiesJSON, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(planJSON, &s.WeeklyPlan); err != nil {
		return nil, err
	}
	json.Unmarshal(tipsJSON, &s.Tips)
	json.Unmarshal(prioritiesJSON, &s.Priorities)

	return s, nil
}

func (r *ScheduleRepo) List(ctx context.Context, userID uuid.UUID) ([]models.StudySchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, status, weekly_plan, total_hours, tips, priorities, created_at
		FROM study_schedules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.StudySchedule, 0)
	for rows.Next() {
		var s models.StudySchedule
		var planJSON, tipsJSON, prioritiesJSON []byte
		if scanErr := rows.Scan(&s.ID, &s.UserID, &s.Status, &planJSON, &s.TotalHours, &tipsJSON, &prioritiesJSON, &s.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		if err := json.Unmarshal(planJSON, &s.WeeklyPlan); err != nil {
			return nil, err
		}
		json.Unmarshal(tipsJSON, &s.Tips)
		json.Unmarshal(prioritiesJSON, &s.Priorities)
		schedules = append(schedules, s)
	}

	return schedules, rows.Err()
}

// Activate marks one schedule active and archives every other active
// schedule for the user in the same transaction.
func (r *ScheduleRepo) Activate(ctx context.Context, scheduleID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE study_schedules SET status = 'archived'
		WHERE user_id = $1 AND status = 'active' AND id <> $2
	`, userID, scheduleID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE study_schedules SET status = 'active'
		WHERE id = $1 AND user_id = $2
	`, scheduleID, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ScheduleRepo) Delete(ctx context.Context, scheduleID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM study_schedules WHERE id = $1 AND user_id = $2", scheduleID, userID)
	return err
}
