package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduinsight/dropout-backend/internal/model"
)

type MoodRepository struct {
	pool *pgxpool.Pool
}

func NewMoodRepository(pool *pgxpool.Pool) *MoodRepository {
	return &MoodRepository{pool: pool}
}

func (r *MoodRepository) Insert(ctx context.Context, e *model.MoodEntry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO mood_entries (student_id, mood, stress_level, sleep_hours, notes)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		e.StudentID, e.Mood, e.StressLevel, e.SleepHours, e.Notes).
		Scan(&e.ID, &e.CreatedAt)
}

// Recent returns the newest mood entries, optionally filtered by
// student, most recent first.
func (r *MoodRepository) Recent(ctx context.Context, studentID string, limit int) ([]model.MoodEntry, error) {
	query := `SELECT id, student_id, mood, stress_level, sleep_hours, notes, created_at
	          FROM mood_entries`
	args := []any{}
	if studentID != "" {
		query += ` WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, studentID, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.MoodEntry
	for rows.Next() {
		var e model.MoodEntry
		var notes *string
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Mood, &e.StressLevel,
			&e.SleepHours, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if notes != nil {
			e.Notes = *notes
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
