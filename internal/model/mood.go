package model

import "time"

// MoodEntry is a student's self-reported wellbeing check-in, tracked
// alongside dropout risk by advisory staff.
type MoodEntry struct {
	ID          int       `json:"id"`
	StudentID   string    `json:"student_id"`
	Mood        string    `json:"mood"`
	StressLevel int       `json:"stress_level"`
	SleepHours  float64   `json:"sleep_hours"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateMoodEntryRequest is the payload for recording a mood entry.
// SleepHours is a pointer because 0 is a legitimate reported value and
// must stay distinguishable from an absent field.
type CreateMoodEntryRequest struct {
	StudentID   string   `json:"student_id" binding:"required,min=1,max=64"`
	Mood        string   `json:"mood" binding:"required,min=1,max=32"`
	StressLevel int      `json:"stress_level" binding:"required,min=1,max=10"`
	SleepHours  *float64 `json:"sleep_hours" binding:"required,min=0,max=24"`
	Notes       string   `json:"notes" binding:"omitempty,max=1000"`
}
