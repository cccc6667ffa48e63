package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/repository"
)

type MoodService struct {
	moodRepo *repository.MoodRepository
	log      zerolog.Logger
}

func NewMoodService(moodRepo *repository.MoodRepository, log zerolog.Logger) *MoodService {
	return &MoodService{
		moodRepo: moodRepo,
		log:      log.With().Str("component", "mood_service").Logger(),
	}
}

func (s *MoodService) Create(ctx context.Context, e *model.MoodEntry) error {
	return s.moodRepo.Insert(ctx, e)
}

func (s *MoodService) Recent(ctx context.Context, studentID string, limit int) ([]model.MoodEntry, error) {
	return s.moodRepo.Recent(ctx, studentID, limit)
}
