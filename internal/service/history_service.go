package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/config"
	"github.com/eduinsight/dropout-backend/internal/features"
	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/repository"
)

// HistoryService records prediction outcomes and serves the history
// read API. Writes go through a Redis queue drained by the
// persistence worker so the request path never blocks on Postgres.
type HistoryService struct {
	predictionRepo *repository.PredictionRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

func NewHistoryService(predictionRepo *repository.PredictionRepository, rdb *redis.Client, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		predictionRepo: predictionRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "history_service").Logger(),
	}
}

// Record queues one prediction outcome for persistence and announces
// it on the live channel. Failures are logged, never surfaced: the
// prediction already succeeded and history is best-effort.
func (s *HistoryService) Record(ctx context.Context, studentID string, record features.Record, result *model.PredictionResult) {
	doc := &model.StoredPrediction{
		ID:                 uuid.New(),
		StudentID:          studentID,
		PredictedLabel:     result.PredictedLabel,
		DropoutProbability: result.DropoutProbability(),
		RiskTier:           result.RiskTier,
		Confidence:         result.Confidence,
		Features:           record,
		CreatedAt:          time.Now().UTC(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal prediction document failed")
		return
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistPredictionsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Msg("Queue prediction for persistence failed")
	}
	if err := s.rdb.Publish(ctx, config.ChannelKey.PredictionsLive, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Publish live prediction failed")
	}
}

// Recent returns the newest predictions across all students.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]model.StoredPrediction, error) {
	return s.predictionRepo.Recent(ctx, limit)
}

// ByStudent returns one student's prediction history.
func (s *HistoryService) ByStudent(ctx context.Context, studentID string, limit int) ([]model.StoredPrediction, error) {
	return s.predictionRepo.ByStudent(ctx, studentID, limit)
}

// Stats aggregates history counts for the dashboard.
func (s *HistoryService) Stats(ctx context.Context) (*model.PredictionStats, error) {
	return s.predictionRepo.Stats(ctx)
}
