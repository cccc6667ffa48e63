package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/config"
	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/repository"
)

const (
	PersistBatchSize    = 50
	PersistBatchTimeout = 2 * time.Second
	PersistPollTimeout  = 1 * time.Second
)

// PersistenceWorker drains queued prediction documents from Redis and
// writes them to Postgres in batches.
type PersistenceWorker struct {
	predictionRepo *repository.PredictionRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

func NewPersistenceWorker(predictionRepo *repository.PredictionRepository, rdb *redis.Client, log zerolog.Logger) *PersistenceWorker {
	return &PersistenceWorker{
		predictionRepo: predictionRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "persistence_worker").Logger(),
	}
}

// Start runs the drain loop until ctx is cancelled, flushing any
// remaining batch on shutdown.
func (w *PersistenceWorker) Start(ctx context.Context) {
	w.log.Info().Msg("PersistenceWorker started")

	batch := make([]*model.StoredPrediction, 0, PersistBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= PersistBatchSize || time.Since(lastFlush) >= PersistBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, PersistPollTimeout, config.WorkerKey.PersistPredictionsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p model.StoredPrediction
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// flushSafe bulk-inserts a batch, falling back to per-row inserts and
// requeueing rows that still fail.
func (w *PersistenceWorker) flushSafe(ctx context.Context, batch []*model.StoredPrediction) {
	if len(batch) == 0 {
		return
	}

	err := w.predictionRepo.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Predictions persisted")
		return
	}
	w.log.Warn().Err(err).Msg("Bulk insert failed, using fallback")

	for _, p := range batch {
		if err := w.predictionRepo.Insert(ctx, p); err != nil {
			w.log.Error().Err(err).Str("id", p.ID.String()).Msg("Insert failed, requeueing")
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.PersistPredictionsQueue, raw)
		}
	}
}
