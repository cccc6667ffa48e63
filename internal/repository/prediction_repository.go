package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduinsight/dropout-backend/internal/model"
)

// PredictionRepository handles prediction history persistence.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

// Insert persists a single prediction row.
func (r *PredictionRepository) Insert(ctx context.Context, p *model.StoredPrediction) error {
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO predictions
		   (id, student_id, predicted_label, dropout_probability, risk_level, confidence, features, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, nullable(p.StudentID), p.PredictedLabel, p.DropoutProbability,
		string(p.RiskTier), p.Confidence, featuresJSON, p.CreatedAt)
	return err
}

// BulkInsert persists a batch of predictions in one round-trip using
// UNNEST arrays.
func (r *PredictionRepository) BulkInsert(ctx context.Context, batch []*model.StoredPrediction) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	studentIDs := make([]*string, n)
	labels := make([]string, n)
	dropoutProbs := make([]float64, n)
	riskLevels := make([]string, n)
	confidences := make([]float64, n)
	featureDocs := make([]string, n)
	createdAts := make([]time.Time, n)

	for i, p := range batch {
		featuresJSON, err := json.Marshal(p.Features)
		if err != nil {
			return err
		}
		ids[i] = p.ID
		studentIDs[i] = nullable(p.StudentID)
		labels[i] = p.PredictedLabel
		dropoutProbs[i] = p.DropoutProbability
		riskLevels[i] = string(p.RiskTier)
		confidences[i] = p.Confidence
		featureDocs[i] = string(featuresJSON)
		createdAts[i] = p.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO predictions
		  (id, student_id, predicted_label, dropout_probability, risk_level, confidence, features, created_at)
		SELECT u.id, u.student_id, u.predicted_label, u.dropout_probability,
		       u.risk_level, u.confidence, u.features::jsonb, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::float8[],
			$5::text[],
			$6::float8[],
			$7::text[],
			$8::timestamptz[]
		) AS u (id, student_id, predicted_label, dropout_probability, risk_level, confidence, features, created_at)`,
		ids, studentIDs, labels, dropoutProbs, riskLevels, confidences, featureDocs, createdAts)
	return err
}

// Recent returns the newest predictions, most recent first.
func (r *PredictionRepository) Recent(ctx context.Context, limit int) ([]model.StoredPrediction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, predicted_label, dropout_probability, risk_level, confidence, features, created_at
		 FROM predictions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPredictions(rows)
}

// ByStudent returns a student's prediction history, most recent first.
func (r *PredictionRepository) ByStudent(ctx context.Context, studentID string, limit int) ([]model.StoredPrediction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, predicted_label, dropout_probability, risk_level, confidence, features, created_at
		 FROM predictions WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPredictions(rows)
}

// Stats aggregates prediction counts for the dashboard.
func (r *PredictionRepository) Stats(ctx context.Context) (*model.PredictionStats, error) {
	stats := &model.PredictionStats{
		ByRiskTier:  make(map[model.RiskTier]int),
		ByPredicted: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT risk_level, predicted_label, COUNT(*) FROM predictions GROUP BY risk_level, predicted_label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var risk, label string
		var count int
		if err := rows.Scan(&risk, &label, &count); err != nil {
			return nil, err
		}
		stats.ByRiskTier[model.RiskTier(risk)] += count
		stats.ByPredicted[label] += count
		stats.Total += count
	}
	return stats, rows.Err()
}

type predictionRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPredictions(rows predictionRows) ([]model.StoredPrediction, error) {
	var out []model.StoredPrediction
	for rows.Next() {
		var p model.StoredPrediction
		var studentID *string
		var featuresJSON []byte
		if err := rows.Scan(&p.ID, &studentID, &p.PredictedLabel, &p.DropoutProbability,
			&p.RiskTier, &p.Confidence, &featuresJSON, &p.CreatedAt); err != nil {
			return nil, err
		}
		if studentID != nil {
			p.StudentID = *studentID
		}
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// nullable turns an empty string into a SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
