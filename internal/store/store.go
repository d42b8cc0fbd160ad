// Package store provides persistence for user prediction records. The
// volatility engine itself persists nothing; predictions are caller state
// assembled from engine outputs.
package store

import (
	"context"
	"time"

	"ivlens/internal/models"
)

// PredictionStore defines the persistence interface for prediction records.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p *models.Prediction) error
	GetPrediction(ctx context.Context, id string) (*models.Prediction, error)
	ListPredictions(ctx context.Context, filter PredictionFilter) ([]models.Prediction, error)
	DeletePrediction(ctx context.Context, id string) error
	Close() error
}

// PredictionFilter narrows prediction queries.
type PredictionFilter struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
