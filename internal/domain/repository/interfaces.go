package repository

import (
	"context"
	"errors"
	"fmt"

	"StockCast/internal/domain/models"
)

// ErrModelNotFound is returned by ModelStore.Load when neither half of the
// model/scaler pair exists.
var ErrModelNotFound = errors.New("no persisted model")

// IncompletePersistenceError reports a model/scaler pair with only one half
// on disk. Loading half a pair is an error: a model fitted against one
// scaling is meaningless under another.
type IncompletePersistenceError struct {
	Present string
	Missing string
}

func (e *IncompletePersistenceError) Error() string {
	return fmt.Sprintf("incomplete persisted pair: %s present but %s missing", e.Present, e.Missing)
}

// SeriesSource fetches a chronologically ordered daily close series for a
// symbol (network collaborator; order preserved, no interpolation).
type SeriesSource interface {
	Fetch(ctx context.Context, symbol string) (*models.Series, error)
}

// BarStore persists fetched daily bars and serves them back when the network
// source is unavailable.
type BarStore interface {
	Init(ctx context.Context) error
	StoreSeries(ctx context.Context, s *models.Series) error
	LoadSeries(ctx context.Context, symbol string) (*models.Series, error)
	Health(ctx context.Context) error
	Close() error
}

// ModelStore persists the fitted model and its scaler as one versioned unit.
// Save writes both halves or neither; Load with exactly one half present
// fails rather than returning a meaningless pair.
type ModelStore interface {
	Save(symbol string, model, scaler []byte) error
	Load(symbol string) (model, scaler []byte, err error)
	Delete(symbol string) error
	Exists(symbol string) bool
}

// Publisher emits training/forecast lifecycle events.
type Publisher interface {
	PublishTraining(ctx context.Context, ev *models.TrainingEvent) error
	PublishForecast(ctx context.Context, ev *models.ForecastEvent) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordTrainingRun(symbol, outcome string)
	RecordTrainingDuration(symbol string, seconds float64)
	RecordRMSE(symbol, split string, value float64)
	RecordForecast(symbol string, horizon int)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
