package models

import (
	"math"
	"strconv"
	"time"

	"StockCast/internal/domain/service"
)

// Metrics carries post-training accuracy in real price units.
type Metrics struct {
	TrainRMSE float64                 `json:"train_rmse"`
	TestRMSE  float64                 `json:"test_rmse"`
	History   service.TrainingHistory `json:"history"`
}

// ForecastResult is an autoregressive multi-day projection. Values and Dates
// both have exactly Horizon elements.
type ForecastResult struct {
	Symbol  string    `json:"symbol"`
	Horizon int       `json:"days"`
	Values  []float64 `json:"predictions"`
	Dates   []string  `json:"dates"`
}

// OptFloat is a float64 that marshals NaN as JSON null. Overlay positions
// without a prediction carry NaN and must stay distinguishable downstream.
type OptFloat float64

// MarshalJSON emits null for NaN, the plain number otherwise.
func (f OptFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts null as NaN.
func (f *OptFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = OptFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = OptFloat(v)
	return nil
}

// IsAbsent reports whether the position holds no prediction.
func (f OptFloat) IsAbsent() bool { return math.IsNaN(float64(f)) }

// HistoricalResult aligns windowed predictions back onto the original series
// index space. All three sequences have length N; overlay positions outside
// the predicted ranges are absent (null over JSON).
type HistoricalResult struct {
	Actual     []float64  `json:"actual"`
	TrainPreds []OptFloat `json:"train_predictions"`
	TestPreds  []OptFloat `json:"test_predictions"`
	Dates      []string   `json:"dates"`
}

// TrainingState enumerates the training session state machine.
type TrainingState string

const (
	TrainingIdle      TrainingState = "idle"
	TrainingRunning   TrainingState = "training"
	TrainingSucceeded TrainingState = "succeeded"
	TrainingFailed    TrainingState = "failed"
)

// TrainingStatus is the externally visible session snapshot.
type TrainingStatus struct {
	State      TrainingState `json:"state"`
	Progress   int           `json:"progress"`
	Message    string        `json:"message"`
	Error      string        `json:"error,omitempty"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Result     *Metrics      `json:"result,omitempty"`
}

// TrainingEvent is published to Kafka when a training run finishes.
type TrainingEvent struct {
	Symbol     string    `json:"symbol"`
	State      string    `json:"state"`
	TrainRMSE  float64   `json:"train_rmse,omitempty"`
	TestRMSE   float64   `json:"test_rmse,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// ForecastEvent is published to Kafka for each produced forecast.
type ForecastEvent struct {
	Symbol    string    `json:"symbol"`
	Horizon   int       `json:"horizon"`
	FirstDate string    `json:"first_date"`
	LastValue float64   `json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
}
