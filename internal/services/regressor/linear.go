// Package regressor provides concrete sequence regressors satisfying the
// domain Fit/Infer capability. Any model predicting the next scaled value
// from the previous lookback values is substitutable here.
package regressor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"StockCast/internal/domain/service"
)

// Linear is an autoregressive linear model over the lookback window,
// estimated by mini-batch gradient descent on mean squared error. It starts
// from a random-walk prior (unit weight on the most recent value) so the
// fit is deterministic and converges quickly on near-random-walk price
// series.
type Linear struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	lr     float64
	fitted bool
}

var errNotFitted = errors.New("linear regressor not fitted")

// NewLinear creates an untrained model. learningRate <= 0 falls back to a
// conservative default.
func NewLinear(learningRate float64) *Linear {
	if learningRate <= 0 {
		learningRate = 0.01
	}
	return &Linear{lr: learningRate}
}

// Fit estimates weights by mini-batch gradient descent. Validation loss is
// computed against the held-out windows after each epoch and reported
// through history and progress; it never feeds back into the update.
func (m *Linear) Fit(
	ctx context.Context,
	windows [][]float64, targets []float64,
	valWindows [][]float64, valTargets []float64,
	epochs, batchSize int,
	progress service.ProgressFunc,
) (service.TrainingHistory, error) {
	var hist service.TrainingHistory

	if len(windows) == 0 {
		return hist, errors.New("no training windows")
	}
	if len(windows) != len(targets) {
		return hist, fmt.Errorf("window/target length mismatch: %d vs %d", len(windows), len(targets))
	}
	if epochs <= 0 {
		epochs = 1
	}
	if batchSize <= 0 || batchSize > len(windows) {
		batchSize = len(windows)
	}

	lookback := len(windows[0])
	m.Weights = make([]float64, lookback)
	m.Weights[lookback-1] = 1
	m.Bias = 0
	m.fitted = true

	hist.Loss = make([]float64, 0, epochs)
	hist.ValLoss = make([]float64, 0, epochs)

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return hist, err
		}

		for start := 0; start < len(windows); start += batchSize {
			end := start + batchSize
			if end > len(windows) {
				end = len(windows)
			}
			m.step(windows[start:end], targets[start:end])
		}

		loss := m.mse(windows, targets)
		valLoss := m.mse(valWindows, valTargets)
		hist.Loss = append(hist.Loss, loss)
		hist.ValLoss = append(hist.ValLoss, valLoss)

		if progress != nil {
			progress(epoch+1, epochs, loss, valLoss)
		}
	}

	return hist, nil
}

// step applies one gradient update over a batch.
func (m *Linear) step(windows [][]float64, targets []float64) {
	n := float64(len(windows))
	grad := make([]float64, len(m.Weights))
	var gradB float64

	for i, w := range windows {
		e := m.predict(w) - targets[i]
		for j, x := range w {
			grad[j] += 2 * e * x / n
		}
		gradB += 2 * e / n
	}

	for j := range m.Weights {
		m.Weights[j] -= m.lr * grad[j]
	}
	m.Bias -= m.lr * gradB
}

func (m *Linear) predict(window []float64) float64 {
	pred := m.Bias
	for j, x := range window {
		pred += m.Weights[j] * x
	}
	return pred
}

func (m *Linear) mse(windows [][]float64, targets []float64) float64 {
	if len(windows) == 0 {
		return 0
	}
	var sum float64
	for i, w := range windows {
		e := m.predict(w) - targets[i]
		sum += e * e
	}
	return sum / float64(len(windows))
}

// Infer predicts the next scaled value for one window.
func (m *Linear) Infer(window []float64) (float64, error) {
	if !m.fitted {
		return 0, errNotFitted
	}
	if len(window) != len(m.Weights) {
		return 0, fmt.Errorf("window length %d, model expects %d", len(window), len(m.Weights))
	}
	return m.predict(window), nil
}

// MarshalState serializes the learned parameters.
func (m *Linear) MarshalState() ([]byte, error) {
	if !m.fitted {
		return nil, errNotFitted
	}
	return json.Marshal(m)
}

// UnmarshalState restores learned parameters from a persisted model half.
func (m *Linear) UnmarshalState(data []byte) error {
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal model state: %w", err)
	}
	if len(m.Weights) == 0 {
		return errors.New("persisted model has no weights")
	}
	m.fitted = true
	return nil
}

var _ service.StatefulRegressor = (*Linear)(nil)
