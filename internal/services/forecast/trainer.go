package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/domain/service"
)

// Trainer drives the external regressor over windowed train/test partitions
// and persists the fitted model together with its scaler as one unit.
type Trainer struct {
	store repository.ModelStore
}

// NewTrainer creates a Trainer. store may be nil to skip persistence (tests).
func NewTrainer(store repository.ModelStore) *Trainer {
	return &Trainer{store: store}
}

// Train windows both partitions, fits the regressor with the test windows as
// a per-epoch held-out validation set, then reports RMSE for both splits in
// real price units (predictions and targets inverse-transformed before the
// error is taken). On success the model/scaler pair is persisted atomically.
func (t *Trainer) Train(
	ctx context.Context,
	reg service.StatefulRegressor,
	scaler *Scaler,
	symbol string,
	trainPart, testPart []float64,
	lookback, epochs, batchSize int,
	progress service.ProgressFunc,
) (*models.Metrics, error) {
	trainW, trainT, err := BuildWindows(trainPart, lookback)
	if err != nil {
		return nil, fmt.Errorf("train partition: %w", err)
	}
	testW, testT, err := BuildWindows(testPart, lookback)
	if err != nil {
		return nil, fmt.Errorf("test partition: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hist, err := reg.Fit(ctx, trainW, trainT, testW, testT, epochs, batchSize, progress)
	if err != nil {
		return nil, fmt.Errorf("regressor fit: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainRMSE, err := t.rmse(reg, scaler, trainW, trainT)
	if err != nil {
		return nil, fmt.Errorf("train rmse: %w", err)
	}
	testRMSE, err := t.rmse(reg, scaler, testW, testT)
	if err != nil {
		return nil, fmt.Errorf("test rmse: %w", err)
	}

	if t.store != nil {
		modelBytes, err := reg.MarshalState()
		if err != nil {
			return nil, fmt.Errorf("marshal model: %w", err)
		}
		scalerBytes, err := json.Marshal(scaler)
		if err != nil {
			return nil, fmt.Errorf("marshal scaler: %w", err)
		}
		if err := t.store.Save(symbol, modelBytes, scalerBytes); err != nil {
			return nil, fmt.Errorf("persist model pair: %w", err)
		}
	}

	return &models.Metrics{TrainRMSE: trainRMSE, TestRMSE: testRMSE, History: hist}, nil
}

// rmse computes root-mean-squared-error between inferred and true targets in
// the original unscaled unit.
func (t *Trainer) rmse(reg service.Regressor, scaler *Scaler, windows [][]float64, targets []float64) (float64, error) {
	var sum float64
	for i, w := range windows {
		pred, err := reg.Infer(w)
		if err != nil {
			return 0, fmt.Errorf("infer window %d: %w", i, err)
		}
		p, err := scaler.InverseValue(pred)
		if err != nil {
			return 0, err
		}
		y, err := scaler.InverseValue(targets[i])
		if err != nil {
			return 0, err
		}
		d := y - p
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(windows))), nil
}
