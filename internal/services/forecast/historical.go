package forecast

import (
	"fmt"
	"math"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
)

// Reconstruct maps windowed train/test predictions back onto the original
// series index space. All returned sequences have length N = len(train) +
// len(test); overlay positions outside a predicted range hold NaN.
//
// The train overlay starts at index lookback (the first train window's
// target position). Windowing restarts from zero inside the test partition,
// so the test overlay starts at len(trainPreds) + 2*lookback + 1: the train
// predictions, the lookback skipped at the head of each partition, and the
// one unpaired boundary position. Both halves end one short of a full
// partition for the same trailing-pair reason.
func Reconstruct(
	reg service.Regressor,
	scaler *Scaler,
	trainPart, testPart []float64,
	lookback int,
) (*models.HistoricalResult, error) {
	if reg == nil {
		return nil, ErrModelNotTrained
	}

	trainW, _, err := BuildWindows(trainPart, lookback)
	if err != nil {
		return nil, fmt.Errorf("train partition: %w", err)
	}
	testW, _, err := BuildWindows(testPart, lookback)
	if err != nil {
		return nil, fmt.Errorf("test partition: %w", err)
	}

	trainPreds, err := inferAll(reg, scaler, trainW)
	if err != nil {
		return nil, fmt.Errorf("train predictions: %w", err)
	}
	testPreds, err := inferAll(reg, scaler, testW)
	if err != nil {
		return nil, fmt.Errorf("test predictions: %w", err)
	}

	n := len(trainPart) + len(testPart)

	full := make([]float64, 0, n)
	full = append(full, trainPart...)
	full = append(full, testPart...)
	actual, err := scaler.InverseTransform(full)
	if err != nil {
		return nil, err
	}

	trainOverlay := emptyOverlay(n)
	for i, p := range trainPreds {
		trainOverlay[lookback+i] = models.OptFloat(p)
	}

	testOverlay := emptyOverlay(n)
	testStart := len(trainPreds) + 2*lookback + 1
	for i, p := range testPreds {
		testOverlay[testStart+i] = models.OptFloat(p)
	}

	return &models.HistoricalResult{
		Actual:     actual,
		TrainPreds: trainOverlay,
		TestPreds:  testOverlay,
	}, nil
}

func inferAll(reg service.Regressor, scaler *Scaler, windows [][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	for i, w := range windows {
		yhat, err := reg.Infer(w)
		if err != nil {
			return nil, fmt.Errorf("infer window %d: %w", i, err)
		}
		v, err := scaler.InverseValue(yhat)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func emptyOverlay(n int) []models.OptFloat {
	o := make([]models.OptFloat, n)
	for i := range o {
		o[i] = models.OptFloat(math.NaN())
	}
	return o
}
