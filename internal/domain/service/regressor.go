package service

import "context"

// TrainingHistory records per-epoch diagnostics from a regressor fit.
// Validation loss is evaluated against held-out windows each epoch and
// never influences the learned parameters.
type TrainingHistory struct {
	Loss    []float64 `json:"loss"`
	ValLoss []float64 `json:"val_loss"`
}

// ProgressFunc receives per-epoch progress during a fit. Optional; regressors
// call it after each epoch when non-nil.
type ProgressFunc func(epoch, totalEpochs int, loss, valLoss float64)

// Regressor is the sequence-to-one capability the forecasting core trains
// and queries. Any model that learns "next scaled value from the previous L
// scaled values" satisfies it; nothing framework-specific crosses this
// boundary, plain float slices only.
type Regressor interface {
	// Fit trains on the supervised windows. Validation windows are diagnostic
	// only. Implementations should honor ctx between epochs.
	Fit(ctx context.Context, windows [][]float64, targets []float64,
		valWindows [][]float64, valTargets []float64,
		epochs, batchSize int, progress ProgressFunc) (TrainingHistory, error)

	// Infer predicts the single next scaled value for one window.
	Infer(window []float64) (float64, error)
}

// StatefulRegressor additionally round-trips its learned parameters so the
// model half of the model/scaler pair can be persisted.
type StatefulRegressor interface {
	Regressor
	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
}
