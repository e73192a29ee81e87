package models

import "time"

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status      string    `json:"status"`
	ModelLoaded bool      `json:"model_loaded"`
	DataLoaded  bool      `json:"data_loaded"`
	Timestamp   time.Time `json:"timestamp"`
}

// ModelConfigInfo echoes the effective model hyperparameters.
type ModelConfigInfo struct {
	Lookback   int     `json:"lookback"`
	TrainRatio float64 `json:"train_ratio"`
	Epochs     int     `json:"epochs"`
	BatchSize  int     `json:"batch_size"`
}

// SystemStatus is the /api/status payload.
type SystemStatus struct {
	ModelLoaded bool            `json:"model_loaded"`
	DataLoaded  bool            `json:"data_loaded"`
	Symbol      string          `json:"symbol"`
	LatestPrice *float64        `json:"latest_price,omitempty"`
	Training    TrainingStatus  `json:"training_status"`
	Config      ModelConfigInfo `json:"config"`
}

// ProgressUpdate is a per-epoch training progress notification pushed to
// websocket subscribers.
type ProgressUpdate struct {
	Epoch       int     `json:"epoch"`
	TotalEpochs int     `json:"total_epochs"`
	Loss        float64 `json:"loss"`
	ValLoss     float64 `json:"val_loss"`
}
