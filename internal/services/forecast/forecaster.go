package forecast

import (
	"context"
	"fmt"

	"StockCast/internal/domain/service"
)

// Forecast produces a horizon of future values autoregressively: each
// predicted scaled value is appended to a growing buffer and the next input
// window is always the trailing lookback values of that buffer, whether the
// buffer is still exactly the seed or has grown past it. Outputs are
// inverse-transformed to price units. horizon 0 returns an empty sequence
// without touching the model.
func Forecast(
	ctx context.Context,
	reg service.Regressor,
	scaler *Scaler,
	seed []float64,
	lookback, horizon int,
) ([]float64, error) {
	if reg == nil {
		return nil, ErrModelNotTrained
	}
	if len(seed) < lookback {
		return nil, &InsufficientHistoryError{Have: len(seed), Need: lookback}
	}
	if horizon == 0 {
		return []float64{}, nil
	}

	buf := make([]float64, lookback, lookback+horizon)
	copy(buf, seed[len(seed)-lookback:])

	scaled := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		yhat, err := reg.Infer(buf[len(buf)-lookback:])
		if err != nil {
			return nil, fmt.Errorf("infer step %d: %w", step+1, err)
		}
		buf = append(buf, yhat)
		scaled = append(scaled, yhat)
	}

	out, err := scaler.InverseTransform(scaled)
	if err != nil {
		return nil, err
	}
	return out, nil
}
