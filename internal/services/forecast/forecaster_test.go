package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"StockCast/internal/domain/service"
)

// stubRegressor returns a fixed value from Infer and counts calls.
type stubRegressor struct {
	value      float64
	inferCalls int
	fitCalls   int
}

func (s *stubRegressor) Fit(ctx context.Context, _ [][]float64, _ []float64, _ [][]float64, _ []float64, epochs, _ int, progress service.ProgressFunc) (service.TrainingHistory, error) {
	s.fitCalls++
	hist := service.TrainingHistory{}
	for e := 0; e < epochs; e++ {
		hist.Loss = append(hist.Loss, 0)
		hist.ValLoss = append(hist.ValLoss, 0)
		if progress != nil {
			progress(e+1, epochs, 0, 0)
		}
	}
	return hist, nil
}

func (s *stubRegressor) Infer(_ []float64) (float64, error) {
	s.inferCalls++
	return s.value, nil
}

func (s *stubRegressor) MarshalState() ([]byte, error) { return json.Marshal(s.value) }
func (s *stubRegressor) UnmarshalState(b []byte) error { return json.Unmarshal(b, &s.value) }

// identityScaler returns a scaler whose inverse map is the identity.
func identityScaler() *Scaler { return &Scaler{Min: 0, Max: 1, Fitted: true} }

func TestForecastRollsPredictionsForward(t *testing.T) {
	reg := &stubRegressor{value: 0.4}
	seed := []float64{0.1, 0.2, 0.3}

	out, err := Forecast(context.Background(), reg, identityScaler(), seed, 3, 2)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d values, want 2", len(out))
	}
	for i, v := range out {
		if v != 0.4 {
			t.Fatalf("out[%d] = %g want 0.4", i, v)
		}
	}
	if reg.inferCalls != 2 {
		t.Fatalf("model invoked %d times, want 2", reg.inferCalls)
	}
}

// The trailing-window read must behave identically on the first step (buffer
// == lookback) and later steps (buffer grown past it). An echo model that
// returns its input's last value exposes any divergence.
type echoRegressor struct{ stubRegressor }

func (e *echoRegressor) Infer(window []float64) (float64, error) {
	e.inferCalls++
	return window[len(window)-1] + 1, nil
}

func TestForecastWindowAlwaysTrailing(t *testing.T) {
	reg := &echoRegressor{}
	seed := []float64{1, 2, 3}

	out, err := Forecast(context.Background(), reg, identityScaler(), seed, 3, 4)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := []float64{4, 5, 6, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestForecastZeroHorizon(t *testing.T) {
	reg := &stubRegressor{value: 0.4}
	out, err := Forecast(context.Background(), reg, identityScaler(), []float64{0.1, 0.2, 0.3}, 3, 0)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d values, want 0", len(out))
	}
	if reg.inferCalls != 0 {
		t.Fatalf("model invoked %d times for zero horizon", reg.inferCalls)
	}
}

func TestForecastUsesOnlyTrailingLookbackOfSeed(t *testing.T) {
	// Seed longer than lookback: only the most recent values matter.
	reg := &echoRegressor{}
	out, err := Forecast(context.Background(), reg, identityScaler(), []float64{9, 9, 9, 1, 2, 3}, 3, 1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if out[0] != 4 {
		t.Fatalf("got %g want 4", out[0])
	}
}

func TestForecastErrors(t *testing.T) {
	if _, err := Forecast(context.Background(), nil, identityScaler(), []float64{1, 2, 3}, 3, 1); !errors.Is(err, ErrModelNotTrained) {
		t.Fatalf("nil model: expected ErrModelNotTrained, got %v", err)
	}

	var insuf *InsufficientHistoryError
	_, err := Forecast(context.Background(), &stubRegressor{}, identityScaler(), []float64{1, 2}, 3, 1)
	if !errors.As(err, &insuf) {
		t.Fatalf("short seed: expected InsufficientHistoryError, got %v", err)
	}
	if insuf.Have != 2 || insuf.Need != 3 {
		t.Fatalf("unexpected detail %+v", insuf)
	}
}

func TestForecastCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Forecast(ctx, &stubRegressor{}, identityScaler(), []float64{1, 2, 3}, 3, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestForecastInverseTransformsOutput(t *testing.T) {
	s := &Scaler{Min: 100, Max: 200, Fitted: true}
	out, err := Forecast(context.Background(), &stubRegressor{value: 0.5}, s, []float64{0.1, 0.2, 0.3}, 3, 1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if math.Abs(out[0]-150) > 1e-9 {
		t.Fatalf("got %g want 150", out[0])
	}
}
