package regressor

import (
	"context"
	"errors"
	"testing"
)

func makeWindows(series []float64, lookback int) ([][]float64, []float64) {
	var windows [][]float64
	var targets []float64
	for i := 0; i < len(series)-lookback-1; i++ {
		w := make([]float64, lookback)
		copy(w, series[i:i+lookback])
		windows = append(windows, w)
		targets = append(targets, series[i+lookback])
	}
	return windows, targets
}

func TestLinearFitsRandomWalkExactly(t *testing.T) {
	// next == last: the random-walk prior is already the optimum, so the
	// first epoch loss must be zero.
	series := []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3}
	windows, targets := makeWindows(series, 3)

	m := NewLinear(0.01)
	hist, err := m.Fit(context.Background(), windows, targets, nil, nil, 5, 2, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if hist.Loss[0] != 0 {
		t.Fatalf("first epoch loss %g, want 0", hist.Loss[0])
	}

	got, err := m.Infer([]float64{0.3, 0.3, 0.3})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if got != 0.3 {
		t.Fatalf("infer %g, want 0.3", got)
	}
}

func TestLinearLossDecreasesOnTrend(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = 0.1 + 0.02*float64(i)
	}
	windows, targets := makeWindows(series, 4)

	m := NewLinear(0.05)
	hist, err := m.Fit(context.Background(), windows, targets, windows, targets, 50, 8, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	first, last := hist.Loss[0], hist.Loss[len(hist.Loss)-1]
	if last >= first {
		t.Fatalf("loss did not decrease: first %g last %g", first, last)
	}
	if len(hist.ValLoss) != 50 {
		t.Fatalf("val loss history %d epochs, want 50", len(hist.ValLoss))
	}
}

func TestLinearDeterministic(t *testing.T) {
	series := make([]float64, 30)
	for i := range series {
		series[i] = float64(i%7) / 10
	}
	windows, targets := makeWindows(series, 3)

	a := NewLinear(0.02)
	b := NewLinear(0.02)
	if _, err := a.Fit(context.Background(), windows, targets, nil, nil, 10, 4, nil); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if _, err := b.Fit(context.Background(), windows, targets, nil, nil, 10, 4, nil); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	for i := range a.Weights {
		if a.Weights[i] != b.Weights[i] {
			t.Fatalf("weights diverge at %d: %g vs %g", i, a.Weights[i], b.Weights[i])
		}
	}
	if a.Bias != b.Bias {
		t.Fatalf("bias diverges: %g vs %g", a.Bias, b.Bias)
	}
}

func TestLinearStateRoundTrip(t *testing.T) {
	series := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	windows, targets := makeWindows(series, 3)

	m := NewLinear(0.02)
	if _, err := m.Fit(context.Background(), windows, targets, nil, nil, 5, 0, nil); err != nil {
		t.Fatalf("fit: %v", err)
	}

	state, err := m.MarshalState()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewLinear(0)
	if err := restored.UnmarshalState(state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	window := []float64{0.4, 0.5, 0.6}
	want, err := m.Infer(window)
	if err != nil {
		t.Fatalf("infer original: %v", err)
	}
	got, err := restored.Infer(window)
	if err != nil {
		t.Fatalf("infer restored: %v", err)
	}
	if got != want {
		t.Fatalf("restored model predicts %g, original %g", got, want)
	}
}

func TestLinearErrors(t *testing.T) {
	m := NewLinear(0.01)
	if _, err := m.Infer([]float64{1, 2, 3}); err == nil {
		t.Fatalf("infer before fit should fail")
	}
	if _, err := m.MarshalState(); err == nil {
		t.Fatalf("marshal before fit should fail")
	}
	if _, err := m.Fit(context.Background(), nil, nil, nil, nil, 1, 0, nil); err == nil {
		t.Fatalf("fit with no windows should fail")
	}

	series := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	windows, targets := makeWindows(series, 2)
	if _, err := m.Fit(context.Background(), windows, targets, nil, nil, 1, 0, nil); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Infer([]float64{1, 2, 3}); err == nil {
		t.Fatalf("infer with wrong window length should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Fit(ctx, windows, targets, nil, nil, 10, 0, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
