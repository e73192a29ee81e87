package forecast

import (
	"errors"
	"testing"
)

func TestBuildWindowsCountAndTargets(t *testing.T) {
	series := make([]float64, 50)
	for i := range series {
		series[i] = float64(i)
	}
	lookback := 7

	windows, targets, err := BuildWindows(series, lookback)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := len(series) - lookback - 1
	if len(windows) != want || len(targets) != want {
		t.Fatalf("got %d windows %d targets, want %d", len(windows), len(targets), want)
	}
	for i := range windows {
		if len(windows[i]) != lookback {
			t.Fatalf("window %d length %d", i, len(windows[i]))
		}
		if windows[i][0] != series[i] {
			t.Fatalf("window %d starts at %g want %g", i, windows[i][0], series[i])
		}
		if targets[i] != series[i+lookback] {
			t.Fatalf("target %d = %g want %g", i, targets[i], series[i+lookback])
		}
	}
}

func TestBuildWindowsCopiesData(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	windows, _, err := BuildWindows(series, 2)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	series[0] = 99
	if windows[0][0] != 1 {
		t.Fatalf("window aliases the input partition")
	}
}

func TestBuildWindowsInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4} {
		series := make([]float64, n)
		_, _, err := BuildWindows(series, 3)
		var insuf *InsufficientDataError
		if !errors.As(err, &insuf) {
			t.Fatalf("n=%d: expected InsufficientDataError, got %v", n, err)
		}
		if insuf.Length != n || insuf.Lookback != 3 {
			t.Fatalf("n=%d: unexpected detail %+v", n, insuf)
		}
	}

	// n = L+2 is the smallest partition producing a single pair.
	windows, _, err := BuildWindows(make([]float64, 5), 3)
	if err != nil {
		t.Fatalf("n=5: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("n=5: got %d windows, want 1", len(windows))
	}
}

func TestSplit(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	train, test := Split(series, 0.7)
	if len(train) != 7 || len(test) != 3 {
		t.Fatalf("got %d/%d, want 7/3", len(train), len(test))
	}
	if train[0] != 1 || train[6] != 7 || test[0] != 8 || test[2] != 10 {
		t.Fatalf("split broke temporal order: %v | %v", train, test)
	}
	if len(train)+len(test) != len(series) {
		t.Fatalf("partitions do not cover the series")
	}
}

// The concrete walkthrough: 10 values, lookback 3, ratio 0.7. The train
// prefix yields exactly 3 pairs and the 3-value test suffix cannot form any.
func TestSplitThenWindowScenario(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	train, test := Split(series, 0.7)

	windows, targets, err := BuildWindows(train, 3)
	if err != nil {
		t.Fatalf("train windows: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("got %d train pairs, want 3", len(windows))
	}
	wantTargets := []float64{4, 5, 6}
	for i, w := range wantTargets {
		if targets[i] != w {
			t.Fatalf("target %d = %g want %g", i, targets[i], w)
		}
	}

	var insuf *InsufficientDataError
	if _, _, err := BuildWindows(test, 3); !errors.As(err, &insuf) {
		t.Fatalf("test partition: expected InsufficientDataError, got %v", err)
	}
}
