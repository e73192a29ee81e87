package forecast

import (
	"errors"
	"testing"
)

func seqSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i) / float64(n)
	}
	return s
}

func TestReconstructShapeAndOffsets(t *testing.T) {
	// 40 scaled values, ratio 0.65 -> 26 train / 14 test, lookback 5.
	series := seqSeries(40)
	train, test := Split(series, 0.65)
	lookback := 5

	res, err := Reconstruct(&stubRegressor{value: 0.5}, identityScaler(), train, test, lookback)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	n := len(series)
	if len(res.Actual) != n || len(res.TrainPreds) != n || len(res.TestPreds) != n {
		t.Fatalf("lengths %d/%d/%d, want all %d", len(res.Actual), len(res.TrainPreds), len(res.TestPreds), n)
	}

	trainCount := len(train) - lookback - 1 // 20
	testCount := len(test) - lookback - 1   // 8

	// Train overlay: exactly lookback leading absent markers, then the
	// predictions, then absent to the end.
	for i := 0; i < lookback; i++ {
		if !res.TrainPreds[i].IsAbsent() {
			t.Fatalf("train overlay position %d should be absent", i)
		}
	}
	for i := lookback; i < lookback+trainCount; i++ {
		if res.TrainPreds[i].IsAbsent() {
			t.Fatalf("train overlay position %d should hold a prediction", i)
		}
	}
	for i := lookback + trainCount; i < n; i++ {
		if !res.TrainPreds[i].IsAbsent() {
			t.Fatalf("train overlay position %d should be absent", i)
		}
	}

	// Test overlay: starts after the train predictions plus the structural
	// gap of 2*lookback+1, ends at N-1.
	testStart := trainCount + 2*lookback + 1
	for i := 0; i < testStart; i++ {
		if !res.TestPreds[i].IsAbsent() {
			t.Fatalf("test overlay position %d should be absent", i)
		}
	}
	for i := testStart; i < testStart+testCount; i++ {
		if res.TestPreds[i].IsAbsent() {
			t.Fatalf("test overlay position %d should hold a prediction", i)
		}
	}
	if testStart+testCount != n-1 {
		t.Fatalf("test overlay ends at %d, want N-1 = %d", testStart+testCount, n-1)
	}
	if !res.TestPreds[n-1].IsAbsent() {
		t.Fatalf("final position should be absent")
	}
}

func TestReconstructActualMatchesInverse(t *testing.T) {
	series := seqSeries(30)
	train, test := Split(series, 0.65)
	s := &Scaler{Min: 50, Max: 150, Fitted: true}

	res, err := Reconstruct(&stubRegressor{value: 0.5}, s, train, test, 4)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	for i, v := range series {
		want := v*100 + 50
		if res.Actual[i] != want {
			t.Fatalf("actual[%d] = %g want %g", i, res.Actual[i], want)
		}
	}
}

func TestReconstructIdempotent(t *testing.T) {
	series := seqSeries(30)
	train, test := Split(series, 0.65)
	reg := &stubRegressor{value: 0.3}

	a, err := Reconstruct(reg, identityScaler(), train, test, 4)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := Reconstruct(reg, identityScaler(), train, test, 4)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	for i := range a.TrainPreds {
		if a.TrainPreds[i] != b.TrainPreds[i] && !(a.TrainPreds[i].IsAbsent() && b.TrainPreds[i].IsAbsent()) {
			t.Fatalf("train overlay differs at %d", i)
		}
		if a.TestPreds[i] != b.TestPreds[i] && !(a.TestPreds[i].IsAbsent() && b.TestPreds[i].IsAbsent()) {
			t.Fatalf("test overlay differs at %d", i)
		}
	}
}

func TestReconstructErrors(t *testing.T) {
	train, test := Split(seqSeries(30), 0.65)

	if _, err := Reconstruct(nil, identityScaler(), train, test, 4); !errors.Is(err, ErrModelNotTrained) {
		t.Fatalf("nil model: expected ErrModelNotTrained, got %v", err)
	}

	var insuf *InsufficientDataError
	if _, err := Reconstruct(&stubRegressor{}, identityScaler(), train, test[:3], 4); !errors.As(err, &insuf) {
		t.Fatalf("short test partition: expected InsufficientDataError, got %v", err)
	}
}
