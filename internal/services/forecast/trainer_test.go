package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeModelStore struct {
	saved   bool
	model   []byte
	scaler  []byte
	saveErr error
}

func (f *fakeModelStore) Save(_ string, model, scaler []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = true
	f.model = model
	f.scaler = scaler
	return nil
}

func (f *fakeModelStore) Load(string) (model, scaler []byte, err error) {
	return f.model, f.scaler, nil
}
func (f *fakeModelStore) Delete(string) error { return nil }
func (f *fakeModelStore) Exists(string) bool  { return f.saved }

func TestTrainerComputesUnscaledRMSE(t *testing.T) {
	reg := &stubRegressor{value: 0.5}
	trainPart := []float64{0.1, 0.2, 0.4, 0.5, 0.6, 0.7} // targets 0.4, 0.5, 0.6
	testPart := []float64{0.5, 0.5, 0.5, 0.5}            // single target 0.5

	// Scaler spans 100 price units, so scaled errors blow up 100x.
	s := &Scaler{Min: 0, Max: 100, Fitted: true}
	store := &fakeModelStore{}

	m, err := NewTrainer(store).Train(context.Background(), reg, s, "NFLX", trainPart, testPart, 2, 3, 2, nil)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	wantTrain := 100 * math.Sqrt((0.01+0+0.01)/3)
	if math.Abs(m.TrainRMSE-wantTrain) > 1e-9 {
		t.Fatalf("train rmse %g want %g", m.TrainRMSE, wantTrain)
	}
	if m.TestRMSE != 0 {
		t.Fatalf("test rmse %g want 0", m.TestRMSE)
	}
	if len(m.History.Loss) != 3 || len(m.History.ValLoss) != 3 {
		t.Fatalf("history %d/%d epochs, want 3/3", len(m.History.Loss), len(m.History.ValLoss))
	}
	if reg.fitCalls != 1 {
		t.Fatalf("fit called %d times", reg.fitCalls)
	}
}

func TestTrainerPersistsPairOnSuccess(t *testing.T) {
	store := &fakeModelStore{}
	s := identityScaler()

	_, err := NewTrainer(store).Train(context.Background(), &stubRegressor{value: 0.5}, s, "NFLX",
		seqSeries(20), seqSeries(10), 3, 1, 0, nil)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !store.saved {
		t.Fatalf("model pair not persisted")
	}
	if len(store.model) == 0 || len(store.scaler) == 0 {
		t.Fatalf("persisted halves empty: model=%d scaler=%d", len(store.model), len(store.scaler))
	}
}

func TestTrainerPersistFailureSurfaces(t *testing.T) {
	store := &fakeModelStore{saveErr: errors.New("disk full")}

	_, err := NewTrainer(store).Train(context.Background(), &stubRegressor{value: 0.5}, identityScaler(), "NFLX",
		seqSeries(20), seqSeries(10), 3, 1, 0, nil)
	if err == nil || !errors.Is(err, store.saveErr) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestTrainerInsufficientPartitions(t *testing.T) {
	tr := NewTrainer(nil)
	var insuf *InsufficientDataError

	_, err := tr.Train(context.Background(), &stubRegressor{}, identityScaler(), "NFLX",
		seqSeries(3), seqSeries(10), 3, 1, 0, nil)
	if !errors.As(err, &insuf) {
		t.Fatalf("short train partition: expected InsufficientDataError, got %v", err)
	}

	_, err = tr.Train(context.Background(), &stubRegressor{}, identityScaler(), "NFLX",
		seqSeries(10), seqSeries(4), 3, 1, 0, nil)
	if !errors.As(err, &insuf) {
		t.Fatalf("short test partition: expected InsufficientDataError, got %v", err)
	}
}

func TestTrainerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTrainer(nil).Train(ctx, &stubRegressor{}, identityScaler(), "NFLX",
		seqSeries(20), seqSeries(10), 3, 1, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
