package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/repository"
	"StockCast/internal/services/forecast"
	"StockCast/internal/services/regressor"
	xlogger "StockCast/pkg/logger"
)

type fakeSource struct {
	series *models.Series
	err    error
	calls  int
}

func (f *fakeSource) Fetch(_ context.Context, symbol string) (*models.Series, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

type fakeBars struct {
	stored *models.Series
}

func (f *fakeBars) Init(context.Context) error { return nil }
func (f *fakeBars) StoreSeries(_ context.Context, s *models.Series) error {
	f.stored = s
	return nil
}
func (f *fakeBars) LoadSeries(_ context.Context, symbol string) (*models.Series, error) {
	if f.stored == nil {
		return &models.Series{Symbol: symbol}, nil
	}
	return f.stored, nil
}
func (f *fakeBars) Health(context.Context) error { return nil }
func (f *fakeBars) Close() error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordTrainingRun(string, string)      {}
func (nopMetrics) RecordTrainingDuration(string, float64) {}
func (nopMetrics) RecordRMSE(string, string, float64)    {}
func (nopMetrics) RecordForecast(string, int)            {}
func (nopMetrics) RecordLastPrice(string, float64)       {}
func (nopMetrics) RecordError(string)                    {}
func (nopMetrics) RecordLatency(string, float64)         {}

// blockingRegressor holds Fit until released, for exercising busy rejection.
type blockingRegressor struct {
	release chan struct{}
}

func (b *blockingRegressor) Fit(ctx context.Context, _ [][]float64, _ []float64, _ [][]float64, _ []float64, _, _ int, _ domsvc.ProgressFunc) (domsvc.TrainingHistory, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return domsvc.TrainingHistory{}, ctx.Err()
	}
	return domsvc.TrainingHistory{Loss: []float64{0}, ValLoss: []float64{0}}, nil
}
func (b *blockingRegressor) Infer([]float64) (float64, error) { return 0.5, nil }
func (b *blockingRegressor) MarshalState() ([]byte, error)    { return json.Marshal(0.5) }
func (b *blockingRegressor) UnmarshalState([]byte) error      { return nil }

func testSeries(n int) *models.Series {
	s := &models.Series{Symbol: "NFLX"}
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		s.Points = append(s.Points, models.PricePoint{
			Date:  day,
			Close: 100 + float64(i) + 3*float64(i%5),
		})
		day = day.AddDate(0, 0, 1)
	}
	return s
}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestService(t *testing.T, source domrepo.SeriesSource, bars domrepo.BarStore, newReg func() domsvc.StatefulRegressor) *PredictorService {
	t.Helper()
	if newReg == nil {
		newReg = func() domsvc.StatefulRegressor { return regressor.NewLinear(0.05) }
	}
	cfg := PredictorConfig{
		Symbol:       "NFLX",
		Lookback:     4,
		TrainRatio:   0.65,
		Epochs:       10,
		BatchSize:    8,
		LearningRate: 0.05,
	}
	store := repository.NewFileModelStore(t.TempDir())
	return NewPredictorService(cfg, source, bars, store, nil, nopMetrics{}, nil, testLogger(t), newReg)
}

func waitForTraining(t *testing.T, p *PredictorService) models.TrainingStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := p.TrainingStatus()
		if st.State == models.TrainingSucceeded || st.State == models.TrainingFailed {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("training did not finish: %+v", p.TrainingStatus())
	return models.TrainingStatus{}
}

func TestFetchDataSummary(t *testing.T) {
	src := &fakeSource{series: testSeries(60)}
	p := newTestService(t, src, &fakeBars{}, nil)

	sum, err := p.FetchData(context.Background(), "NFLX")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sum.TotalRecords != 60 || sum.Symbol != "NFLX" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.PriceStats.Min >= sum.PriceStats.Max {
		t.Fatalf("degenerate stats %+v", sum.PriceStats)
	}
	if sum.DateRange.Start == "" || sum.DateRange.End <= sum.DateRange.Start {
		t.Fatalf("bad date range %+v", sum.DateRange)
	}
}

func TestFetchDataFallsBackToBars(t *testing.T) {
	bars := &fakeBars{stored: testSeries(50)}
	src := &fakeSource{err: errors.New("tiingo down")}
	p := newTestService(t, src, bars, nil)

	sum, err := p.FetchData(context.Background(), "NFLX")
	if err != nil {
		t.Fatalf("fetch with fallback: %v", err)
	}
	if sum.TotalRecords != 50 {
		t.Fatalf("expected stored series, got %+v", sum)
	}
}

func TestFetchDataFailsWithoutAnySource(t *testing.T) {
	src := &fakeSource{err: errors.New("tiingo down")}
	p := newTestService(t, src, &fakeBars{}, nil)
	if _, err := p.FetchData(context.Background(), "NFLX"); err == nil {
		t.Fatalf("expected error with no fallback data")
	}
}

func TestTrainForecastHistoricalCycle(t *testing.T) {
	src := &fakeSource{series: testSeries(80)}
	p := newTestService(t, src, &fakeBars{}, nil)

	if _, err := p.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	epochs, batch, err := p.Train(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if epochs != 10 || batch != 8 {
		t.Fatalf("defaults not applied: epochs=%d batch=%d", epochs, batch)
	}

	st := waitForTraining(t, p)
	if st.State != models.TrainingSucceeded {
		t.Fatalf("training failed: %+v", st)
	}
	if st.Result == nil || st.Result.TrainRMSE <= 0 {
		t.Fatalf("metrics missing: %+v", st.Result)
	}

	fc, err := p.Forecast(context.Background(), 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(fc.Values) != 5 || len(fc.Dates) != 5 {
		t.Fatalf("forecast shape %d/%d, want 5/5", len(fc.Values), len(fc.Dates))
	}

	hist, err := p.Historical(context.Background())
	if err != nil {
		t.Fatalf("historical: %v", err)
	}
	if len(hist.Actual) != 80 || len(hist.TrainPreds) != 80 || len(hist.TestPreds) != 80 || len(hist.Dates) != 80 {
		t.Fatalf("historical shape %d/%d/%d/%d", len(hist.Actual), len(hist.TrainPreds), len(hist.TestPreds), len(hist.Dates))
	}
}

func TestForecastBeforeTraining(t *testing.T) {
	src := &fakeSource{series: testSeries(60)}
	p := newTestService(t, src, &fakeBars{}, nil)
	if _, err := p.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := p.Forecast(context.Background(), 3); !errors.Is(err, forecast.ErrModelNotTrained) {
		t.Fatalf("expected ErrModelNotTrained, got %v", err)
	}
}

func TestTrainBusyRejection(t *testing.T) {
	src := &fakeSource{series: testSeries(60)}
	blocker := &blockingRegressor{release: make(chan struct{})}
	p := newTestService(t, src, &fakeBars{}, func() domsvc.StatefulRegressor { return blocker })

	if _, err := p.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, _, err := p.Train(context.Background(), 1, 0); err != nil {
		t.Fatalf("first train: %v", err)
	}

	if _, _, err := p.Train(context.Background(), 1, 0); !errors.Is(err, forecast.ErrTrainingInProgress) {
		t.Fatalf("second train: expected busy, got %v", err)
	}
	if _, err := p.FetchData(context.Background(), "NFLX"); !errors.Is(err, forecast.ErrTrainingInProgress) {
		t.Fatalf("fetch during training: expected busy, got %v", err)
	}

	close(blocker.release)
	waitForTraining(t, p)
}

func TestModelPairRestoredFromStore(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewFileModelStore(dir)
	cfg := PredictorConfig{Symbol: "NFLX", Lookback: 4, TrainRatio: 0.65, Epochs: 5, BatchSize: 8}
	newReg := func() domsvc.StatefulRegressor { return regressor.NewLinear(0.05) }
	src := &fakeSource{series: testSeries(80)}

	first := NewPredictorService(cfg, src, &fakeBars{}, store, nil, nopMetrics{}, nil, testLogger(t), newReg)
	if _, err := first.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, _, err := first.Train(context.Background(), 0, 0); err != nil {
		t.Fatalf("train: %v", err)
	}
	if st := waitForTraining(t, first); st.State != models.TrainingSucceeded {
		t.Fatalf("training failed: %+v", st)
	}

	// A fresh service over the same store forecasts without retraining.
	second := NewPredictorService(cfg, src, &fakeBars{}, store, nil, nopMetrics{}, nil, testLogger(t), newReg)
	if _, err := second.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	fc, err := second.Forecast(context.Background(), 3)
	if err != nil {
		t.Fatalf("forecast after restore: %v", err)
	}
	if len(fc.Values) != 3 {
		t.Fatalf("forecast shape %d, want 3", len(fc.Values))
	}
}

func TestDeleteModel(t *testing.T) {
	src := &fakeSource{series: testSeries(80)}
	p := newTestService(t, src, &fakeBars{}, nil)
	if _, err := p.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, _, err := p.Train(context.Background(), 0, 0); err != nil {
		t.Fatalf("train: %v", err)
	}
	waitForTraining(t, p)

	if err := p.DeleteModel(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.Forecast(context.Background(), 3); !errors.Is(err, forecast.ErrModelNotTrained) {
		t.Fatalf("expected ErrModelNotTrained after delete, got %v", err)
	}
}

func TestProgressSubscription(t *testing.T) {
	src := &fakeSource{series: testSeries(80)}
	p := newTestService(t, src, &fakeBars{}, nil)
	if _, err := p.FetchData(context.Background(), "NFLX"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	updates, cancel := p.SubscribeProgress()
	defer cancel()

	if _, _, err := p.Train(context.Background(), 3, 0); err != nil {
		t.Fatalf("train: %v", err)
	}
	waitForTraining(t, p)

	var got []models.ProgressUpdate
drain:
	for {
		select {
		case u := <-updates:
			got = append(got, u)
		default:
			break drain
		}
	}
	if len(got) == 0 {
		t.Fatalf("no progress updates delivered")
	}
	last := got[len(got)-1]
	if last.Epoch != last.TotalEpochs {
		t.Fatalf("last update %+v, want final epoch", last)
	}
}
