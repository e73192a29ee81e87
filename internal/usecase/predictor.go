package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/forecast"
	"StockCast/pkg/cache"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// ErrNoData is returned when an operation needs a loaded series first.
var ErrNoData = errors.New("no data loaded, fetch a series first")

// PredictorConfig carries the effective model hyperparameters.
type PredictorConfig struct {
	Symbol       string
	Lookback     int
	TrainRatio   float64
	Epochs       int
	BatchSize    int
	LearningRate float64
	CacheTTL     time.Duration
}

// PredictorService owns the full predict pipeline for one active symbol:
// fetch -> scale -> split -> train -> {forecast, historical}. Training runs
// in the background under the session state machine; a second train request
// while one is active is rejected as busy, never queued.
type PredictorService struct {
	cfg     PredictorConfig
	source  domrepo.SeriesSource
	bars    domrepo.BarStore
	store   domrepo.ModelStore
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	cache   cache.Service
	logger  *xlogger.Logger

	newRegressor func() domsvc.StatefulRegressor

	session  *forecast.Session
	trainer  *forecast.Trainer
	progress *progressHub

	// mu guards the snapshot fields below. Long operations (network fetch,
	// training, inference) run on captured snapshots outside the lock; the
	// session's read/write exclusion keeps them coherent.
	mu        sync.Mutex
	series    *models.Series
	scaler    *forecast.Scaler
	trainPart []float64
	testPart  []float64
	reg       domsvc.StatefulRegressor
}

// NewPredictorService creates the predictor use case.
func NewPredictorService(
	cfg PredictorConfig,
	source domrepo.SeriesSource,
	bars domrepo.BarStore,
	store domrepo.ModelStore,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	cacheSvc cache.Service,
	logger *xlogger.Logger,
	newRegressor func() domsvc.StatefulRegressor,
) *PredictorService {
	return &PredictorService{
		cfg:          cfg,
		source:       source,
		bars:         bars,
		store:        store,
		pub:          pub,
		metrics:      metrics,
		cache:        cacheSvc,
		logger:       logger,
		newRegressor: newRegressor,
		session:      forecast.NewSession(),
		trainer:      forecast.NewTrainer(store),
		progress:     newProgressHub(),
	}
}

// Symbol returns the active symbol.
func (p *PredictorService) Symbol() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.series != nil {
		return p.series.Symbol
	}
	return p.cfg.Symbol
}

// FetchData loads the daily close series for a symbol and preprocesses it
// (scale on the whole series, then split). On network failure it falls back
// to the bar store. Switching symbols discards the previous model state.
func (p *PredictorService) FetchData(ctx context.Context, symbol string) (*models.DataSummary, error) {
	if symbol == "" {
		symbol = p.cfg.Symbol
	}
	if p.session.Training() {
		return nil, forecast.ErrTrainingInProgress
	}

	series, err := p.fetchSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}

	scaler := forecast.NewScaler()
	scaled, err := scaler.FitTransform(series.Closes())
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", symbol, err)
	}
	trainPart, testPart := forecast.Split(scaled, p.cfg.TrainRatio)

	p.mu.Lock()
	switched := p.series != nil && p.series.Symbol != symbol
	p.series = series
	p.scaler = scaler
	p.trainPart = trainPart
	p.testPart = testPart
	if switched {
		p.reg = nil
	}
	p.mu.Unlock()

	p.metrics.RecordLastPrice(symbol, series.Points[len(series.Points)-1].Close)
	p.logger.Info("series loaded",
		xlogger.String("symbol", symbol),
		xlogger.Int("records", series.Len()),
		xlogger.Int("train", len(trainPart)),
		xlogger.Int("test", len(testPart)))

	return p.summaryLocked(series), nil
}

// fetchSeries checks the cache, then the network source, then stored bars.
func (p *PredictorService) fetchSeries(ctx context.Context, symbol string) (*models.Series, error) {
	key := cache.GenerateKey("series", symbol)

	if p.cache != nil {
		var raw string
		if err := p.cache.Get(ctx, key, &raw); err == nil && raw != "" {
			var s models.Series
			if err := json.Unmarshal([]byte(raw), &s); err == nil && len(s.Points) > 0 {
				return &s, nil
			}
		}
	}

	series, fetchErr := p.source.Fetch(ctx, symbol)
	if fetchErr == nil {
		if p.bars != nil {
			if err := p.bars.StoreSeries(ctx, series); err != nil {
				p.logger.Warn("bar store write failed", xlogger.Error(err))
			}
		}
		if p.cache != nil {
			if b, err := json.Marshal(series); err == nil {
				_ = p.cache.Set(ctx, key, string(b), p.cfg.CacheTTL)
			}
		}
		return series, nil
	}

	p.metrics.RecordError("fetch")
	p.logger.Warn("network fetch failed, trying stored bars", xlogger.Error(fetchErr))

	if p.bars != nil {
		stored, err := p.bars.LoadSeries(ctx, symbol)
		if err == nil && stored.Len() > 0 {
			p.logger.Info("loaded series from bar store",
				xlogger.String("symbol", symbol), xlogger.Int("records", stored.Len()))
			return stored, nil
		}
	}
	return nil, fmt.Errorf("fetch series %s: %w", symbol, fetchErr)
}

// Summary describes the loaded series.
func (p *PredictorService) Summary() (*models.DataSummary, error) {
	p.mu.Lock()
	series := p.series
	p.mu.Unlock()
	if series == nil {
		return nil, ErrNoData
	}
	return p.summaryLocked(series), nil
}

func (p *PredictorService) summaryLocked(series *models.Series) *models.DataSummary {
	closes := series.Closes()
	min, max := closes[0], closes[0]
	var sum float64
	for _, v := range closes {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(closes))
	var varsum float64
	for _, v := range closes {
		d := v - mean
		varsum += d * d
	}
	std := 0.0
	if len(closes) > 1 {
		std = math.Sqrt(varsum / float64(len(closes)-1))
	}

	return &models.DataSummary{
		Symbol:       series.Symbol,
		TotalRecords: series.Len(),
		DateRange: models.DateRange{
			Start: util.FormatDay(series.Points[0].Date),
			End:   util.FormatDay(series.LastDate()),
		},
		LatestPrice: closes[len(closes)-1],
		PriceStats:  models.PriceStats{Min: min, Max: max, Mean: mean, Std: std},
	}
}

// Train starts a background training run. Returns the resolved epochs and
// batch size, or ErrTrainingInProgress when a run is already active.
func (p *PredictorService) Train(ctx context.Context, epochs, batchSize int) (int, int, error) {
	if epochs <= 0 {
		epochs = p.cfg.Epochs
	}
	if batchSize <= 0 {
		batchSize = p.cfg.BatchSize
	}

	p.mu.Lock()
	series, scaler := p.series, p.scaler
	trainPart, testPart := p.trainPart, p.testPart
	p.mu.Unlock()
	if series == nil {
		return 0, 0, ErrNoData
	}

	if err := p.session.BeginTraining(); err != nil {
		return 0, 0, err
	}

	reg := p.newRegressor()
	symbol := series.Symbol

	go p.runTraining(context.WithoutCancel(ctx), reg, scaler, symbol, trainPart, testPart, epochs, batchSize)

	return epochs, batchSize, nil
}

func (p *PredictorService) runTraining(
	ctx context.Context,
	reg domsvc.StatefulRegressor,
	scaler *forecast.Scaler,
	symbol string,
	trainPart, testPart []float64,
	epochs, batchSize int,
) {
	start := time.Now()

	progressFn := func(epoch, total int, loss, valLoss float64) {
		pct := epoch * 100 / total
		p.session.SetProgress(pct, fmt.Sprintf("epoch %d/%d", epoch, total))
		p.progress.Publish(models.ProgressUpdate{
			Epoch:       epoch,
			TotalEpochs: total,
			Loss:        loss,
			ValLoss:     valLoss,
		})
	}

	result, err := p.trainer.Train(ctx, reg, scaler, symbol, trainPart, testPart,
		p.cfg.Lookback, epochs, batchSize, progressFn)

	if err != nil {
		p.metrics.RecordTrainingRun(symbol, "failed")
		p.logger.Error("training failed", xlogger.String("symbol", symbol), xlogger.Error(err))
	} else {
		p.mu.Lock()
		p.reg = reg
		p.mu.Unlock()

		p.metrics.RecordTrainingRun(symbol, "succeeded")
		p.metrics.RecordRMSE(symbol, "train", result.TrainRMSE)
		p.metrics.RecordRMSE(symbol, "test", result.TestRMSE)
		p.logger.Info("training completed",
			xlogger.String("symbol", symbol),
			xlogger.Any("train_rmse", result.TrainRMSE),
			xlogger.Any("test_rmse", result.TestRMSE),
			xlogger.Duration("took", time.Since(start)))
	}
	p.metrics.RecordTrainingDuration(symbol, time.Since(start).Seconds())

	p.session.FinishTraining(result, err)

	if p.pub != nil {
		ev := &models.TrainingEvent{Symbol: symbol, FinishedAt: time.Now()}
		if err != nil {
			ev.State = string(models.TrainingFailed)
			ev.Error = err.Error()
		} else {
			ev.State = string(models.TrainingSucceeded)
			ev.TrainRMSE = result.TrainRMSE
			ev.TestRMSE = result.TestRMSE
		}
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if perr := p.pub.PublishTraining(pubCtx, ev); perr != nil {
			p.logger.Warn("training event publish failed", xlogger.Error(perr))
		}
	}
}

// TrainingStatus returns the current session snapshot.
func (p *PredictorService) TrainingStatus() models.TrainingStatus {
	return p.session.Status()
}

// SubscribeProgress registers a websocket subscriber for per-epoch updates.
func (p *PredictorService) SubscribeProgress() (<-chan models.ProgressUpdate, func()) {
	return p.progress.Subscribe()
}

// Forecast produces an autoregressive multi-day projection seeded from the
// tail of the test partition, with projected business-day dates.
func (p *PredictorService) Forecast(ctx context.Context, days int) (*models.ForecastResult, error) {
	start := time.Now()

	var result *models.ForecastResult
	err := p.session.Read(func() error {
		reg, scaler, err := p.activeModel()
		if err != nil {
			return err
		}

		p.mu.Lock()
		series, testPart := p.series, p.testPart
		p.mu.Unlock()
		if series == nil {
			return ErrNoData
		}

		values, err := forecast.Forecast(ctx, reg, scaler, testPart, p.cfg.Lookback, days)
		if err != nil {
			return err
		}

		dates := make([]string, 0, days)
		for _, d := range util.NextBusinessDays(series.LastDate(), days) {
			dates = append(dates, util.FormatDay(d))
		}

		result = &models.ForecastResult{
			Symbol:  series.Symbol,
			Horizon: days,
			Values:  values,
			Dates:   dates,
		}
		return nil
	})
	if err != nil {
		p.metrics.RecordError("forecast")
		return nil, err
	}

	p.metrics.RecordForecast(result.Symbol, days)
	p.metrics.RecordLatency("forecast", time.Since(start).Seconds())

	if p.pub != nil && days > 0 {
		ev := &models.ForecastEvent{
			Symbol:    result.Symbol,
			Horizon:   days,
			FirstDate: result.Dates[0],
			LastValue: result.Values[len(result.Values)-1],
			CreatedAt: time.Now(),
		}
		if perr := p.pub.PublishForecast(ctx, ev); perr != nil {
			p.logger.Warn("forecast event publish failed", xlogger.Error(perr))
		}
	}

	return result, nil
}

// Historical reconstructs train/test predictions aligned onto the original
// series index space for overlay against actual closes.
func (p *PredictorService) Historical(ctx context.Context) (*models.HistoricalResult, error) {
	start := time.Now()

	var result *models.HistoricalResult
	err := p.session.Read(func() error {
		reg, scaler, err := p.activeModel()
		if err != nil {
			return err
		}

		p.mu.Lock()
		series, trainPart, testPart := p.series, p.trainPart, p.testPart
		p.mu.Unlock()
		if series == nil {
			return ErrNoData
		}

		res, err := forecast.Reconstruct(reg, scaler, trainPart, testPart, p.cfg.Lookback)
		if err != nil {
			return err
		}

		res.Dates = make([]string, 0, series.Len())
		for _, pt := range series.Points {
			res.Dates = append(res.Dates, util.FormatDay(pt.Date))
		}
		result = res
		return nil
	})
	if err != nil {
		p.metrics.RecordError("historical")
		return nil, err
	}

	p.metrics.RecordLatency("historical", time.Since(start).Seconds())
	return result, nil
}

// activeModel returns the in-memory model/scaler pair, restoring a persisted
// pair from the store when none is loaded yet.
func (p *PredictorService) activeModel() (domsvc.StatefulRegressor, *forecast.Scaler, error) {
	p.mu.Lock()
	reg, scaler := p.reg, p.scaler
	symbol := p.cfg.Symbol
	if p.series != nil {
		symbol = p.series.Symbol
	}
	p.mu.Unlock()

	if reg != nil {
		return reg, scaler, nil
	}

	modelBytes, scalerBytes, err := p.store.Load(symbol)
	if err != nil {
		if errors.Is(err, domrepo.ErrModelNotFound) {
			return nil, nil, forecast.ErrModelNotTrained
		}
		return nil, nil, err
	}

	restored := p.newRegressor()
	if err := restored.UnmarshalState(modelBytes); err != nil {
		return nil, nil, fmt.Errorf("restore model: %w", err)
	}
	restoredScaler := forecast.NewScaler()
	if err := json.Unmarshal(scalerBytes, restoredScaler); err != nil {
		return nil, nil, fmt.Errorf("restore scaler: %w", err)
	}
	if !restoredScaler.Fitted {
		return nil, nil, fmt.Errorf("restore scaler: persisted scaler not fitted")
	}

	p.mu.Lock()
	p.reg = restored
	p.scaler = restoredScaler
	p.mu.Unlock()

	p.logger.Info("model pair restored", xlogger.String("symbol", symbol))
	return restored, restoredScaler, nil
}

// Restore warm-loads a persisted model pair at startup. Missing pairs are
// not an error.
func (p *PredictorService) Restore() error {
	_, _, err := p.activeModel()
	if errors.Is(err, forecast.ErrModelNotTrained) {
		return nil
	}
	return err
}

// Status reports the overall system state.
func (p *PredictorService) Status() *models.SystemStatus {
	p.mu.Lock()
	series, reg := p.series, p.reg
	p.mu.Unlock()

	st := &models.SystemStatus{
		ModelLoaded: reg != nil,
		DataLoaded:  series != nil,
		Symbol:      p.cfg.Symbol,
		Training:    p.session.Status(),
		Config: models.ModelConfigInfo{
			Lookback:   p.cfg.Lookback,
			TrainRatio: p.cfg.TrainRatio,
			Epochs:     p.cfg.Epochs,
			BatchSize:  p.cfg.BatchSize,
		},
	}
	if series != nil {
		st.Symbol = series.Symbol
		price := series.Points[len(series.Points)-1].Close
		st.LatestPrice = &price
	}
	return st
}

// Health reports liveness for /health.
func (p *PredictorService) Health() *models.HealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &models.HealthStatus{
		Status:      "healthy",
		ModelLoaded: p.reg != nil,
		DataLoaded:  p.series != nil,
		Timestamp:   time.Now(),
	}
}

// DeleteModel removes the persisted pair and resets in-memory model state.
func (p *PredictorService) DeleteModel() error {
	if p.session.Training() {
		return forecast.ErrTrainingInProgress
	}

	p.mu.Lock()
	symbol := p.cfg.Symbol
	if p.series != nil {
		symbol = p.series.Symbol
	}
	p.mu.Unlock()

	if err := p.store.Delete(symbol); err != nil {
		return fmt.Errorf("delete model pair: %w", err)
	}

	p.mu.Lock()
	p.reg = nil
	p.mu.Unlock()

	p.logger.Info("model deleted", xlogger.String("symbol", symbol))
	return nil
}

// Close releases the publisher and progress subscribers.
func (p *PredictorService) Close() {
	p.progress.Close()
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
