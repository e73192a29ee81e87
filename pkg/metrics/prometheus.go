package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	trainingRuns     *prometheus.CounterVec
	trainingDuration *prometheus.HistogramVec
	rmse             *prometheus.GaugeVec
	forecasts        *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		trainingRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_training_runs_total",
				Help: "Total number of training runs by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		trainingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_training_duration_seconds",
				Help:    "Duration of training runs in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"symbol"},
		),
		rmse: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_rmse",
				Help: "RMSE of the last training run in price units",
			},
			[]string{"symbol", "split"},
		),
		forecasts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_forecasts_total",
				Help: "Total number of produced forecasts",
			},
			[]string{"symbol", "horizon"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_last_price",
				Help: "Last observed close price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordTrainingRun records a finished training run and its outcome.
func (r *Recorder) RecordTrainingRun(symbol, outcome string) {
	r.trainingRuns.WithLabelValues(symbol, outcome).Inc()
}

// RecordTrainingDuration records a training run duration in seconds.
func (r *Recorder) RecordTrainingDuration(symbol string, seconds float64) {
	r.trainingDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordRMSE records split RMSE from the last training run.
func (r *Recorder) RecordRMSE(symbol, split string, value float64) {
	r.rmse.WithLabelValues(symbol, split).Set(value)
}

// RecordForecast records a produced forecast and its horizon.
func (r *Recorder) RecordForecast(symbol string, horizon int) {
	r.forecasts.WithLabelValues(symbol, strconv.Itoa(horizon)).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
