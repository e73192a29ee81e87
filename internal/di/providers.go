package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/tiingo"
	"StockCast/internal/services/regressor"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema. Re-fetched days replace older rows on merge.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + table +
			" (symbol String, day Date, close Float64, fetched_at DateTime)" +
			" ENGINE=ReplacingMergeTree(fetched_at) ORDER BY (symbol, day)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarStore creates the daily bar repository, or nil without ClickHouse.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config) repository.BarStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseBarStore(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideEventPublisher creates the lifecycle event publisher, or nil without Kafka.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.TrainingTopic, cfg.Kafka.ForecastTopic)
}

// ProvideCache creates the series cache: memory-over-Redis when Redis is
// enabled, in-process only otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideSeriesSource creates the Tiingo end-of-day price source.
func ProvideSeriesSource(cfg *config.Config) repository.SeriesSource {
	return tiingo.New(
		cfg.Tiingo.APIKey,
		cfg.Tiingo.BaseURL,
		cfg.Tiingo.Timeout,
		cfg.Tiingo.RequestsPerMinute,
	)
}

// ProvideModelStore creates the on-disk model pair store.
func ProvideModelStore(cfg *config.Config) repository.ModelStore {
	return internalrepo.NewFileModelStore(cfg.Storage.ModelDir)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePredictorService creates the predictor use case.
func ProvidePredictorService(
	cfg *config.Config,
	source repository.SeriesSource,
	bars repository.BarStore,
	store repository.ModelStore,
	pub repository.Publisher,
	m repository.Metrics,
	cacheSvc cache.Service,
	logger *applogger.Logger,
) *usecase.PredictorService {
	pcfg := usecase.PredictorConfig{
		Symbol:       cfg.Model.Symbol,
		Lookback:     cfg.Model.Lookback,
		TrainRatio:   cfg.Model.TrainRatio,
		Epochs:       cfg.Model.Epochs,
		BatchSize:    cfg.Model.BatchSize,
		LearningRate: cfg.Model.LearningRate,
		CacheTTL:     cfg.Model.CacheTTL,
	}
	lr := cfg.Model.LearningRate
	newRegressor := func() domsvc.StatefulRegressor { return regressor.NewLinear(lr) }

	return usecase.NewPredictorService(pcfg, source, bars, store, pub, m, cacheSvc, logger, newRegressor)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(logger *applogger.Logger, svc *usecase.PredictorService) xhttp.Handler {
	return api.NewPredictorHandler(logger, svc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	svc *usecase.PredictorService,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, logger, svc, handler, chClient)
}
