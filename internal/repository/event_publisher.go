package repository

import (
	"context"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgkafka "StockCast/pkg/kafka"
)

// KafkaEventPublisher implements Publisher for Kafka, emitting training and
// forecast lifecycle events keyed by symbol so downstream consumers keep
// per-symbol ordering.
type KafkaEventPublisher struct {
	producer      *pkgkafka.Producer
	trainingTopic string
	forecastTopic string
}

// NewKafkaEventPublisher creates a Kafka event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, trainingTopic, forecastTopic string) domrepo.Publisher {
	return &KafkaEventPublisher{
		producer:      producer,
		trainingTopic: trainingTopic,
		forecastTopic: forecastTopic,
	}
}

func (p *KafkaEventPublisher) PublishTraining(ctx context.Context, ev *models.TrainingEvent) error {
	return p.producer.Publish(ctx, p.trainingTopic, []byte(ev.Symbol), ev)
}

func (p *KafkaEventPublisher) PublishForecast(ctx context.Context, ev *models.ForecastEvent) error {
	return p.producer.Publish(ctx, p.forecastTopic, []byte(ev.Symbol), ev)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
