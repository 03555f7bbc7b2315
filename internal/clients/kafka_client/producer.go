package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/models"
)

const TRANSACTIONAL_ID = "momentflow-producer-1"

// MomentPublisher emits stored moments to a topic, one transaction per batch.
type MomentPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewMomentPublisher(ctx context.Context, cfg config.KafkaConfig) (*MomentPublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      TRANSACTIONAL_ID,
		"go.delivery.reports":                   false,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &MomentPublisher{producer: p, topic: cfg.Topic}, nil
}

// PublishMoments writes every moment keyed by its moment id. Either all
// messages are committed or the transaction is aborted.
func (mp *MomentPublisher) PublishMoments(ctx context.Context, moments []models.StoredMoment) error {
	if len(moments) == 0 {
		return nil
	}
	if err := mp.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, m := range moments {
		msg, err := momentMessage(mp.topic, m)
		if err != nil {
			return mp.abort(ctx, err)
		}
		if err := mp.producer.Produce(msg, nil); err != nil {
			return mp.abort(ctx, fmt.Errorf("[KafkaClient] failed to produce moment %s: %w", m.MomentID, err))
		}
	}

	if err := mp.producer.CommitTransaction(ctx); err != nil {
		return mp.abort(ctx, fmt.Errorf("[KafkaClient] failed to commit transaction: %w", err))
	}

	slog.Info("[KafkaClient] Published stored moments transactionally",
		slog.String("topic", mp.topic),
		slog.Int("count", len(moments)))
	return nil
}

func momentMessage(topic string, m models.StoredMoment) (*kafka.Message, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal moment %s: %w", m.MomentID, err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(m.MomentID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "day_id", Value: []byte(m.DayID)},
			{Key: "batch_id", Value: []byte(m.BatchID)},
		},
	}, nil
}

func (mp *MomentPublisher) abort(ctx context.Context, cause error) error {
	if abortErr := mp.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("%w (abort also failed: %v)", cause, abortErr)
	}
	return cause
}

func (mp *MomentPublisher) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := mp.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	mp.producer.Close()
}
