package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/ideaflow/internal/models"
)

// MessageProducer is satisfied by *kafka.Producer.
type MessageProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// ResultProducer publishes result events to the result topic keyed by
// question id, so every result for a question lands on one partition.
type ResultProducer struct {
	producer MessageProducer
	topic    string
}

func NewResultProducer(cfg KafkaConfig) (*ResultProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("topic", cfg.ResultTopic))

	p, err := kafka.NewProducer(cfg.ProducerConfigMap())
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return NewResultProducerWith(p, cfg.ResultTopic), nil
}

func NewResultProducerWith(p MessageProducer, topic string) *ResultProducer {
	return &ResultProducer{producer: p, topic: topic}
}

func (rp *ResultProducer) Name() string {
	return "kafka_topic"
}

// PublishResult produces event and waits for its delivery report.
func (rp *ResultProducer) PublishResult(ctx context.Context, event models.IntelligenceResultEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to encode result payload: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &rp.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.QuestionID),
		Value:          jsonData,
	}

	delivery := make(chan kafka.Event, 1)
	for i := 0; i < 3; i++ {
		err = rp.producer.Produce(msg, delivery)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce result for %s: %w", event.QuestionID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed for %s: %w", event.QuestionID, m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaClient] Published result to Kafka",
		slog.String("topic", rp.topic),
		slog.String("question_id", event.QuestionID))
	return nil
}

func (rp *ResultProducer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := rp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	rp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
