package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ConsumerFunc runs until ctx is cancelled, reading from consumer.
type ConsumerFunc func(ctx context.Context, consumer *kafka.Consumer)

type ConsumerRegistry struct {
	consumers map[string]ConsumerFunc
}

func NewConsumerRegistry() *ConsumerRegistry {
	return &ConsumerRegistry{consumers: make(map[string]ConsumerFunc)}
}

func (r *ConsumerRegistry) Register(topic string, fn ConsumerFunc) {
	r.consumers[topic] = fn
}

func (r *ConsumerRegistry) Lookup(topic string) (ConsumerFunc, bool) {
	fn, ok := r.consumers[topic]
	return fn, ok
}

// NewConsumer creates a consumer subscribed to the request topic.
func NewConsumer(cfg KafkaConfig) (*kafka.Consumer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.Broker),
		slog.String("group_id", cfg.GroupID),
		slog.String("topic", cfg.RequestTopic))

	c, err := kafka.NewConsumer(cfg.ConsumerConfigMap())
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics([]string{cfg.RequestTopic}, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to subscribe to topics: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Consumer initialized successfully")
	return c, nil
}

// StartConsumer runs the consumer registered for the request topic and
// blocks until it returns.
func (r *ConsumerRegistry) StartConsumer(ctx context.Context, cfg KafkaConfig) error {
	consumerFunc, exists := r.Lookup(cfg.RequestTopic)
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", cfg.RequestTopic)
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.RequestTopic))
	consumerFunc(ctx, consumer)

	return nil
}
